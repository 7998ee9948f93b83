package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/postage-service/internal/domain"
)

// quoteModel is the postage_quotes row.
type quoteModel struct {
	ID             string              `gorm:"primaryKey;size:36"`
	ModuleCode     string              `gorm:"size:64;not null;index"`
	ModuleTitle    string              `gorm:"size:255"`
	CartID         string              `gorm:"size:64;index"`
	Currency       string              `gorm:"size:3"`
	CountryCode    string              `gorm:"size:2"`
	StateCode      string              `gorm:"size:16"`
	Valid          bool                `gorm:"not null"`
	Amount         decimal.NullDecimal `gorm:"type:decimal(12,4)"`
	AmountTax      decimal.NullDecimal `gorm:"type:decimal(12,4)"`
	TaxRuleTitle   string              `gorm:"size:128"`
	DeliveryDate   *time.Time
	DeliveryMode   string `gorm:"size:16"`
	AdditionalData []byte `gorm:"type:json"`
	CreatedAt      time.Time
}

func (quoteModel) TableName() string {
	return "postage_quotes"
}

func toModel(q *domain.PostageQuote) (*quoteModel, error) {
	m := &quoteModel{
		ID:           q.ID,
		ModuleCode:   q.ModuleCode,
		ModuleTitle:  q.ModuleTitle,
		CartID:       q.CartID,
		Currency:     q.Currency,
		CountryCode:  q.CountryCode,
		StateCode:    q.StateCode,
		Valid:        q.Valid,
		DeliveryDate: q.DeliveryDate,
		DeliveryMode: string(q.DeliveryMode),
		CreatedAt:    q.CreatedAt,
	}

	if q.Postage != nil {
		m.Amount = decimal.NewNullDecimal(q.Postage.Amount)
		m.AmountTax = decimal.NewNullDecimal(q.Postage.AmountTax)
		m.TaxRuleTitle = q.Postage.TaxRuleTitle
	}

	if len(q.AdditionalData) > 0 {
		data, err := json.Marshal(q.AdditionalData)
		if err != nil {
			return nil, fmt.Errorf("encoding additional data: %w", err)
		}

		m.AdditionalData = data
	}

	return m, nil
}

func toDomain(m *quoteModel) (*domain.PostageQuote, error) {
	q := &domain.PostageQuote{
		ID:           m.ID,
		ModuleCode:   m.ModuleCode,
		ModuleTitle:  m.ModuleTitle,
		CartID:       m.CartID,
		Currency:     m.Currency,
		CountryCode:  m.CountryCode,
		StateCode:    m.StateCode,
		Valid:        m.Valid,
		DeliveryDate: m.DeliveryDate,
		DeliveryMode: domain.DeliveryMode(m.DeliveryMode),
		CreatedAt:    m.CreatedAt,
	}

	if m.Amount.Valid {
		p := domain.NewPostage(m.Amount.Decimal, m.AmountTax.Decimal, m.TaxRuleTitle)
		q.Postage = &p
	}

	if len(m.AdditionalData) > 0 {
		if err := json.Unmarshal(m.AdditionalData, &q.AdditionalData); err != nil {
			return nil, fmt.Errorf("decoding additional data of quote %s: %w", m.ID, err)
		}
	}

	return q, nil
}
