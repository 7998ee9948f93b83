package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// Postage is a normalized shipping cost. Amount includes tax; AmountTax is
// the tax part of Amount and TaxRuleTitle names the rule that produced it.
type Postage struct {
	Amount       decimal.Decimal `json:"amount"`
	AmountTax    decimal.Decimal `json:"amount_tax"`
	TaxRuleTitle string          `json:"tax_rule_title,omitempty"`
}

// NewPostage creates a postage with an explicit tax breakdown.
func NewPostage(amount, amountTax decimal.Decimal, taxRuleTitle string) Postage {
	return Postage{Amount: amount, AmountTax: amountTax, TaxRuleTitle: taxRuleTitle}
}

// PostageFromAmount normalizes a raw amount into a Postage with no tax
// and an empty tax rule title. NaN and infinite amounts normalize to zero.
func PostageFromAmount(amount float64) Postage {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Postage{Amount: decimal.Zero, AmountTax: decimal.Zero}
	}

	return Postage{Amount: decimal.NewFromFloat(amount), AmountTax: decimal.Zero}
}

// Untaxed returns Amount minus AmountTax.
func (p Postage) Untaxed() decimal.Decimal {
	return p.Amount.Sub(p.AmountTax)
}

// IsFree reports whether the postage costs nothing.
func (p Postage) IsFree() bool {
	return p.Amount.IsZero()
}
