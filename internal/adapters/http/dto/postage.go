package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/postage-service/internal/app"
	"github.com/jsamuelsen/postage-service/internal/domain"
)

// QuoteRequest is the body of POST /api/v1/postage/quote and
// POST /api/v1/postage/quotes. Module is ignored by the latter.
type QuoteRequest struct {
	Module  string      `json:"module"`
	Cart    CartDTO     `json:"cart"`
	Address *AddressDTO `json:"address,omitempty"`

	// Country and State are used when Address is absent.
	Country string `json:"country,omitempty" validate:"omitempty,iso2"`
	State   string `json:"state,omitempty" validate:"omitempty,max=8"`
}

// CartDTO is the cart part of a quote request.
type CartDTO struct {
	ID       string        `json:"id" validate:"max=64"`
	Currency string        `json:"currency" validate:"required,len=3"`
	Items    []CartItemDTO `json:"items" validate:"required,min=1,dive"`
}

// CartItemDTO is one cart line. UnitPrice is a decimal string so amounts
// are never rounded through float64.
type CartItemDTO struct {
	Ref       string  `json:"ref" validate:"required,notempty,max=64"`
	Quantity  int     `json:"quantity" validate:"min=1,max=10000"`
	UnitPrice string  `json:"unit_price" validate:"required,decimal,nonnegative"`
	Weight    float64 `json:"weight" validate:"min=0"`
}

// AddressDTO is a delivery address.
type AddressDTO struct {
	FirstName string `json:"first_name,omitempty" validate:"max=100"`
	LastName  string `json:"last_name,omitempty" validate:"max=100"`
	Address1  string `json:"address1,omitempty" validate:"max=255"`
	Address2  string `json:"address2,omitempty" validate:"max=255"`
	City      string `json:"city,omitempty" validate:"max=100"`
	ZipCode   string `json:"zip_code,omitempty" validate:"max=16"`
	Country   string `json:"country" validate:"required,iso2"`
	State     string `json:"state,omitempty" validate:"omitempty,max=8"`
}

// Validate rejects a state without a country to locate it in.
func (r *QuoteRequest) Validate() error {
	if r.Address == nil && r.State != "" && r.Country == "" {
		return &FieldError{Field: "country", Message: "is required when state is set"}
	}

	return nil
}

// ToInput converts r to the application input for module.
func (r *QuoteRequest) ToInput(module, locale string) app.QuoteInput {
	in := app.QuoteInput{
		ModuleCode: module,
		Cart:       r.Cart.toDomain(),
		Locale:     locale,
	}

	if r.Address != nil {
		in.Address = r.Address.toDomain()
		return in
	}

	if r.Country != "" {
		country := strings.ToUpper(r.Country)
		in.Country = &domain.Country{ISOCode: country}

		if r.State != "" {
			in.State = &domain.State{Code: strings.ToUpper(r.State), CountryISO: country}
		}
	}

	return in
}

func (c *CartDTO) toDomain() *domain.Cart {
	cart := &domain.Cart{
		ID:       c.ID,
		Currency: strings.ToUpper(c.Currency),
		Items:    make([]domain.CartItem, 0, len(c.Items)),
	}

	for _, item := range c.Items {
		// Validated by the decimal tag.
		price, _ := decimal.NewFromString(item.UnitPrice)

		cart.Items = append(cart.Items, domain.CartItem{
			Ref:       item.Ref,
			Quantity:  item.Quantity,
			UnitPrice: price,
			Weight:    item.Weight,
		})
	}

	return cart
}

func (a *AddressDTO) toDomain() *domain.Address {
	country := strings.ToUpper(a.Country)

	addr := &domain.Address{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Address1:  a.Address1,
		Address2:  a.Address2,
		City:      a.City,
		ZipCode:   a.ZipCode,
		Country:   &domain.Country{ISOCode: country},
	}

	if a.State != "" {
		addr.State = &domain.State{Code: strings.ToUpper(a.State), CountryISO: country}
	}

	return addr
}

// PostageDTO is a postage amount. Amounts are decimal strings.
type PostageDTO struct {
	Amount        string `json:"amount"`
	AmountTax     string `json:"amount_tax"`
	AmountUntaxed string `json:"amount_untaxed"`
	TaxRuleTitle  string `json:"tax_rule_title,omitempty"`
	Free          bool   `json:"free"`
}

// QuoteResponse is a computed postage quote.
type QuoteResponse struct {
	ID             string         `json:"id"`
	Module         string         `json:"module"`
	ModuleTitle    string         `json:"module_title"`
	CartID         string         `json:"cart_id,omitempty"`
	Currency       string         `json:"currency"`
	Country        string         `json:"country"`
	State          string         `json:"state,omitempty"`
	Valid          bool           `json:"valid"`
	Postage        *PostageDTO    `json:"postage,omitempty"`
	DeliveryDate   *time.Time     `json:"delivery_date,omitempty"`
	DeliveryMode   string         `json:"delivery_mode,omitempty"`
	AdditionalData map[string]any `json:"additional_data,omitempty"`
	Cached         bool           `json:"cached"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ToQuoteResponse converts a domain quote.
func ToQuoteResponse(q *domain.PostageQuote) *QuoteResponse {
	resp := &QuoteResponse{
		ID:             q.ID,
		Module:         q.ModuleCode,
		ModuleTitle:    q.ModuleTitle,
		CartID:         q.CartID,
		Currency:       q.Currency,
		Country:        q.CountryCode,
		State:          q.StateCode,
		Valid:          q.Valid,
		DeliveryDate:   q.DeliveryDate,
		DeliveryMode:   q.DeliveryMode.String(),
		AdditionalData: q.AdditionalData,
		Cached:         q.Cached,
		CreatedAt:      q.CreatedAt,
	}

	if q.Postage != nil {
		resp.Postage = &PostageDTO{
			Amount:        q.Postage.Amount.StringFixed(2),
			AmountTax:     q.Postage.AmountTax.StringFixed(2),
			AmountUntaxed: q.Postage.Untaxed().StringFixed(2),
			TaxRuleTitle:  q.Postage.TaxRuleTitle,
			Free:          q.Postage.IsFree(),
		}
	}

	return resp
}

// ModuleQuoteResponse is the outcome of one module in a multi module quote.
// Exactly one of Quote and Error is set.
type ModuleQuoteResponse struct {
	Module string         `json:"module"`
	Quote  *QuoteResponse `json:"quote,omitempty"`
	Error  *ErrorDetail   `json:"error,omitempty"`
}

// QuoteAllResponse lists the outcome of every registered module.
type QuoteAllResponse struct {
	Quotes []ModuleQuoteResponse `json:"quotes"`
}

// ToQuoteAllResponse converts the per module results. Module failures are
// reported inline with the same codes as the error envelope.
func ToQuoteAllResponse(results []app.ModuleQuote) *QuoteAllResponse {
	resp := &QuoteAllResponse{Quotes: make([]ModuleQuoteResponse, 0, len(results))}

	for _, r := range results {
		item := ModuleQuoteResponse{Module: r.ModuleCode}

		if r.Err != nil {
			_, errResp := MapDomainError(r.Err)
			item.Error = &errResp.Error
		} else {
			item.Quote = ToQuoteResponse(r.Quote)
		}

		resp.Quotes = append(resp.Quotes, item)
	}

	return resp
}

// ModuleResponse describes a registered delivery module.
type ModuleResponse struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// ModulesResponse lists the registered delivery modules.
type ModulesResponse struct {
	Modules []ModuleResponse `json:"modules"`
}

// ToModulesResponse converts module descriptions.
func ToModulesResponse(infos []app.ModuleInfo) *ModulesResponse {
	resp := &ModulesResponse{Modules: make([]ModuleResponse, 0, len(infos))}

	for _, info := range infos {
		resp.Modules = append(resp.Modules, ModuleResponse{Code: info.Code, Title: info.Title})
	}

	return resp
}
