// Package flatrate is a delivery module pricing parcels with an ordered
// list of configured rules. The first rule matching the destination and the
// cart wins; rules may carry a CEL condition over the shipment.
package flatrate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/postage-service/internal/app/postage"
	"github.com/jsamuelsen/postage-service/internal/domain"
	"github.com/jsamuelsen/postage-service/internal/platform/config"
)

// Additional data keys set by the module.
const (
	DataRule         = "rule"
	DataWeightKg     = "weight_kg"
	DataFreeShipping = "free_shipping"
)

var errNoRule = errors.New("no rate rule matches the shipment")

// Module is the flat rate delivery module.
type Module struct {
	code         string
	title        string
	rules        []rule
	freeAbove    decimal.Decimal
	taxRate      decimal.Decimal
	taxRuleTitle string
	now          func() time.Time
}

// Option configures a Module.
type Option func(*Module)

// WithClock replaces time.Now for delivery date estimates.
func WithClock(now func() time.Time) Option {
	return func(m *Module) { m.now = now }
}

// New compiles cfg into a module. Invalid amounts and conditions that do
// not compile to a bool are reported here rather than at quote time.
func New(cfg config.FlatRateConfig, opts ...Option) (*Module, error) {
	if cfg.Code == "" {
		return nil, errors.New("flatrate: code is required")
	}

	if len(cfg.Rules) == 0 {
		return nil, errors.New("flatrate: at least one rule is required")
	}

	m := &Module{
		code:         cfg.Code,
		title:        cfg.Title,
		taxRuleTitle: cfg.TaxRuleTitle,
		now:          time.Now,
	}

	var err error

	if m.freeAbove, err = parseOptionalDecimal(cfg.FreeAbove); err != nil {
		return nil, fmt.Errorf("flatrate: free_above: %w", err)
	}

	if m.taxRate, err = parseOptionalDecimal(cfg.TaxRate); err != nil {
		return nil, fmt.Errorf("flatrate: tax_rate: %w", err)
	}

	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("flatrate: creating CEL environment: %w", err)
	}

	for _, rc := range cfg.Rules {
		r, err := compileRule(env, rc)
		if err != nil {
			return nil, fmt.Errorf("flatrate: %w", err)
		}

		m.rules = append(m.rules, r)
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Code implements postage.Module.
func (m *Module) Code() string { return m.code }

// Title implements postage.Module.
func (m *Module) Title() string { return m.title }

// IsValidDelivery accepts the request when a rule matches.
func (m *Module) IsValidDelivery(ctx context.Context, rc *postage.RequestContext) (bool, error) {
	_, err := m.match(ctx, rc)
	if errors.Is(err, errNoRule) {
		return false, nil
	}

	return err == nil, err
}

// Postage prices the request with the matching rule.
func (m *Module) Postage(ctx context.Context, rc *postage.RequestContext) error {
	r, err := m.match(ctx, rc)
	if err != nil {
		return err
	}

	cart := rc.Cart()
	free := m.freeAbove.IsPositive() && cart.Total().GreaterThanOrEqual(m.freeAbove)

	amount := r.amount
	if free {
		amount = decimal.Zero
	}

	rc.SetPostage(domain.NewPostage(amount, m.includedTax(amount), m.taxRuleTitle))

	if err := rc.SetDeliveryMode(domain.DeliveryModeDelivery); err != nil {
		return err
	}

	if r.deliveryDays > 0 {
		rc.SetDeliveryDate(startOfDay(m.now()).AddDate(0, 0, r.deliveryDays))
	}

	rc.AddAdditionalData(DataRule, postage.String(r.name)).
		AddAdditionalData(DataWeightKg, postage.Float(cart.Weight())).
		AddAdditionalData(DataFreeShipping, postage.Bool(free))

	return nil
}

func (m *Module) match(ctx context.Context, rc *postage.RequestContext) (*rule, error) {
	s := shipmentOf(rc)
	if s.country == "" {
		return nil, errNoRule
	}

	for i := range m.rules {
		ok, err := m.rules[i].matches(ctx, s)
		if err != nil {
			return nil, err
		}

		if ok {
			return &m.rules[i], nil
		}
	}

	return nil, errNoRule
}

// includedTax extracts the tax part of a tax inclusive amount.
func (m *Module) includedTax(amount decimal.Decimal) decimal.Decimal {
	if !m.taxRate.IsPositive() || amount.IsZero() {
		return decimal.Zero
	}

	return amount.Mul(m.taxRate).Div(decimal.NewFromInt(1).Add(m.taxRate)).Round(2)
}

func shipmentOf(rc *postage.RequestContext) shipment {
	s := shipment{
		country: strings.ToUpper(rc.Country().CountryCode()),
		state:   strings.ToUpper(rc.State().StateCode()),
		weight:  rc.Cart().Weight(),
		total:   rc.Cart().Total(),
		items:   rc.Cart().ItemCount(),
	}

	if addr := rc.Address(); addr != nil {
		s.zip = addr.ZipCode
	}

	return s
}

func parseOptionalDecimal(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}

	return decimal.NewFromString(s)
}

func startOfDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}
