package flatrate

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/postage-service/internal/app/postage"
	"github.com/jsamuelsen/postage-service/internal/domain"
	"github.com/jsamuelsen/postage-service/internal/platform/config"
)

var fixedNow = time.Date(2026, 5, 4, 15, 30, 0, 0, time.UTC)

func testConfig() config.FlatRateConfig {
	return config.FlatRateConfig{
		Enabled:      true,
		Code:         "flat-rate",
		Title:        "Standard delivery",
		FreeAbove:    "100",
		TaxRate:      "0.20",
		TaxRuleTitle: "VAT 20%",
		Rules: []config.RateRuleConfig{
			{Name: "corsica", Countries: []string{"fr"}, States: []string{"2A", "2B"}, Amount: "9.90", DeliveryDays: 4},
			{Name: "france", Countries: []string{"FR"}, MaxWeight: 30, Amount: "4.80", DeliveryDays: 2},
			{Name: "heavy", Condition: "weight > 30.0 && country != 'US'", Amount: "24.00", DeliveryDays: 7},
			{Name: "bulk", Condition: "items >= 10 && total < 50.0", Amount: "12.00"},
		},
	}
}

func newModule(t *testing.T) *Module {
	t.Helper()

	m, err := New(testConfig(), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	return m
}

func cartOf(qty int, price string, weight float64) *domain.Cart {
	return &domain.Cart{
		ID:       "cart-1",
		Currency: "EUR",
		Items: []domain.CartItem{
			{Ref: "mug", Quantity: qty, UnitPrice: decimal.RequireFromString(price), Weight: weight},
		},
	}
}

func request(m *Module, cart *domain.Cart, country, state string) *postage.RequestContext {
	opts := []postage.Option{postage.WithCountry(&domain.Country{ISOCode: country})}
	if state != "" {
		opts = append(opts, postage.WithState(&domain.State{Code: state, CountryISO: country}))
	}

	return postage.New(m, cart, opts...)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.FlatRateConfig)
		errMsg string
	}{
		{"missing code", func(c *config.FlatRateConfig) { c.Code = "" }, "code is required"},
		{"no rules", func(c *config.FlatRateConfig) { c.Rules = nil }, "at least one rule"},
		{"bad amount", func(c *config.FlatRateConfig) { c.Rules[0].Amount = "cheap" }, "rule corsica: amount"},
		{"negative amount", func(c *config.FlatRateConfig) { c.Rules[0].Amount = "-1" }, "must not be negative"},
		{"bad free above", func(c *config.FlatRateConfig) { c.FreeAbove = "x" }, "free_above"},
		{"syntax error", func(c *config.FlatRateConfig) { c.Rules[2].Condition = "weight >" }, "rule heavy: condition"},
		{"unknown variable", func(c *config.FlatRateConfig) { c.Rules[2].Condition = "volume > 1.0" }, "rule heavy: condition"},
		{"non bool condition", func(c *config.FlatRateConfig) { c.Rules[2].Condition = "weight * 2.0" }, "must evaluate to bool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			_, err := New(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestModule_CodeAndTitle(t *testing.T) {
	m := newModule(t)

	assert.Equal(t, "flat-rate", m.Code())
	assert.Equal(t, "Standard delivery", m.Title())
}

func TestModule_RuleSelection(t *testing.T) {
	tests := []struct {
		name    string
		cart    *domain.Cart
		country string
		state   string
		valid   bool
		rule    string
		amount  string
	}{
		{"state specific rule first", cartOf(1, "20", 1), "FR", "2a", true, "corsica", "9.9"},
		{"country rule", cartOf(2, "20", 1), "FR", "", true, "france", "4.8"},
		{"weight limit falls through to condition", cartOf(1, "20", 31), "FR", "", true, "heavy", "24"},
		{"condition excludes country", cartOf(1, "20", 31), "US", "", false, "", ""},
		{"bulk condition on items and total", cartOf(10, "2", 0.1), "DE", "", true, "bulk", "12"},
		{"no rule for light parcel abroad", cartOf(1, "20", 1), "DE", "", false, "", ""},
		{"missing destination", cartOf(1, "20", 1), "", "", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModule(t)
			rc := request(m, tt.cart, tt.country, tt.state)

			valid, err := m.IsValidDelivery(context.Background(), rc)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, valid)

			if !tt.valid {
				return
			}

			require.NoError(t, m.Postage(context.Background(), rc))

			p, ok := rc.Postage()
			require.True(t, ok)
			assert.Equal(t, tt.amount, p.Amount.String())

			rule, ok := rc.AdditionalData().Get(DataRule)
			require.True(t, ok)
			name, _ := rule.AsString()
			assert.Equal(t, tt.rule, name)
		})
	}
}

func TestModule_PostageDetails(t *testing.T) {
	m := newModule(t)
	rc := request(m, cartOf(2, "20", 1.5), "FR", "")

	require.NoError(t, m.Postage(context.Background(), rc))

	p, _ := rc.Postage()
	assert.Equal(t, "4.8", p.Amount.String())
	assert.Equal(t, "0.8", p.AmountTax.String())
	assert.Equal(t, "VAT 20%", p.TaxRuleTitle)

	mode, ok := rc.DeliveryMode()
	require.True(t, ok)
	assert.Equal(t, domain.DeliveryModeDelivery, mode)

	date, ok := rc.DeliveryDate()
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC), date)

	weight, _ := rc.AdditionalData()[DataWeightKg].AsFloat()
	assert.InDelta(t, 3.0, weight, 1e-9)

	free, _ := rc.AdditionalData()[DataFreeShipping].AsBool()
	assert.False(t, free)
}

func TestModule_FreeShippingThreshold(t *testing.T) {
	m := newModule(t)
	rc := request(m, cartOf(5, "20", 1), "FR", "")

	require.NoError(t, m.Postage(context.Background(), rc))

	p, _ := rc.Postage()
	assert.True(t, p.IsFree())
	assert.True(t, p.AmountTax.IsZero())

	free, _ := rc.AdditionalData()[DataFreeShipping].AsBool()
	assert.True(t, free)
}

func TestModule_NoDeliveryDateWithoutDays(t *testing.T) {
	m := newModule(t)
	rc := request(m, cartOf(10, "2", 0.1), "DE", "")

	require.NoError(t, m.Postage(context.Background(), rc))

	_, ok := rc.DeliveryDate()
	assert.False(t, ok)
}

func TestModule_PostageWithoutMatchFails(t *testing.T) {
	m := newModule(t)
	rc := request(m, cartOf(1, "20", 1), "JP", "")

	err := m.Postage(context.Background(), rc)
	assert.ErrorIs(t, err, errNoRule)
}

func TestModule_AddressZipInCondition(t *testing.T) {
	cfg := testConfig()
	cfg.Rules = []config.RateRuleConfig{
		{Name: "paris", Condition: "zip.startsWith('75')", Amount: "3.50"},
	}

	m, err := New(cfg)
	require.NoError(t, err)

	addr := &domain.Address{ZipCode: "75004", Country: &domain.Country{ISOCode: "FR"}}
	rc := postage.New(m, cartOf(1, "20", 1), postage.WithAddress(addr))

	valid, err := m.IsValidDelivery(context.Background(), rc)
	require.NoError(t, err)
	assert.True(t, valid)

	addr.ZipCode = "69001"
	valid, err = m.IsValidDelivery(context.Background(), rc)
	require.NoError(t, err)
	assert.False(t, valid)
}
