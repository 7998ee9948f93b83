// Package carrier is a delivery module pricing parcels with a remote
// carrier rate API.
package carrier

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jsamuelsen/postage-service/internal/adapters/clients/acl"
	"github.com/jsamuelsen/postage-service/internal/app/postage"
	"github.com/jsamuelsen/postage-service/internal/domain"
	"github.com/jsamuelsen/postage-service/internal/platform/config"
)

// Additional data keys set by the module.
const (
	DataCarrier     = "carrier"
	DataService     = "service"
	DataTransitDays = "transit_days"
)

// RateSource prices a parcel. *acl.RateClient implements it.
type RateSource interface {
	Rate(ctx context.Context, req acl.RateRequest) (*acl.Rate, error)
}

// Module is the carrier delivery module.
type Module struct {
	code      string
	title     string
	service   string
	countries []string
	maxWeight float64
	rates     RateSource
	now       func() time.Time
}

// Option configures a Module.
type Option func(*Module)

// WithClock replaces time.Now for delivery date estimates.
func WithClock(now func() time.Time) Option {
	return func(m *Module) { m.now = now }
}

// New creates the carrier module on top of rates.
func New(cfg config.CarrierConfig, rates RateSource, opts ...Option) (*Module, error) {
	if cfg.Code == "" {
		return nil, errors.New("carrier: code is required")
	}

	if rates == nil {
		return nil, errors.New("carrier: rate source is required")
	}

	m := &Module{
		code:      cfg.Code,
		title:     cfg.Title,
		service:   cfg.Service,
		maxWeight: cfg.MaxWeight,
		rates:     rates,
		now:       time.Now,
	}

	for _, c := range cfg.Countries {
		m.countries = append(m.countries, strings.ToUpper(strings.TrimSpace(c)))
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

// IsValidDelivery only runs the local checks. Whether the carrier serves
// the exact destination is known once the rate API answered, see Postage.
func (m *Module) IsValidDelivery(_ context.Context, rc *postage.RequestContext) (bool, error) {
	country := strings.ToUpper(rc.Country().CountryCode())
	if country == "" {
		return false, nil
	}

	if len(m.countries) > 0 && !slices.Contains(m.countries, country) {
		return false, nil
	}

	if m.maxWeight > 0 && rc.Cart().Weight() > m.maxWeight {
		return false, nil
	}

	return true, nil
}

// Postage asks the carrier for a rate. A destination the carrier does not
// serve marks the module as not valid instead of failing.
func (m *Module) Postage(ctx context.Context, rc *postage.RequestContext) error {
	rate, err := m.rates.Rate(ctx, m.rateRequest(rc))
	if err != nil {
		return fmt.Errorf("requesting carrier rate: %w", err)
	}

	if !rate.Serviceable {
		rc.SetValidModule(false)
		return nil
	}

	rc.SetPostage(domain.NewPostage(rate.Amount, rate.Tax, rate.TaxLabel))

	if err := rc.SetDeliveryMode(domain.DeliveryModeDelivery); err != nil {
		return err
	}

	if rate.TransitDays > 0 {
		rc.SetDeliveryDate(m.now().AddDate(0, 0, rate.TransitDays))
		rc.AddAdditionalData(DataTransitDays, postage.Int(int64(rate.TransitDays)))
	}

	if rate.Carrier != "" {
		rc.AddAdditionalData(DataCarrier, postage.String(rate.Carrier))
	}

	if rate.Service != "" {
		rc.AddAdditionalData(DataService, postage.String(rate.Service))
	}

	return nil
}

func (m *Module) rateRequest(rc *postage.RequestContext) acl.RateRequest {
	cart := rc.Cart()

	req := acl.RateRequest{
		CountryCode: strings.ToUpper(rc.Country().CountryCode()),
		StateCode:   rc.State().StateCode(),
		WeightKg:    cart.Weight(),
		Items:       cart.ItemCount(),
		Value:       cart.Total(),
		Service:     m.service,
	}

	if cart != nil {
		req.Currency = cart.Currency
	}

	if addr := rc.Address(); addr != nil {
		req.ZipCode = addr.ZipCode
	}

	return req
}
