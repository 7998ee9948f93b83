// Package pickup is a delivery module letting customers collect their
// order at the store. Postage is always free.
package pickup

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/jsamuelsen/postage-service/internal/app/postage"
	"github.com/jsamuelsen/postage-service/internal/domain"
	"github.com/jsamuelsen/postage-service/internal/platform/config"
)

// Additional data keys set by the module.
const (
	DataStoreName    = "store_name"
	DataStoreAddress = "store_address"
)

// Module is the store pickup delivery module.
type Module struct {
	code         string
	title        string
	countries    []string
	storeName    string
	storeAddress string
	preparation  time.Duration
	now          func() time.Time
}

// Option configures a Module.
type Option func(*Module)

// WithClock replaces time.Now for ready-for-pickup estimates.
func WithClock(now func() time.Time) Option {
	return func(m *Module) { m.now = now }
}

// New creates the pickup module from cfg.
func New(cfg config.PickupConfig, opts ...Option) (*Module, error) {
	if cfg.Code == "" {
		return nil, errors.New("pickup: code is required")
	}

	m := &Module{
		code:         cfg.Code,
		title:        cfg.Title,
		storeName:    cfg.StoreName,
		storeAddress: cfg.StoreAddress,
		preparation:  cfg.PreparationTime,
		now:          time.Now,
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

// IsValidDelivery accepts any destination in the served countries.
func (m *Module) IsValidDelivery(_ context.Context, rc *postage.RequestContext) (bool, error) {
	if len(m.countries) == 0 {
		return true, nil
	}

	country := strings.ToUpper(rc.Country().CountryCode())

	return slices.Contains(m.countries, country), nil
}

// Postage sets a free postage ready after the preparation time.
func (m *Module) Postage(_ context.Context, rc *postage.RequestContext) error {
	rc.SetPostageAmount(0).
		SetDeliveryDate(m.now().Add(m.preparation))

	if err := rc.SetDeliveryMode(domain.DeliveryModePickup); err != nil {
		return err
	}

	if m.storeName != "" {
		rc.AddAdditionalData(DataStoreName, postage.String(m.storeName))
	}

	if m.storeAddress != "" {
		rc.AddAdditionalData(DataStoreAddress, postage.String(m.storeAddress))
	}

	return nil
}
