// Package delivery assembles the delivery modules enabled in the
// configuration.
package delivery

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen/postage-service/internal/adapters/clients"
	"github.com/jsamuelsen/postage-service/internal/adapters/clients/acl"
	"github.com/jsamuelsen/postage-service/internal/adapters/delivery/carrier"
	"github.com/jsamuelsen/postage-service/internal/adapters/delivery/flatrate"
	"github.com/jsamuelsen/postage-service/internal/adapters/delivery/pickup"
	"github.com/jsamuelsen/postage-service/internal/platform/config"
	"github.com/jsamuelsen/postage-service/internal/ports"
)

// HeaderAPIKey carries the carrier API key.
const HeaderAPIKey = "X-Api-Key"

const carrierServiceName = "carrier-rates"

// Modules holds the built modules and the health checkers of their
// remote dependencies.
type Modules struct {
	Modules  []ports.DeliveryModule
	Checkers []ports.HealthChecker
}

// Register adds every module to registry.
func (m *Modules) Register(registry ports.ModuleRegistry) error {
	for _, module := range m.Modules {
		if err := registry.Register(module); err != nil {
			return err
		}
	}

	return nil
}

// Build creates the modules enabled in cfg.
func Build(cfg *config.Config, logger *slog.Logger) (*Modules, error) {
	if logger == nil {
		logger = slog.Default()
	}

	out := &Modules{}

	if cfg.Delivery.FlatRate.Enabled {
		m, err := flatrate.New(cfg.Delivery.FlatRate)
		if err != nil {
			return nil, err
		}

		out.Modules = append(out.Modules, m)
	}

	if cfg.Delivery.Pickup.Enabled {
		m, err := pickup.New(cfg.Delivery.Pickup)
		if err != nil {
			return nil, err
		}

		out.Modules = append(out.Modules, m)
	}

	if cfg.Delivery.Carrier.Enabled {
		rates, err := newRateClient(cfg, logger)
		if err != nil {
			return nil, err
		}

		m, err := carrier.New(cfg.Delivery.Carrier, rates)
		if err != nil {
			return nil, err
		}

		out.Modules = append(out.Modules, m)
		out.Checkers = append(out.Checkers, rates)
	}

	for _, m := range out.Modules {
		logger.Info("delivery module enabled", slog.String("module", m.Code()), slog.String("title", m.Title()))
	}

	return out, nil
}

func newRateClient(cfg *config.Config, logger *slog.Logger) (*acl.RateClient, error) {
	apiKey := cfg.Delivery.Carrier.APIKey

	client, err := clients.New(clients.Config{
		BaseURL:     cfg.Delivery.Carrier.BaseURL,
		ServiceName: carrierServiceName,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		AuthFunc: func(req *http.Request) {
			if apiKey != "" {
				req.Header.Set(HeaderAPIKey, apiKey)
			}
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating carrier client: %w", err)
	}

	return acl.NewRateClient(client, logger), nil
}
