package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jsamuelsen/postage-service/internal/platform/config"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration of a profile",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Load and validate the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := opts.loadConfig(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), passStyle.Render("✓")+" profile "+opts.profile+" is valid")

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delivery",
		Short: "Print the effective delivery module settings as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)

			if err := enc.Encode(newDeliveryView(&cfg.Delivery)); err != nil {
				return fmt.Errorf("encoding delivery config: %w", err)
			}

			return enc.Close()
		},
	})

	return cmd
}

// deliveryView is the printed form of config.DeliveryConfig. Secrets are
// left out and durations are human readable.
type deliveryView struct {
	FlatRate *flatRateView `yaml:"flat_rate,omitempty"`
	Pickup   *pickupView   `yaml:"pickup,omitempty"`
	Carrier  *carrierView  `yaml:"carrier,omitempty"`
}

type flatRateView struct {
	Code         string     `yaml:"code"`
	Title        string     `yaml:"title,omitempty"`
	FreeAbove    string     `yaml:"free_above,omitempty"`
	TaxRate      string     `yaml:"tax_rate,omitempty"`
	TaxRuleTitle string     `yaml:"tax_rule_title,omitempty"`
	Rules        []ruleView `yaml:"rules"`
}

type ruleView struct {
	Name         string   `yaml:"name"`
	Countries    []string `yaml:"countries,omitempty,flow"`
	States       []string `yaml:"states,omitempty,flow"`
	MaxWeight    float64  `yaml:"max_weight,omitempty"`
	Condition    string   `yaml:"condition,omitempty"`
	Amount       string   `yaml:"amount"`
	DeliveryDays int      `yaml:"delivery_days,omitempty"`
}

type pickupView struct {
	Code            string   `yaml:"code"`
	Title           string   `yaml:"title,omitempty"`
	Countries       []string `yaml:"countries,omitempty,flow"`
	StoreName       string   `yaml:"store_name,omitempty"`
	PreparationTime string   `yaml:"preparation_time"`
}

type carrierView struct {
	Code      string   `yaml:"code"`
	Title     string   `yaml:"title,omitempty"`
	BaseURL   string   `yaml:"base_url"`
	Service   string   `yaml:"service,omitempty"`
	Countries []string `yaml:"countries,omitempty,flow"`
	MaxWeight float64  `yaml:"max_weight,omitempty"`
	APIKeySet bool     `yaml:"api_key_set"`
}

func newDeliveryView(cfg *config.DeliveryConfig) deliveryView {
	var v deliveryView

	if fr := cfg.FlatRate; fr.Enabled {
		v.FlatRate = &flatRateView{
			Code:         fr.Code,
			Title:        fr.Title,
			FreeAbove:    fr.FreeAbove,
			TaxRate:      fr.TaxRate,
			TaxRuleTitle: fr.TaxRuleTitle,
		}

		for _, r := range fr.Rules {
			v.FlatRate.Rules = append(v.FlatRate.Rules, ruleView{
				Name:         r.Name,
				Countries:    r.Countries,
				States:       r.States,
				MaxWeight:    r.MaxWeight,
				Condition:    r.Condition,
				Amount:       r.Amount,
				DeliveryDays: r.DeliveryDays,
			})
		}
	}

	if p := cfg.Pickup; p.Enabled {
		v.Pickup = &pickupView{
			Code:            p.Code,
			Title:           p.Title,
			Countries:       p.Countries,
			StoreName:       p.StoreName,
			PreparationTime: p.PreparationTime.String(),
		}
	}

	if c := cfg.Carrier; c.Enabled {
		v.Carrier = &carrierView{
			Code:      c.Code,
			Title:     c.Title,
			BaseURL:   c.BaseURL,
			Service:   c.Service,
			Countries: c.Countries,
			MaxWeight: c.MaxWeight,
			APIKeySet: c.APIKey != "",
		}
	}

	return v
}
