// Package cli is the postagectl command line: it quotes carts from YAML
// files with the delivery modules of a configuration profile, without
// running the HTTP service.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/postage-service/internal/adapters/delivery"
	"github.com/jsamuelsen/postage-service/internal/app"
	"github.com/jsamuelsen/postage-service/internal/platform/config"
	"github.com/jsamuelsen/postage-service/internal/platform/i18n"
	"github.com/jsamuelsen/postage-service/internal/platform/logging"
	"github.com/jsamuelsen/postage-service/internal/ports"
)

var (
	version = "dev"
	commit  = "none"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configDir string
	profile   string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "postagectl",
		Short:         "Quote postage with the configured delivery modules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultProfile := os.Getenv("APP_ENVIRONMENT")
	if defaultProfile == "" {
		defaultProfile = "local"
	}

	cmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", config.DefaultConfigDir, "Directory holding base.yaml and the profile files")
	cmd.PersistentFlags().StringVarP(&opts.profile, "profile", "p", defaultProfile, "Configuration profile")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level written to stderr")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newModulesCmd(opts))
	cmd.AddCommand(newQuoteCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))

	return cmd
}

// Execute runs postagectl with os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "postagectl %s (%s)\n", version, commit)
		},
	}
}

// loadConfig loads and validates the profile.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(o.configDir, o.profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newService builds the delivery modules of the profile and the quoting
// service around them. Cache, archive and events stay disabled.
func (o *globalOptions) newService(cmd *cobra.Command) (*app.PostageService, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger := logging.NewWithWriter(&logging.Config{
		Level:   o.logLevel,
		Format:  "pretty",
		Service: "postagectl",
		Version: version,
	}, cmd.ErrOrStderr())

	modules, err := delivery.Build(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("building delivery modules: %w", err)
	}

	registry := ports.NewModuleRegistry()
	if err := modules.Register(registry); err != nil {
		return nil, nil, err
	}

	service := app.NewPostageService(app.PostageServiceConfig{
		Registry:      registry,
		Translator:    i18n.New(cfg.App.Locale),
		Logger:        logger.With(slog.String("profile", o.profile)),
		ModuleTimeout: cfg.Postage.ModuleTimeout,
		Concurrency:   cfg.Postage.Concurrency,
	})

	return service, cfg, nil
}
