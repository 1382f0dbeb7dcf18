package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"storeadmin/backend/internal/config"
)

var envFile string

// NewRootCmd creates the root command for the storeadmin server.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "storeadmin",
		Short:        "storeadmin API server",
		Long:         `storeadmin serves the account, session and address book API for the store admin dashboard.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// loadConfig reads the env file and the environment, applies any flags the
// user set, then validates.
func loadConfig(flags *pflag.FlagSet) (config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return config.Config{}, err
	}

	cfg := config.FromEnv()
	if err := applyFlags(flags, &cfg); err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	overrides := map[string]*string{
		"port":        &cfg.HTTPPort,
		"storage":     &cfg.Storage,
		"token-store": &cfg.TokenStore,
		"log-level":   &cfg.LogLevel,
		"log-format":  &cfg.LogFormat,
	}
	for name, dst := range overrides {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = value
	}
	return nil
}
