package cli

import (
	"github.com/spf13/cobra"

	"stationers/internal/config"
)

// RootOptions общие флаги всех команд
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "stationers",
		Short: "Stationery storefront and its reference backend",
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format (text|json)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewBackendCommand(opts))

	return cmd
}

// loadConfig reads defaults, file and environment, then applies the flags that
// were set explicitly, then validates.
func loadConfig(opts *RootOptions, cmd *cobra.Command, apply func(c *config.Config)) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = opts.LogFormat
	}
	if apply != nil {
		apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
