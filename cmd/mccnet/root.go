package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mccnet/internal/config"
)

// options carries state shared by every subcommand once the root has run
type options struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "mccnet",
		Short:        "Compose and serve network scenario topologies",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: search $"+config.EnvConfigPath+", ./"+config.ConfigFileName+", XDG dirs)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newServeCmd(opts),
		newGenerateCmd(opts),
		newEncodeCmd(opts),
		newDecodeCmd(opts),
	)

	return cmd
}

func (o *options) load() error {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if o.configPath != "" {
		cfg, path, err = config.LoadFromPath(o.configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return err
	}

	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	o.cfg = cfg
	o.logger = logger

	if path != "" {
		logger.Debug("config loaded", zap.String("path", path))
	}
	return nil
}
