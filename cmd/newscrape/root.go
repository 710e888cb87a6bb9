package main

import (
	"fmt"
	"strings"

	"github.com/pevans/newscrape/config"
	"github.com/pevans/newscrape/logger"
	"github.com/pevans/newscrape/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Environment keys, read as NEWSCRAPE_<KEY>.
const (
	envPrefix   = "NEWSCRAPE"
	keyLogLevel = "log_level"
	keyDBDSN    = "db_dsn"
)

// app carries what every subcommand shares.
type app struct {
	env *viper.Viper
	log logger.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{env: newEnv()}

	root := &cobra.Command{
		Use:          "newscrape",
		Short:        "Extract, transform and load news articles",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(logger.Config{Level: a.env.GetString(keyLogLevel)})
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(
		a.extractCommand(),
		a.transformCommand(),
		a.loadCommand(),
		a.runCommand(),
	)
	return root
}

// newEnv binds NEWSCRAPE_* environment variables.
func newEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyDBDSN, "")
	return v
}

// loadConfig reads the pipeline file and applies environment overrides.
func (a *app) loadConfig(path string) (*config.FileConfig, error) {
	cfg, err := config.LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	if dsn := a.env.GetString(keyDBDSN); dsn != "" {
		cfg.Storage.DSN = dsn
	}
	return cfg, nil
}

// standaloneDriver builds a driver for the stages that need no config file.
func (a *app) standaloneDriver() *pipeline.Driver {
	cfg := &config.FileConfig{}
	cfg.SetDefaults()
	return pipeline.New(cfg, a.log)
}

// dsn returns the storage location for the load stage.
func (a *app) dsn() string {
	if dsn := a.env.GetString(keyDBDSN); dsn != "" {
		return dsn
	}
	return config.DefaultDSN
}
