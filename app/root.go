// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/PagodaAdmin/PagodaAdmin/internal/config"
	"github.com/PagodaAdmin/PagodaAdmin/internal/logger"
)

var (
	configPath string // directory holding main.toml
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pagoda-admin",
	Short: "PagodaAdmin manages the typed settings of the pagoda booking service",
	Long: `PagodaAdmin stores typed settings (string, integer, boolean, json) in a
database and serves them through a JSON API and this command line.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error

		if cfg, err = config.ReadConfig(configPath); err != nil {
			return err //nolint:wrapcheck
		}

		return logger.Init(cfg.Log) //nolint:wrapcheck
	},
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory containing "+config.FileName)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute() //nolint:wrapcheck
}
