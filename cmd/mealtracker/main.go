package main

import (
	"os"

	"mealtracker/internal/config"
	"mealtracker/internal/logging"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	envName    string
	cfg        *config.Config

	rootCmd = &cobra.Command{
		Use:          "mealtracker",
		Short:        "Meal and workout tracker with a live dashboard",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(configPath, envName)
			if err != nil {
				return err
			}
			cfg = c
			logging.Setup(logging.Params{
				LogFileName:   cfg.LogsPath,
				LogToStdout:   cfg.LogToStdout,
				LogLevel:      cfg.LogLevel,
				LogFormatJSON: cfg.LogFormatJSON,
			})
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path for the TOML config file")
	rootCmd.PersistentFlags().StringVar(&envName, "env", "development", "environment [dev | development | prod | production]")

	rootCmd.AddCommand(serveCmd, exportCmd, importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
