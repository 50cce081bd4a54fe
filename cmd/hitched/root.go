package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mroshb/hitched/internal/config"
	"github.com/mroshb/hitched/pkg/logger"
)

const app = "hitched"

var (
	envFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "hitched introduces people one at a time and walks them through a first date",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if err := godotenv.Load(envFile); err != nil {
				log.Println("No .env file found, using system environment")
			}
			logger.Init()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			logger.Sync()
		},
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
}

// loadConfig reads and validates the environment for commands that touch storage.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateProductionSecurity(); err != nil {
		return nil, err
	}
	return cfg, nil
}
