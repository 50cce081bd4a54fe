package main

import (
	"github.com/spf13/cobra"

	"github.com/mroshb/hitched/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := requirePostgres(cfg); err != nil {
			return err
		}

		db, err := database.Connect(cfg)
		if err != nil {
			return err
		}
		defer database.Close(db)

		return database.AutoMigrate(db)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
