package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mroshb/hitched/internal/reports"
	"github.com/mroshb/hitched/pkg/logger"
)

var importProfilesCmd = &cobra.Command{
	Use:   "import-profiles FILE",
	Short: "Load profiles from the Profiles sheet of an Excel workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := requirePostgres(cfg); err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()

		rows, err := reports.ReadProfiles(f)
		if err != nil {
			return err
		}

		a, err := newApplication(cfg)
		if err != nil {
			return err
		}
		defer a.close()

		svc := a.profileService(nil)
		imported := 0
		for _, row := range rows {
			if _, err := svc.Save(row.UserID, row.Fields); err != nil {
				logger.Error("Failed to import profile", "user_id", row.UserID, "error", err)
				continue
			}
			imported++
		}

		fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d profiles\n", imported, len(rows))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importProfilesCmd)
}
