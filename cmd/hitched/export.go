package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mroshb/hitched/internal/reports"
	"github.com/mroshb/hitched/pkg/logger"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every match and its compatibility history to an Excel workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := requirePostgres(cfg); err != nil {
			return err
		}

		a, err := newApplication(cfg)
		if err != nil {
			return err
		}
		defer a.close()

		matches, err := a.matches.ListAll()
		if err != nil {
			return fmt.Errorf("list matches: %w", err)
		}

		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer f.Close()

		if err := reports.ExportMatches(matches, f); err != nil {
			return err
		}
		logger.Info("Exported matches", "file", exportOut, "count", len(matches))
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d matches to %s\n", len(matches), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "matches.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}
