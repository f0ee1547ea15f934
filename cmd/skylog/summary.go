package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"skylog/internal/state"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarise every aircraft seen across the daily files",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := state.Build(cfg.Paths.DailyDir)
		if err != nil {
			return err
		}
		if err := t.Save(cfg.Paths.SummaryFile); err != nil {
			return err
		}
		fmt.Printf("%d aircraft summarised to %s (%d rows skipped)\n", t.Len(), cfg.Paths.SummaryFile, t.Skipped())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
