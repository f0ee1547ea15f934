package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"skylog/internal/operator"
)

var operatorsCmd = &cobra.Command{
	Use:   "operators",
	Short: "Maintain the operator table",
}

var operatorsBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Add every callsign prefix seen in the daily files to the operator table",
	RunE: func(cmd *cobra.Command, args []string) error {
		existing, err := operator.Load(cfg.Paths.OperatorTable)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		ops, err := operator.Build(cfg.Paths.DailyDir, existing)
		if err != nil {
			return err
		}
		if err := ops.Save(cfg.Paths.OperatorTable); err != nil {
			return err
		}

		fmt.Printf("%d operators (%d new) written to %s\n", len(ops), len(ops)-len(existing), cfg.Paths.OperatorTable)
		return nil
	},
}

func init() {
	operatorsCmd.AddCommand(operatorsBuildCmd)
	rootCmd.AddCommand(operatorsCmd)
}
