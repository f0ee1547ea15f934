package main

import (
	"fmt"
	"os"

	"github.com/google/renameio/v2"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"skylog/internal/route"
	"skylog/internal/storage"
)

var routesOutput string

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Inspect the route cache",
}

var routesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the route cache as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := loadRoutes(cmd)
		if err != nil {
			return err
		}

		if routesOutput == "" {
			return route.ExportCSV(os.Stdout, entries)
		}
		f, err := renameio.NewPendingFile(routesOutput)
		if err != nil {
			return eris.Wrapf(err, "create %s", routesOutput)
		}
		defer f.Cleanup() //nolint:errcheck
		if err := route.ExportCSV(f, entries); err != nil {
			return err
		}
		return f.CloseAtomicallyReplace()
	},
}

var routesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show route cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := loadRoutes(cmd)
		if err != nil {
			return err
		}
		s := route.Summarise(entries)
		fmt.Println("Route Cache Statistics")
		fmt.Println("──────────────────────")
		fmt.Printf("Driver:              %s\n", cfg.Routes.CacheDriver)
		fmt.Printf("Total callsigns:     %d\n", s.Total)
		fmt.Printf("Complete routes:     %d\n", s.Complete)
		fmt.Printf("Partial routes:      %d\n", s.Partial)
		return nil
	},
}

func loadRoutes(cmd *cobra.Command) (map[string]route.Route, error) {
	store, err := storage.OpenRouteStore(cmd.Context(), cfg.Routes.CacheDriver, storageConfig(cfg))
	if err != nil {
		return nil, err
	}
	defer store.Close() //nolint:errcheck
	return store.Load(cmd.Context())
}

func init() {
	routesExportCmd.Flags().StringVarP(&routesOutput, "output", "o", "", "output CSV file (default: stdout)")
	routesCmd.AddCommand(routesExportCmd, routesStatsCmd)
	rootCmd.AddCommand(routesCmd)
}
