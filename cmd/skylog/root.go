package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"skylog/internal/config"
	"skylog/internal/storage"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "skylog",
	Short: "ADS-B receiver logbook",
	Long:  "Captures dump1090 snapshots, enriches the flights seen by the receiver and publishes daily and hourly digests.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

// storageConfig maps the loaded configuration onto the storage backends.
func storageConfig(c *config.Config) storage.Config {
	pg := c.Storage.Postgres
	ch := c.Storage.ClickHouse
	return storage.Config{
		RouteCacheFile: c.Paths.RouteCache,
		SQLitePath:     c.Paths.Resolve(c.Storage.SQLitePath),
		Postgres: storage.PostgresConfig{
			Host:     pg.Host,
			Port:     pg.Port,
			Database: pg.Database,
			User:     pg.User,
			Password: pg.Password,
		},
		ClickHouse: storage.ClickHouseConfig{
			Host:     ch.Host,
			Port:     ch.Port,
			Database: ch.Database,
			User:     ch.User,
			Password: ch.Password,
		},
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		zap.L().Error("skylog failed", zap.Error(err))
		os.Exit(1)
	}
}
