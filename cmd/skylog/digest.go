package main

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"skylog/internal/config"
	"skylog/internal/digest"
	"skylog/internal/geo"
	"skylog/internal/route"
	"skylog/internal/storage"
)

var noRoutes bool

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Build digests from captured period files",
}

var digestDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Write the digest of the last closed day",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDigest(cmd.Context(), digest.Daily)
	},
}

var digestHourlyCmd = &cobra.Command{
	Use:   "hourly",
	Short: "Write the panel of the last closed hour",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDigest(cmd.Context(), digest.Hourly)
	},
}

func runDigest(ctx context.Context, kind digest.Kind) error {
	periodDir := cfg.Paths.DailyDir
	if kind == digest.Hourly {
		periodDir = cfg.Paths.HourlyDir
	}

	pcfg := digest.Config{
		Kind:          kind,
		PeriodDir:     periodDir,
		OpenPeriods:   cfg.Digest.OpenPeriods,
		CountryTable:  cfg.Paths.CountryTable,
		OperatorTable: cfg.Paths.OperatorTable,
		GeoFile:       cfg.Paths.GeoFile,
		Station:       geo.Point{Lat: cfg.Station.Lat, Lon: cfg.Station.Lon},
		Limits: digest.Limits{
			Countries:    cfg.Digest.TopCountries,
			Operators:    cfg.Digest.TopOperators,
			Origins:      cfg.Digest.TopOrigins,
			Destinations: cfg.Digest.TopDestinations,
		},
	}

	scfg := storageConfig(cfg)
	store, err := storage.OpenRouteStore(ctx, cfg.Routes.CacheDriver, scfg)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	opts := []digest.Option{digest.WithRouteStore(store)}
	if !noRoutes {
		primary, fallback := routeSources(cfg.Routes)
		opts = append(opts, digest.WithRouteSources(primary, fallback))
	}

	if cfg.Storage.ClickHouse.Enabled {
		ch, err := storage.OpenClickHouse(ctx, scfg.ClickHouse)
		if err != nil {
			zap.L().Warn("clickhouse unavailable, archive disabled", zap.Error(err))
		} else {
			defer ch.Close() //nolint:errcheck
			if err := ch.CreateSchema(ctx); err != nil {
				zap.L().Warn("clickhouse schema", zap.Error(err))
			}
			opts = append(opts, digest.WithArchiver(ch))
		}
	}

	w := &digest.Writer{ArchiveDir: cfg.Paths.ArchiveDir, PanelFile: cfg.Paths.PanelFile}
	res, err := digest.NewPipeline(pcfg, w, opts...).Run(ctx)
	if err != nil {
		return eris.Wrapf(err, "%s digest", kind)
	}

	fmt.Printf("%s digest of %s: %d flights written to %s\n", res.Kind, res.Period, res.Flights, res.Path)
	return nil
}

// routeSources builds the adsb.im primary and the OpenSky fallback. OpenSky
// also names the airports adsb.im reports as bare codes.
func routeSources(rc config.RoutesConfig) (*route.ADSBIm, *route.OpenSky) {
	opensky := route.NewOpenSky(route.OpenSkyConfig{
		RoutesURL:   rc.FallbackURL,
		AirportsURL: rc.AirportURL,
		Timeout:     rc.Timeout,
		RatePerSec:  rc.RatePerSecond,
	})
	adsbim := route.NewADSBIm(route.ADSBImConfig{
		URL:        rc.PrimaryURL,
		Timeout:    rc.Timeout,
		RatePerSec: rc.RatePerSecond,
	}, opensky)
	return adsbim, opensky
}

func init() {
	digestCmd.PersistentFlags().BoolVar(&noRoutes, "no-routes", false, "skip route lookups, use cached routes only")
	digestCmd.AddCommand(digestDailyCmd, digestHourlyCmd)
	rootCmd.AddCommand(digestCmd)
}
