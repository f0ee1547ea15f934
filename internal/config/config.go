// Package config loads skylog settings from skylog.yaml and SKYLOG_*
// environment variables and installs the global logger.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Paths   PathsConfig   `mapstructure:"paths"`
	Station StationConfig `mapstructure:"station"`
	Digest  DigestConfig  `mapstructure:"digest"`
	Routes  RoutesConfig  `mapstructure:"routes"`
	Storage StorageConfig `mapstructure:"storage"`
	Capture CaptureConfig `mapstructure:"capture"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
}

// PathsConfig locates every input and output file. Relative paths are
// resolved against BaseDir.
type PathsConfig struct {
	BaseDir       string `mapstructure:"base_dir"`
	HourlyDir     string `mapstructure:"hourly_dir"`
	DailyDir      string `mapstructure:"daily_dir"`
	ArchiveDir    string `mapstructure:"archive_dir"`
	PanelFile     string `mapstructure:"panel_file"`
	CountryTable  string `mapstructure:"country_table"`
	OperatorTable string `mapstructure:"operator_table"`
	GeoFile       string `mapstructure:"geo_file"`
	RouteCache    string `mapstructure:"route_cache"`
	SummaryFile   string `mapstructure:"summary_file"`
	LiveFeed      string `mapstructure:"live_feed"`
}

// StationConfig is the receiver position distances are measured from.
type StationConfig struct {
	Lat float64 `mapstructure:"lat"`
	Lon float64 `mapstructure:"lon"`
}

// DigestConfig sizes the ranked lists and the closed-period policy.
type DigestConfig struct {
	TopCountries    int `mapstructure:"top_countries"`
	TopOperators    int `mapstructure:"top_operators"`
	TopOrigins      int `mapstructure:"top_origins"`
	TopDestinations int `mapstructure:"top_destinations"`
	OpenPeriods     int `mapstructure:"open_periods"`
}

// RoutesConfig configures the route services and where the cache lives.
type RoutesConfig struct {
	PrimaryURL    string        `mapstructure:"primary_url"`
	FallbackURL   string        `mapstructure:"fallback_url"`
	AirportURL    string        `mapstructure:"airport_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	CacheDriver   string        `mapstructure:"cache_driver"` // json, sqlite or postgres
}

// StorageConfig configures the optional databases.
type StorageConfig struct {
	SQLitePath string           `mapstructure:"sqlite_path"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	ClickHouse ClickHouseConfig `mapstructure:"clickhouse"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// CaptureConfig configures the dump1090 collector.
type CaptureConfig struct {
	FeedURL     string        `mapstructure:"feed_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	NATSURL     string        `mapstructure:"nats_url"`
	NATSSubject string        `mapstructure:"nats_subject"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("skylog")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".skylog"))
	}

	v.SetEnvPrefix("SKYLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	cfg.Paths.resolve()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("paths.base_dir", ".")
	v.SetDefault("paths.hourly_dir", "dados/horarios")
	v.SetDefault("paths.daily_dir", "dados/diarios")
	v.SetDefault("paths.archive_dir", "docs/arquivo")
	v.SetDefault("paths.panel_file", "docs/hora_corrente.json")
	v.SetDefault("paths.country_table", "dados/icao_ranges.json")
	v.SetDefault("paths.operator_table", "dados/companhias.json")
	v.SetDefault("paths.geo_file", "dados/geo/ContinenteConcelhos.geojson")
	v.SetDefault("paths.route_cache", "dados/rotas.json")
	v.SetDefault("paths.summary_file", "resumos/avioes.json")
	v.SetDefault("paths.live_feed", "/run/dump1090-fa/aircraft.json")

	v.SetDefault("station.lat", 39.74759200010467)
	v.SetDefault("station.lon", -8.936510104648143)

	v.SetDefault("digest.top_countries", 10)
	v.SetDefault("digest.top_operators", 10)
	v.SetDefault("digest.top_origins", 20)
	v.SetDefault("digest.top_destinations", 20)
	v.SetDefault("digest.open_periods", 1)

	v.SetDefault("routes.primary_url", "https://adsb.im/api/0/routeset")
	v.SetDefault("routes.fallback_url", "https://opensky-network.org/api/routes")
	v.SetDefault("routes.airport_url", "https://opensky-network.org/api/airports")
	v.SetDefault("routes.timeout", 10*time.Second)
	v.SetDefault("routes.rate_per_second", 2.0)
	v.SetDefault("routes.cache_driver", "json")

	v.SetDefault("storage.sqlite_path", "dados/skylog.db")
	v.SetDefault("storage.postgres.host", "localhost")
	v.SetDefault("storage.postgres.port", 5432)
	v.SetDefault("storage.postgres.database", "skylog")
	v.SetDefault("storage.postgres.user", "skylog")
	v.SetDefault("storage.postgres.password", "skylog")
	v.SetDefault("storage.clickhouse.enabled", false)
	v.SetDefault("storage.clickhouse.host", "localhost")
	v.SetDefault("storage.clickhouse.port", 9000)
	v.SetDefault("storage.clickhouse.database", "skylog")
	v.SetDefault("storage.clickhouse.user", "default")
	v.SetDefault("storage.clickhouse.password", "")

	v.SetDefault("capture.feed_url", "http://127.0.0.1:8080/data/aircraft.json")
	v.SetDefault("capture.timeout", 5*time.Second)
	v.SetDefault("capture.user_agent", "SkyLog/1.0")
	v.SetDefault("capture.nats_url", "")
	v.SetDefault("capture.nats_subject", "skylog.aircraft")

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// resolve makes every relative path absolute against BaseDir.
func (p *PathsConfig) resolve() {
	base := p.BaseDir
	if base == "" {
		base = "."
	}
	for _, s := range []*string{
		&p.HourlyDir, &p.DailyDir, &p.ArchiveDir, &p.PanelFile, &p.CountryTable,
		&p.OperatorTable, &p.GeoFile, &p.RouteCache, &p.SummaryFile, &p.LiveFeed,
	} {
		if *s != "" && !filepath.IsAbs(*s) {
			*s = filepath.Join(base, *s)
		}
	}
}

// Resolve resolves a path from the command line the same way config paths
// are resolved.
func (p PathsConfig) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.BaseDir, path)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
