package digest

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"skylog/internal/country"
	"skylog/internal/enrichment"
	"skylog/internal/geo"
	"skylog/internal/operator"
	"skylog/internal/route"
	"skylog/internal/scan"
)

// Kind selects which document a run produces.
type Kind string

const (
	// Daily writes the dated archive and the latest pointer.
	Daily Kind = "daily"
	// Hourly writes the hourly panel.
	Hourly Kind = "hourly"
)

// ErrNoDate is returned when a daily run cannot label its output.
var ErrNoDate = eris.New("digest: cannot determine digest date")

// Archive is the record handed to an Archiver after a successful run.
type Archive struct {
	RunID   string
	Kind    Kind
	Date    string
	Period  string
	Flights []enrichment.Flight
}

// Archiver keeps the flights of each run somewhere else, such as an
// analytics store. Archive failures never fail the run.
type Archiver interface {
	Archive(ctx context.Context, a Archive) error
}

// Config describes one pipeline.
type Config struct {
	Kind          Kind
	PeriodDir     string
	OpenPeriods   int
	CountryTable  string
	OperatorTable string
	GeoFile       string
	Station       geo.Point
	Limits        Limits
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRouteStore sets where the route cache lives. Without one routes are
// cached for the run only.
func WithRouteStore(s route.Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithRouteSources sets the primary and fallback route sources. Either may
// be nil.
func WithRouteSources(primary route.Locator, fallback route.Lookuper) Option {
	return func(p *Pipeline) {
		p.primary = primary
		p.fallback = fallback
	}
}

// WithArchiver hands each run's flights to a.
func WithArchiver(a Archiver) Option {
	return func(p *Pipeline) { p.archiver = a }
}

// Pipeline runs one batch: pick the closed period, enrich its flights,
// aggregate, write, then persist the route cache.
type Pipeline struct {
	cfg      Config
	writer   *Writer
	store    route.Store
	primary  route.Locator
	fallback route.Lookuper
	archiver Archiver
}

// NewPipeline returns a pipeline writing through w.
func NewPipeline(cfg Config, w *Writer, opts ...Option) *Pipeline {
	if cfg.Kind == "" {
		cfg.Kind = Daily
	}
	cfg.Limits = cfg.Limits.orDefault()
	p := &Pipeline{cfg: cfg, writer: w}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result summarises a finished run.
type Result struct {
	RunID   string
	Kind    Kind
	Period  string
	Date    string
	Path    string
	Flights int
	Bytes   int
}

// Run executes the pipeline once.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: uuid.New().String(), Kind: p.cfg.Kind}
	log := zap.L().With(zap.String("run_id", res.RunID), zap.String("kind", string(p.cfg.Kind)))

	periods, err := scan.ListPeriods(p.cfg.PeriodDir)
	if err != nil {
		return res, err
	}
	period, err := scan.SelectClosed(periods, p.cfg.OpenPeriods)
	if err != nil {
		return res, err
	}
	res.Period = period.Name
	log.Info("digest: processing period", zap.String("period", period.Name), zap.Int("files", len(periods)))

	countries, err := country.Load(p.cfg.CountryTable)
	if err != nil {
		return res, err
	}
	ops, err := operator.Load(p.cfg.OperatorTable)
	if err != nil {
		return res, err
	}
	areas, err := geo.LoadGeoJSON(p.cfg.GeoFile)
	if err != nil {
		log.Warn("digest: geo areas unavailable", zap.Error(err))
		areas = geo.NewIndex(nil)
	}
	cache := route.LoadCache(ctx, p.store)

	rows, err := scan.ReadFile(period.Path)
	if err != nil {
		return res, err
	}
	best := scan.Select(rows)

	enricher := &enrichment.Enricher{
		Countries: countries,
		Areas:     areas,
		Operators: ops,
		Routes:    route.NewResolver(cache, p.primary, p.fallback),
		Station:   p.cfg.Station,
	}
	flights := make([]enrichment.Flight, 0, len(best))
	for _, b := range best {
		if f, ok := enricher.Enrich(ctx, b); ok {
			flights = append(flights, f)
		}
	}
	if err := ctx.Err(); err != nil {
		return res, eris.Wrap(err, "digest: run cancelled")
	}

	d := Aggregate(flights, ops, p.cfg.Limits)
	res.Flights = len(d.Flights)
	log.Info("digest: aggregated",
		zap.Int("rows", len(rows)),
		zap.Int("aircraft", len(best)),
		zap.Int("flights", res.Flights),
		zap.Int("countries", len(d.TopCountries)),
	)

	switch p.cfg.Kind {
	case Hourly:
		res.Path, res.Bytes, err = p.writer.WritePanel(d.Panel())
	default:
		date, ok := period.Date()
		if !ok {
			date, ok = d.Date()
		}
		if !ok {
			return res, eris.Wrapf(ErrNoDate, "period %s", period.Name)
		}
		res.Date = date
		res.Path, res.Bytes, err = p.writer.WriteDaily(d, date)
	}
	if err != nil {
		return res, err
	}
	log.Info("digest: written", zap.String("path", res.Path), zap.String("size", humanize.Bytes(uint64(res.Bytes))))

	if err := cache.Flush(ctx); err != nil {
		log.Warn("digest: route cache not saved", zap.Error(err))
	}

	if p.archiver != nil {
		a := Archive{RunID: res.RunID, Kind: p.cfg.Kind, Date: res.Date, Period: period.Name, Flights: d.Flights}
		if err := p.archiver.Archive(ctx, a); err != nil {
			log.Warn("digest: archive failed", zap.Error(err))
		}
	}
	return res, nil
}
