package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"playbridge/internal/config"
	"playbridge/internal/dedup"
	"playbridge/internal/expand"
	"playbridge/internal/fileutil"
	"playbridge/internal/formats"
	"playbridge/internal/logging"
	"playbridge/internal/playlist"
	"playbridge/internal/services"
)

// Request describes one conversion.
type Request struct {
	SourcePath   string
	TemplatePath string
	DestPath     string
	// From and To force the source and target formats. Empty values are
	// detected from the file contents and destination name.
	From string
	To   string
	// Expand overrides pipeline.expand_remote when non-nil.
	Expand *bool
	// Dedup enables de-duplication in addition to pipeline.dedup.
	Dedup bool
}

// Report summarizes a finished conversion.
type Report struct {
	RunID             string
	SourceFormat      string
	TargetFormat      string
	Playlists         int
	RemotePlaylists   int
	Items             int
	Expanded          int
	DuplicatesRemoved int
	Enriched          int
	Warnings          int
	OutputPath        string
	OutputBytes       int
	Duration          time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithCollaborators replaces the resolvers built from configuration.
func WithCollaborators(c Collaborators) Option {
	return func(r *Runner) {
		r.collab = c
	}
}

// WithClock injects the clock used for timestamps written by adapters.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// Runner executes conversions for one configuration.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	collab Collaborators
	now    func() time.Time
	sleep  func(context.Context, time.Duration) error
}

// New constructs a Runner. Collaborators default to those selected by the
// configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "configuration required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	collab, err := CollaboratorsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:    cfg,
		logger: logger,
		collab: collab,
		now:    time.Now,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Runner) registry(logger *slog.Logger) *formats.Registry {
	return formats.NewRegistry(formats.Options{
		Logger:           logger,
		Resolver:         r.collab.Metadata,
		MaxDatabaseBytes: r.cfg.Archive.MaxDatabaseBytes,
		VideoCacheEntry:  r.cfg.Grayjay.VideoCacheEntry,
		Now:              r.now,
	})
}

// Convert runs the full pipeline for req. Nothing is written when an error is
// returned.
func (r *Runner) Convert(ctx context.Context, req Request) (*Report, error) {
	started := time.Now()
	report := &Report{RunID: uuid.NewString(), OutputPath: req.DestPath}
	ctx = services.WithRunID(ctx, report.RunID)

	logger, counter := logging.CountWarnings(r.logger)
	logger = logging.NewComponentLogger(logger, "pipeline")
	registry := r.registry(logger)

	if req.DestPath == "" {
		return nil, services.Wrap(services.ErrUsage, "pipeline", "convert", "destination path required", nil)
	}
	unlock, err := lockDestination(req.DestPath)
	if err != nil {
		return nil, err
	}
	defer unlock()

	source, sourceData, err := r.openSource(ctx, registry, req.SourcePath, req.From)
	if err != nil {
		return nil, err
	}
	report.SourceFormat = source.Name()

	var template []byte
	if req.TemplatePath != "" {
		if template, err = readInput(req.TemplatePath, "template"); err != nil {
			return nil, err
		}
	}
	targetName := req.To
	if targetName == "" {
		if targetName, err = formats.DetectTarget(req.DestPath, template); err != nil {
			return nil, err
		}
	}
	target, err := registry.Lookup(targetName)
	if err != nil {
		return nil, err
	}
	report.TargetFormat = target.Name()
	if target.NeedsTemplate() && template == nil {
		return nil, services.Wrap(services.ErrUsage, "pipeline", "convert",
			fmt.Sprintf("%s output needs a template argument", target.Name()), nil)
	}

	stepCtx := services.WithStep(ctx, "decode")
	c, err := source.Decode(stepCtx, sourceData)
	if err != nil {
		return nil, err
	}
	logging.WithContext(stepCtx, logger).Info("source decoded",
		logging.String("format", source.Name()),
		logging.Int("playlists", c.Len()),
		logging.Int("items", c.ItemCount()),
	)

	if r.shouldExpand(req.Expand, target) {
		stepCtx = services.WithStep(ctx, "expand")
		report.Expanded = expand.New(r.collab.Playlists, logger).Apply(stepCtx, c)
	}
	c.Finalize(expand.IsRemote)

	if req.Dedup || r.cfg.Pipeline.Dedup {
		report.DuplicatesRemoved = dedup.New().Apply(c)
		logging.WithContext(services.WithStep(ctx, "dedup"), logger).Info("duplicates removed",
			logging.Int("removed", report.DuplicatesRemoved),
		)
	}

	if enrichesMetadata(target.Name()) {
		report.Enriched = newEnricher(r.collab.Metadata, logger).Apply(services.WithStep(ctx, "enrich"), c)
	}

	stepCtx = services.WithStep(ctx, "encode")
	out, err := target.Encode(stepCtx, c, template)
	if err != nil {
		return nil, err
	}
	if err := fileutil.WriteFileAtomic(req.DestPath, out, 0o644); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "pipeline", "write output", req.DestPath, err)
	}

	for _, p := range c.Playlists {
		if p.Kind == playlist.KindRemote {
			report.RemotePlaylists++
		}
	}
	report.Playlists = c.Len()
	report.Items = c.ItemCount()
	report.OutputBytes = len(out)
	report.Warnings = counter.Warnings()
	report.Duration = time.Since(started)

	logging.WithContext(ctx, logger).Info("conversion finished",
		logging.String("source_format", report.SourceFormat),
		logging.String("target_format", report.TargetFormat),
		logging.String("output", report.OutputPath),
		logging.Int("playlists", report.Playlists),
		logging.Int("items", report.Items),
		logging.Int("warnings", report.Warnings),
		logging.Duration("duration", report.Duration),
	)
	return report, nil
}

// Load decodes a source file without converting it. The returned string is
// the detected or forced format name.
func (r *Runner) Load(ctx context.Context, path, format string) (*playlist.Collection, string, error) {
	registry := r.registry(logging.NewComponentLogger(r.logger, "pipeline"))
	source, data, err := r.openSource(ctx, registry, path, format)
	if err != nil {
		return nil, "", err
	}
	c, err := source.Decode(ctx, data)
	if err != nil {
		return nil, "", err
	}
	c.Finalize(expand.IsRemote)
	return c, source.Name(), nil
}

func (r *Runner) openSource(ctx context.Context, registry *formats.Registry, path, format string) (formats.Adapter, []byte, error) {
	data, err := readInput(path, "source")
	if err != nil {
		return nil, nil, err
	}
	if format == "" {
		if format, err = formats.Detect(path, data); err != nil {
			return nil, nil, err
		}
		r.logger.DebugContext(ctx, "source format detected", logging.String("format", format))
	}
	adapter, err := registry.Lookup(format)
	if err != nil {
		return nil, nil, err
	}
	return adapter, data, nil
}

// shouldExpand applies an explicit flag first, then pipeline.expand_remote.
func (r *Runner) shouldExpand(flag *bool, target formats.Adapter) bool {
	if flag != nil {
		return *flag
	}
	switch r.cfg.Pipeline.ExpandRemote {
	case config.ExpandAlways:
		return true
	case config.ExpandNever:
		return false
	default:
		return !target.KeepsRemote()
	}
}

func readInput(path, role string) ([]byte, error) {
	if path == "" {
		return nil, services.Wrap(services.ErrUsage, "pipeline", "read "+role, role+" path required", nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrUsage, "pipeline", "read "+role, path+" does not exist", nil)
		}
		return nil, services.Wrap(services.ErrSourceFormat, "pipeline", "read "+role, path, err)
	}
	return data, nil
}

// lockDestination takes an exclusive lock beside dest so concurrent runs do
// not write the same output.
func lockDestination(dest string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "pipeline", "lock destination", dest, err)
	}
	lockPath := dest + ".lock"
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "pipeline", "lock destination", lockPath, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrUsage, "pipeline", "lock destination",
			dest+" is being written by another conversion", nil)
	}
	return func() {
		_ = lock.Unlock()
		_ = os.Remove(lockPath)
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
