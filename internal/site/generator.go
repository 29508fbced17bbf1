// Package site sequences a generation run: one detail page per record and
// one listing page, written into a flat output directory.
package site

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"git.home.luguber.info/inful/pagegen/internal/foundation/errors"
	"git.home.luguber.info/inful/pagegen/internal/logfields"
	"git.home.luguber.info/inful/pagegen/internal/metrics"
	"git.home.luguber.info/inful/pagegen/internal/record"
	"git.home.luguber.info/inful/pagegen/internal/render"
	"git.home.luguber.info/inful/pagegen/internal/slug"
)

// Template binding names.
const (
	BindingItem  = "item"
	BindingItems = "items"
)

// DefaultIndexFile is the listing page filename.
const DefaultIndexFile = "index.html"

const pageMode = 0o644

// Generator renders records through an Engine into OutputDir.
type Generator struct {
	engine    render.Engine
	outputDir string
	indexFile string
	nameKeys  []string
	fallback  string
	logger    *slog.Logger
	recorder  metrics.Recorder
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger (slog.Default when unset).
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

// WithIndexFile overrides the listing page filename.
func WithIndexFile(name string) Option {
	return func(g *Generator) { g.indexFile = name }
}

// WithNameKeys sets the name lookup order and the fallback used for filenames.
func WithNameKeys(keys []string, fallback string) Option {
	return func(g *Generator) {
		g.nameKeys = keys
		g.fallback = fallback
	}
}

// NewGenerator returns a Generator writing into outputDir.
func NewGenerator(engine render.Engine, outputDir string, opts ...Option) *Generator {
	g := &Generator{
		engine:    engine,
		outputDir: outputDir,
		indexFile: DefaultIndexFile,
		nameKeys:  record.DefaultNameKeys,
		fallback:  slug.Fallback,
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result summarizes a completed run.
type Result struct {
	DetailPages int
	IndexPath   string
	// Overwritten lists filenames written more than once, in the order the
	// overwrite happened. The last record with a given slug wins.
	Overwritten []string
	Duration    time.Duration
}

// Generate attaches a filename to every record, renders detailTpl once per
// record and listTpl once for all of them. It stops at the first failure and
// leaves pages written so far in place.
func (g *Generator) Generate(detailTpl, listTpl string, records []record.Record) (*Result, error) {
	start := time.Now()
	res, err := g.generate(detailTpl, listTpl, records)
	elapsed := time.Since(start)

	g.recorder.ObserveRunDuration(elapsed)
	if err != nil {
		g.recorder.IncRunOutcome(metrics.ResultFailed)
		return nil, err
	}
	g.recorder.IncRunOutcome(metrics.ResultSuccess)
	res.Duration = elapsed
	g.logger.Info("Site generated",
		logfields.Path(g.outputDir),
		logfields.Count(res.DetailPages),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return res, nil
}

func (g *Generator) generate(detailTpl, listTpl string, records []record.Record) (*Result, error) {
	g.recorder.SetRecords(len(records))

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "create output directory").
			Fatal().
			WithContext("path", g.outputDir).
			Build()
	}

	res := &Result{}
	written := make(map[string]bool, len(records))
	for i, rec := range records {
		filename := slug.Filename(record.ResolveName(rec, g.nameKeys, g.fallback))
		rec.SetFilename(filename)

		if written[filename] {
			res.Overwritten = append(res.Overwritten, filename)
			g.recorder.IncSlugCollision()
			g.logger.Warn("Overwriting page written earlier in this run",
				logfields.RecordIndex(i),
				logfields.Filename(filename))
		}

		if err := g.writePage(metrics.PageDetail, detailTpl, filename, map[string]any{BindingItem: rec}); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		written[filename] = true
		res.DetailPages++
		g.logger.Debug("Wrote detail page", logfields.RecordIndex(i), logfields.Filename(filename))
	}

	if written[g.indexFile] {
		res.Overwritten = append(res.Overwritten, g.indexFile)
		g.recorder.IncSlugCollision()
		g.logger.Warn("Listing replaces a detail page with the same filename",
			logfields.Filename(g.indexFile))
	}

	if err := g.writePage(metrics.PageListing, listTpl, g.indexFile, map[string]any{BindingItems: records}); err != nil {
		return nil, err
	}
	res.IndexPath = filepath.Join(g.outputDir, g.indexFile)
	return res, nil
}

func (g *Generator) writePage(kind metrics.PageKind, tpl, filename string, bindings map[string]any) error {
	start := time.Now()
	out, err := g.engine.Render(tpl, bindings)
	g.recorder.ObserveRenderDuration(kind, time.Since(start))
	if err != nil {
		g.recorder.IncPageResult(kind, metrics.ResultFailed)
		return err
	}

	path := filepath.Join(g.outputDir, filename)
	_, statErr := os.Stat(path)
	if err := atomic.WriteFile(path, strings.NewReader(out)); err != nil {
		g.recorder.IncPageResult(kind, metrics.ResultFailed)
		return errors.WrapError(err, errors.CategoryFileSystem, "write page").
			Fatal().
			WithContext("path", path).
			WithContext("template", tpl).
			Build()
	}
	// atomic keeps the mode of a replaced page but creates new ones 0600.
	if os.IsNotExist(statErr) {
		if err := os.Chmod(path, pageMode); err != nil {
			g.recorder.IncPageResult(kind, metrics.ResultFailed)
			return errors.WrapError(err, errors.CategoryFileSystem, "set page permissions").
				Fatal().
				WithContext("path", path).
				Build()
		}
	}
	g.recorder.IncPageResult(kind, metrics.ResultSuccess)
	return nil
}
