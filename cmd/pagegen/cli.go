package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/pagegen/internal/config"
	"git.home.luguber.info/inful/pagegen/internal/foundation/errors"
	"git.home.luguber.info/inful/pagegen/internal/logfields"
	"git.home.luguber.info/inful/pagegen/internal/metrics"
	"git.home.luguber.info/inful/pagegen/internal/record"
	"git.home.luguber.info/inful/pagegen/internal/render"
	"git.home.luguber.info/inful/pagegen/internal/site"
)

// CLI definition: four positionals plus global flags.
type CLI struct {
	Config      string           `short:"c" help:"Optional configuration file path" env:"PAGEGEN_CONFIG"`
	Verbose     bool             `short:"v" help:"Enable verbose logging" env:"PAGEGEN_VERBOSE"`
	MetricsFile string           `name:"metrics-file" help:"Write Prometheus metrics to this textfile after the run" env:"PAGEGEN_METRICS_FILE"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`

	JSONPath       string `arg:"" name:"json_path" help:"JSON file holding an array of records"`
	DetailTemplate string `arg:"" name:"detail_tpl" help:"Template rendered once per record"`
	ListTemplate   string `arg:"" name:"list_tpl" help:"Template rendered once with all records"`
	OutputDir      string `arg:"" name:"output_dir" help:"Directory receiving the generated pages"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// Execute runs the generation and returns the process exit code.
func (c *CLI) Execute() int {
	err := c.Run()
	return errors.NewCLIErrorAdapter(c.Verbose, slog.Default()).Report(err)
}

// Run performs one generation: load, compile, render, write.
func (c *CLI) Run() (err error) {
	logger := slog.Default().With(logfields.RunID(uuid.NewString()))

	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}

	textfile := c.MetricsFile
	if textfile == "" {
		textfile = cfg.Metrics.Textfile
	}
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if textfile != "" {
		prom := metrics.NewPrometheusRecorder(nil)
		recorder = prom
		defer func() {
			if werr := prom.WriteTextfile(textfile); werr != nil {
				logger.Warn("Failed to write metrics textfile", logfields.Path(textfile), logfields.Error(werr))
			}
		}()
	}

	generated := false
	defer func() {
		// Generate records its own outcome.
		if err != nil && !generated {
			recorder.IncRunOutcome(metrics.ResultFailed)
		}
	}()

	logger.Info("Starting page generation",
		"json", c.JSONPath,
		"detail_template", c.DetailTemplate,
		"list_template", c.ListTemplate,
		"output", c.OutputDir)

	records, err := record.Load(c.JSONPath)
	if err != nil {
		return err
	}

	mode, err := render.ParseMissingKeyMode(cfg.Templates.MissingKey)
	if err != nil {
		return errors.ConfigError("invalid missing key mode").WithCause(err).Build()
	}

	roots, names := render.SearchRoots(c.DetailTemplate, c.ListTemplate)
	engine := render.NewTextEngine(roots,
		render.WithMissingKey(mode),
		render.WithNameKeys(cfg.Names.Keys, cfg.Names.Fallback),
	)
	if err := engine.Compile(names...); err != nil {
		return err
	}
	logger.Debug("Templates compiled", "search_roots", roots)

	gen := site.NewGenerator(engine, c.OutputDir,
		site.WithLogger(logger),
		site.WithRecorder(recorder),
		site.WithIndexFile(cfg.Output.IndexFile),
		site.WithNameKeys(cfg.Names.Keys, cfg.Names.Fallback),
	)
	generated = true
	res, err := gen.Generate(names[0], names[1], records)
	if err != nil {
		return err
	}

	if len(res.Overwritten) > 0 {
		logger.Warn("Some records share a filename; later records replaced earlier pages",
			logfields.Count(len(res.Overwritten)))
	}
	return nil
}
