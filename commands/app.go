package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-health-dashboard/internal/application/dashboard"
	"github.com/penwyp/go-health-dashboard/internal/config"
	"github.com/penwyp/go-health-dashboard/internal/core/model"
	"github.com/penwyp/go-health-dashboard/internal/data/source"
	"github.com/penwyp/go-health-dashboard/internal/presentation/formatter"
	"github.com/penwyp/go-health-dashboard/internal/util"
)

// app is what a command run needs, built once from config and flags.
type app struct {
	cfg        config.Config
	location   *time.Location
	source     source.Source
	controller *dashboard.Controller
	formatter  formatter.Formatter
	request    dashboard.Request
}

func (a *app) Close() error {
	if a.source == nil {
		return nil
	}
	return a.source.Close()
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	path := config.DefaultPath()
	if opts.configPath != "" {
		path = expandPath(opts.configPath)
	}

	result, err := config.LoadFrom(path)
	if err != nil {
		return config.Config{}, err
	}
	cfg := result.Config

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source.Kind = strings.ToLower(opts.sourceKind)
	}
	if flags.Changed("dir") {
		cfg.Source.Dir = opts.dataDir
	}
	if flags.Changed("db") {
		cfg.Source.DBPath = opts.dbPath
		// --db alone implies the sqlite source
		if !flags.Changed("source") {
			cfg.Source.Kind = config.SourceSQLite
		}
	}
	if flags.Changed("output") {
		cfg.Display.Format = opts.outputFormat
	}
	if flags.Changed("timezone") {
		cfg.Display.Timezone = opts.timezone
	}
	if opts.noColor {
		cfg.Display.Color = false
	}
	if flags.Changed("doctor") {
		cfg.Session.DoctorID = opts.doctorID
	}
	if opts.debug {
		cfg.Log.Level = "debug"
	}

	cfg.Source.Dir = expandPath(cfg.Source.Dir)
	cfg.Source.DBPath = expandPath(cfg.Source.DBPath)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	if err := initLogging(cfg); err != nil {
		return config.Config{}, err
	}
	for _, w := range result.Warnings {
		util.LogWarn(w, util.F("file", path))
	}
	return cfg, nil
}

func initLogging(cfg config.Config) error {
	format := util.FormatText
	if cfg.Log.JSON {
		format = util.FormatJSON
	}
	logFile := ""
	if cfg.Log.File != "" {
		logFile = expandPath(cfg.Log.File)
		if err := ensureDir(filepath.Dir(logFile)); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	return util.InitLogger(cfg.Log.Level, logFile, true, format)
}

// buildFilter turns the filter flags into an engine filter.
func buildFilter(opts *options) (model.Filter, error) {
	var f model.Filter
	if opts.from != "" {
		k, err := model.ParseDateBucketKey(opts.from)
		if err != nil {
			return f, fmt.Errorf("invalid --from: %w", err)
		}
		f.StartDate = &k
	}
	if opts.to != "" {
		k, err := model.ParseDateBucketKey(opts.to)
		if err != nil {
			return f, fmt.Errorf("invalid --to: %w", err)
		}
		f.EndDate = &k
	}
	f.Subtype = strings.TrimSpace(opts.mealType)
	return f, nil
}

func parseCategories(names []string) ([]model.Category, error) {
	var cats []model.Category
	seen := make(map[model.Category]bool)
	for _, name := range names {
		c, err := model.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		if !seen[c] {
			seen[c] = true
			cats = append(cats, c)
		}
	}
	return cats, nil
}

func openSource(cfg config.Config) (source.Source, error) {
	switch cfg.Source.Kind {
	case config.SourceSQLite:
		util.LogDebugf("Opening SQLite source %s", cfg.Source.DBPath)
		return source.NewSQLiteSource(cfg.Source.DBPath)
	default:
		util.LogDebugf("Reading exports from %s", cfg.Source.Dir)
		return source.NewFileSource(cfg.Source.Dir, cfg.Source.Concurrency), nil
	}
}

// newApp wires config, source, controller and formatter for one run.
func newApp(cmd *cobra.Command, opts *options) (*app, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	if err := util.InitializeTimeProvider(cfg.Display.Timezone); err != nil {
		return nil, fmt.Errorf("failed to initialize timezone: %w", err)
	}
	loc := util.GetTimeProvider().Location()

	f, err := buildFilter(opts)
	if err != nil {
		return nil, err
	}
	cats, err := parseCategories(opts.categories)
	if err != nil {
		return nil, err
	}

	out, err := formatter.NewFormatter(cfg.Display.Format, formatter.Options{Color: cfg.Display.Color})
	if err != nil {
		return nil, err
	}

	src, err := openSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}

	return &app{
		cfg:        cfg,
		location:   loc,
		source:     src,
		controller: dashboard.NewController(src, loc),
		formatter:  out,
		request: dashboard.Request{
			PatientID:  strings.TrimSpace(opts.patientID),
			DoctorID:   cfg.Session.DoctorID,
			Filter:     f,
			Categories: cats,
		},
	}, nil
}
