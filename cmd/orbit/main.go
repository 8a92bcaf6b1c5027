package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alexanderramin/orbit/internal/cli"
	"github.com/alexanderramin/orbit/internal/config"
	"github.com/alexanderramin/orbit/internal/content"
	"github.com/alexanderramin/orbit/internal/db"
	"github.com/alexanderramin/orbit/internal/llm"
	"github.com/alexanderramin/orbit/internal/repository"
	"github.com/alexanderramin/orbit/internal/service"
	"github.com/alexanderramin/orbit/internal/store"
	"github.com/alexanderramin/orbit/internal/telemetry"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogJSON)
	slog.SetDefault(logger)

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	deps := service.Deps{
		Store:             store.NewSQLiteStore(database, logger),
		Tx:                db.NewSQLiteTxRunner(database),
		Profiles:          repository.NewSQLiteStudentProfileRepo(database),
		Logger:            logger,
		Now:               cfg.Now,
		RolloverInterval:  cfg.RolloverInterval,
		ReflectAfter:      cfg.ReflectAfter,
		GuardrailCooldown: cfg.GuardrailCooldown,
	}

	// Content: remote service first, then a local document, else empty dashboards.
	switch {
	case cfg.ContentURL != "":
		src := content.NewHTTPSource(cfg.ContentURL, cfg.ContentTimeout, cfg.Now)
		deps.Content = src
		deps.Recompute = src
	case cfg.ContentFile != "":
		deps.Content = content.NewFileSource(cfg.ContentFile, cfg.Now)
	}

	llmCfg := llm.LoadConfig()
	if llmCfg.Enabled {
		var observer llm.Observer = llm.NoopObserver{}
		switch {
		case llmCfg.LogCalls && cfg.LogJSON:
			observer = llm.NewSlogObserver(logger)
		case llmCfg.LogCalls:
			observer = llm.NewLogObserver(os.Stderr)
		}
		deps.LLM = llm.NewOllamaClient(llmCfg, observer)
	}

	tracker, closeTracker, err := openTracker(cfg.TelemetryLog)
	if err != nil {
		return err
	}
	defer closeTracker()
	if tracker != nil {
		deps.Tracker = tracker
	}

	engine := service.NewEngine(deps, service.NewSlogUseCaseObserver(logger))
	defer engine.Close()

	app := &cli.App{
		Engine:         engine,
		DefaultStudent: cfg.DefaultStudent,
		Addr:           cfg.Addr,
		Logger:         logger,
		Now:            cfg.Now,
	}

	// Detect interactive terminal for the chat and form entrypoints.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}

func newLogger(asJSON bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	if os.Getenv("ORBIT_DEBUG") != "" {
		opts.Level = slog.LevelDebug
	}
	if asJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// openTracker returns nil when telemetry is off. The close func is always safe to call.
func openTracker(dest string) (*telemetry.AsyncTracker, func(), error) {
	var w io.Writer
	closeFile := func() {}
	switch dest {
	case "":
		return nil, func() {}, nil
	case "-":
		w = os.Stderr
	default:
		f, err := os.OpenFile(dest, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening telemetry log: %w", err)
		}
		w = f
		closeFile = func() { _ = f.Close() }
	}

	tracker := telemetry.NewAsyncLogTracker(256, w)
	return tracker, func() {
		tracker.Close()
		closeFile()
	}, nil
}
