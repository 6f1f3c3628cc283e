// Command streamtrim reconciles a catalog of recorded streams against their
// detected trim markers. It:
//   - Loads configuration and initializes structured logging.
//   - Connects to Postgres and runs idempotent migrations.
//   - Runs the trimming engine once over every eligible stream: ffmpeg
//     stream-copy trim, sibling artifact renames, catalog updates.
//   - Optionally exposes /healthz and /metrics while the run is in flight.
//
// The run aborts on SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/onnwee/streamtrim/config"
	"github.com/onnwee/streamtrim/db"
	"github.com/onnwee/streamtrim/server"
	"github.com/onnwee/streamtrim/telemetry"
	"github.com/onnwee/streamtrim/trim"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load(".env")

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	var handler slog.Handler
	switch strings.ToLower(os.Getenv("LOG_FORMAT")) { // text | json
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))

	// Config: env first, flags override.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	flag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "print every action taken")
	flag.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "describe actions without touching the filesystem, process table, or catalog")
	flag.StringVar(&cfg.StreamsDir, "streams-dir", cfg.StreamsDir, "folder containing the stream media files")
	flag.StringVar(&cfg.DBDsn, "db-dsn", cfg.DBDsn, "catalog connection string")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		slog.Error("config invalid", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()

	// OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("streamtrim", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// DB
	database, err := db.Connect(cfg.DBDsn)
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("failed to close database", slog.Any("err", err))
		}
	}()

	// Migrations: versioned files first, embedded SQL as fallback for
	// deployments that ship the binary without the migrations directory.
	if err := db.RunMigrations(database); err != nil {
		slog.Warn("versioned migrations failed, attempting fallback to embedded SQL",
			slog.Any("err", err),
			slog.String("component", "db_migrate"))
		if err := db.Migrate(context.Background(), database); err != nil {
			slog.Error("failed to migrate db (both versioned and embedded SQL failed)", slog.Any("err", err))
			os.Exit(1)
		}
	}

	// Root context with graceful abort
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = telemetry.WithCorrelation(ctx, uuid.NewString())

	// Optional ops surface for watching long runs.
	if cfg.MetricsAddr != "" {
		server.Start(ctx, cfg.MetricsAddr, database)
	}

	reconciler := &trim.Reconciler{
		DB:         database,
		StreamsDir: cfg.StreamsDir,
		Policy:     &trim.Policy{Verbose: cfg.Verbose, DryRun: cfg.DryRun},
	}
	if err := reconciler.Run(ctx); err != nil {
		slog.Error("trim run failed", slog.Any("err", err))
		os.Exit(1)
	}
}
