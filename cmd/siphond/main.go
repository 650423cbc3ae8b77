// siphond exports user action logs to date-partitioned S3 objects.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	appconfig "github.com/xtxerr/siphon/config"
	"github.com/xtxerr/siphon/internal/blob"
	"github.com/xtxerr/siphon/internal/insights"
	"github.com/xtxerr/siphon/internal/loader"
	"github.com/xtxerr/siphon/internal/logging"
	"github.com/xtxerr/siphon/internal/pipeline"
	"github.com/xtxerr/siphon/internal/scheduler"
	"github.com/xtxerr/siphon/internal/server"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// CLI flags
	cfgPath := flag.String("config", "config.yaml", "config file path")
	listen := flag.String("listen", "", "listen address (overrides config)")
	once := flag.Bool("once", false, "run one export and exit")
	testMode := flag.Bool("test-mode", false, "export the current day instead of the completed previous day")
	logLevel := flag.String("log-level", "", "log level (overrides config)")
	logJSON := flag.Bool("log-json", false, "JSON log output")
	flag.Parse()

	// Load config
	cfg, err := loader.Load(*cfgPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg = loader.DefaultConfig()
			cfg.ApplyEnv()
			if verr := cfg.Validate(); verr != nil {
				fmt.Fprintf(os.Stderr, "config: %v\n", verr)
				os.Exit(1)
			}
		} else {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI overrides
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logJSON {
		cfg.Log.JSON = true
	}

	logging.Init(parseLevel(cfg.Log.Level), cfg.Log.JSON)
	log := logging.Component("main")
	log.Info("siphond starting", "version", Version,
		"log_group", cfg.Export.LogGroup,
		"bucket", cfg.Export.Bucket,
		"format", cfg.Export.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := blob.NewS3Store(blob.S3Config{
		Endpoint: cfg.S3.Endpoint,
		Bucket:   cfg.Export.Bucket,
		Secure:   cfg.Secure(),
	})
	if err != nil {
		log.Error("create s3 store", "error", err)
		os.Exit(1)
	}

	query, err := insights.NewCloudWatchClient(ctx)
	if err != nil {
		log.Error("create query client", "error", err)
		os.Exit(1)
	}

	pipe := pipeline.New(pipeline.Config{
		LogGroup:          cfg.Export.LogGroup,
		Prefix:            cfg.Export.Prefix,
		Format:            cfg.Format(),
		Category:          cfg.Export.Category,
		TZOffsetHours:     cfg.Export.TZOffsetHours,
		QueryPollInterval: cfg.Query.PollInterval,
		QueryTimeout:      cfg.Query.Timeout,
	}, query, store)

	if *once {
		res := pipe.Run(ctx, *testMode)
		out, _ := json.MarshalIndent(res, "", "  ")
		fmt.Println(string(out))
		if res.StatusCode != 200 {
			os.Exit(1)
		}
		return
	}

	srv := server.New(cfg.Listen, pipe)
	sched := scheduler.New(scheduler.Config{
		DailyAt:          cfg.Schedule.DailyAt,
		IncrementalEvery: cfg.Schedule.IncrementalEvery,
		Location:         pipeline.Location(cfg.Export.TZOffsetHours),
	}, pipe)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, appconfig.DefaultShutdownTimeout)
	})
	g.Go(func() error {
		err := sched.Run(gctx)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error("daemon exited", "error", err)
		os.Exit(1)
	}
	log.Info("siphond stopped")
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
