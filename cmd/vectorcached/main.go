// Command vectorcached runs the vectorcache in-memory vector
// similarity search server described in SPEC_FULL.md.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"

	"github.com/mharlan/vectorcache/config"
	"github.com/mharlan/vectorcache/oplog"
	"github.com/mharlan/vectorcache/replay"
	"github.com/mharlan/vectorcache/store"
	"github.com/mharlan/vectorcache/transport"
)

func main() {
	configPath := flag.String("config", "vectorcache.yaml", "path to an optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logLevel := parseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	ctx := context.Background()

	db := store.New()

	if cfg.RestoreDB {
		if err := replay.RestoreFromFile(ctx, cfg.LogFile, db, logger); err != nil {
			logger.ErrorContext(ctx, "replay failed, starting with an empty store", "error", err)
		}
	}

	writer, err := oplog.Open(cfg.LogFile)
	if err != nil {
		logger.ErrorContext(ctx, "failed to open operation log for append", "error", err)
		os.Exit(1)
	}
	defer writer.Close()

	server := transport.NewServer(db, writer, logger)

	logger.InfoContext(ctx, "vectorcache starting", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, server.Handler()); err != nil {
		logger.ErrorContext(ctx, "server exited", "error", err)
		os.Exit(1)
	}
}

func parseLevel(level string) slog.Level {
	switch level {
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
