// cmd/server serves power chess matches over HTTP and websocket.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"power_chess/internal/httpx"
	"power_chess/internal/logx"
)

func main() {
	addr := flag.String("addr", getenv("PCHESS_ADDR", ":8080"), "listen address")
	level := flag.String("log-level", getenv("PCHESS_LOG_LEVEL", "info"), "log level: debug, info, warn or error")
	jsonLogs := flag.Bool("log-json", getenb("PCHESS_LOG_JSON", false), "log as JSON lines")
	seed := flag.Uint64("seed", getenu("PCHESS_SEED", 0), "base seed for new matches (0 = random)")
	noSpawn := flag.Bool("no-spawn", getenb("PCHESS_NO_SPAWN", false), "never spawn power objects on their own")
	flag.Parse()

	logger, err := logx.New(os.Stderr, *level, *jsonLogs)
	if err != nil {
		log.Fatal(err)
	}
	if *seed != 0 {
		logger.WithField("seed", *seed).Info("matches are seeded")
	}

	srv := httpx.NewServer(httpx.Config{Logger: logger, Seed: *seed, DisableSpawning: *noSpawn})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errc := make(chan error, 1)
	go func() { errc <- srv.Listen(*addr) }()

	select {
	case err := <-errc:
		if err != nil {
			logger.WithError(err).Fatal("http server stopped")
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Close(shutdownCtx); err != nil {
			logger.WithError(err).Error("shutdown")
		}
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenb(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getenu(key string, def uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return def
}
