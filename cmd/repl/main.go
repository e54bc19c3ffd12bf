// cmd/repl plays a power chess game on the console.
package main

import (
	"flag"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"power_chess/internal/logx"
	"power_chess/internal/repl"
)

func main() {
	level := flag.String("log-level", getenv("PCHESS_LOG_LEVEL", "warn"), "log level: debug, info, warn or error")
	jsonLogs := flag.Bool("log-json", getenb("PCHESS_LOG_JSON", false), "log as JSON lines")
	seed := flag.Uint64("seed", getenu("PCHESS_SEED", 0), "seed for the first game (0 = random)")
	noSpawn := flag.Bool("no-spawn", getenb("PCHESS_NO_SPAWN", false), "never spawn power objects on their own")
	flag.Parse()

	// The board goes to stdout, logs to stderr.
	logger, err := logx.New(os.Stderr, *level, *jsonLogs)
	if err != nil {
		log.Fatal(err)
	}
	session := repl.New(os.Stdout, repl.Options{Logger: logger, Seed: *seed, DisableSpawning: *noSpawn})
	if err := session.Run(os.Stdin); err != nil {
		logger.WithError(err).Fatal("reading commands")
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
