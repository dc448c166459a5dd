package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Config holds the server settings. Each flag's default comes from its environment
// variable when set, so an explicit flag wins over the environment.
type Config struct {
	Addr      string
	Origins   string
	DataDir   string
	StaticDir string
	LogLevel  zerolog.Level
	LogJSON   bool
	InMemory  bool
}

func Load(args []string) (Config, error) {
	var (
		cfg      Config
		logLevel string
	)
	fs := flag.NewFlagSet("chess-server", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", env("CHESS_ADDR", ":3000"), "listen address")
	fs.StringVar(&cfg.Origins, "origins", env("CHESS_ORIGINS", "http://localhost:5173"), "comma separated CORS and websocket origins")
	fs.StringVar(&cfg.DataDir, "data", env("CHESS_DATA_DIR", "./saved_games"), "archive database directory")
	fs.StringVar(&cfg.StaticDir, "static", env("CHESS_STATIC_DIR", ""), "serve the frontend from this directory")
	fs.StringVar(&logLevel, "log-level", env("CHESS_LOG_LEVEL", "info"), "trace, debug, info, warn or error")

	logJSON, err := envBool("CHESS_LOG_JSON")
	if err != nil {
		return Config{}, err
	}
	inMemory, err := envBool("CHESS_IN_MEMORY")
	if err != nil {
		return Config{}, err
	}
	fs.BoolVar(&cfg.LogJSON, "log-json", logJSON, "log JSON lines instead of console output")
	fs.BoolVar(&cfg.InMemory, "in-memory", inMemory, "keep archives in memory only")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.LogLevel, err = zerolog.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		return Config{}, fmt.Errorf("log level: %w", err)
	}
	if cfg.Addr == "" {
		return Config{}, fmt.Errorf("listen address is empty")
	}
	if !cfg.InMemory && cfg.DataDir == "" {
		return Config{}, fmt.Errorf("data directory is empty")
	}
	return cfg, nil
}

// OriginList splits Origins into its entries.
func (c Config) OriginList() []string {
	var out []string
	for _, o := range strings.Split(c.Origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envBool(key string) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
