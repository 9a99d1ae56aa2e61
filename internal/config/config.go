package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DataPath    string  // DATA_PATH, e.g. "shopping_trends.csv"
	BindAddr    string  // BIND_ADDR, e.g. ":8080"
	LogLevel    string  // LOG_LEVEL: debug, info, warn, error
	LogFormat   string  // LOG_FORMAT: text or json
	RateLimit   float64 // RATE_LIMIT, requests per second per client; 0 disables
	ChartWidth  int     // CHART_WIDTH in pixels
	ChartHeight int     // CHART_HEIGHT in pixels
}

// Load reads an optional .env file, then the environment.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	return FromEnv(), nil
}

func FromEnv() Config {
	return Config{
		DataPath:    stringEnv("DATA_PATH", "shopping_trends.csv"),
		BindAddr:    stringEnv("BIND_ADDR", ":8080"),
		LogLevel:    strings.ToLower(stringEnv("LOG_LEVEL", "info")),
		LogFormat:   strings.ToLower(stringEnv("LOG_FORMAT", "text")),
		RateLimit:   floatEnv("RATE_LIMIT", 20),
		ChartWidth:  intEnv("CHART_WIDTH", 1024),
		ChartHeight: intEnv("CHART_HEIGHT", 640),
	}
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		slog.Warn("ignoring invalid integer setting", "key", key, "value", s)
		return def
	}
	return v
}

func floatEnv(key string, def float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		slog.Warn("ignoring invalid number setting", "key", key, "value", s)
		return def
	}
	return v
}
