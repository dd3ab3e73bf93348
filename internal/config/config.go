package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	PublicDir string
	OutputDir string

	ScriptInterpreter string
	ProcessorScript   string
	StatisticsScript  string
	ScriptTimeout     time.Duration

	HistoryFile  string
	GameDataFile string

	RedisURL         string
	RedisPass        string
	RedisDB          int
	HistoryCacheSize int
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		Env:               getEnv("ENV", "development"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		PublicDir:         getEnv("PUBLIC_DIR", "public"),
		OutputDir:         getEnv("OUTPUT_DIR", "output"),
		ScriptInterpreter: getEnv("SCRIPT_INTERPRETER", "python"),
		ProcessorScript:   getEnv("PROCESSOR_SCRIPT", "scripts/data_processor.py"),
		StatisticsScript:  getEnv("STATISTICS_SCRIPT", "scripts/statistic.py"),
		HistoryFile:       getEnv("HISTORY_FILE", "input_history.jsonl"),
		GameDataFile:      getEnv("GAME_DATA_FILE", "game_data.json"),
		RedisURL:          os.Getenv("REDIS_URL"),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
	}

	var err error
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.HistoryCacheSize, err = getEnvInt("HISTORY_CACHE_SIZE", 50); err != nil {
		return nil, err
	}
	if cfg.HistoryCacheSize <= 0 {
		return nil, fmt.Errorf("HISTORY_CACHE_SIZE must be positive, got %d", cfg.HistoryCacheSize)
	}

	timeout := os.Getenv("SCRIPT_TIMEOUT")
	if timeout != "" && timeout != "0" {
		cfg.ScriptTimeout, err = time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid SCRIPT_TIMEOUT %q: %w", timeout, err)
		}
		if cfg.ScriptTimeout < 0 {
			return nil, fmt.Errorf("SCRIPT_TIMEOUT must not be negative, got %s", cfg.ScriptTimeout)
		}
	}

	return cfg, nil
}

// IsProduction reports whether gin and zap should run in release mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// RedisEnabled reports whether the recent history cache is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
