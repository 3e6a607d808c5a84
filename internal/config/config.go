package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/felixgeelhaar/trainer/internal/domain"
)

// Config is the effective configuration: the local config file
// overridden by .env files and the process environment.
type Config struct {
	// Server
	Port     int
	Bind     string
	Debug    bool
	LogLevel string

	// Exercise sources
	ExercisesPath string
	ExercisesURL  string
	CatalogFile   string
	MaxConcurrent int
	RatePerSecond float64

	// Storage
	StorageDriver string
	SQLitePath    string
	DatabaseURL   string

	// RabbitMQ
	RabbitMQURL  string
	QueueWorkers int

	// Session defaults
	Training domain.TrainingConfig
}

// Load builds the effective configuration. Missing env files are ignored.
func Load(local *LocalConfig, envFiles ...string) (*Config, error) {
	if local == nil {
		local = DefaultLocalConfig()
	}
	if err := loadEnvFiles(envFiles...); err != nil {
		return nil, err
	}

	levels, err := parseLevels(getEnv("TRAINER_LEVELS", strings.Join(local.Training.Levels, ",")))
	if err != nil {
		return nil, fmt.Errorf("TRAINER_LEVELS: %w", err)
	}

	cfg := &Config{
		Port:          getEnvInt("TRAINER_PORT", local.Daemon.Port),
		Bind:          getEnv("TRAINER_BIND", local.Daemon.Bind),
		Debug:         getEnvBool("TRAINER_DEBUG", false),
		LogLevel:      local.Daemon.LogLevel,
		ExercisesPath: getEnv("TRAINER_EXERCISES_PATH", local.Source.Path),
		ExercisesURL:  getEnv("TRAINER_EXERCISES_URL", local.Source.URL),
		CatalogFile:   getEnv("TRAINER_CATALOG", local.Source.CatalogFile),
		MaxConcurrent: local.Source.MaxConcurrent,
		RatePerSecond: local.Source.RatePerSecond,
		StorageDriver: local.Storage.Driver,
		SQLitePath:    local.Storage.SQLitePath,
		DatabaseURL:   getEnv("DATABASE_URL", local.Storage.PostgresURL),
		RabbitMQURL:   getEnv("RABBITMQ_URL", local.Queue.URL),
		QueueWorkers:  getEnvInt("TRAINER_QUEUE_WORKERS", local.Queue.Workers),
		Training: domain.TrainingConfig{
			Tasks:      getEnvInt("TRAINER_TASKS", local.Training.Tasks),
			Levels:     levels,
			Difficulty: getEnvFloat("TRAINER_DIFFICULTY", local.Training.Difficulty),
		},
	}

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	// a database URL selects postgres unless a driver was chosen explicitly
	if os.Getenv("DATABASE_URL") != "" && local.Storage.Driver == DefaultLocalConfig().Storage.Driver {
		cfg.StorageDriver = "postgres"
	}

	if err := cfg.Training.Validate(); err != nil {
		return nil, fmt.Errorf("training defaults: %w", err)
	}
	switch cfg.StorageDriver {
	case "sqlite", "postgres", "file":
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	if cfg.StorageDriver == "postgres" && cfg.DatabaseURL == "" {
		return nil, errors.New("postgres storage requires DATABASE_URL")
	}

	return cfg, nil
}

// ResolveSQLitePath returns the SQLite file, defaulting to dir/trainer.db
func (c *Config) ResolveSQLitePath(dir string) string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	return filepath.Join(dir, "trainer.db")
}

// loadEnvFiles loads the files that exist; variables already set win
func loadEnvFiles(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func parseLevels(value string) ([]domain.Level, error) {
	var levels []domain.Level
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		level, err := domain.ParseLevel(part)
		if err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
