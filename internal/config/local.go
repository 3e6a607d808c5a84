package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig is the ~/.trainer/config.yaml file
type LocalConfig struct {
	Daemon   DaemonConfig   `yaml:"daemon"`
	Training TrainingConfig `yaml:"training"`
	Source   SourceConfig   `yaml:"source"`
	Storage  StorageConfig  `yaml:"storage"`
	Queue    QueueConfig    `yaml:"queue"`
}

// DaemonConfig holds daemon server settings
type DaemonConfig struct {
	Port     int    `yaml:"port"`
	Bind     string `yaml:"bind"`
	LogLevel string `yaml:"log_level"`
}

// TrainingConfig holds session defaults
type TrainingConfig struct {
	Tasks      int      `yaml:"tasks"`
	Levels     []string `yaml:"levels"`
	Difficulty float64  `yaml:"difficulty"`
}

// SourceConfig says where exercise solutions are read from.
// URL takes precedence over Path when both are set.
type SourceConfig struct {
	Path          string  `yaml:"path"`
	URL           string  `yaml:"url,omitempty"`
	CatalogFile   string  `yaml:"catalog_file,omitempty"`
	MaxConcurrent int     `yaml:"max_concurrent"`
	RatePerSecond float64 `yaml:"rate_per_second"`
}

// StorageConfig selects the session store
type StorageConfig struct {
	Driver      string `yaml:"driver"` // sqlite, postgres, file
	SQLitePath  string `yaml:"sqlite_path,omitempty"`
	PostgresURL string `yaml:"postgres_url,omitempty"`
}

// QueueConfig holds RabbitMQ settings; an empty URL disables the queue
type QueueConfig struct {
	URL     string `yaml:"url,omitempty"`
	Workers int    `yaml:"workers"`
}

// TrainerDir returns the path to ~/.trainer
func TrainerDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".trainer"), nil
}

// EnsureTrainerDir creates ~/.trainer and its subdirectories
func EnsureTrainerDir() (string, error) {
	dir, err := TrainerDir()
	if err != nil {
		return "", err
	}

	for _, subdir := range []string{"", "logs", "sessions", "exercises"} {
		path := filepath.Join(dir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("create dir %s: %w", path, err)
		}
	}
	return dir, nil
}

// DefaultLocalConfig returns defaults for local mode
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{
		Daemon: DaemonConfig{
			Port:     7433,
			Bind:     "127.0.0.1",
			LogLevel: "info",
		},
		Training: TrainingConfig{
			Tasks:      5,
			Levels:     []string{"g1", "g2"},
			Difficulty: 0.5,
		},
		Source: SourceConfig{
			Path:          "./exercises",
			MaxConcurrent: 8,
			RatePerSecond: 20,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
		},
		Queue: QueueConfig{
			Workers: 3,
		},
	}
}

// LoadLocalConfig loads ~/.trainer/config.yaml, or defaults when absent
func LoadLocalConfig() (*LocalConfig, error) {
	dir, err := TrainerDir()
	if err != nil {
		return nil, err
	}
	return LoadLocalConfigFrom(filepath.Join(dir, "config.yaml"))
}

// LoadLocalConfigFrom loads a config file over the defaults
func LoadLocalConfigFrom(path string) (*LocalConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultLocalConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultLocalConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveLocalConfig saves configuration to ~/.trainer/config.yaml
func SaveLocalConfig(cfg *LocalConfig) error {
	dir, err := EnsureTrainerDir()
	if err != nil {
		return err
	}
	return SaveLocalConfigTo(filepath.Join(dir, "config.yaml"), cfg)
}

// SaveLocalConfigTo writes cfg as YAML to path
func SaveLocalConfigTo(path string, cfg *LocalConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
