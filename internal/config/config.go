package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Ning0612/Snapsync/internal/domain"
)

// Config is the complete configuration for snapsync
type Config struct {
	// StatePath is the default reference state file (relative paths resolve
	// against the working directory)
	StatePath string `mapstructure:"state_path"`

	// Workers is the number of concurrent hash workers (0 = NumCPU)
	Workers int `mapstructure:"workers"`

	// BufferSize is the hash streaming buffer in bytes (0 = 1KB default)
	BufferSize int `mapstructure:"buffer_size"`

	// DataDir holds the run history database
	DataDir string `mapstructure:"data_dir"`

	// Log configures diagnostic logging
	Log LogConfig `mapstructure:"log"`
}

// LogConfig configures diagnostic logging
type LogConfig struct {
	Level string        `mapstructure:"level"`
	File  FileLogConfig `mapstructure:"file"`
}

// FileLogConfig configures optional rotated file logging
type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	return &Config{
		StatePath:  "state",
		Workers:    0,
		BufferSize: 0,
		DataDir:    defaultDataDir(),
		Log: LogConfig{
			Level: "info",
		},
	}
}

// defaultDataDir places the history database under the user's home
func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".snapsync")
	}
	return ".snapsync"
}

// Validate checks if the configuration is complete and consistent
func (c *Config) Validate() error {
	if c.StatePath == "" {
		return fmt.Errorf("%w: state_path cannot be empty", domain.ErrConfigInvalid)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers cannot be negative", domain.ErrConfigInvalid)
	}
	if c.BufferSize < 0 {
		return fmt.Errorf("%w: buffer_size cannot be negative", domain.ErrConfigInvalid)
	}
	if c.Log.File.Enabled && c.Log.File.Path == "" {
		return fmt.Errorf("%w: log.file.path required when file logging is enabled", domain.ErrConfigInvalid)
	}
	return nil
}

// ExpandPath expands ~ and environment variables in a path
func ExpandPath(path string) string {
	// Expand ~ to home directory
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			if len(path) > 1 && (path[1] == '/' || path[1] == filepath.Separator) {
				path = filepath.Join(home, path[2:])
			} else if len(path) == 1 {
				path = home
			}
		}
	}
	// Expand environment variables
	path = os.ExpandEnv(path)
	return filepath.Clean(path)
}
