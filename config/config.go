// Package config loads the calculator's settings from an apecrunch.toml file,
// falling back to defaults when the file is absent.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	// DecimalPlaces is how many fractional digits results are rendered with.
	DecimalPlaces int `mapstructure:"decimal_places"`
	// DataDir is where the history file lives.
	DataDir string `mapstructure:"data_dir"`
	// LogLevel is the global log level (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`
	// SaveEvery checkpoints history to disk after this many entries.
	// Zero disables checkpointing; history is saved on exit only.
	SaveEvery int `mapstructure:"save_every"`
}

// HistoryPath returns the path of the history file under the data directory.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.dat")
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".apecrunch"
	}
	return filepath.Join(dir, "apecrunch")
}

// Load loads the configuration from apecrunch.toml. The search path is the
// CONFIG_PATH environment variable if set, then the current directory, then
// the user config directory. A missing file is not an error; defaults apply.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("apecrunch")
	v.SetConfigType("toml")
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(defaultDataDir())
	}

	v.SetDefault("decimal_places", 6)
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("log_level", "info")
	v.SetDefault("save_every", 0)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
