package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tinytelemetry/prci/internal/model"
)

// cliConfig holds the dashboard configuration.
type cliConfig struct {
	BackendURL         string        `mapstructure:"backend-url"`
	Query              string        `mapstructure:"query"`
	PerPage            int           `mapstructure:"per-page"`
	PollInterval       time.Duration `mapstructure:"poll-interval"`
	PollTimeout        time.Duration `mapstructure:"poll-timeout"`
	ToastDuration      time.Duration `mapstructure:"toast-duration"`
	RequestTimeout     time.Duration `mapstructure:"request-timeout"`
	LogFile            string        `mapstructure:"log-file"`
	LogLevel           string        `mapstructure:"log-level"`
	ReverseScrollWheel bool          `mapstructure:"reverse-scroll-wheel"`
}

func loadCLIConfig(configPath string) (cliConfig, error) {
	var cfg cliConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("PRCI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("backend-url", model.DefaultBackendURL)
	v.SetDefault("query", "")
	v.SetDefault("per-page", model.DefaultPerPage)
	v.SetDefault("poll-interval", model.DefaultPollInterval)
	v.SetDefault("poll-timeout", model.DefaultPollTimeout)
	v.SetDefault("toast-duration", model.DefaultToastDuration)
	v.SetDefault("request-timeout", time.Duration(0))
	v.SetDefault("log-file", filepath.Join(home, ".local", "state", "prci", "prci.log"))
	v.SetDefault("log-level", "info")
	v.SetDefault("reverse-scroll-wheel", false)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "prci", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	if cfg.PerPage <= 0 {
		return cfg, fmt.Errorf("per-page must be positive, got %d", cfg.PerPage)
	}
	if cfg.PollInterval <= 0 || cfg.PollTimeout <= 0 {
		return cfg, fmt.Errorf("poll-interval and poll-timeout must be positive")
	}

	return cfg, nil
}
