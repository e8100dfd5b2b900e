package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const defaultAddr = "127.0.0.1:5000"

// stubConfig holds the stub backend configuration.
type stubConfig struct {
	Addr         string `mapstructure:"addr"`
	Fixtures     string `mapstructure:"fixtures"`
	DefaultQuery string `mapstructure:"default-query"`
	LogLevel     string `mapstructure:"log-level"`
	LogJSON      bool   `mapstructure:"log-json"`
}

func loadConfig(configPath string) (stubConfig, error) {
	var cfg stubConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("PRCI_STUB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("addr", defaultAddr)
	v.SetDefault("fixtures", "")
	v.SetDefault("default-query", "")
	v.SetDefault("log-level", "info")
	v.SetDefault("log-json", false)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "prci", "stub.yml"))
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

	return cfg, nil
}
