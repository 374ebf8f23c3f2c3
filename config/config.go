// Package config loads the client configuration from defaults, an optional
// YAML file and DETA_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/beanbocchi/deta/pkg/validator"
)

const DefaultPath = "~/.config/deta/deta.yaml"

var defaults = map[string]any{
	"projectKey":    "",
	"baseUrl":       "https://database.deta.sh/v1",
	"driveUrl":      "https://drive.deta.sh/v1",
	"timeout":       30 * time.Second,
	"concurrency":   0,
	"tracing":       false,
	"log.level":     "info",
	"log.format":    "text",
	"log.addSource": false,
}

var envs = map[string]string{
	"projectKey":    "DETA_PROJECT_KEY",
	"baseUrl":       "DETA_BASE_URL",
	"driveUrl":      "DETA_DRIVE_URL",
	"timeout":       "DETA_TIMEOUT",
	"concurrency":   "DETA_CONCURRENCY",
	"tracing":       "DETA_TRACING",
	"log.level":     "DETA_LOG_LEVEL",
	"log.format":    "DETA_LOG_FORMAT",
	"log.addSource": "DETA_LOG_ADD_SOURCE",
}

// Load reads the configuration. An empty path means DefaultPath, which may be
// absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, env := range envs {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	optional := path == ""
	if optional {
		path = DefaultPath
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand config path: %w", err)
	}

	v.SetConfigFile(expanded)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if !optional || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", expanded, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
