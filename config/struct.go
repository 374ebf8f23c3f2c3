package config

import "time"

type Config struct {
	ProjectKey  string        `yaml:"projectKey" mapstructure:"projectKey" validate:"required"`
	BaseURL     string        `yaml:"baseUrl" mapstructure:"baseUrl" validate:"required,url"`
	DriveURL    string        `yaml:"driveUrl" mapstructure:"driveUrl" validate:"required,url"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	Concurrency int           `yaml:"concurrency" mapstructure:"concurrency" validate:"gte=0"`
	Tracing     bool          `yaml:"tracing" mapstructure:"tracing"`
	Log         Log           `yaml:"log" mapstructure:"log" validate:"required"`
}

type Log struct {
	Level     string `yaml:"level" mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format    string `yaml:"format" mapstructure:"format" validate:"oneof=json text"`
	AddSource bool   `yaml:"addSource" mapstructure:"addSource"`
}
