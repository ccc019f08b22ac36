package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates sections: COMMONS_DB__DSN sets db.dsn.
const EnvPrefix = "COMMONS_"

type Config struct {
	Log   LogConfig   `koanf:"log"`
	DB    DBConfig    `koanf:"db"`
	OTel  OTelConfig  `koanf:"otel"`
	Debug DebugConfig `koanf:"debug"`
}

type LogConfig struct {
	Mode string `koanf:"mode"` // development, production, test
}

type DBConfig struct {
	Driver        string        `koanf:"driver"` // sqlite, postgres
	DSN           string        `koanf:"dsn"`
	LogLevel      string        `koanf:"log_level"`
	SlowThreshold time.Duration `koanf:"slow_threshold"`
	AutoMigrate   bool          `koanf:"auto_migrate"`
}

type OTelConfig struct {
	Enabled     bool    `koanf:"enabled"`
	ServiceName string  `koanf:"service_name"`
	Endpoint    string  `koanf:"endpoint"`
	Insecure    bool    `koanf:"insecure"`
	SampleRatio float64 `koanf:"sample_ratio"`
}

type DebugConfig struct {
	ABRoot    string `koanf:"ab_root"`
	FormatSQL bool   `koanf:"format_sql"`
}

func defaults() map[string]any {
	return map[string]any{
		"log.mode":          "development",
		"db.driver":         "sqlite",
		"db.dsn":            "file:commons?mode=memory&cache=shared",
		"db.log_level":      "warn",
		"db.slow_threshold": "1s",
		"db.auto_migrate":   true,
		"otel.enabled":      false,
		"otel.service_name": "neurobridge-commons",
		"otel.endpoint":     "",
		"otel.insecure":     true,
		"otel.sample_ratio": 1.0,
		"debug.ab_root":     ".",
		"debug.format_sql":  true,
	}
}

// Load reads defaults, then the optional YAML file at path, then COMMONS_*
// environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	for key, v := range defaults() {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("config default %s: %w", key, err)
		}
	}

	if path = strings.TrimSpace(path); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.DB.Driver)) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unsupported db.driver %q", c.DB.Driver)
	}
	if strings.TrimSpace(c.DB.DSN) == "" {
		return fmt.Errorf("config: db.dsn is required")
	}
	if c.OTel.SampleRatio < 0 || c.OTel.SampleRatio > 1 {
		return fmt.Errorf("config: otel.sample_ratio must be within [0,1], got %v", c.OTel.SampleRatio)
	}
	return nil
}
