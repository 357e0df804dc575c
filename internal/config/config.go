// Package config loads ego's settings from a YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the paths of the engine's resources and logging settings.
type Config struct {
	Engine  string        `yaml:"engine" env:"EGO_ENGINE"`
	CDB     string        `yaml:"cdb" env:"EGO_CDB"`
	Scripts string        `yaml:"scripts" env:"EGO_SCRIPTS"`
	Strings string        `yaml:"strings" env:"EGO_STRINGS"`
	Debug   bool          `yaml:"debug" env:"EGO_DEBUG"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig selects the operational log level and encoding.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"EGO_LOG_LEVEL"`
	Format string `yaml:"format" env:"EGO_LOG_FORMAT"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Engine:  "./libocgcore.so",
		CDB:     "./cards.cdb",
		Scripts: "./script",
		Strings: "./strings.conf",
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Load reads path, if given, over the defaults and then applies EGO_*
// environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects unknown logging settings.
func (c Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}

// NewLogger builds the zap logger described by cfg. Logs go to stderr so
// command output on stdout stays clean.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if strings.ToLower(cfg.Format) == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}
	return zapCfg.Build()
}
