// Package config reads process settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Settings are the defaults for every binary. Command-line flags override them.
type Settings struct {
	KingdomFile string `env:"DOMINION_KINGDOM_FILE" envDefault:"kingdoms.yaml"`
	Port        int    `env:"DOMINION_PORT" envDefault:"9999"`
	WebPort     int    `env:"DOMINION_WEB_PORT" envDefault:"8080"`
	DB          string `env:"DOMINION_DB" envDefault:"dominion.db"`
	Seed        int64  `env:"DOMINION_SEED"`
	LogLevel    string `env:"DOMINION_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load returns the settings from the environment.
func Load() (Settings, error) {
	var s Settings
	err := ParseEnv(&s)
	return s, err
}

// NewLogger builds a console logger at the given level ("debug", "info", ...).
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	// stdout carries the game itself
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
