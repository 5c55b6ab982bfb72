// Package server exposes document extraction and speech synthesis as a JSON
// HTTP API. Synthesis requests are accepted onto a bounded worker pool and
// tracked as tasks; audio files and task records are swept after an hour.
package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the server's environment-driven configuration.
type Config struct {
	Port           int    `env:"SPEAKDOC_PORT" envDefault:"5000"`
	SecretKey      string `env:"SPEAKDOC_SECRET_KEY"`
	GoogleCreds    string `env:"SPEAKDOC_GOOGLE_CREDENTIALS"`
	MaxWorkers     int64  `env:"SPEAKDOC_MAX_WORKERS" envDefault:"4"`
	Engine         string `env:"SPEAKDOC_ENGINE"`
	MaxUploadBytes int64  `env:"SPEAKDOC_MAX_UPLOAD" envDefault:"16777216"`
	TempDir        string `env:"SPEAKDOC_TEMP_DIR"`
}

// LoadConfig reads configuration from the environment. A missing secret key
// gets a random one, which invalidates sessions across restarts but keeps
// the server usable out of the box.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.SecretKey == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return cfg, fmt.Errorf("generate secret key: %w", err)
		}
		cfg.SecretKey = hex.EncodeToString(buf)
	}
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = 1
	}
	return cfg, nil
}
