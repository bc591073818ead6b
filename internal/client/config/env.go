package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/codelife/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "CODELIFE_"

// loadDotEnv copies variables from a dotenv file into the process
// environment without overriding ones already set. The file named by
// -env-file must exist; the default .env is optional.
func loadDotEnv() error {
	path := flagx.EnvFile()
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// parseEnv overlays cfg with CODELIFE_* variables. Unset variables leave
// the current value in place.
func parseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
