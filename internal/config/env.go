package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every override variable.
const EnvPrefix = "SPAWNHOOKS_"

// overrides holds the values settable from the environment. Unset variables
// leave the pointers nil.
type overrides struct {
	LogToFile      *bool   `env:"LOG_TO_FILE"`
	LogToConsole   *bool   `env:"LOG_TO_CONSOLE"`
	LogToBroadcast *bool   `env:"LOG_TO_BROADCAST"`
	CheckOnInit    *bool   `env:"CHECK_ON_INIT"`
	LogFile        *string `env:"LOG_FILE"`
}

// ApplyEnv overlays SPAWNHOOKS_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	return applyEnv(cfg, env.Options{Prefix: EnvPrefix})
}

func applyEnv(cfg *Config, opts env.Options) error {
	var o overrides
	if err := env.ParseWithOptions(&o, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.LogToFile != nil {
		cfg.LogToFile = *o.LogToFile
	}
	if o.LogToConsole != nil {
		cfg.LogToConsole = *o.LogToConsole
	}
	if o.LogToBroadcast != nil {
		cfg.LogToBroadcast = *o.LogToBroadcast
	}
	if o.CheckOnInit != nil {
		cfg.CheckSpawnsOnInit = *o.CheckOnInit
	}
	if o.LogFile != nil {
		cfg.LogFile = *o.LogFile
	}
	return nil
}
