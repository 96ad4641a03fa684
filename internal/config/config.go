// Package config loads the tracking configuration: log destinations, the
// startup rescan flag and the ordered list of tracked entities.
//
// Files are YAML or JSON, chosen by extension. Keys keep the names operators
// already use ("Entity name", "Update interval", ...).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/comalice/spawnhooks"
)

// DefaultInterval replaces a missing or non-positive update interval.
const DefaultInterval = 30

// DefaultLogFile is where entity lines go when file logging is on.
const DefaultLogFile = "logs/spawnhooks_common.log"

// ErrUnknownFormat is returned for file extensions other than .yaml, .yml
// and .json.
var ErrUnknownFormat = errors.New("unknown config format")

// Entity is one tracked category.
type Entity struct {
	Name             string `json:"Entity name" yaml:"Entity name"`
	UpdateInterval   int    `json:"Update interval" yaml:"Update interval"`
	AddedHook        string `json:"Custom added hook,omitempty" yaml:"Custom added hook,omitempty"`
	RemovedHook      string `json:"Custom removed hook,omitempty" yaml:"Custom removed hook,omitempty"`
	GroupRemovedHook string `json:"Custom group removed hook,omitempty" yaml:"Custom group removed hook,omitempty"`
}

// Config is the whole configuration file.
type Config struct {
	LogToFile         bool     `json:"Log to file" yaml:"Log to file"`
	LogToBroadcast    bool     `json:"Log to global chat" yaml:"Log to global chat"`
	LogToConsole      bool     `json:"Log to console" yaml:"Log to console"`
	CheckSpawnsOnInit bool     `json:"Check spawns after initialized" yaml:"Check spawns after initialized"`
	LogFile           string   `json:"Log file,omitempty" yaml:"Log file,omitempty"`
	Entities          []Entity `json:"List of entities" yaml:"List of entities"`
}

// Default returns the configuration written for a missing file.
func Default() *Config {
	return &Config{
		CheckSpawnsOnInit: true,
		LogFile:           DefaultLogFile,
		Entities: []Entity{
			{Name: "BradleyAPC", UpdateInterval: 15},
			{Name: "CargoPlane", UpdateInterval: 30},
			{Name: "CargoShip", UpdateInterval: 60},
			{Name: "CH47Helicopter", UpdateInterval: 30},
			{Name: "BaseHelicopter", UpdateInterval: 30},
		},
	}
}

// Normalize drops unnamed entities and repairs bad intervals. It returns one
// warning per change.
func (c *Config) Normalize() []string {
	var warnings []string
	kept := c.Entities[:0]
	for i, e := range c.Entities {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			warnings = append(warnings, fmt.Sprintf("entity #%d has no name, skipped", i+1))
			continue
		}
		if e.UpdateInterval <= 0 {
			warnings = append(warnings, fmt.Sprintf("entity %q: update interval %d, using %d", e.Name, e.UpdateInterval, DefaultInterval))
			e.UpdateInterval = DefaultInterval
		}
		kept = append(kept, e)
	}
	c.Entities = kept
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
	return warnings
}

// Table builds the classification table, preserving entity order.
func (c *Config) Table() *spawnhooks.Table {
	policies := make([]spawnhooks.Policy, 0, len(c.Entities))
	for _, e := range c.Entities {
		interval := e.UpdateInterval
		if interval <= 0 {
			interval = DefaultInterval
		}
		policies = append(policies, spawnhooks.Policy{
			Name:               e.Name,
			PollInterval:       time.Duration(interval) * time.Second,
			AddedHook:          e.AddedHook,
			RemovedHook:        e.RemovedHook,
			GroupExhaustedHook: e.GroupRemovedHook,
		})
	}
	return spawnhooks.NewTable(policies...)
}

type codec struct {
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

func codecFor(path string) (codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return codec{marshal: yaml.Marshal, unmarshal: yaml.Unmarshal}, nil
	case ".json":
		return codec{
			marshal: func(v any) ([]byte, error) {
				return json.MarshalIndent(v, "", "  ")
			},
			unmarshal: json.Unmarshal,
		}, nil
	default:
		return codec{}, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

// Load reads path over Default(). Keys missing from the file keep their
// defaults. The result is not normalized.
func Load(path string) (*Config, error) {
	c, err := codecFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cfg := Default()
	defaults := cfg.Entities
	cfg.Entities = nil
	if err := c.unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if cfg.Entities == nil {
		cfg.Entities = defaults
	}
	return cfg, nil
}

// LoadOrCreate loads path, writing Default() there first when the file does
// not exist. created reports whether the file was written.
func LoadOrCreate(path string) (cfg *Config, created bool, err error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(path, Default()); err != nil {
			return nil, false, err
		}
		created = true
	}
	cfg, err = Load(path)
	return cfg, created, err
}

// Save writes cfg to path in the format implied by its extension.
func Save(path string, cfg *Config) error {
	c, err := codecFor(path)
	if err != nil {
		return err
	}
	data, err := c.marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
