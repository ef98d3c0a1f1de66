// Package config loads docsema.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"docsema/internal/commands"
)

// FileName is the config file looked up from the working directory upwards.
const FileName = "docsema.toml"

type Config struct {
	Path     string        `toml:"-"` // empty for the defaults
	Analysis Analysis      `toml:"analysis"`
	Cache    Cache         `toml:"cache"`
	Commands []CommandSpec `toml:"commands"`
}

type Analysis struct {
	MaxDiagnostics   int  `toml:"max_diagnostics"`
	WarningsAsErrors bool `toml:"warnings_as_errors"`
	Jobs             int  `toml:"jobs"`
}

type Cache struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"` // пусто: $XDG_CACHE_HOME/docsema
}

// CommandSpec describes a user command added to the builtin table.
type CommandSpec struct {
	Name         string   `toml:"name"`
	Kind         string   `toml:"kind"`
	Singleton    string   `toml:"singleton"`
	Args         int      `toml:"args"`
	Render       string   `toml:"render"`
	End          string   `toml:"end"`
	Requires     []string `toml:"requires"`
	Param        bool     `toml:"param"`
	TParam       bool     `toml:"tparam"`
	EmptyAllowed bool     `toml:"empty_allowed"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{Analysis: Analysis{MaxDiagnostics: 100}}
}

// Find walks up from startDir looking for docsema.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the nearest config; without one it returns Default.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load decodes and validates path. Unknown keys are errors.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if _, err := cfg.Registry(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Analysis.MaxDiagnostics < 0 {
		return fmt.Errorf("[analysis].max_diagnostics must not be negative")
	}
	if c.Analysis.Jobs < 0 {
		return fmt.Errorf("[analysis].jobs must not be negative")
	}
	return nil
}

// Registry returns the builtin table extended with the [[commands]] entries.
func (c *Config) Registry() (*commands.Registry, error) {
	reg := commands.NewRegistry()
	for i := range c.Commands {
		info, err := c.Commands[i].info()
		if err != nil {
			return nil, fmt.Errorf("[[commands]] #%d: %w", i+1, err)
		}
		if err := reg.Register(info); err != nil {
			return nil, fmt.Errorf("[[commands]] #%d: %w", i+1, err)
		}
	}
	return reg, nil
}

func (s *CommandSpec) info() (commands.Info, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return commands.Info{}, fmt.Errorf("missing name")
	}
	kind, err := commands.ParseKind(s.Kind)
	if err != nil {
		return commands.Info{}, fmt.Errorf("%q: %w", name, err)
	}
	single, err := commands.ParseSingleton(s.Singleton)
	if err != nil {
		return commands.Info{}, fmt.Errorf("%q: %w", name, err)
	}
	render, err := commands.ParseRender(s.Render)
	if err != nil {
		return commands.Info{}, fmt.Errorf("%q: %w", name, err)
	}
	if s.Args < 0 {
		return commands.Info{}, fmt.Errorf("%q: args must not be negative", name)
	}
	var req commands.Requirement
	for _, r := range s.Requires {
		flag, err := commands.ParseRequirement(r)
		if err != nil {
			return commands.Info{}, fmt.Errorf("%q: %w", name, err)
		}
		req |= flag
	}
	return commands.Info{
		Name:         name,
		Kind:         kind,
		Render:       render,
		Singleton:    single,
		NumArgs:      s.Args,
		IsParam:      s.Param,
		IsTParam:     s.TParam,
		EmptyAllowed: s.EmptyAllowed,
		EndName:      strings.TrimSpace(s.End),
		Requires:     req,
	}, nil
}
