package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const defaultConfigFile = "gpulayout.toml"

// projectConfig is the gpulayout.toml project file:
//
//	[[target]]
//	schema = "shaders/scene.schema"
//	output = "shaders/scene.h"
type projectConfig struct {
	Targets []target `toml:"target"`
}

type target struct {
	Schema string `toml:"schema"`
	Output string `toml:"output"`
}

// loadConfig reads a project file. Relative paths are resolved against the
// file's directory.
func loadConfig(path string) (*projectConfig, error) {
	var cfg projectConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	base := filepath.Dir(path)
	for i, t := range cfg.Targets {
		if t.Schema == "" {
			return nil, fmt.Errorf("%s: target %d has no schema", path, i+1)
		}
		cfg.Targets[i].Schema = resolvePath(base, t.Schema)
		if t.Output != "" {
			cfg.Targets[i].Output = resolvePath(base, t.Output)
		}
	}
	return &cfg, nil
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// resolveTargets builds the work list from positional schemas, or from the
// project file when none are given.
func resolveTargets(args []string, output, cfgPath string) ([]target, error) {
	if len(args) > 0 {
		if output != "" && len(args) > 1 {
			return nil, fmt.Errorf("--output takes a single schema, got %d", len(args))
		}
		targets := make([]target, len(args))
		for i, a := range args {
			targets[i] = target{Schema: a, Output: output}
		}
		return targets, nil
	}

	if _, err := os.Stat(cfgPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no schema given and %s not found", cfgPath)
		}
		return nil, err
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("%s defines no [[target]] entries", cfgPath)
	}
	return cfg.Targets, nil
}
