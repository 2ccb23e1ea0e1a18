package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"qgraph/internal/ir"
	"qgraph/internal/quant"
)

const configFileName = "qgraph.toml"

type projectConfig struct {
	Observers map[string]observerConfig `toml:"observers"`
	Quantize  quantizeConfig            `toml:"quantize"`
	Trace     traceConfig               `toml:"trace"`

	// Path is the file the config was read from; empty for defaults.
	Path string `toml:"-"`
}

type observerConfig struct {
	Op   string `toml:"op"`
	Name string `toml:"name"`
}

type quantizeConfig struct {
	KeepUnresolvedObservers bool `toml:"keep_unresolved_observers"`
}

type traceConfig struct {
	Level string `toml:"level"`
}

func defaultConfig() projectConfig {
	return projectConfig{
		Observers: map[string]observerConfig{
			"activation": {Op: string(ir.PrimCallExtern), Name: "observe_activation"},
			"param":      {Op: string(ir.PrimCallExtern), Name: "observe_param"},
		},
		Trace: traceConfig{Level: "off"},
	}
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
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

// readConfig parses path over the defaults. Keys the file leaves out keep
// their default values; an [observers] table replaces the default
// templates as a whole.
func readConfig(path string) (projectConfig, error) {
	cfg := defaultConfig()
	var file projectConfig
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return projectConfig{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("observers") {
		cfg.Observers = file.Observers
	}
	if meta.IsDefined("quantize", "keep_unresolved_observers") {
		cfg.Quantize.KeepUnresolvedObservers = file.Quantize.KeepUnresolvedObservers
	}
	if meta.IsDefined("trace", "level") {
		cfg.Trace.Level = file.Trace.Level
	}
	cfg.Path = path
	if err := cfg.validate(); err != nil {
		return projectConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c projectConfig) validate() error {
	var errs []error
	kinds := make([]string, 0, len(c.Observers))
	for k := range c.Observers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		if _, err := quant.ParseObserverKind(k); err != nil {
			errs = append(errs, fmt.Errorf("[observers.%s]: %w", k, err))
			continue
		}
		switch op := ir.Symbol(c.Observers[k].Op); {
		case !op.Valid():
			errs = append(errs, fmt.Errorf("[observers.%s].op: %q is not a qualified operator name", k, op))
		case op != ir.PrimCallExtern:
			errs = append(errs, fmt.Errorf("[observers.%s].op: %q is not supported, observers must be %s calls", k, op, ir.PrimCallExtern))
		}
	}
	return errors.Join(errs...)
}

// templates builds one observer template per configured kind. The
// templates live in a private graph and carry the callee name as the
// "name" attribute.
func (c projectConfig) templates() (quant.Observers, error) {
	g := ir.NewGraph()
	obs := make(quant.Observers, len(c.Observers))
	for k, oc := range c.Observers {
		kind, err := quant.ParseObserverKind(k)
		if err != nil {
			return nil, err
		}
		if _, dup := obs[kind]; dup {
			return nil, fmt.Errorf("observer kind %s configured twice", kind)
		}
		n := g.Create(ir.Symbol(oc.Op), 0)
		if oc.Name != "" {
			n.SetAttr("name", ir.StringConst(oc.Name))
		}
		obs[kind] = n
	}
	return obs, nil
}

var loadedConfig *projectConfig

// loadConfig returns the project config, reading it on first use from
// --config or from the nearest qgraph.toml.
func loadConfig(cmd *cobra.Command) (projectConfig, error) {
	if loadedConfig != nil {
		return *loadedConfig, nil
	}
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return projectConfig{}, err
	}
	if path == "" {
		found, ok, err := findConfig(".")
		if err != nil {
			return projectConfig{}, err
		}
		if ok {
			path = found
		}
	}
	cfg := defaultConfig()
	if path != "" {
		if cfg, err = readConfig(path); err != nil {
			return projectConfig{}, err
		}
	}
	loadedConfig = &cfg
	return cfg, nil
}
