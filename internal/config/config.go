// Package config loads the tsmend.toml project manifest.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file the loader walks parent directories for.
const ManifestName = "tsmend.toml"

// Config is the full project configuration with defaults applied.
type Config struct {
	Project   ProjectConfig   `toml:"project"`
	Tools     ToolsConfig     `toml:"tools"`
	Inference InferenceConfig `toml:"inference"`
	Priority  PriorityConfig  `toml:"priority"`
	Safety    SafetyConfig    `toml:"safety"`
}

type ProjectConfig struct {
	Name string   `toml:"name"`
	Src  []string `toml:"src"`
}

type ToolsConfig struct {
	Checker        []string `toml:"checker"`
	Linter         []string `toml:"linter"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Timeout returns the subprocess timeout for one tool invocation.
func (t ToolsConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

type InferenceConfig struct {
	// Vocabulary maps identifier keywords to concrete types,
	// e.g. "ingredient" -> "Ingredient".
	Vocabulary map[string]string `toml:"vocabulary"`
	// ConfidenceThreshold gates which heuristics may fire; heuristics
	// below the threshold fall through to the next in the chain.
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
	// ContextWindow is the number of surrounding lines inspected by the
	// context heuristic.
	ContextWindow int `toml:"context_window"`
}

type PriorityConfig struct {
	// DirWeights maps path fragments to weights added to a file's
	// priority score, e.g. "types" -> 30, "services" -> 25.
	DirWeights map[string]int `toml:"dir_weights"`
}

type SafetyConfig struct {
	MinBatch          int     `toml:"min_batch"`
	MaxBatch          int     `toml:"max_batch"`
	CheckpointEvery   int     `toml:"checkpoint_every"`
	ErrorRateLimit    float64 `toml:"error_rate_limit"`
	CorruptionLimit   float64 `toml:"corruption_limit"`
	MaxDiagnostics    int     `toml:"max_diagnostics"`
	LedgerFile        string  `toml:"ledger_file"`
	DisableRunHistory bool    `toml:"disable_run_history"`
}

// Default returns the configuration used when no manifest exists.
func Default() Config {
	return Config{
		Project: ProjectConfig{
			Src: []string{"src"},
		},
		Tools: ToolsConfig{
			Checker:        []string{"yarn", "tsc", "--noEmit"},
			Linter:         []string{"yarn", "lint"},
			TimeoutSeconds: 300,
		},
		Inference: InferenceConfig{
			Vocabulary:          map[string]string{},
			ConfidenceThreshold: 0.3,
			ContextWindow:       3,
		},
		Priority: PriorityConfig{
			DirWeights: map[string]int{
				"types":      30,
				"services":   25,
				"utils":      15,
				"components": 10,
			},
		},
		Safety: SafetyConfig{
			MinBatch:        5,
			MaxBatch:        50,
			CheckpointEvery: 10,
			ErrorRateLimit:  0.20,
			CorruptionLimit: 0.30,
			MaxDiagnostics:  2000,
			LedgerFile:      ".tsmend-metrics.json",
		},
	}
}

// Find walks up from startDir looking for tsmend.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
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

// Load reads a manifest and overlays it on the defaults. Sections the
// manifest omits keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}

	if meta.IsDefined("tools", "checker") && len(cfg.Tools.Checker) == 0 {
		return Config{}, fmt.Errorf("%s: [tools].checker must not be empty", path)
	}
	if meta.IsDefined("tools", "linter") && len(cfg.Tools.Linter) == 0 {
		return Config{}, fmt.Errorf("%s: [tools].linter must not be empty", path)
	}
	if meta.IsDefined("project", "name") && strings.TrimSpace(cfg.Project.Name) == "" {
		return Config{}, fmt.Errorf("%s: [project].name must not be blank", path)
	}
	if cfg.Safety.MinBatch < 1 {
		return Config{}, fmt.Errorf("%s: [safety].min_batch must be >= 1", path)
	}
	if cfg.Safety.MaxBatch < cfg.Safety.MinBatch {
		return Config{}, fmt.Errorf("%s: [safety].max_batch must be >= min_batch", path)
	}
	if cfg.Inference.ConfidenceThreshold < 0 || cfg.Inference.ConfidenceThreshold > 1 {
		return Config{}, fmt.Errorf("%s: [inference].confidence_threshold must be in [0,1]", path)
	}
	return cfg, nil
}

// LoadFor resolves the config for a project root: manifest if present,
// defaults otherwise. Returns the manifest path when one was found.
func LoadFor(root string) (Config, string, error) {
	path, ok, err := Find(root)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, path, err
	}
	return cfg, path, nil
}
