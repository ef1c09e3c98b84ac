// Package pipeline provides the core optimization pipeline for keygen.
//
// This package implements the compile → score → search flow shared by the
// CLI and the HTTP server. Centralizing it keeps caching and configuration
// behavior identical across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Compile: turn a corpus string into a quartad frequency table
//  2. Score: evaluate one layout against the table
//  3. Search: anneal or exhaustively refine toward better layouts
//
// Compilation and scalar scoring are cached by content hash; search is
// stochastic and always runs.
//
// # Usage
//
//	setup, err := pipeline.LoadSetup(configPath) // "" for built-in defaults
//	if err != nil {
//	    log.Fatal(err)
//	}
//	runner := pipeline.NewRunner(cache, nil, logger)
//	out, err := runner.Optimize(ctx, corpus, setup, pipeline.OptimizeOptions{
//	    Mode: pipeline.ModeAnneal,
//	})
package pipeline

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/lrvideckis/keygen/pkg/errors"
	"github.com/lrvideckis/keygen/pkg/keyboard"
	"github.com/lrvideckis/keygen/pkg/penalty"
	"github.com/lrvideckis/keygen/pkg/search"
)

// Search modes.
const (
	ModeAnneal = "anneal"
	ModeRefine = "refine"
)

// ValidModes is the set of supported search modes.
var ValidModes = map[string]bool{
	ModeAnneal: true,
	ModeRefine: true,
}

// ValidateMode checks that a search mode is valid.
func ValidateMode(mode string) error {
	if !ValidModes[mode] {
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid mode: %q (must be one of: anneal, refine)", mode)
	}
	return nil
}

// FileConfig is the on-disk TOML configuration: geometry overrides, weight
// tuning overrides, and named layouts in their textual form. Everything is
// optional; an absent file means built-in defaults.
type FileConfig struct {
	Geometry *keyboard.GeometryConfig `toml:"geometry"`
	Weights  *penalty.Weights         `toml:"weights"`
	Layouts  map[string]string        `toml:"layouts"`
}

// Setup is a fully resolved configuration: the geometry, the weight tuning,
// the validated reference layout, and any additional named layouts.
type Setup struct {
	Geometry  *keyboard.Geometry
	Weights   penalty.Weights
	Reference keyboard.Layout
	Layouts   map[string]keyboard.Layout
}

// Model builds the penalty model for this setup.
func (s *Setup) Model() *penalty.Model {
	return penalty.NewModel(s.Geometry, s.Weights)
}

// ParseLayout decodes a layout's textual form over this setup's geometry.
func (s *Setup) ParseLayout(text string) (keyboard.Layout, error) {
	return keyboard.Parse(s.Geometry, text)
}

// LoadSetup resolves a config file into a Setup. An empty path yields the
// built-in defaults (default geometry, default weights, reference layout).
func LoadSetup(path string) (*Setup, error) {
	var cfg FileConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.New(errors.ErrCodeFileNotFound, "config file %s not found", path)
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
		}
	}
	return cfg.Build()
}

// Build resolves the config over the built-in defaults and validates the
// reference layout once, per the strict-variant contract: a missing required
// character halts startup here, never mid-search.
func (c *FileConfig) Build() (*Setup, error) {
	geo, err := c.Geometry.Build()
	if err != nil {
		return nil, err
	}

	weights := penalty.DefaultWeights()
	if c.Weights != nil {
		weights = *c.Weights
	}

	setup := &Setup{
		Geometry: geo,
		Weights:  weights,
		Layouts:  make(map[string]keyboard.Layout),
	}
	for name, text := range c.Layouts {
		lay, err := keyboard.Parse(geo, text)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "layout %q", name)
		}
		setup.Layouts[name] = lay
	}

	if ref, ok := setup.Layouts["reference"]; ok {
		if err := ref.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "reference layout")
		}
		setup.Reference = ref
	} else {
		if c.Geometry != nil {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"a custom geometry requires a [layouts] reference entry")
		}
		setup.Reference = keyboard.Reference()
	}
	return setup, nil
}

// OptimizeOptions configures one Runner.Optimize run.
type OptimizeOptions struct {
	// Mode is ModeAnneal or ModeRefine.
	Mode string
	// Search holds the knobs the search honors as parameters.
	Search search.Options
	// Start, when non-empty, names a layout from the setup to start from
	// instead of the reference.
	Start string
}

// ValidateAndSetDefaults checks required fields and applies defaults.
func (o *OptimizeOptions) ValidateAndSetDefaults() error {
	if o.Mode == "" {
		o.Mode = ModeAnneal
	}
	return ValidateMode(o.Mode)
}
