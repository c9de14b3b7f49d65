// Package config defines all configuration structures for the ctapred
// pipeline.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"

	"github.com/turtacn/ctapred/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ctapred/pkg/errors"
	"github.com/turtacn/ctapred/pkg/types/chem"
)

// FingerprintConfig holds fingerprint-generation parameters.  Radius is
// ignored for avalon and maccs, and NBits is forced to 116 for maccs; both
// adjustments happen in Finalize, before validation.
type FingerprintConfig struct {
	Scheme string `mapstructure:"scheme"`
	NBits  int    `mapstructure:"n_bits"`
	Radius int    `mapstructure:"radius"`
}

// ReferenceConfig holds CTA reference-construction thresholds.
type ReferenceConfig struct {
	// StandardValue is the maximum activity value in nM for a record to be
	// considered active (lower is more potent).
	StandardValue float64 `mapstructure:"standard_value"`

	// Tc is the similarity threshold used as a redundancy filter during
	// reference construction.
	Tc float64 `mapstructure:"tc"`

	// Force allows re-deriving an already initialized CTA dataset.
	Force bool `mapstructure:"force"`
}

// PredictConfig holds target-ranking parameters.
type PredictConfig struct {
	// TopK is the list of top-k neighbor counts; one ranked output is
	// produced per value.
	TopK []int `mapstructure:"top_k"`

	// Cutoff is the minimum similarity score for a query/reference pair to
	// be retained by the search engine.
	Cutoff float64 `mapstructure:"cutoff"`
}

// Config is the root configuration for a pipeline run.
type Config struct {
	Fingerprint FingerprintConfig `mapstructure:"fingerprint"`
	Reference   ReferenceConfig   `mapstructure:"reference"`
	Predict     PredictConfig     `mapstructure:"predict"`

	// Workers is the worker-pool size for fingerprinting and similarity
	// scoring.  Zero or negative means "use all available cores".
	Workers int `mapstructure:"workers"`

	// Verbose enables per-record error reporting during structure processing.
	Verbose bool `mapstructure:"verbose"`

	// InputDir is the directory containing QueryList<N>_smiles.csv files.
	InputDir string `mapstructure:"input_dir"`

	// OutputDir receives prediction outputs, CTA dataset exports, and the
	// run transcript.
	OutputDir string `mapstructure:"output_dir"`

	// DataDir is the root of the persistent stores (refined activity data
	// and the CTA reference artifact).
	DataDir string `mapstructure:"data_dir"`

	Log logging.LogConfig `mapstructure:"log"`
}

// FingerprintParams converts the raw fingerprint section into the typed,
// normalized parameter set.  The scheme must already have been validated.
func (c *Config) FingerprintParams() chem.FingerprintParams {
	p := chem.FingerprintParams{
		Scheme: chem.Scheme(c.Fingerprint.Scheme),
		NBits:  c.Fingerprint.NBits,
		Radius: c.Fingerprint.Radius,
	}
	p.Normalize()
	return p
}

// Finalize normalizes scheme-dependent fields in place.  It must run after
// unmarshalling and before Validate so that inapplicable parameters (radius
// for avalon/maccs, nBits for maccs) are overridden rather than rejected.
func (c *Config) Finalize() {
	p := c.FingerprintParams()
	c.Fingerprint.NBits = p.NBits
	c.Fingerprint.Radius = p.Radius
}

// Validate checks every configured parameter against its documented range.
// Any violation is a Configuration error: the process must reject it at the
// boundary, before any processing begins.
func (c *Config) Validate() error {
	scheme, err := chem.ParseScheme(c.Fingerprint.Scheme)
	if err != nil {
		return err
	}
	p := chem.FingerprintParams{Scheme: scheme, NBits: c.Fingerprint.NBits, Radius: c.Fingerprint.Radius}
	if err := p.Validate(); err != nil {
		return err
	}

	if c.Reference.StandardValue < MinStandardValue || c.Reference.StandardValue > MaxStandardValue {
		return errors.Configuration(fmt.Sprintf("standard_value must be in [%g, %g] nM, got %g",
			MinStandardValue, MaxStandardValue, c.Reference.StandardValue))
	}
	if c.Reference.Tc < MinTc || c.Reference.Tc > MaxTc {
		return errors.Configuration(fmt.Sprintf("Tc threshold must be in [%g, %g], got %g",
			MinTc, MaxTc, c.Reference.Tc))
	}
	if c.Predict.Cutoff < 0 || c.Predict.Cutoff > 1 {
		return errors.Configuration(fmt.Sprintf("similarity cutoff must be in [0, 1], got %g", c.Predict.Cutoff))
	}
	if len(c.Predict.TopK) == 0 {
		return errors.Configuration("at least one top-k value is required")
	}
	for _, k := range c.Predict.TopK {
		if k < 1 {
			return errors.Configuration(fmt.Sprintf("top-k values must be positive, got %d", k))
		}
	}
	if c.InputDir == "" {
		return errors.Configuration("input_dir must not be empty")
	}
	if c.OutputDir == "" {
		return errors.Configuration("output_dir must not be empty")
	}
	if c.DataDir == "" {
		return errors.Configuration("data_dir must not be empty")
	}
	return nil
}
