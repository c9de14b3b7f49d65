package config

import "runtime"

// Default values and documented parameter ranges.
const (
	DefaultScheme = "ecfp"
	DefaultNBits  = 2048
	DefaultRadius = 2

	// DefaultStandardValue is the activity threshold in nM below which a
	// record counts as active.
	DefaultStandardValue = 10000.0
	MinStandardValue     = 0.01
	MaxStandardValue     = 10000.0

	// DefaultTc is the redundancy-filter similarity threshold used during
	// CTA reference construction.
	DefaultTc = 0.85
	MinTc     = 0.1
	MaxTc     = 1.0

	// DefaultCutoff is the minimum similarity retained by the search engine.
	DefaultCutoff = 0.1

	DefaultInputDir  = "input"
	DefaultOutputDir = "output"
	DefaultDataDir   = "Data"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

// DefaultTopK is the default list of top-k neighbor counts.
var DefaultTopK = []int{1}

// ApplyDefaults fills every zero-value field in cfg with the pipeline
// default.  Fields already set by the caller are left unchanged so that
// explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Fingerprint.Scheme == "" {
		cfg.Fingerprint.Scheme = DefaultScheme
	}
	if cfg.Fingerprint.NBits == 0 {
		cfg.Fingerprint.NBits = DefaultNBits
	}
	if cfg.Fingerprint.Radius == 0 {
		cfg.Fingerprint.Radius = DefaultRadius
	}

	if cfg.Reference.StandardValue == 0 {
		cfg.Reference.StandardValue = DefaultStandardValue
	}
	if cfg.Reference.Tc == 0 {
		cfg.Reference.Tc = DefaultTc
	}

	if len(cfg.Predict.TopK) == 0 {
		cfg.Predict.TopK = append([]int(nil), DefaultTopK...)
	}
	if cfg.Predict.Cutoff == 0 {
		cfg.Predict.Cutoff = DefaultCutoff
	}

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}

	if cfg.InputDir == "" {
		cfg.InputDir = DefaultInputDir
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
