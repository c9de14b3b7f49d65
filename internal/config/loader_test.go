package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ctapred/internal/config"
)

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("fingerprint", "", "")
	fs.Int("nbits", 0, "")
	fs.Int("radius", 0, "")
	fs.Float64("sv", 0, "")
	fs.Float64("tc", 0, "")
	fs.Bool("force", false, "")
	fs.IntSlice("k", nil, "")
	fs.Float64("cutoff", 0, "")
	fs.Int("workers", 0, "")
	fs.String("input", "", "")
	fs.String("output", "", "")
	fs.String("data", "", "")
	fs.String("log-level", "", "")
	return fs
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultScheme, cfg.Fingerprint.Scheme)
	assert.Equal(t, config.DefaultStandardValue, cfg.Reference.StandardValue)
	assert.Equal(t, config.DefaultTopK, cfg.Predict.TopK)
}

func TestLoad_FlagsOverrideDefaults(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{
		"--fingerprint", "fcfp",
		"--nbits", "1024",
		"--radius", "3",
		"--tc", "0.7",
		"--k", "1,3,5",
		"--input", "queries",
	}))

	cfg, err := config.Load("", fs)
	require.NoError(t, err)

	assert.Equal(t, "fcfp", cfg.Fingerprint.Scheme)
	assert.Equal(t, 1024, cfg.Fingerprint.NBits)
	assert.Equal(t, 3, cfg.Fingerprint.Radius)
	assert.Equal(t, 0.7, cfg.Reference.Tc)
	assert.Equal(t, []int{1, 3, 5}, cfg.Predict.TopK)
	assert.Equal(t, "queries", cfg.InputDir)
	// Untouched sections keep their defaults.
	assert.Equal(t, config.DefaultStandardValue, cfg.Reference.StandardValue)
}

func TestLoad_UnsetFlagsDoNotShadowFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ctapred.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"fingerprint:\n  scheme: avalon\n  n_bits: 256\nreference:\n  tc: 0.6\n"), 0o644))

	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--tc", "0.9"}))

	cfg, err := config.Load(path, fs)
	require.NoError(t, err)

	// The set flag wins over the file; the unset ones leave the file values.
	assert.Equal(t, 0.9, cfg.Reference.Tc)
	assert.Equal(t, "avalon", cfg.Fingerprint.Scheme)
	assert.Equal(t, 256, cfg.Fingerprint.NBits)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("CTAPRED_FINGERPRINT_SCHEME", "maccs")
	t.Setenv("CTAPRED_PREDICT_CUTOFF", "0.25")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "maccs", cfg.Fingerprint.Scheme)
	assert.Equal(t, 0.25, cfg.Predict.Cutoff)
	// Finalize applied the maccs overrides after env merge.
	assert.Equal(t, 116, cfg.Fingerprint.NBits)
	assert.Zero(t, cfg.Fingerprint.Radius)
}

func TestLoad_InvalidFlagValueIsRejected(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--tc", "7.5"}))

	_, err := config.Load("", fs)
	require.Error(t, err)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}
