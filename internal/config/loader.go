package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/turtacn/ctapred/pkg/errors"
)

// envPrefix is the environment variable prefix used by all pipeline settings.
const envPrefix = "CTAPRED"

// newViper builds a pre-configured Viper instance with the pipeline's
// standard settings: YAML file type, CTAPRED_ env prefix, automatic env
// binding, and a key replacer that maps "." → "_" so that nested keys like
// "fingerprint.scheme" resolve to "CTAPRED_FINGERPRINT_SCHEME".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerDefaults(v)
	return v
}

// registerDefaults declares every config key to viper with its default value.
// Unmarshal only considers keys viper knows about, so without this the
// automatic env binding would never surface CTAPRED_* variables that appear
// in no config file.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("fingerprint.scheme", DefaultScheme)
	v.SetDefault("fingerprint.n_bits", DefaultNBits)
	v.SetDefault("fingerprint.radius", DefaultRadius)
	v.SetDefault("reference.standard_value", DefaultStandardValue)
	v.SetDefault("reference.tc", DefaultTc)
	v.SetDefault("reference.force", false)
	v.SetDefault("predict.top_k", DefaultTopK)
	v.SetDefault("predict.cutoff", DefaultCutoff)
	v.SetDefault("workers", 0)
	v.SetDefault("verbose", false)
	v.SetDefault("input_dir", DefaultInputDir)
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("log.output_paths", []string{"stderr"})
}

// Load reads the YAML file at configPath (when non-empty), merges CTAPRED_*
// environment variables and the supplied command-line flag set, applies
// defaults for unset fields, normalizes scheme-dependent parameters, and
// validates the result.  It returns a fully-populated *Config or a
// descriptive error.  Flags win over env vars, which win over the file.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Configuration(fmt.Sprintf("failed to read config file %q", configPath)).WithCause(err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from CTAPRED_* environment variables,
// with no config file or flags.  Used by tests and scripted invocations.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// flagKeys maps command-line flag names onto config keys.  Only flags that
// the user actually set are bound, so that file and env values survive when
// a flag is left at its default.
var flagKeys = map[string]string{
	"fingerprint": "fingerprint.scheme",
	"nbits":       "fingerprint.n_bits",
	"radius":      "fingerprint.radius",
	"sv":          "reference.standard_value",
	"tc":          "reference.tc",
	"force":       "reference.force",
	"k":           "predict.top_k",
	"cutoff":      "predict.cutoff",
	"workers":     "workers",
	"verbose":     "verbose",
	"input":       "input_dir",
	"output":      "output_dir",
	"data":        "data_dir",
	"log-level":   "log.level",
	"log-format":  "log.format",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = fmt.Errorf("config: failed to bind flag %q: %w", f.Name, err)
		}
	})
	return bindErr
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, normalizes scheme-dependent parameters, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Configuration("failed to unmarshal configuration").WithCause(err)
	}

	ApplyDefaults(cfg)
	cfg.Finalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
