// Package fastrackcfg loads and validates the JSON configuration file
// a fastrack planner process starts from: search parameters, the
// value-function data file to load, and the tracker's control cadence.
package fastrackcfg

import (
	"encoding/json"
	"os"
	"time"

	"github.com/a8m/envsubst"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// ErrInvalidConfig is wrapped by every validation failure Validate
// returns, so callers can test for it with errors.Is.
var ErrInvalidConfig = errors.New("invalid fastrack config")

const (
	// DefaultNumNeighbors is used when a config omits num_neighbors.
	DefaultNumNeighbors = 10
	// DefaultMaxRuntime is used when a config omits max_runtime.
	DefaultMaxRuntime = 5 * time.Second
)

// Config is the on-disk shape of a fastrack planner configuration.
// Field values may reference environment variables with ${VAR} or
// $VAR syntax; Load substitutes them before parsing.
type Config struct {
	SearchRadius      float64       `json:"search_radius" mapstructure:"search_radius"`
	NumNeighbors      int           `json:"num_neighbors" mapstructure:"num_neighbors"`
	MaxRuntime        time.Duration `json:"max_runtime" mapstructure:"max_runtime"`
	TimeStep          time.Duration `json:"time_step" mapstructure:"time_step"`
	ValueFunctionPath string        `json:"value_function_path" mapstructure:"value_function_path"`
}

// Load reads a JSON config file at path, substitutes environment
// variable placeholders, decodes it, applies defaults for omitted
// fields, and validates the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %q", path)
	}

	expanded, err := envsubst.Bytes(raw)
	if err != nil {
		return nil, errors.Wrap(err, "expanding environment placeholders in config")
	}

	var generic map[string]interface{}
	if err := json.Unmarshal(expanded, &generic); err != nil {
		return nil, errors.Wrap(err, "parsing config JSON")
	}

	cfg := &Config{
		NumNeighbors: DefaultNumNeighbors,
		MaxRuntime:   DefaultMaxRuntime,
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     cfg,
	})
	if err != nil {
		return nil, errors.Wrap(err, "building config decoder")
	}
	if err := decoder.Decode(generic); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that a Config's fields describe a runnable planner.
func (c *Config) Validate() error {
	if c.SearchRadius <= 0 {
		return errors.Wrap(ErrInvalidConfig, "search_radius must be positive")
	}
	if c.NumNeighbors < 1 {
		return errors.Wrap(ErrInvalidConfig, "num_neighbors must be at least 1")
	}
	if c.MaxRuntime <= 0 {
		return errors.Wrap(ErrInvalidConfig, "max_runtime must be positive")
	}
	if c.TimeStep < 0 {
		return errors.Wrap(ErrInvalidConfig, "time_step must not be negative")
	}
	return nil
}
