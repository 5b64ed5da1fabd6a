// Package config holds the parameters of a testbench run and loads them from
// YAML files, .env files and TBKIT_* environment variables.
package config

import (
	"bytes"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/tbkit/sim"
)

// Recorder backends.
const (
	RecorderNone       = "none"
	RecorderSQLite     = "sqlite"
	RecorderClickHouse = "clickhouse"
)

// RecorderConfig selects where checks and verdicts are recorded.
type RecorderConfig struct {
	Backend  string `yaml:"backend"`
	Path     string `yaml:"path"`
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// GlobalIDs makes run and objection IDs unique across processes, for
	// runs that record into one shared database.
	GlobalIDs bool `yaml:"global_ids"`
}

// MonitorConfig controls the live monitoring server.
type MonitorConfig struct {
	Enabled     bool `yaml:"enabled"`
	Port        int  `yaml:"port"`
	OpenBrowser bool `yaml:"open_browser"`
}

// Config is the full description of a run. All times are in simulation time
// units.
type Config struct {
	Width         int    `yaml:"width"`
	Period        uint64 `yaml:"period"`
	ResetAssert   uint64 `yaml:"reset_assert"`
	ResetDeassert uint64 `yaml:"reset_deassert"`
	Settle        uint64 `yaml:"settle"`
	Repeats       int    `yaml:"repeats"`
	Drain         uint64 `yaml:"drain"`
	Ceiling       uint64 `yaml:"ceiling"`
	HoldObjection bool   `yaml:"hold_objection"`
	LogLevel      string `yaml:"log_level"`

	Recorder RecorderConfig `yaml:"recorder"`
	Monitor  MonitorConfig  `yaml:"monitor"`
}

// Default returns the configuration of the reference counter test.
func Default() Config {
	return Config{
		Width:         4,
		Period:        10,
		ResetAssert:   3,
		ResetDeassert: 35,
		Settle:        10,
		Repeats:       5,
		Drain:         20,
		Ceiling:       10000,
		LogLevel:      "info",
		Recorder: RecorderConfig{
			Backend: RecorderNone,
		},
	}
}

// Load builds a configuration from the defaults, the YAML file at path (if
// path is not empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Without arguments it loads ./.env if that file exists.
// Variables already set are not overridden.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}

		files = []string{".env"}
	}

	return errors.Wrap(godotenv.Load(files...), "load env files")
}

// MergeFile overrides the fields present in the YAML file. Unknown fields are
// rejected.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read config file")
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(c); err != nil {
		return errors.Wrapf(err, "failed to parse %s", path)
	}

	return nil
}

// Validate reports the first inconsistent parameter.
func (c Config) Validate() error {
	switch {
	case c.Width < 1 || c.Width > 63:
		return errors.Errorf("width must be within [1, 63], got %d", c.Width)
	case c.Period == 0 || c.Period%2 != 0:
		return errors.Errorf("period must be a positive even number, got %d",
			c.Period)
	case c.ResetDeassert <= c.ResetAssert:
		return errors.Errorf("reset deassert time %d must be after assert time %d",
			c.ResetDeassert, c.ResetAssert)
	case c.Repeats < 0:
		return errors.Errorf("repeats must not be negative, got %d", c.Repeats)
	case c.Ceiling == 0:
		return errors.New("ceiling must be positive")
	case c.Ceiling <= c.ResetDeassert:
		return errors.Errorf("ceiling %d must be after reset deassertion %d",
			c.Ceiling, c.ResetDeassert)
	}

	if _, err := sim.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	switch c.Recorder.Backend {
	case RecorderNone, RecorderSQLite, "":
	case RecorderClickHouse:
		if c.Recorder.Addr == "" {
			return errors.New("clickhouse recorder needs an address")
		}
	default:
		return errors.Errorf("unknown recorder backend %q", c.Recorder.Backend)
	}

	return nil
}
