package config

import (
	"strconv"

	"github.com/pkg/errors"
)

// EnvPrefix is the prefix of all the environment variables read by ApplyEnv.
const EnvPrefix = "TBKIT_"

// LookupFunc looks up an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type envBinding struct {
	key   string
	apply func(c *Config, v string) error
}

func uintField(get func(c *Config) *uint64) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return err
		}

		*get(c) = n

		return nil
	}
}

func intField(get func(c *Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}

		*get(c) = n

		return nil
	}
}

func boolField(get func(c *Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}

		*get(c) = b

		return nil
	}
}

func stringField(get func(c *Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*get(c) = v
		return nil
	}
}

var envBindings = []envBinding{
	{"WIDTH", intField(func(c *Config) *int { return &c.Width })},
	{"PERIOD", uintField(func(c *Config) *uint64 { return &c.Period })},
	{"RESET_ASSERT", uintField(func(c *Config) *uint64 { return &c.ResetAssert })},
	{"RESET_DEASSERT", uintField(func(c *Config) *uint64 { return &c.ResetDeassert })},
	{"SETTLE", uintField(func(c *Config) *uint64 { return &c.Settle })},
	{"REPEATS", intField(func(c *Config) *int { return &c.Repeats })},
	{"DRAIN", uintField(func(c *Config) *uint64 { return &c.Drain })},
	{"CEILING", uintField(func(c *Config) *uint64 { return &c.Ceiling })},
	{"HOLD_OBJECTION", boolField(func(c *Config) *bool { return &c.HoldObjection })},
	{"LOG_LEVEL", stringField(func(c *Config) *string { return &c.LogLevel })},
	{"RECORDER_BACKEND", stringField(func(c *Config) *string { return &c.Recorder.Backend })},
	{"RECORDER_PATH", stringField(func(c *Config) *string { return &c.Recorder.Path })},
	{"RECORDER_GLOBAL_IDS", boolField(func(c *Config) *bool { return &c.Recorder.GlobalIDs })},
	{"CLICKHOUSE_ADDR", stringField(func(c *Config) *string { return &c.Recorder.Addr })},
	{"CLICKHOUSE_DATABASE", stringField(func(c *Config) *string { return &c.Recorder.Database })},
	{"CLICKHOUSE_USERNAME", stringField(func(c *Config) *string { return &c.Recorder.Username })},
	{"CLICKHOUSE_PASSWORD", stringField(func(c *Config) *string { return &c.Recorder.Password })},
	{"MONITOR", boolField(func(c *Config) *bool { return &c.Monitor.Enabled })},
	{"MONITOR_PORT", intField(func(c *Config) *int { return &c.Monitor.Port })},
}

// ApplyEnv overrides fields with the TBKIT_* variables that are set.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	for _, b := range envBindings {
		v, ok := lookup(EnvPrefix + b.key)
		if !ok {
			continue
		}

		if err := b.apply(c, v); err != nil {
			return errors.Wrapf(err, "invalid %s%s", EnvPrefix, b.key)
		}
	}

	return nil
}
