package willitserver

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"willitserver/internal/errs"
)

// Config is the file form of the wrapper options.
type Config struct {
	// ChecksEnabled defaults to true when left out.
	ChecksEnabled *bool `yaml:"checks_enabled"`
	// LogLevel of the diagnostic logger, "error" when empty.
	LogLevel       string `yaml:"log_level"`
	FunctionPrefix string `yaml:"function_prefix"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ConfigReadError, err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.InvalidConfigError, err)
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Enabled() bool {
	return c.ChecksEnabled == nil || *c.ChecksEnabled
}

// Options turns the config into wrapper options, building the logger at
// the configured level.
func (c *Config) Options() ([]FuncOption, error) {
	opts := []FuncOption{WithChecksEnabled(c.Enabled())}
	if c.FunctionPrefix != "" {
		opts = append(opts, WithNamePrefix(c.FunctionPrefix))
	}
	if c.LogLevel != "" {
		l, err := NewLogger(c.LogLevel)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithLogger(l))
	}
	return opts, nil
}
