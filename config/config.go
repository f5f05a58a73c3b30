// Package config loads the optional editool YAML configuration file.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mame82/editool/edi"
)

type Poll struct {
	Interval    time.Duration `yaml:"interval"`
	MaxAttempts int           `yaml:"max_attempts"`
}

type Config struct {
	// Device selects the FTDI bridge by serial number or index
	Device    string `yaml:"device"`
	Simulate  bool   `yaml:"simulate"`
	LogLevel  string `yaml:"log_level"`
	ShowInOut bool   `yaml:"show_in_out"`
	Poll      Poll   `yaml:"poll"`
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Poll: Poll{
			Interval: edi.DefaultPollPolicy.Interval,
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error if
// optional is set.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := Parse(raw, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func Parse(raw []byte, cfg *Config) error {
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return err
	}
	if cfg.Poll.Interval < 0 {
		return errors.New("poll.interval must not be negative")
	}
	if cfg.Poll.MaxAttempts < 0 {
		return errors.New("poll.max_attempts must not be negative")
	}
	return nil
}

func (c Config) PollPolicy() edi.PollPolicy {
	return edi.PollPolicy{
		Interval:    c.Poll.Interval,
		MaxAttempts: c.Poll.MaxAttempts,
	}
}
