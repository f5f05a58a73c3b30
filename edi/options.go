package edi

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// PollPolicy controls the EFCFG busy poll. MaxAttempts == 0 polls forever,
// which is how the hardware is normally driven.
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

var DefaultPollPolicy = PollPolicy{
	Interval: time.Millisecond,
}

type Config struct {
	Poll   PollPolicy
	Logger log.Ext1FieldLogger

	// ShowInOut logs every frame at debug level
	ShowInOut bool
}

func defaultConfig() Config {
	return Config{
		Poll:   DefaultPollPolicy,
		Logger: log.StandardLogger(),
	}
}

type Option func(*Config)

func WithPollPolicy(p PollPolicy) Option {
	return func(c *Config) {
		if p.Interval < 0 {
			p.Interval = 0
		}
		if p.MaxAttempts < 0 {
			p.MaxAttempts = 0
		}
		c.Poll = p
	}
}

func WithLogger(l log.Ext1FieldLogger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

func WithShowInOut(show bool) Option {
	return func(c *Config) {
		c.ShowInOut = show
	}
}
