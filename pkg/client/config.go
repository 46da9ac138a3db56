package client

import (
	"math"
	"time"
)

// DefaultRefreshInterval applies when auto refresh is on and no interval is set.
const DefaultRefreshInterval = 60 * time.Second

// Config holds the client settings that are usually read from the environment
// with config.Load.
type Config struct {
	// AutoRefresh starts polling when the client is created.
	AutoRefresh bool `env:"TOGGLE_AUTO_REFRESH" envDefault:"false"`

	// RefreshInterval is the polling period in seconds.
	RefreshInterval int `env:"TOGGLE_REFRESH_INTERVAL"`

	// TTL is the cache lifetime in seconds; unset means cached snapshots
	// never expire.
	TTL *float64 `env:"TOGGLE_TTL"`
}

// Interval returns the polling period, falling back to DefaultRefreshInterval.
func (c Config) Interval() time.Duration {
	if c.RefreshInterval <= 0 {
		return DefaultRefreshInterval
	}
	return time.Duration(c.RefreshInterval) * time.Second
}

func (c Config) ttl() *float64 {
	if c.TTL == nil || math.IsNaN(*c.TTL) {
		return nil
	}
	v := *c.TTL
	return &v
}
