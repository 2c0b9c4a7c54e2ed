package usecase

import (
	"time"

	"github.com/secmon-lab/ascent/pkg/domain/model"
)

// Clock returns the current time
type Clock func() time.Time

type config struct {
	now      Clock
	tokenTTL time.Duration
	policy   model.EffortPolicy
}

// Option configures a use case
type Option func(*config)

// WithClock replaces the wall clock, mainly for tests
func WithClock(clock Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.now = clock
		}
	}
}

// WithTokenTTL sets the lifetime of issued access tokens
func WithTokenTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.tokenTTL = ttl
		}
	}
}

// WithEffortPolicy sets the effort submission limits
func WithEffortPolicy(policy model.EffortPolicy) Option {
	return func(c *config) {
		c.policy = policy
	}
}

func newConfig(opts []Option) config {
	c := config{
		now:      time.Now,
		tokenTTL: 24 * time.Hour,
		policy:   model.DefaultEffortPolicy(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
