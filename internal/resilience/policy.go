package resilience

import "time"

// Config controls retries and the circuit breaker around oracle calls.
type Config struct {
	RetryMaxAttempts    int           `mapstructure:"max-attempts"`
	RetryInitialBackoff time.Duration `mapstructure:"initial-backoff"`
	RetryMaxBackoff     time.Duration `mapstructure:"max-backoff"`
	RetryMultiplier     float64       `mapstructure:"multiplier"`

	BreakerEnabled          bool          `mapstructure:"breaker-enabled"`
	BreakerMinRequests      uint32        `mapstructure:"breaker-min-requests"`
	BreakerFailureRatio     float64       `mapstructure:"breaker-failure-ratio"`
	BreakerOpenTimeout      time.Duration `mapstructure:"breaker-open-timeout"`
	BreakerHalfOpenMaxCalls uint32        `mapstructure:"breaker-half-open-max-calls"`
}

func DefaultConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 500 * time.Millisecond,
		RetryMaxBackoff:     5 * time.Second,
		RetryMultiplier:     2.0,

		BreakerEnabled:          true,
		BreakerMinRequests:      5,
		BreakerFailureRatio:     0.8,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 1,
	}
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.RetryMaxAttempts <= 0 {
		out.RetryMaxAttempts = def.RetryMaxAttempts
	}
	if out.RetryInitialBackoff <= 0 {
		out.RetryInitialBackoff = def.RetryInitialBackoff
	}
	if out.RetryMaxBackoff <= 0 {
		out.RetryMaxBackoff = def.RetryMaxBackoff
	}
	if out.RetryMaxBackoff < out.RetryInitialBackoff {
		out.RetryMaxBackoff = out.RetryInitialBackoff
	}
	if out.RetryMultiplier < 1.0 {
		out.RetryMultiplier = def.RetryMultiplier
	}

	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = def.BreakerMinRequests
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = def.BreakerOpenTimeout
	}
	if out.BreakerHalfOpenMaxCalls == 0 {
		out.BreakerHalfOpenMaxCalls = def.BreakerHalfOpenMaxCalls
	}

	return out
}
