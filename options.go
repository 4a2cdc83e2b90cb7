package walletauth

import (
	"time"

	"go.uber.org/zap"
)

type settings struct {
	logger *zap.Logger
	now    func() time.Time
}

// Option customizes an Issuer, Verifier, or Reconciler.
type Option func(*settings)

// WithLogger attaches a structured logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source, mainly for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

func applyOptions(opts []Option) settings {
	s := settings{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
