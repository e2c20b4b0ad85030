package app

import (
	"time"

	"github.com/streamrace/bountyboard/internal/domain/bounty"
	"github.com/streamrace/bountyboard/internal/domain/roster"
	"github.com/streamrace/bountyboard/pkg/logger"
)

// Default service configuration constants.
const defaultSessionTTL = 30 * time.Minute

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRegistry replaces the default player registry.
func WithRegistry(r *roster.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithCalculator replaces the default bounty calculator.
func WithCalculator(c *bounty.Calculator) Option {
	return func(s *Service) {
		if c != nil {
			s.calc = c
		}
	}
}

// WithSessionTTL bounds how long an unfinalized race session lives.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}
