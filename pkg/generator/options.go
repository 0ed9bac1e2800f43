package generator

import (
	"log/slog"
	"time"
)

// DefaultSentinel replaces input_data and expected_result when they are absent.
const DefaultSentinel = "N/A"

// Observer receives one call per Generate run.
type Observer interface {
	ObserveGeneration(res Result, elapsed time.Duration)
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithSentinel overrides the "not available" placeholder used during formatting.
func WithSentinel(s string) Option {
	return func(g *Generator) {
		g.sentinel = s
	}
}

// WithMaxPaths stops enumeration after n paths. Zero or less means unlimited.
func WithMaxPaths(n int) Option {
	return func(g *Generator) {
		g.maxPaths = n
	}
}

// WithObserver registers an observer (e.g. metrics) notified after each Generate.
func WithObserver(o Observer) Option {
	return func(g *Generator) {
		g.observer = o
	}
}
