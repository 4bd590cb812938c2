package executor

import "time"

// Options tunes a run.
type Options struct {
	// Workers above one enables the parallel scheduler.
	Workers int
	// Timeout bounds the whole run. Zero means no limit.
	Timeout time.Duration
	// ContinueOnFailure keeps running targets that do not depend on a failed
	// one instead of aborting the rest of the plan.
	ContinueOnFailure bool
}

// Option mutates Options.
type Option func(*Options)

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) Option {
	return func(o *Options) { o.Workers = n }
}

// WithTimeout bounds the run.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithContinueOnFailure keeps independent targets running after a failure.
func WithContinueOnFailure(enabled bool) Option {
	return func(o *Options) { o.ContinueOnFailure = enabled }
}
