package runloop

import "fmt"

// DefaultLocalQueueCapacity is the per-worker local queue capacity used
// when no WithLocalQueueCapacity option is supplied.
const DefaultLocalQueueCapacity = 512

// DefaultStealTickInterval is the number of successfully-run tasks after
// which a Runner preemptively steals from the global queue even if its
// local queue is non-empty, as a fairness heuristic.
const DefaultStealTickInterval = 64

// config holds resolved construction options for an Executor or
// LocalExecutor.
type config struct {
	workers           int
	localQueueCap     int
	stealTickInterval int
	logger            Logger
}

// Option configures an Executor or LocalExecutor at construction time.
type Option interface {
	apply(*config) error
}

type optionFunc func(*config) error

func (f optionFunc) apply(c *config) error { return f(c) }

// WithWorkers sets the number of worker goroutines a multi-worker
// Executor starts in RunWorkers. It has no effect
// on LocalExecutor, which is always single-threaded by construction.
func WithWorkers(n int) Option {
	return optionFunc(func(c *config) error {
		if n < 1 {
			return fmt.Errorf("runloop: WithWorkers: n must be >= 1, got %d", n)
		}
		c.workers = n
		return nil
	})
}

// WithLocalQueueCapacity overrides the per-worker local queue capacity.
// It must be a power of two.
func WithLocalQueueCapacity(n int) Option {
	return optionFunc(func(c *config) error {
		if n <= 0 || n&(n-1) != 0 {
			return fmt.Errorf("runloop: WithLocalQueueCapacity: must be a power of two, got %d", n)
		}
		c.localQueueCap = n
		return nil
	})
}

// WithStealTickInterval overrides the fairness steal interval.
func WithStealTickInterval(n int) Option {
	return optionFunc(func(c *config) error {
		if n < 1 {
			return fmt.Errorf("runloop: WithStealTickInterval: n must be >= 1, got %d", n)
		}
		c.stealTickInterval = n
		return nil
	})
}

// WithLogger installs a Logger for scheduler diagnostics. The default is
// NewNoopLogger().
func WithLogger(l Logger) Option {
	return optionFunc(func(c *config) error {
		if l != nil {
			c.logger = l
		}
		return nil
	})
}

func resolveOptions(opts []Option) (*config, error) {
	c := &config{
		workers:           1,
		localQueueCap:     DefaultLocalQueueCapacity,
		stealTickInterval: DefaultStealTickInterval,
		logger:            NewNoopLogger(),
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o.apply(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
