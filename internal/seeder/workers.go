package seeder

import (
	"context"
	"sync"
	"time"
)

// option configures forEach.
type option func(*poolConfig)

type poolConfig struct {
	workers    int
	maxRetries int
	backoff    func(attempt int) time.Duration
	retryIf    func(error) bool
}

func defaultPoolConfig() *poolConfig {
	return &poolConfig{workers: 1}
}

// withWorkers sets the number of concurrent workers. Default is 1.
func withWorkers(n int) option {
	return func(c *poolConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// withRetry retries a failed item up to maxRetries times, sleeping
// backoff(attempt) before each retry. Only errors accepted by retryIf are
// retried; a nil retryIf retries everything.
func withRetry(maxRetries int, backoff func(attempt int) time.Duration, retryIf func(error) bool) option {
	return func(c *poolConfig) {
		c.maxRetries = maxRetries
		c.backoff = backoff
		c.retryIf = retryIf
	}
}

// forEach calls fn for every index in [0, n). The first error that survives
// its retries cancels the remaining items and is returned.
func forEach(ctx context.Context, n int, fn func(ctx context.Context, i int) error, opts ...option) error {
	cfg := defaultPoolConfig()
	for _, o := range opts {
		o(cfg)
	}
	workers := cfg.workers
	if workers > n {
		workers = n
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	jobs := make(chan int)

	worker := func() {
		defer wg.Done()
		for i := range jobs {
			if err := cfg.run(ctx, i, fn); err != nil {
				errOnce.Do(func() {
					firstErr = err
					cancel()
				})
			}
		}
	}

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go worker()
	}

feed:
	for i := 0; i < n && ctx.Err() == nil; i++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func (c *poolConfig) run(ctx context.Context, i int, fn func(ctx context.Context, i int) error) error {
	err := fn(ctx, i)
	for attempt := 1; err != nil && attempt <= c.maxRetries; attempt++ {
		if c.retryIf != nil && !c.retryIf(err) {
			return err
		}
		if c.backoff != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff(attempt)):
			}
		}
		err = fn(ctx, i)
	}
	return err
}
