package itchio

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// parsePool bounds how many html documents are parsed at once so that request
// goroutines only ever wait on it, they never hold a parse slot while doing I/O.
type parsePool struct {
	sem *semaphore.Weighted
}

func newParsePool(workers int) parsePool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return parsePool{sem: semaphore.NewWeighted(int64(workers))}
}

type parseResult[T any] struct {
	value T
	err   error
}

// runParse executes fn on its own goroutine once a slot is free. If ctx is
// cancelled first the caller is released immediately and the result of fn,
// if it already started, is discarded.
func runParse[T any](ctx context.Context, pool parsePool, fn func() (T, error)) (T, error) {
	var zero T

	err := pool.sem.Acquire(ctx, 1)
	if err != nil {
		return zero, err
	}

	done := make(chan parseResult[T], 1)
	go func() {
		defer pool.sem.Release(1)
		value, err := fn()
		done <- parseResult[T]{value: value, err: err}
	}()

	select {
	case res := <-done:
		return res.value, res.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
