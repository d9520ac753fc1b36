package task

import (
	"context"
	"fmt"
	"sync"
)

// BatchResult holds the outcome of one item processed by RunBatch.
// Exactly one of Value and Err is meaningful.
type BatchResult[R any] struct {
	Value R
	Err   error
}

// RunBatch executes worker for every item with at most concurrency
// invocations in flight. It is fail-open: a failing item produces an
// error result and neither cancels nor blocks sibling items, because a
// partial deck is a valid outcome. RunBatch waits for all items; the
// returned slice is indexed by original item position regardless of
// completion order. A concurrency of zero or less runs items one at a
// time.
func RunBatch[T, R any](
	ctx context.Context,
	items []T,
	concurrency int,
	worker func(ctx context.Context, index int, item T) (R, error),
) []BatchResult[R] {
	results := make([]BatchResult[R], len(items))
	if len(items) == 0 {
		return results
	}

	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(items) {
		concurrency = len(items)
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		sem <- struct{}{}

		go func(index int, item T) {
			defer wg.Done()
			defer func() { <-sem }()

			// A panicking worker must count as one failed item, never
			// take down the process or its siblings.
			defer func() {
				if p := recover(); p != nil {
					results[index] = BatchResult[R]{Err: fmt.Errorf("worker panicked: %v", p)}
				}
			}()

			value, err := worker(ctx, index, item)
			results[index] = BatchResult[R]{Value: value, Err: err}
		}(i, item)
	}

	wg.Wait()
	return results
}
