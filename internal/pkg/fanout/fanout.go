// Package fanout runs independent read-only lookups on a bounded pool and
// joins their results by key.
package fanout

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one task. Exactly one of Value or Err is meaningful.
type Result[V any] struct {
	Value V
	Err   error
}

// DefaultWorkers is half the available hardware parallelism, at least 1.
func DefaultWorkers() int {
	n := runtime.NumCPU() / 2
	if n < 1 {
		return 1
	}
	return n
}

// Collect calls fn once per distinct key with at most workers calls in
// flight and returns after every call has finished. Every key is present in
// the result; a task that errors or panics is reported through Result.Err
// and never cancels its siblings. Duplicate keys are looked up once.
func Collect[K comparable, V any](ctx context.Context, keys []K, workers int, fn func(context.Context, K) (V, error)) map[K]Result[V] {
	if ctx == nil {
		ctx = context.Background()
	}
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	unique := make([]K, 0, len(keys))
	seen := make(map[K]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, k)
	}

	// one slot per task; slots are disjoint so no lock is needed
	slots := make([]Result[V], len(unique))
	var group errgroup.Group
	group.SetLimit(workers)
	for i, key := range unique {
		group.Go(func() error {
			slots[i] = run(ctx, key, fn)
			return nil
		})
	}
	_ = group.Wait()

	out := make(map[K]Result[V], len(unique))
	for i, key := range unique {
		out[key] = slots[i]
	}
	return out
}

func run[K comparable, V any](ctx context.Context, key K, fn func(context.Context, K) (V, error)) (res Result[V]) {
	defer func() {
		if r := recover(); r != nil {
			res = Result[V]{Err: fmt.Errorf("task %v panicked: %v", key, r)}
		}
	}()
	if err := ctx.Err(); err != nil {
		return Result[V]{Err: err}
	}
	v, err := fn(ctx, key)
	if err != nil {
		return Result[V]{Err: err}
	}
	return Result[V]{Value: v}
}
