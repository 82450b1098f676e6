package async

import (
	"context"
	"sync"
)

// ForEach calls fn for every index in [0, n) with at most limit calls in
// flight; limit <= 0 runs all of them at once. It waits for every started
// call and returns the error of the lowest failing index. Indexes not yet
// started when ctx is done are skipped and report ctx.Err().
//
// Example:
//
//	views := make([]*NetworkView, len(refs))
//	err := async.ForEach(ctx, len(refs), 8, func(ctx context.Context, i int) error {
//	    v, err := r.Network(ctx, refs[i].UUID)
//	    views[i] = v
//	    return err
//	})
func ForEach(ctx context.Context, n, limit int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return nil
	}
	if limit <= 0 || limit > n {
		limit = n
	}

	errs := make([]error, n)
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i := range n {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		select {
		case <-ctx.Done():
			errs[i] = ctx.Err()
			continue
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			errs[i] = fn(ctx, i)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
