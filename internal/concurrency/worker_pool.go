package concurrency

import (
	"context"
	"sync"
)

// Small reusable worker pool pattern for fanning out index-based tasks and
// waiting for completion. Callers collect results through the closure.

type WorkerFn func(ctx context.Context, index int)

// FanOut runs fn once for every task index over at most workers goroutines.
// It stops handing out new indices once ctx is done.
func FanOut(ctx context.Context, workers, tasks int, fn WorkerFn) {
	if tasks == 0 {
		return
	}
	if workers > tasks {
		workers = tasks
	}
	if workers < 1 {
		workers = 1
	}

	idxCh := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range idxCh {
				fn(ctx, idx)
			}
		}()
	}

	for i := 0; i < tasks; i++ {
		select {
		case idxCh <- i:
		case <-ctx.Done():
			close(idxCh)
			wg.Wait()
			return
		}
	}
	close(idxCh)
	wg.Wait()
}
