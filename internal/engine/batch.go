package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// BatchResult pairs one user's pipeline outcome with any error it hit.
// A per-user failure never stops the batch.
type BatchResult struct {
	UserID string
	Result *Result
	Err    error
}

// AnalyzeBatch runs the pipeline for every user over a worker pool.
// Users are independent, so the fan-out shares no mutable state. Results
// come back in input order; onDone, when set, fires once per completed
// user (for progress reporting).
func (e *Engine) AnalyzeBatch(ctx context.Context, userIDs []string, reference time.Time, onDone func(userID string)) []BatchResult {
	workers := e.config.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]BatchResult, len(userIDs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				userID := userIDs[i]
				res, err := e.AnalyzeUser(ctx, userID, reference)
				results[i] = BatchResult{UserID: userID, Result: res, Err: err}
				if err != nil {
					slog.Error("User analysis failed", "user", userID, "error", err)
				}
				if onDone != nil {
					onDone(userID)
				}
			}
		}()
	}

	for i := range userIDs {
		select {
		case <-ctx.Done():
			// Stop feeding; in-flight users finish, the rest stay zero.
			close(jobs)
			wg.Wait()
			return results
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return results
}
