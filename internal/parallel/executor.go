// Package parallel runs independent tasks with a bounded concurrency limit,
// for driving several suite runs at once without overwhelming the host
// machine (each suite run launches its own browser instance).
package parallel

import (
	"context"
	"sync"
)

// Task is one unit of work submitted to Execute.
type Task func() error

// Execute runs every task in tasks, at most maxConcurrency at a time, and
// returns one error slot per task (nil for a task that succeeded). A
// maxConcurrency of 0 or less means "no limit": run every task at once.
// If ctx is canceled before a task acquires its slot, that task's result is
// ctx.Err() and the task itself never runs.
func Execute(ctx context.Context, tasks []Task, maxConcurrency int) []error {
	if maxConcurrency <= 0 {
		maxConcurrency = len(tasks)
	}

	results := make([]error, len(tasks))
	semaphore := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup

	for i, task := range tasks {
		wg.Add(1)
		go func(index int, t Task) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				results[index] = ctx.Err()
				return
			}
			defer func() { <-semaphore }()

			if err := ctx.Err(); err != nil {
				results[index] = err
				return
			}
			results[index] = t()
		}(i, task)
	}

	wg.Wait()
	return results
}
