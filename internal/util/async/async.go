package async

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunBounded executes tasks on at most limit goroutines (unbounded when
// limit <= 0) and returns the first error encountered after every started
// task has finished. Tasks are started in slice order. Once ctx is done no
// further task starts and ctx.Err() is returned.
//
// Example:
//
//	tasks := []Task{
//	    {Name: "web-1", Func: polishWeb1},
//	    {Name: "web-2", Func: polishWeb2},
//	}
//	if err := RunBounded(ctx, 2, tasks); err != nil {
//	    return err
//	}
func RunBounded(ctx context.Context, limit int, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, task := range tasks {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// Go blocks while the group is full; the context may have
			// been cancelled in the meantime.
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := task.Func(ctx); err != nil {
				return fmt.Errorf("failed to run %s: %w", task.Name, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
