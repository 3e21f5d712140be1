package crawl

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/reversefold/artifactory-disk-usage/artifactory"
	"github.com/reversefold/artifactory-disk-usage/types"
)

// result is one resolved task published to the result queue. The zero
// value is the not-found sentinel: it counts toward completion but
// contributes no size and no children.
type result struct {
	task  types.Task
	entry *artifactory.Entry
}

// worker drains the work queue until the stop signal closes. Shutdown is
// cooperative: an in-flight fetch is not interrupted, only no new task is
// picked up afterward. Workers never terminate on their own; the
// coordinator closes stop once termination is detected and then joins
// the pool.
func (c *Crawler) worker(ctx context.Context, id int) {
	wlog := c.log.With(zap.Int("worker", id))
	for {
		select {
		case <-c.stop:
			return
		default:
		}

		task, ok := c.work.TryPop()
		if !ok {
			// Poll instead of blocking so stop is observed promptly.
			select {
			case <-c.stop:
				return
			case <-time.After(c.config.PollInterval):
			}
			continue
		}

		wlog.Debug("fetching",
			zap.String("kind", task.Kind.String()),
			zap.String("path", string(task.Path)),
		)

		entry, err := c.fetcher.Fetch(ctx, task.Path)
		switch {
		case err == nil:
			c.results.Push(result{task: task, entry: entry})
		case errors.Is(err, artifactory.ErrNotFound):
			// The node vanished after discovery. Still counts toward
			// completion, so publish the sentinel.
			wlog.Debug("node gone", zap.String("path", string(task.Path)))
			c.stats.IncNotFound()
			c.results.Push(result{})
		default:
			c.retry.requeue(task, c.stop, err)
		}
	}
}
