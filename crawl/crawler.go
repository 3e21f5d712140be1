// Package crawl implements the concurrent crawl-and-aggregate engine.
//
// A fixed pool of workers drains an unbounded work queue of discovery
// tasks, resolving each against the storage API and publishing results to
// a result queue. A single-threaded coordinator consumes results, owns
// the size map and the queued/processed counters, discovers children, and
// detects termination without knowing the tree size in advance. Transient
// fetch failures are re-queued indefinitely; only a malformed payload
// aborts the crawl.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/reversefold/artifactory-disk-usage/artifactory"
	"github.com/reversefold/artifactory-disk-usage/log"
	"github.com/reversefold/artifactory-disk-usage/types"
)

const (
	// DefaultWorkers is sized for I/O-bound fan-out against a remote API.
	DefaultWorkers = 10
	// DefaultPollInterval is how long workers and the coordinator wait
	// before re-checking an empty queue.
	DefaultPollInterval = 100 * time.Millisecond
)

// Fetcher resolves storage metadata for one path. *artifactory.Client is
// the production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, path types.Path) (*artifactory.Entry, error)
}

// Config configures a crawl.
type Config struct {
	// Repos are the repository names to crawl (required).
	Repos []string
	// Workers is the number of concurrent fetch workers (default 10).
	Workers int
	// RetryDelay is the pause before a failed task is re-submitted
	// (default 1s).
	RetryDelay time.Duration
	// PollInterval is the empty-queue re-check interval (default 100ms).
	PollInterval time.Duration
	// Progress receives dot-progress output; nil disables it.
	Progress io.Writer
	// Logger defaults to a no-op logger when nil.
	Logger *log.Logger
}

// Crawler drives the breadth-first discovery of one or more repositories
// and owns the authoritative size map.
type Crawler struct {
	config  Config
	fetcher Fetcher
	log     *log.Logger

	work    *Queue[types.Task]
	results *Queue[result]
	retry   *retryPolicy
	stats   *Collector
	stop    chan struct{}

	// Mutated by the coordinator goroutine only. numQueued counts tasks
	// ever submitted, numProcessed counts results ever consumed
	// (sentinels included); the crawl is done when they meet with both
	// queues empty.
	sizes        types.SizeMap
	numQueued    int64
	numProcessed int64
}

// New creates a crawler over the given fetcher.
func New(fetcher Fetcher, cfg Config) (*Crawler, error) {
	if len(cfg.Repos) == 0 {
		return nil, errors.New("crawl requires at least one repository")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Nop()
	}

	c := &Crawler{
		config:  cfg,
		fetcher: fetcher,
		log:     cfg.Logger,
		work:    NewQueue[types.Task](),
		results: NewQueue[result](),
		stats:   NewCollector(),
		stop:    make(chan struct{}),
		sizes:   types.NewSizeMap(),
	}
	c.retry = &retryPolicy{
		delay: cfg.RetryDelay,
		work:  c.work,
		stats: c.stats,
		log:   cfg.Logger,
	}
	return c, nil
}

// Run executes the crawl to completion and returns the frozen size map
// with a final stats snapshot. The size map is complete only after Run
// returns; no intermediate snapshot carries any guarantee.
//
// Run is one-shot: a Crawler must not be reused.
func (c *Crawler) Run(ctx context.Context) (types.SizeMap, Snapshot, error) {
	start := time.Now()

	for _, repo := range c.config.Repos {
		c.work.Push(types.Task{Kind: types.KindFolder, Path: types.Root.Join(repo)})
	}
	c.numQueued = int64(len(c.config.Repos))

	c.log.Info("starting crawl",
		zap.Strings("repositories", c.config.Repos),
		zap.Int("workers", c.config.Workers),
	)

	var wg sync.WaitGroup
	for i := 0; i < c.config.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			c.worker(ctx, id)
		}(i)
	}

	err := c.aggregate(ctx)

	// Termination (or abort): raise the stop signal and join every
	// worker before treating the size map as final.
	close(c.stop)
	wg.Wait()

	if err != nil {
		return nil, Snapshot{}, err
	}

	snap := c.stats.Snapshot()
	snap.Elapsed = time.Since(start)
	c.log.Info("crawl complete",
		zap.Int64("processed", c.numProcessed),
		zap.Int64("folders", snap.Folders),
		zap.Int64("files", snap.Files),
		zap.Int64("bytes", snap.BytesTotal),
		zap.Duration("elapsed", snap.Elapsed),
	)
	return c.sizes, snap, nil
}

// aggregate is the single-threaded coordinator loop. The three-part
// condition is a termination-detection protocol, not a fixed point:
// numQueued keeps growing while folders are in flight, so it must be
// re-evaluated after every drain attempt.
func (c *Crawler) aggregate(ctx context.Context) error {
	progress := newProgress(c.config.Progress)

	for c.work.Len() > 0 || c.results.Len() > 0 || c.numProcessed < c.numQueued {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("crawl aborted: %w", err)
		}

		res, ok := c.results.TryPop()
		if !ok {
			time.Sleep(c.config.PollInterval)
			continue
		}
		c.numProcessed++
		progress.tick(c.numProcessed)

		if res.entry == nil {
			// Not-found sentinel: no attribution, no children.
			continue
		}

		switch res.task.Kind {
		case types.KindFile:
			size, err := res.entry.Size.Int64()
			if err != nil {
				// Payload-shape violation. Not transient, so no retry:
				// abort the whole crawl instead of undercounting.
				return fmt.Errorf("file %s: %w", res.task.Path, err)
			}
			c.sizes.Attribute(res.task.Path, size)
			c.stats.IncFile(size)

		case types.KindFolder:
			c.sizes.Touch(res.task.Path)
			c.stats.IncFolder()
			prefix := res.task.Path.Repo().Join(res.entry.Path)
			for _, child := range res.entry.Children {
				kind := types.KindFile
				if child.Folder {
					kind = types.KindFolder
				}
				c.numQueued++
				c.work.Push(types.Task{Kind: kind, Path: prefix.Join(child.URI)})
			}
		}
	}
	return nil
}
