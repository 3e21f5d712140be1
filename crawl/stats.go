package crawl

import (
	"sync"
	"time"
)

// Snapshot is an immutable point-in-time view of crawl counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after
// creation.
type Snapshot struct {
	// Files and Folders are nodes successfully resolved, by kind.
	Files   int64
	Folders int64
	// NotFound counts nodes that vanished between discovery and fetch.
	NotFound int64
	// Retries counts transient fetch failures that were re-queued.
	Retries int64
	// BytesTotal is the sum of all attributed file sizes.
	BytesTotal int64
	// Elapsed is the wall-clock crawl duration, set at completion.
	Elapsed time.Duration
}

// Collector accumulates counters during a single crawl. Thread-safe via
// sync.Mutex; workers and the coordinator increment concurrently. All
// increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	files      int64
	folders    int64
	notFound   int64
	retries    int64
	bytesTotal int64
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// IncFile records a resolved file and its attributed size.
func (c *Collector) IncFile(size int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.files++
	c.bytesTotal += size
	c.mu.Unlock()
}

// IncFolder records a resolved folder.
func (c *Collector) IncFolder() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.folders++
	c.mu.Unlock()
}

// IncNotFound records a node that 404'd after being discovered.
func (c *Collector) IncNotFound() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.notFound++
	c.mu.Unlock()
}

// IncRetry records a transient failure that was re-queued.
func (c *Collector) IncRetry() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.retries++
	c.mu.Unlock()
}

// Snapshot returns an immutable view of the counters. Elapsed is left
// zero; the crawler fills it in at completion.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Files:      c.files,
		Folders:    c.folders,
		NotFound:   c.notFound,
		Retries:    c.retries,
		BytesTotal: c.bytesTotal,
	}
}
