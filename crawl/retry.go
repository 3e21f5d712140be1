package crawl

import (
	"time"

	"go.uber.org/zap"

	"github.com/reversefold/artifactory-disk-usage/log"
	"github.com/reversefold/artifactory-disk-usage/types"
)

// DefaultRetryDelay is the pause before a failed task becomes eligible
// for re-pickup, keeping a flaky endpoint from turning into a hot loop.
const DefaultRetryDelay = time.Second

// retryPolicy absorbs transient fetch failures by re-submitting the
// identical task to the work queue after a fixed delay. There is no
// attempt cap: a permanently unreachable node recirculates until the
// process exits, which keeps a long crawl alive through network blips.
type retryPolicy struct {
	delay time.Duration
	work  *Queue[types.Task]
	stats *Collector
	log   *log.Logger
}

// requeue waits the fixed delay, then re-submits task verbatim. The wait
// aborts early when stop closes; a task dropped at that point no longer
// matters because the crawl is already over.
func (r *retryPolicy) requeue(task types.Task, stop <-chan struct{}, cause error) {
	r.stats.IncRetry()
	r.log.Warn("requeueing after transient failure",
		zap.String("path", string(task.Path)),
		zap.Error(cause),
	)

	select {
	case <-time.After(r.delay):
	case <-stop:
		return
	}
	r.work.Push(task)
}
