package crawl

import (
	"fmt"
	"io"
	"time"
)

// progress writes the console feedback for long crawls: one dot per 20
// results and a running count with elapsed time every 1000. A nil
// progress is a no-op, used when verbose logging replaces the dots.
type progress struct {
	w     io.Writer
	start time.Time
}

func newProgress(w io.Writer) *progress {
	if w == nil {
		return nil
	}
	return &progress{w: w, start: time.Now()}
}

func (p *progress) tick(n int64) {
	if p == nil {
		return
	}
	if n%20 == 0 {
		fmt.Fprint(p.w, ".")
	}
	if n%1000 == 0 {
		fmt.Fprintf(p.w, " %d %s\n", n, time.Since(p.start).Round(time.Millisecond))
	}
}
