package crawl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reversefold/artifactory-disk-usage/artifactory"
	"github.com/reversefold/artifactory-disk-usage/types"
)

// newFakeArtifactory serves canned storage API responses keyed by node
// path. Unknown paths return 404, like the real API does for nodes that
// no longer exist.
func newFakeArtifactory(t *testing.T, entries map[string]string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/application.wadl" {
			w.WriteHeader(http.StatusOK)
			return
		}
		path := r.URL.Path[len("/api/storage"):]
		body, ok := entries[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestCrawler(t *testing.T, ts *httptest.Server, repos ...string) *Crawler {
	t.Helper()
	client, err := artifactory.New(artifactory.Config{BaseURL: ts.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	c, err := New(client, Config{
		Repos:        repos,
		Workers:      4,
		RetryDelay:   10 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
	})
	require.NoError(t, err)
	return c
}

func TestRun_ScenarioSizes(t *testing.T) {
	ts := newFakeArtifactory(t, map[string]string{
		"/repo":           `{"path": "/", "children": [{"uri": "/a.txt", "folder": false}, {"uri": "/sub", "folder": true}]}`,
		"/repo/a.txt":     `{"path": "/a.txt", "size": "10"}`,
		"/repo/sub":       `{"path": "/sub", "children": [{"uri": "/b.txt", "folder": false}]}`,
		"/repo/sub/b.txt": `{"path": "/sub/b.txt", "size": "5"}`,
	})

	c := newTestCrawler(t, ts, "repo")
	sizes, snap, err := c.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, types.SizeMap{"/": 15, "/repo": 15, "/repo/sub": 5}, sizes)
	require.EqualValues(t, 2, snap.Files)
	require.EqualValues(t, 2, snap.Folders)
	require.EqualValues(t, 15, snap.BytesTotal)
	require.EqualValues(t, 0, snap.NotFound)
}

func TestRun_DeepNestingAttributesAllAncestors(t *testing.T) {
	ts := newFakeArtifactory(t, map[string]string{
		"/repo":           `{"path": "/", "children": [{"uri": "/a", "folder": true}]}`,
		"/repo/a":         `{"path": "/a", "children": [{"uri": "/b", "folder": true}]}`,
		"/repo/a/b":       `{"path": "/a/b", "children": [{"uri": "/c.bin", "folder": false}]}`,
		"/repo/a/b/c.bin": `{"path": "/a/b/c.bin", "size": "7"}`,
	})

	c := newTestCrawler(t, ts, "repo")
	sizes, _, err := c.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, types.SizeMap{
		"/":         7,
		"/repo":     7,
		"/repo/a":   7,
		"/repo/a/b": 7,
	}, sizes)
}

func TestRun_NotFoundChildIsNeutral(t *testing.T) {
	// The folder lists x.txt, but the node is gone by the time it is
	// fetched. The crawl must terminate with /repo unaffected.
	ts := newFakeArtifactory(t, map[string]string{
		"/repo":       `{"path": "/", "children": [{"uri": "/x.txt", "folder": false}, {"uri": "/a.txt", "folder": false}]}`,
		"/repo/a.txt": `{"path": "/a.txt", "size": "3"}`,
	})

	c := newTestCrawler(t, ts, "repo")
	sizes, snap, err := c.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, types.SizeMap{"/": 3, "/repo": 3}, sizes)
	require.EqualValues(t, 1, snap.NotFound)
}

func TestRun_NotFoundOnlyChildStaysZero(t *testing.T) {
	ts := newFakeArtifactory(t, map[string]string{
		"/repo": `{"path": "/", "children": [{"uri": "/x.txt", "folder": false}]}`,
	})

	c := newTestCrawler(t, ts, "repo")
	sizes, _, err := c.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, types.SizeMap{"/": 0, "/repo": 0}, sizes)
}

func TestRun_EmptyFolder(t *testing.T) {
	ts := newFakeArtifactory(t, map[string]string{
		"/repo":       `{"path": "/", "children": [{"uri": "/empty", "folder": true}]}`,
		"/repo/empty": `{"path": "/empty", "children": []}`,
	})

	c := newTestCrawler(t, ts, "repo")
	sizes, _, err := c.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, types.SizeMap{"/": 0, "/repo": 0, "/repo/empty": 0}, sizes)
}

func TestRun_MultipleRepos(t *testing.T) {
	ts := newFakeArtifactory(t, map[string]string{
		"/one":       `{"path": "/", "children": [{"uri": "/a.txt", "folder": false}]}`,
		"/one/a.txt": `{"path": "/a.txt", "size": "10"}`,
		"/two":       `{"path": "/", "children": [{"uri": "/b.txt", "folder": false}]}`,
		"/two/b.txt": `{"path": "/b.txt", "size": "32"}`,
	})

	c := newTestCrawler(t, ts, "one", "two")
	sizes, _, err := c.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, types.SizeMap{"/": 42, "/one": 10, "/two": 32}, sizes)
}

func TestRun_TransientFailureIsReplayedWithoutDoubleCounting(t *testing.T) {
	entries := map[string]string{
		"/repo":           `{"path": "/", "children": [{"uri": "/a.txt", "folder": false}, {"uri": "/sub", "folder": true}]}`,
		"/repo/a.txt":     `{"path": "/a.txt", "size": "10"}`,
		"/repo/sub":       `{"path": "/sub", "children": [{"uri": "/b.txt", "folder": false}]}`,
		"/repo/sub/b.txt": `{"path": "/sub/b.txt", "size": "5"}`,
	}

	// First two requests for a.txt fail with 500, then it resolves.
	var failures atomic.Int32
	failures.Store(2)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/application.wadl" {
			w.WriteHeader(http.StatusOK)
			return
		}
		path := r.URL.Path[len("/api/storage"):]
		if path == "/repo/a.txt" && failures.Add(-1) >= 0 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		body, ok := entries[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)

	c := newTestCrawler(t, ts, "repo")
	sizes, snap, err := c.Run(context.Background())
	require.NoError(t, err)

	// Retries are pure replays: the final map matches a clean run.
	require.Equal(t, types.SizeMap{"/": 15, "/repo": 15, "/repo/sub": 5}, sizes)
	require.EqualValues(t, 2, snap.Retries)
	require.EqualValues(t, 15, snap.BytesTotal)
}

func TestRun_MalformedSizeAbortsCrawl(t *testing.T) {
	ts := newFakeArtifactory(t, map[string]string{
		"/repo":       `{"path": "/", "children": [{"uri": "/a.txt", "folder": false}]}`,
		"/repo/a.txt": `{"path": "/a.txt", "size": "banana"}`,
	})

	c := newTestCrawler(t, ts, "repo")
	_, _, err := c.Run(context.Background())
	require.ErrorContains(t, err, "malformed size")
}

func TestRun_ContextCancellationAborts(t *testing.T) {
	ts := newFakeArtifactory(t, map[string]string{
		"/repo": `{"path": "/", "children": [{"uri": "/a.txt", "folder": false}]}`,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestCrawler(t, ts, "repo")
	_, _, err := c.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNew_RequiresRepos(t *testing.T) {
	_, err := New(nil, Config{})
	require.Error(t, err)
}

func TestNew_AppliesDefaults(t *testing.T) {
	c, err := New(nil, Config{Repos: []string{"repo"}})
	require.NoError(t, err)
	require.Equal(t, DefaultWorkers, c.config.Workers)
	require.Equal(t, DefaultRetryDelay, c.config.RetryDelay)
	require.Equal(t, DefaultPollInterval, c.config.PollInterval)
}
