// Package artifactory implements the read-only storage API client.
//
// Two calls exist: Probe validates the base endpoint once before a crawl
// starts (the only fatal, non-retried network failure), and Fetch resolves
// the metadata of a single file or folder path.
package artifactory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/reversefold/artifactory-disk-usage/iox"
	"github.com/reversefold/artifactory-disk-usage/types"
)

// DefaultTimeout is the default per-request HTTP timeout.
const DefaultTimeout = 30 * time.Second

// Config configures the storage client.
type Config struct {
	// BaseURL is the Artifactory base (e.g. http://server:8081/artifactory).
	BaseURL string
	// Username and Password enable HTTP basic auth on every request when set.
	Username string
	Password string
	// Timeout is the per-request timeout (default 30s). There is no
	// overall crawl deadline.
	Timeout time.Duration
}

// Client issues idempotent read requests against the storage API.
// Safe for concurrent use by multiple workers.
type Client struct {
	config     Config
	client     *http.Client
	storageURL string
}

// New creates a storage client. Returns an error if the base URL is
// missing or unparseable.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("artifactory client requires a base URL")
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		config:     cfg,
		client:     &http.Client{Timeout: cfg.Timeout},
		storageURL: cfg.BaseURL + "/api/storage",
	}, nil
}

// Probe validates the base endpoint with a HEAD on the application.wadl
// resource. A 401 maps to ErrAuth with a message distinguishing wrong
// credentials from missing ones; any other non-2xx maps to ErrEndpoint.
// Probe failures abort the run before any crawling starts.
func (c *Client) Probe(ctx context.Context) error {
	probeURL := c.config.BaseURL + "/api/application.wadl"
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, probeURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEndpoint, err)
	}

	resp, err := c.client.Do(c.authorize(req))
	if err != nil {
		return fmt.Errorf("%w: HEAD %s: %v", ErrEndpoint, probeURL, err)
	}
	defer iox.DrainClose(resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		if c.config.Username != "" || c.config.Password != "" {
			return fmt.Errorf("%w: credentials appear to be incorrect", ErrAuth)
		}
		return fmt.Errorf("%w: endpoint requires authentication and none was configured", ErrAuth)
	default:
		return fmt.Errorf("%w: HEAD %s returned %d", ErrEndpoint, probeURL, resp.StatusCode)
	}
}

// Child is one direct child in a folder listing. The folder flag declares
// the child's kind for the task that will fetch it.
type Child struct {
	URI    string `json:"uri"`
	Folder bool   `json:"folder"`
}

// Entry is the decoded storage metadata for one node: Size for files,
// Path and Children for folders.
type Entry struct {
	// Path is the node's location within its repository; "/" for a
	// repository root.
	Path string `json:"path"`
	// Size is a file's byte count. See the Size type for its encoding.
	Size Size `json:"size"`
	// Children lists a folder's direct children. Empty for leaf folders.
	Children []Child `json:"children"`
}

// Fetch resolves the metadata for one path in a single round trip.
// A 404 maps to ErrNotFound; any other non-2xx status, timeout, or
// transport error is transient and should be retried by the caller.
func (c *Client) Fetch(ctx context.Context, path types.Path) (*Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.storageURL+string(path), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}

	resp, err := c.client.Do(c.authorize(req))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer iox.DrainClose(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch %s: %w", path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: %w", path, &StatusError{Code: resp.StatusCode})
	}

	var entry Entry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return nil, fmt.Errorf("fetch %s: decode: %w", path, err)
	}
	return &entry, nil
}

// authorize applies basic auth when credentials are configured.
func (c *Client) authorize(req *http.Request) *http.Request {
	if c.config.Username != "" || c.config.Password != "" {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}
	return req
}

// Size is a file's byte count as reported by the storage API. Artifactory
// encodes it as a JSON string; bare number literals are accepted too.
type Size struct {
	raw string
}

// UnmarshalJSON stores the raw token; validation happens in Int64 so a
// malformed size surfaces where it can abort the crawl.
func (s *Size) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if len(raw) > 0 && raw[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		raw = str
	}
	s.raw = raw
	return nil
}

// Int64 parses the size as an exact non-negative integer. The parsed
// value must round-trip back to the reported token: anything else is a
// payload-shape violation, which is a hard error rather than a retry.
func (s Size) Int64() (int64, error) {
	n, err := strconv.ParseInt(s.raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed size %q: %w", s.raw, err)
	}
	if strconv.FormatInt(n, 10) != s.raw {
		return 0, fmt.Errorf("malformed size %q: not a canonical integer", s.raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("malformed size %q: negative", s.raw)
	}
	return n, nil
}

func (s Size) String() string { return s.raw }
