// Package cmd provides CLI commands for the artifactory-disk-usage binary.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/reversefold/artifactory-disk-usage/artifactory"
	"github.com/reversefold/artifactory-disk-usage/cli/config"
	"github.com/reversefold/artifactory-disk-usage/crawl"
	"github.com/reversefold/artifactory-disk-usage/log"
	"github.com/reversefold/artifactory-disk-usage/report"
)

const (
	exitSuccess = 0
	exitFailure = 1
)

// RunCommand returns the run command, the only command that touches the
// network.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Crawl repositories and write the directory size reports",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file (values act as flag defaults)",
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "Artifactory base URL (e.g. http://server:8081/artifactory)",
			},
			&cli.StringSliceFlag{
				Name:    "repo",
				Aliases: []string{"r"},
				Usage:   "Repository to crawl (repeatable)",
			},
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Username for HTTP basic auth",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Password for HTTP basic auth",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"n"},
				Usage:   "Number of parallel fetch workers",
				Value:   crawl.DefaultWorkers,
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "Per-request HTTP timeout",
				Value:   artifactory.DefaultTimeout,
			},
			&cli.DurationFlag{
				Name:  "retry-delay",
				Usage: "Delay before a failed fetch is re-queued",
				Value: crawl.DefaultRetryDelay,
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory for the three JSON reports",
				Value:   ".",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Debug logging, including one line per fetched path",
			},
		},
		Action: runAction,
	}
}

// runOptions holds the merged config-file and flag values.
type runOptions struct {
	url        string
	repos      []string
	username   string
	password   string
	workers    int
	timeout    time.Duration
	retryDelay time.Duration
	outputDir  string
	verbose    bool
}

func runAction(c *cli.Context) error {
	opts, err := resolveOptions(c)
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}

	crawlID := uuid.New().String()
	logger := log.New(crawlID, opts.verbose)
	sugar := logger.Sugar()

	client, err := artifactory.New(artifactory.Config{
		BaseURL:  opts.url,
		Username: opts.username,
		Password: opts.password,
		Timeout:  opts.timeout,
	})
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// The probe is the only fatal, non-retried network failure: a bad
	// base URL or bad credentials aborts before any crawling starts.
	if err := client.Probe(ctx); err != nil {
		sugar.Errorf("endpoint probe failed: %v", err)
		if errors.Is(err, artifactory.ErrAuth) {
			return cli.Exit(fmt.Sprintf("cannot reach %s: %v (use --username and --password)", opts.url, err), exitFailure)
		}
		return cli.Exit(fmt.Sprintf("cannot reach %s: %v", opts.url, err), exitFailure)
	}

	// Dot progress replaces per-path logging when not verbose.
	var progressW io.Writer
	if !opts.verbose {
		progressW = os.Stdout
	}

	crawler, err := crawl.New(client, crawl.Config{
		Repos:      opts.repos,
		Workers:    opts.workers,
		RetryDelay: opts.retryDelay,
		Progress:   progressW,
		Logger:     logger,
	})
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}

	sizes, snap, err := crawler.Run(ctx)
	if err != nil {
		return cli.Exit(fmt.Sprintf("crawl failed: %v", err), exitFailure)
	}

	if err := report.WriteAll(opts.outputDir, sizes); err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}
	sugar.Infof("reports written to %s", opts.outputDir)

	printSummary(os.Stdout, crawlID, snap, opts.outputDir)
	return cli.Exit("", exitSuccess)
}

// resolveOptions merges flag values over config-file values over
// built-in defaults.
func resolveOptions(c *cli.Context) (*runOptions, error) {
	opts := &runOptions{
		url:        c.String("url"),
		repos:      c.StringSlice("repo"),
		username:   c.String("username"),
		password:   c.String("password"),
		workers:    c.Int("workers"),
		timeout:    c.Duration("timeout"),
		retryDelay: c.Duration("retry-delay"),
		outputDir:  c.String("output-dir"),
		verbose:    c.Bool("verbose"),
	}

	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		applyConfig(opts, cfg, c.IsSet)
	}

	return opts, validateOptions(opts)
}

// applyConfig fills in config-file values for every flag the user did
// not set on the command line.
func applyConfig(opts *runOptions, cfg *config.Config, isSet func(name string) bool) {
	if !isSet("url") && cfg.URL != "" {
		opts.url = cfg.URL
	}
	if !isSet("repo") && len(cfg.Repositories) > 0 {
		opts.repos = cfg.Repositories
	}
	if !isSet("username") && cfg.Username != "" {
		opts.username = cfg.Username
	}
	if !isSet("password") && cfg.Password != "" {
		opts.password = cfg.Password
	}
	if !isSet("workers") && cfg.Workers > 0 {
		opts.workers = cfg.Workers
	}
	if !isSet("timeout") && cfg.Timeout.Duration > 0 {
		opts.timeout = cfg.Timeout.Duration
	}
	if !isSet("retry-delay") && cfg.RetryDelay.Duration > 0 {
		opts.retryDelay = cfg.RetryDelay.Duration
	}
	if !isSet("output-dir") && cfg.OutputDir != "" {
		opts.outputDir = cfg.OutputDir
	}
	if !isSet("verbose") && cfg.Verbose {
		opts.verbose = true
	}
}

func validateOptions(opts *runOptions) error {
	if opts.url == "" {
		return errors.New("an Artifactory base URL is required (--url or config file)")
	}
	if len(opts.repos) == 0 {
		return errors.New("at least one repository is required (--repo or config file)")
	}
	if (opts.username == "") != (opts.password == "") {
		return errors.New("--username and --password must be given together")
	}
	return nil
}

func printSummary(w io.Writer, crawlID string, snap crawl.Snapshot, dir string) {
	fmt.Fprintf(w, "\n=== Crawl Summary ===\n")
	fmt.Fprintf(w, "Crawl ID:    %s\n", crawlID)
	fmt.Fprintf(w, "Folders:     %d\n", snap.Folders)
	fmt.Fprintf(w, "Files:       %d\n", snap.Files)
	fmt.Fprintf(w, "Not found:   %d\n", snap.NotFound)
	fmt.Fprintf(w, "Retries:     %d\n", snap.Retries)
	fmt.Fprintf(w, "Total size:  %s (%d bytes)\n", humanize.Bytes(uint64(snap.BytesTotal)), snap.BytesTotal)
	fmt.Fprintf(w, "Elapsed:     %s\n", snap.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "Reports:     %s\n", dir)
}
