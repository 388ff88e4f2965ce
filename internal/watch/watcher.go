package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RunFunc performs one generation. It is called once at start-up and again
// after every debounced change.
type RunFunc func(ctx context.Context) (*RunResult, error)

// RunResult summarises one generation for the status line.
type RunResult struct {
	Charts     int
	Categories int
	OutputPath string
}

// Options configures the watch loop.
type Options struct {
	// Files are the files whose changes trigger a run. Their parent
	// directories are watched so that editors replacing a file by rename
	// are still noticed.
	Files []string

	// Debounce is the quiet period before a run is triggered.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out receives the user-facing status lines.
	Out io.Writer

	// Now returns the time printed on status lines. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 500 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
		Now:      time.Now,
	}
}

// Run performs an initial run, then re-runs runFn after each change to one
// of opts.Files. It blocks until ctx is cancelled or SIGINT/SIGTERM arrives.
// A failing run is reported and the loop keeps going.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	if len(opts.Files) == 0 {
		return fmt.Errorf("no files to watch")
	}

	targets, err := resolveTargets(opts.Files)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	for dir := range watchDirs(targets) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %q: %w", dir, err)
		}
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n", strings.Join(opts.Files, ", "), opts.Debounce)

	doRun(sigCtx, opts, runFn, "(initial)")

	debouncer := NewDebouncer(opts.Debounce, opts.Logger, func(path string, events int) {
		opts.Logger.Debug("change detected", slog.String("path", path), slog.Int("events", events))
		doRun(sigCtx, opts, runFn, filepath.Base(path))
	})
	defer debouncer.Stop()

	for {
		select {
		case <-sigCtx.Done():
			fmt.Fprintln(opts.Out, "\nshutting down watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event, targets) {
				continue
			}

			debouncer.Trigger(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// doRun executes one generation and prints its status line.
func doRun(ctx context.Context, opts Options, runFn RunFunc, trigger string) {
	now := opts.Now().Format("15:04:05")

	result, err := runFn(ctx)
	if err != nil {
		fmt.Fprintf(opts.Out, "[%s] %s → ERROR: %v\n", now, trigger, err)
		return
	}

	fmt.Fprintf(opts.Out, "[%s] %s → OK (%d charts, %d categories)\n",
		now, trigger, result.Charts, result.Categories)
}

// resolveTargets returns the cleaned absolute paths of files.
func resolveTargets(files []string) (map[string]bool, error) {
	targets := make(map[string]bool, len(files))

	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", f, err)
		}

		targets[filepath.Clean(abs)] = true
	}

	return targets, nil
}

func watchDirs(targets map[string]bool) map[string]bool {
	dirs := make(map[string]bool, len(targets))
	for t := range targets {
		dirs[filepath.Dir(t)] = true
	}

	return dirs
}

// isRelevant reports whether event touches one of the target files with a
// content-changing operation.
func isRelevant(event fsnotify.Event, targets map[string]bool) bool {
	if event.Op == 0 {
		return false
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}

	return targets[filepath.Clean(abs)]
}
