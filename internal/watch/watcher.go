package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RunFunc is called each time the watcher triggers a preparation run.
type RunFunc func(ctx context.Context) (*RunResult, error)

// RunResult summarizes a single preparation run.
type RunResult struct {
	Documents      int
	FiltersAdded   int
	FiltersRemoved int
	OutputPath     string
}

// Options configures the watch behaviour.
type Options struct {
	// Files are the input files to watch: AFM documents, filter files and
	// the config file.
	Files []string

	// Debounce is the quiet period before triggering a run.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out is the writer for user-facing status messages.
	Out io.Writer
}

// DefaultOptions returns the default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 300 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run watches opts.Files, runs runFn once immediately and again after every
// debounced change. It blocks until ctx is cancelled or SIGINT/SIGTERM is
// received.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
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

	// Directories are watched instead of the files themselves so that
	// editors which save by rename keep triggering events.
	for _, dir := range targetDirs(targets) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %q: %w", dir, err)
		}
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n", strings.Join(opts.Files, ", "), opts.Debounce)

	doRun(sigCtx, opts, runFn, "(initial)")

	debouncer := NewDebouncer(opts.Debounce, opts.Logger, func(path string) {
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

			opts.Logger.Debug("input changed", slog.String("path", event.Name), slog.String("op", event.Op.String()))
			debouncer.Trigger(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// doRun executes a single run and prints the status line.
func doRun(ctx context.Context, opts Options, runFn RunFunc, trigger string) {
	now := time.Now().Format("15:04:05")

	result, err := runFn(ctx)
	if err != nil {
		fmt.Fprintf(opts.Out, "[%s] %s -> ERROR: %v\n", now, trigger, err)
		return
	}

	fmt.Fprintf(opts.Out, "[%s] %s -> OK (%d documents, %d filters added, %d filters removed)\n",
		now, trigger, result.Documents, result.FiltersAdded, result.FiltersRemoved)

	if result.OutputPath != "" {
		fmt.Fprintf(opts.Out, "  wrote %s\n", result.OutputPath)
	}
}

// resolveTargets returns the absolute, cleaned paths of files as a set.
func resolveTargets(files []string) (map[string]bool, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}

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

// targetDirs returns the sorted, unique parent directories of targets.
func targetDirs(targets map[string]bool) []string {
	seen := make(map[string]bool, len(targets))

	var dirs []string

	for t := range targets {
		dir := filepath.Dir(t)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	sort.Strings(dirs)

	return dirs
}

// isRelevant reports whether event touches one of the watched files.
func isRelevant(event fsnotify.Event, targets map[string]bool) bool {
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
