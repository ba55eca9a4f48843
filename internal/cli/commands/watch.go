package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/spektr-org/tabula/internal/cli/config"
)

// watchDebounce coalesces the burst of events a single save produces.
const watchDebounce = 100 * time.Millisecond

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var opts sessionOptions

	cmd := &cobra.Command{
		Use:   "watch <file.csv>",
		Short: "Re-render the preview whenever the file changes",
		Long: `Load a dataset, print its preview, and reload it every time the file is
written. Column types are inferred again on each reload, so filters are
re-applied against the new catalog. Stop with Ctrl+C.`,
		Example: `  tabula watch export.csv --where 'amount>=100'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == stdinPath {
				return fmt.Errorf("watch needs a file path, not stdin")
			}
			return runWatch(cmd, args[0], &opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func runWatch(cmd *cobra.Command, path string, opts *sessionOptions) error {
	ctx := cmd.Context()
	log := config.GetLogger(ctx)
	format := config.FromContext(ctx).Output

	var mu sync.Mutex
	render := func() error {
		mu.Lock()
		defer mu.Unlock()

		s, err := loadSession(cmd, path, opts)
		if err != nil {
			return err
		}
		return renderSnapshot(cmd.OutOrStdout(), s.Snapshot(), format)
	}

	if err := render(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	log.Debug("watching", "path", path)

	watchLoop(ctx, watcher, filepath.Clean(path), func() {
		if err := render(); err != nil {
			log.Warn("reload failed", "path", path, "error", err)
		}
	})
	return nil
}

// watchLoop calls reload, debounced, after each write to target. It returns
// when ctx is done or the watcher closes.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, target string, reload func()) {
	log := config.GetLogger(ctx)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				log.Debug("change detected", "path", target)
				reload()
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn("watcher error", "error", err)
		}
	}
}
