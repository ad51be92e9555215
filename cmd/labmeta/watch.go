package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/simonhull/labmeta"
)

const defaultSettle = 250 * time.Millisecond

func (a *app) watchCmd() *cobra.Command {
	var (
		asJSON bool
		settle time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Print metadata for routable files as they are written under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			p := newPrinter(a.stdout, asJSON)
			defer p.close()
			return a.watch(ctx, args[0], settle, p)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per line instead of YAML")
	cmd.Flags().DurationVar(&settle, "settle", defaultSettle, "Quiet time after the last write before a file is read")
	return cmd
}

// watcher extracts files once they stop changing.
type watcher struct {
	fsw      *fsnotify.Watcher
	matchers []glob.Glob
	settle   time.Duration
	logger   *slog.Logger

	// pending maps a path to the time of its latest write.
	pending map[string]time.Time
}

func (a *app) watch(ctx context.Context, root string, settle time.Duration, p *printer) error {
	if settle <= 0 {
		settle = defaultSettle
	}

	matchers, err := a.cfg.Scan.Matchers()
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer fsw.Close()

	w := &watcher{fsw: fsw, matchers: matchers, settle: settle, logger: a.logger, pending: make(map[string]time.Time)}
	if err := w.addTree(root); err != nil {
		return errors.Wrapf(err, "watch %s", root)
	}
	a.logger.Info("watching", "root", root)

	ticker := time.NewTicker(settle / 2)
	defer ticker.Stop()

	opts := a.options()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event, time.Now())
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watch error", "error", err)
		case now := <-ticker.C:
			for _, path := range w.due(now) {
				rec, err := labmeta.ProcessContext(ctx, path, opts...)
				if err != nil {
					fmt.Fprintf(a.stderr, "%s: %v\n", path, err)
					continue
				}
				if err := p.print(newDocument(path, rec)); err != nil {
					return errors.Wrap(err, "write output")
				}
			}
		}
	}
}

func (w *watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.fsw.Add(path)
	})
}

func (w *watcher) handle(event fsnotify.Event, now time.Time) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("watch directory failed", "dir", event.Name, "error", err)
			}
			return
		}
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		delete(w.pending, event.Name)
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		if w.selects(event.Name) {
			w.pending[event.Name] = now
		}
	}
}

func (w *watcher) selects(path string) bool {
	return labmeta.FormatForPath(path) != labmeta.FormatUnknown && matchAny(w.matchers, filepath.Base(path))
}

// due removes and returns the paths quiet for at least the settle time.
func (w *watcher) due(now time.Time) []string {
	var paths []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.settle {
			paths = append(paths, path)
			delete(w.pending, path)
		}
	}
	slices.Sort(paths)
	return paths
}
