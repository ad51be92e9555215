package main

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/gobwas/glob"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/simonhull/labmeta"
)

type scanFlags struct {
	include  []string
	workers  int
	records  bool
	asJSON   bool
	progress bool
}

func (a *app) scanCmd() *cobra.Command {
	var f scanFlags

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Extract every routable file under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("include") {
				a.cfg.Scan.Include = f.include
			}
			if cmd.Flags().Changed("workers") {
				a.cfg.Scan.Workers = f.workers
			}
			return a.scan(cmd.Context(), args[0], f)
		},
	}

	cmd.Flags().StringSliceVar(&f.include, "include", nil, "Glob pattern matched against base names (repeatable)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Files read at once (default: number of CPUs)")
	cmd.Flags().BoolVar(&f.records, "records", false, "Print every record, not only the summary")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print records as JSON lines")
	cmd.Flags().BoolVar(&f.progress, "progress", true, "Show a progress bar")
	return cmd
}

func (a *app) scan(ctx context.Context, root string, f scanFlags) error {
	matchers, err := a.cfg.Scan.Matchers()
	if err != nil {
		return err
	}

	files, err := collect(root, matchers)
	if err != nil {
		return err
	}
	a.logger.Debug("collected files", "root", root, "count", len(files.paths))

	bar := progressbar.NewOptions(len(files.paths),
		progressbar.OptionSetWriter(a.stderr),
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(f.progress),
	)
	opts := a.options(labmeta.WithProgress(func(labmeta.Result) {
		bar.Add(1) //nolint:errcheck
	}))

	start := time.Now()
	results, _ := labmeta.ProcessAll(ctx, files.paths, opts...)
	bar.Finish() //nolint:errcheck
	elapsed := time.Since(start)

	if f.records {
		p := newPrinter(a.stdout, f.asJSON)
		for _, r := range results {
			if r.Err != nil {
				continue
			}
			if err := p.print(newDocument(r.Path, r.Record)); err != nil {
				return errors.Wrap(err, "write output")
			}
		}
		if err := p.close(); err != nil {
			return errors.Wrap(err, "write output")
		}
	}

	s := summarize(results)
	a.printSummary(s, files.bytes, elapsed)

	if s.failed > 0 {
		return errors.Newf("%d of %d files failed", s.failed, len(results))
	}
	return nil
}

type collected struct {
	paths []string
	bytes int64
}

// collect walks root for routable files whose base name matches one of
// matchers. With no matchers every routable file is selected. Paths are
// returned in lexical order.
func collect(root string, matchers []glob.Glob) (collected, error) {
	var c collected
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || labmeta.FormatForPath(path) == labmeta.FormatUnknown {
			return nil
		}
		if !matchAny(matchers, d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		c.paths = append(c.paths, path)
		c.bytes += info.Size()
		return nil
	})
	if err != nil {
		return collected{}, errors.Wrapf(err, "walk %s", root)
	}
	return c, nil
}

func matchAny(matchers []glob.Glob, name string) bool {
	if len(matchers) == 0 {
		return true
	}
	for _, m := range matchers {
		if m.Match(name) {
			return true
		}
	}
	return false
}

type summary struct {
	kinds    map[labmeta.Kind]int
	failed   int
	failures []labmeta.Result
}

func summarize(results []labmeta.Result) summary {
	s := summary{kinds: make(map[labmeta.Kind]int)}
	for _, r := range results {
		if r.Err != nil {
			s.failed++
			s.failures = append(s.failures, r)
			continue
		}
		s.kinds[r.Record.Kind()]++
	}
	return s
}

func (a *app) printSummary(s summary, size int64, elapsed time.Duration) {
	total := s.failed
	for _, n := range s.kinds {
		total += n
	}

	fmt.Fprintf(a.stderr, "Scanned %s files (%s) in %s\n",
		humanize.Comma(int64(total)), humanize.Bytes(uint64(size)), elapsed.Round(time.Millisecond))

	kinds := make([]labmeta.Kind, 0, len(s.kinds))
	for k := range s.kinds {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	for _, k := range kinds {
		fmt.Fprintf(a.stderr, "  %-16s %d\n", k, s.kinds[k])
	}

	if s.failed > 0 {
		fmt.Fprintf(a.stderr, "Failed: %d\n", s.failed)
		for _, r := range s.failures {
			fmt.Fprintf(a.stderr, "  %s: %v\n", r.Path, r.Err)
		}
	}
}
