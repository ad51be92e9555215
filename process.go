package labmeta

import (
	"context"
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/simonhull/labmeta/internal/registry"
)

// Path is the set of accepted path arguments. Byte paths are decoded as
// UTF-8 once, before routing.
type Path interface {
	~string | ~[]byte
}

// Process routes path to the extractor for its suffix and returns the
// record it produces.
//
// Routing is a case-sensitive suffix match:
//
//	.tdms  waveform container   → *WaveformRecord
//	.bin   binary dump          → *BinaryHeaderRecord
//	.ini   config file          → *ConfigRecord
//	.mat   MATLAB data file     → *StructuredDataRecord
//	.m     MATLAB script        → *ScriptRecord
//
// Any other suffix returns an *UnsupportedFormatError without touching the
// file. Example:
//
//	rec, err := labmeta.Process("run-7/waveforms.tdms")
//	if err != nil {
//		return err
//	}
//	out, _ := json.Marshal(rec.Metadata())
func Process[P Path](path P, opts ...Option) (Record, error) {
	return ProcessContext(context.Background(), path, opts...)
}

// ProcessContext is Process with a context checked before any I/O.
//
// Extraction of a single file is not interruptible once started.
func ProcessContext[P Path](ctx context.Context, path P, opts ...Option) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := decodePath(path)
	if err != nil {
		return nil, err
	}

	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return process(p, o)
}

func decodePath[P Path](path P) (string, error) {
	s := string(path)
	if !utf8.ValidString(s) {
		return "", &InvalidPathError{Path: []byte(s)}
	}
	return s, nil
}

func process(path string, o *options) (Record, error) {
	format := FormatForPath(path)
	if format == FormatUnknown {
		return nil, &UnsupportedFormatError{
			Path:   path,
			Reason: fmt.Sprintf("no extractor for suffix %q", filepath.Ext(path)),
		}
	}

	extractor := registry.Get(format)
	if extractor == nil {
		return nil, &UnsupportedFormatError{
			Path:   path,
			Reason: fmt.Sprintf("no extractor registered for format %s", format),
		}
	}

	log := o.extract.Log()
	log.Debug("routing file", "path", path, "format", format.String())

	rec, err := extractor.Extract(path, o.extract)
	if err != nil {
		return nil, errors.Wrapf(err, "extract %s", format)
	}
	return rec, nil
}

// ProcessMany extracts several files concurrently.
//
// At most WithConcurrency files (default runtime.NumCPU()) are read at
// once. Records are returned in input order. The first failure cancels
// the remaining work and is returned; no records are returned with it.
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//
//	recs, err := labmeta.ProcessMany(ctx, paths)
func ProcessMany(ctx context.Context, paths []string, opts ...Option) ([]Record, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	results := make([]Record, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			// Check for cancellation
			if err := ctx.Err(); err != nil {
				return err
			}

			rec, err := process(path, o)
			o.report(Result{Path: path, Record: rec, Err: err})
			if err != nil {
				return errors.Wrapf(err, "%s", path)
			}
			results[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Result is the outcome of one file in ProcessAll.
type Result struct {
	Path   string
	Record Record
	Err    error
}

// ProcessAll extracts every file, continuing past failures.
//
// Results are returned in input order, one per path. The returned error
// combines every per-file error and is nil when all files succeeded.
// Files not started before ctx is done fail with the context's error.
func ProcessAll(ctx context.Context, paths []string, opts ...Option) ([]Result, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	var g errgroup.Group
	g.SetLimit(o.concurrency)

	results := make([]Result, len(paths))
	for i, path := range paths {
		results[i].Path = path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				o.report(results[i])
				return nil
			}
			results[i].Record, results[i].Err = process(path, o)
			o.report(results[i])
			return nil
		})
	}
	_ = g.Wait()

	var merr *multierror.Error
	for _, r := range results {
		if r.Err != nil {
			merr = multierror.Append(merr, errors.Wrapf(r.Err, "%s", r.Path))
		}
	}
	return results, merr.ErrorOrNil()
}
