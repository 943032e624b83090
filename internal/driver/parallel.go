package driver

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"ownck/internal/diag"
	"ownck/internal/trace"
)

// Result aggregates a batch check.
type Result struct {
	Files   []*FileResult
	Elapsed time.Duration
}

// Failed reports whether any file produced errors.
func (r *Result) Failed() bool {
	for _, f := range r.Files {
		if f.Failed() {
			return true
		}
	}
	return false
}

// Diagnostics returns every diagnostic in file order.
func (r *Result) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, f := range r.Files {
		out = append(out, f.Bag.Items()...)
	}
	return out
}

// Summary counts function verdicts across files.
type Summary struct {
	Files     int
	Functions int
	Passed    int
	Expected  int
	Failed    int
	Cached    int
}

// Summary counts verdicts.
func (r *Result) Summary() Summary {
	s := Summary{Files: len(r.Files)}
	for _, f := range r.Files {
		if f.Cached {
			s.Cached++
		}
		for _, fn := range f.Functions {
			s.Functions++
			switch fn.Verdict {
			case VerdictPass:
				s.Passed++
			case VerdictExpected:
				s.Expected++
			default:
				s.Failed++
			}
		}
	}
	return s
}

// CheckFiles checks files in parallel. Results keep the order of files.
// Only context cancellation is returned as an error; everything else is a
// diagnostic on the file result.
func CheckFiles(ctx context.Context, files []string, opts Options) (*Result, error) {
	started := time.Now()
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "check", 0)

	for _, f := range files {
		emit(opts.Sink, Event{File: f, Stage: StageLoad, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]*FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = CheckFile(gctx, path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.End("cancelled")
		return nil, err
	}

	res := &Result{Files: results, Elapsed: time.Since(started)}
	span.WithExtra("files", strconv.Itoa(len(files))).End("")
	return res, nil
}
