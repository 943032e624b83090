package driver

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"ownck/internal/diag"
	"ownck/internal/ownership"
	"ownck/internal/program"
	"ownck/internal/project"
	"ownck/internal/trace"
)

// Options controls a check run.
type Options struct {
	// Jobs limits parallel files; 0 means GOMAXPROCS.
	Jobs int
	// Strict is the strict-mutability default for functions that do not set it.
	Strict bool
	// AllViolations reports every rejected instruction instead of the first.
	AllViolations  bool
	MaxDiagnostics int
	Cache          *DiskCache
	Sink           ProgressSink
}

// Verdict is the outcome of one function.
type Verdict uint8

const (
	// VerdictPass means no violation and none expected.
	VerdictPass Verdict = iota
	// VerdictExpected means the first violation matched the declared expectation.
	VerdictExpected
	VerdictFail
)

func (v Verdict) String() string {
	switch v {
	case VerdictPass:
		return "pass"
	case VerdictExpected:
		return "expected"
	case VerdictFail:
		return "fail"
	default:
		return "unknown"
	}
}

// FunctionResult summarises the check of one function.
type FunctionResult struct {
	Name    string  `msgpack:"name"`
	Verdict Verdict `msgpack:"verdict"`
	// First is the kind of the first violation, NoError when none.
	First      ownership.ErrorKind `msgpack:"first"`
	Expect     ownership.ErrorKind `msgpack:"expect"`
	Violations int                 `msgpack:"violations"`
	Instrs     int                 `msgpack:"instrs"`
}

// FileResult is the outcome of one program document.
type FileResult struct {
	Path string
	// Program is nil when the file could not be read.
	Program   *program.Program
	Bag       *diag.Bag
	Functions []FunctionResult
	Digest    project.Digest
	Cached    bool
	Elapsed   time.Duration
}

// Failed reports whether the file produced error diagnostics.
func (r *FileResult) Failed() bool {
	return r != nil && r.Bag != nil && r.Bag.HasErrors()
}

// CheckFunction runs a fresh checker over fn and reports its findings to r.
func CheckFunction(ctx context.Context, file string, fn program.Function, opts Options, r diag.Reporter) FunctionResult {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFunction, fn.Name, 0)

	checkOpts := append(fn.Options(opts.Strict), ownership.WithTracer(tracer))
	res := ownership.Check(fn.Instrs, checkOpts...)

	out := FunctionResult{
		Name:       fn.Name,
		Expect:     fn.Expect,
		Violations: len(res.Violations),
		Instrs:     len(fn.Instrs),
	}
	first := res.First()
	if first != nil {
		out.First = first.Kind
	}

	switch {
	case fn.Expect == ownership.NoError && first == nil:
		out.Verdict = VerdictPass
	case fn.Expect == ownership.NoError:
		out.Verdict = VerdictFail
		report(r, ViolationDiagnostic(file, fn.Name, first, res.Snapshot))
	case first == nil:
		out.Verdict = VerdictFail
		report(r, expectUnmet(file, fn.Name, fn.Expect))
	case first.Kind == fn.Expect:
		out.Verdict = VerdictExpected
	default:
		out.Verdict = VerdictFail
		report(r, expectMismatch(file, fn.Name, fn.Expect, first, res.Snapshot))
	}

	// остальные нарушения: ошибки, если ничего не ожидалось, иначе предупреждения
	if opts.AllViolations && len(res.Violations) > 1 {
		for _, v := range res.Violations[1:] {
			d := ViolationDiagnostic(file, fn.Name, v, res.Snapshot)
			if fn.Expect != ownership.NoError {
				d.Severity = diag.SevWarning
			}
			report(r, d)
		}
	}

	span.WithExtra("instrs", strconv.Itoa(out.Instrs)).
		WithExtra("violations", strconv.Itoa(out.Violations)).
		End(out.Verdict.String())
	return out
}

func report(r diag.Reporter, d diag.Diagnostic) {
	r.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
}

// CheckFile loads path, consults the cache and checks every function.
func CheckFile(ctx context.Context, path string, opts Options) *FileResult {
	started := time.Now()
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, path, 0)

	result := &FileResult{Path: path, Bag: diag.NewBag(maxDiagnostics(opts))}
	finish := func(stage Stage) *FileResult {
		result.Bag.Sort()
		result.Elapsed = time.Since(started)
		status := StatusDone
		if result.Failed() {
			status = StatusError
		}
		emit(opts.Sink, Event{File: path, Stage: stage, Status: status, Elapsed: result.Elapsed})
		detail := status
		if result.Cached {
			detail += " (cached)"
		}
		span.End(string(detail))
		return result
	}

	emit(opts.Sink, Event{File: path, Stage: StageLoad, Status: StatusWorking})
	data, err := os.ReadFile(path)
	if err != nil {
		result.Bag.Add(diag.NewError(diag.IOReadFile, diag.FileLocation(path),
			fmt.Sprintf("failed to read file: %v", err)))
		return finish(StageLoad)
	}
	result.Digest = cacheKey(project.Sum(data), opts)

	if opts.Cache != nil {
		var payload DiskPayload
		hit, err := opts.Cache.Get(result.Digest, &payload)
		if err != nil {
			trace.Point(tracer, trace.ScopeFile, path, "cache read failed: "+err.Error())
		}
		if hit && payload.Path == path {
			result.Cached = true
			result.Program = program.Decode(path, data, diag.NopReporter{})
			result.Functions = payload.Functions
			for _, d := range payload.Diagnostics {
				result.Bag.Add(d)
			}
			return finish(StageCache)
		}
	}

	reporter := diag.BagReporter{Bag: result.Bag}
	prog := program.Decode(path, data, reporter)
	result.Program = prog

	emit(opts.Sink, Event{File: path, Stage: StageCheck, Status: StatusWorking})
	for _, fn := range prog.Functions {
		if err := ctx.Err(); err != nil {
			result.Bag.Add(diag.NewError(diag.IOInfo, diag.FileLocation(path), "check cancelled: "+err.Error()))
			return finish(StageCheck)
		}
		result.Functions = append(result.Functions, CheckFunction(ctx, path, fn, opts, reporter))
	}

	if opts.Cache != nil {
		payload := &DiskPayload{
			Path:        path,
			ContentHash: project.Sum(data),
			Functions:   result.Functions,
			Diagnostics: result.Bag.Items(),
		}
		if err := opts.Cache.Put(result.Digest, payload); err != nil {
			trace.Point(tracer, trace.ScopeFile, path, "cache write failed: "+err.Error())
		}
	}
	return finish(StageCheck)
}

func maxDiagnostics(opts Options) int {
	if opts.MaxDiagnostics <= 0 {
		return 100
	}
	return opts.MaxDiagnostics
}
