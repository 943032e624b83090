// Package trace is the logging layer of ownck.
//
// Events are emitted through a Tracer carried in context.Context. The level
// decides which scopes reach the output:
//
//   - LevelOff: nothing
//   - LevelPhase: driver and file boundaries
//   - LevelDetail: adds per-function spans
//   - LevelDebug: adds one event per applied instruction
//
// Usage:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, path, 0)
//	defer span.End("")
package trace
