// Package trace records what the reader and the driver are doing: a span
// per command, per file, per step inside a file and per function body.
//
//	llasm check --trace=trace.json --trace-level=detail ./ir
//
// Spans are started from a context so that batch workers nest their files
// under the batch span and keep their lane:
//
//	sp, ctx := trace.Start(ctx, trace.ScopeFile, "parse "+path)
//	defer sp.End("")
//	fn := sp.Child(trace.ScopeFunction, "function @main")
//
// At LevelError nothing is written unless the run fails; DumpRecent then
// writes the tail kept in the ring.
package trace
