package driver

import (
	"context"
	"fmt"

	"llasm/internal/ir"
	"llasm/internal/observ"
	"llasm/internal/trace"
)

// RoundTripResult describes one print -> reparse -> compare cycle.
type RoundTripResult struct {
	First   *ParseResult
	Printed string
	Second  *ParseResult
	// Diff is the first structural difference, nil when the modules match.
	Diff error
	// Stable is true when printing the reparsed module gives the same text.
	Stable bool
}

// OK reports whether the whole cycle succeeded.
func (r *RoundTripResult) OK() bool {
	return r != nil && !r.First.Failed() && !r.Second.Failed() && r.Diff == nil && r.Stable
}

// RoundTrip parses path, prints the module, parses the printed text again
// and compares the two modules structurally. The error return is for I/O
// only; parse failures are reported through the result.
func RoundTrip(ctx context.Context, path string, opts Options) (*RoundTripResult, error) {
	// повторный разбор не должен попасть в кеш по пути первого
	opts.Memory = nil
	first, err := Parse(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	return roundTripFrom(ctx, first, opts), nil
}

// RoundTripSource is RoundTrip for in-memory text.
func RoundTripSource(ctx context.Context, name string, src []byte, opts Options) *RoundTripResult {
	opts.Memory = nil
	return roundTripFrom(ctx, ParseSource(ctx, name, src, opts), opts)
}

func roundTripFrom(ctx context.Context, first *ParseResult, opts Options) *RoundTripResult {
	res := &RoundTripResult{First: first}
	if first.Failed() {
		return res
	}

	span, ctx := trace.Start(ctx, trace.ScopeDriver, "driver.roundtrip")
	defer span.End("")

	timer := observ.NewTimer()
	idx := timer.Begin("print")
	printSpan := span.Child(trace.ScopeStep, "print "+first.File.Path)
	res.Printed = ir.Print(first.Module)
	printSpan.End("")
	timer.End(idx, "")

	res.Second = ParseSource(ctx, first.File.Path+".printed", []byte(res.Printed), opts)
	if res.Second.Failed() {
		res.Diff = fmt.Errorf("printed module does not parse: %w", res.Second.Err)
		span.WithExtra("error", res.Diff.Error())
		return res
	}

	idx = timer.Begin("compare")
	res.Diff = ir.Equal(first.Module, res.Second.Module)
	res.Stable = ir.Print(res.Second.Module) == res.Printed
	timer.End(idx, "")
	span.WithExtra("timing", timer.Summary())
	return res
}
