package driver

import (
	"context"
	"path/filepath"

	"llasm/internal/asm"
	"llasm/internal/diag"
	"llasm/internal/ir"
	"llasm/internal/observ"
	"llasm/internal/source"
	"llasm/internal/trace"
)

// Options configures a single driver run.
type Options struct {
	MaxDiagnostics int
	AlignAttr      asm.AlignPolicy
	// Jobs limits parallel workers in ParseFiles; <=0 means GOMAXPROCS.
	Jobs int
	// Cache is the optional on-disk summary cache.
	Cache *DiskCache
	// Memory keeps parsed modules for the lifetime of the process.
	Memory   *ModuleCache
	Progress ProgressSink
	// BaseDir makes reported paths relative.
	BaseDir string
}

// ParseResult is everything one parse produced.
type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Module  *ir.Module
	Err     error
	Bag     *diag.Bag
	Timing  *observ.Report
}

// Failed reports whether the file did not produce a module.
func (r *ParseResult) Failed() bool {
	return r == nil || r.Module == nil
}

// Parse loads path from disk and reads it as one module.
func Parse(ctx context.Context, path string, opts Options) (*ParseResult, error) {
	fs := source.NewFileSetWithBase(opts.BaseDir)
	timer := observ.NewTimer()

	loadIdx := timer.Begin("load")
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	timer.EndBytes(loadIdx, len(fs.Get(fileID).Content), "")
	return parseLoaded(ctx, fs, fs.Get(fileID), opts, timer), nil
}

// ParseSource reads src as a module named name without touching the disk.
func ParseSource(ctx context.Context, name string, src []byte, opts Options) *ParseResult {
	fs := source.NewFileSetWithBase(opts.BaseDir)
	fileID := fs.AddVirtual(name, src)
	return parseLoaded(ctx, fs, fs.Get(fileID), opts, observ.NewTimer())
}

func parseLoaded(ctx context.Context, fs *source.FileSet, file *source.File, opts Options, timer *observ.Timer) *ParseResult {
	span, ctx := trace.Start(ctx, trace.ScopeDriver, "driver.parse")
	span.WithExtra("file", file.Path)
	defer span.End("")

	res := &ParseResult{
		FileSet: fs,
		File:    file,
		Bag:     diag.NewBag(opts.MaxDiagnostics),
	}

	if mod, ok := opts.Memory.Lookup(file.Path, file.Hash); ok {
		res.Module = mod
		report := timer.Report()
		res.Timing = &report
		span.Point("cache hit", "memory")
		return res
	}

	parseIdx := timer.Begin("parse")
	mod, err := asm.Parse(ctx, file, asm.Options{
		Reporter:   diag.BagReporter{Bag: res.Bag},
		ModuleName: filepath.Base(file.Path),
		AlignAttr:  opts.AlignAttr,
	})
	timer.EndBytes(parseIdx, len(file.Content), "")

	res.Module = mod
	res.Err = err
	if err == nil {
		opts.Memory.Store(file.Path, file.Hash, mod)
	} else {
		span.WithExtra("error", err.Error())
	}

	report := timer.Report()
	res.Timing = &report
	return res
}
