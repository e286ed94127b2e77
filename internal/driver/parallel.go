package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"llasm/internal/asm"
	"llasm/internal/diag"
	"llasm/internal/ir"
	"llasm/internal/observ"
	"llasm/internal/source"
	"llasm/internal/trace"
)

// FileResult is the outcome of reading one file in a batch.
type FileResult struct {
	Path   string
	FileID source.FileID
	// Module is nil for failures and for outcomes restored from the disk
	// cache; Stats is filled in both success cases.
	Module  *ir.Module
	Stats   ir.Stats
	Err     error
	Bag     *diag.Bag
	Cached  bool
	Elapsed time.Duration
	Timing  observ.Report
}

// Failed reports whether the file produced an error.
func (r *FileResult) Failed() bool {
	return r.Err != nil
}

// ListFiles возвращает отсортированный список *.ll файлов. path может быть
// и самим файлом.
func ListFiles(path string) ([]string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".ll") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// ParseFiles reads every path as an independent module in parallel. Each file
// gets its own parser; the only shared state is the FileSet, filled up front,
// and the caches in opts. The returned error is non-nil only when ctx was
// cancelled; per-file failures live in the results.
func ParseFiles(ctx context.Context, paths []string, opts Options) (*source.FileSet, []FileResult, error) {
	fileSet := source.NewFileSetWithBase(opts.BaseDir)
	if len(paths) == 0 {
		return fileSet, nil, nil
	}

	batch, ctx := trace.Start(ctx, trace.ScopeDriver, "driver.parse_files")
	batch.WithExtra("files", fmt.Sprint(len(paths)))
	defer batch.End("")

	// FileSet не потокобезопасен: загружаем всё до запуска воркеров
	fileIDs := make([]source.FileID, len(paths))
	loadErrors := make(map[int]error)
	for i, path := range paths {
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
		fileID, err := fileSet.Load(path)
		if err != nil {
			loadErrors[i] = err
			continue
		}
		fileIDs[i] = fileID
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	jobs = min(jobs, len(paths))
	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]FileResult, len(paths))

	// номера воркеров для трассировки; SetLimit гарантирует, что их хватит
	lanes := make(chan int, jobs)
	for lane := 1; lane <= jobs; lane++ {
		lanes <- lane
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			lane := <-lanes
			defer func() { lanes <- lane }()
			wctx := trace.WithLane(gctx, lane)

			start := time.Now()
			bag := diag.NewBag(opts.MaxDiagnostics)
			res := &results[i]
			res.Path = path
			res.Bag = bag

			if loadErr, failed := loadErrors[i]; failed {
				res.Err = loadErr
				bag.Add(diag.Diagnostic{
					Severity: diag.SevError,
					Code:     diag.IOLoadFileError,
					Message:  "failed to load file: " + loadErr.Error(),
				})
				res.Elapsed = time.Since(start)
				emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: loadErr, Elapsed: res.Elapsed})
				return nil
			}

			res.FileID = fileIDs[i]
			parseOne(wctx, fileSet.Get(res.FileID), opts, res)
			res.Elapsed = time.Since(start)

			status := StatusDone
			switch {
			case res.Err != nil:
				status = StatusError
			case res.Cached:
				status = StatusCached
			}
			emit(opts.Progress, Event{File: path, Stage: StageParse, Status: status, Err: res.Err, Elapsed: res.Elapsed})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

// parseOne fills res from the caches or by parsing file.
func parseOne(ctx context.Context, file *source.File, opts Options, res *FileResult) {
	timer := observ.NewTimer()
	defer func() { res.Timing = timer.Report() }()

	lookup := timer.Begin("cache")
	if mod, ok := opts.Memory.Lookup(file.Path, file.Hash); ok {
		timer.End(lookup, "memory")
		res.Module = mod
		res.Stats = mod.Stats()
		res.Cached = true
		return
	}

	key := cacheKey(file.Hash, opts.AlignAttr)
	var payload DiskPayload
	hit, err := opts.Cache.Get(key, &payload)
	timer.End(lookup, "")
	if err != nil {
		res.Bag.Add(diag.Diagnostic{
			Severity: diag.SevWarning,
			Code:     diag.IOCacheError,
			Message:  "cache read failed: " + err.Error(),
		})
	}
	if hit && payload.Hash == file.Hash {
		res.Cached = true
		res.Stats = payload.Stats
		if res.Err = errorFromPayload(&payload, file.ID); res.Err != nil {
			res.Bag.Add(diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.Code(payload.Code),
				Message:  payload.Message,
				Primary:  source.Span{File: file.ID, Start: payload.Start, End: payload.End},
			})
		}
		return
	}

	emit(opts.Progress, Event{File: file.Path, Stage: StageParse, Status: StatusWorking})
	parse := timer.Begin("parse")
	mod, err := asm.Parse(ctx, file, asm.Options{
		Reporter:   diag.BagReporter{Bag: res.Bag},
		ModuleName: filepath.Base(file.Path),
		AlignAttr:  opts.AlignAttr,
	})
	timer.EndBytes(parse, len(file.Content), "")
	res.Module = mod
	res.Err = err
	if mod != nil {
		res.Stats = mod.Stats()
		opts.Memory.Store(file.Path, file.Hash, mod)
	}
	if putErr := opts.Cache.Put(key, payloadFor(file.Path, file.Hash, mod, err)); putErr != nil {
		res.Bag.Add(diag.Diagnostic{
			Severity: diag.SevWarning,
			Code:     diag.IOCacheError,
			Message:  "cache write failed: " + putErr.Error(),
		})
	}
}

// Summarize counts failed and cached results.
func Summarize(results []FileResult) (failed, cached int) {
	for i := range results {
		if results[i].Failed() {
			failed++
		}
		if results[i].Cached {
			cached++
		}
	}
	return failed, cached
}
