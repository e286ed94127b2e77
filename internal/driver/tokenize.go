package driver

import (
	"context"
	"strconv"

	"fortio.org/safecast"

	"llasm/internal/diag"
	"llasm/internal/lexer"
	"llasm/internal/source"
	"llasm/internal/token"
	"llasm/internal/trace"
)

// TokenizeResult holds the tokens of one file plus lexer diagnostics.
type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag

	// Suppressed counts repeated lexer diagnostics that were dropped.
	Suppressed int
}

// Tokenize loads path and lexes it completely; lexical errors become
// diagnostics and Invalid tokens rather than a stop.
func Tokenize(ctx context.Context, path string, opts Options) (*TokenizeResult, error) {
	fs := source.NewFileSetWithBase(opts.BaseDir)
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return tokenizeFile(ctx, fs, fs.Get(fileID), opts), nil
}

// TokenizeSource lexes src without touching the disk.
func TokenizeSource(ctx context.Context, name string, src []byte, opts Options) *TokenizeResult {
	fs := source.NewFileSetWithBase(opts.BaseDir)
	fileID := fs.AddVirtual(name, src)
	return tokenizeFile(ctx, fs, fs.Get(fileID), opts)
}

func tokenizeFile(ctx context.Context, fs *source.FileSet, file *source.File, opts Options) *TokenizeResult {
	span, _ := trace.Start(ctx, trace.ScopeFile, "tokenize "+file.Path)
	defer span.End("")

	bag := diag.NewBag(opts.MaxDiagnostics)
	// одинаковые ошибки на одном span печатаем один раз
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	toks := lexer.Tokenize(file, lexer.Options{Reporter: reporter})
	span.WithExtra("tokens", strconv.Itoa(len(toks)))
	return &TokenizeResult{FileSet: fs, File: file, Tokens: toks, Bag: bag, Suppressed: reporter.Suppressed()}
}

// KindCounts returns how many tokens of each kind were produced, EOF excluded.
func (r *TokenizeResult) KindCounts() map[token.Kind]uint32 {
	out := make(map[token.Kind]int, 32)
	for _, t := range r.Tokens {
		if t.Kind != token.EOF {
			out[t.Kind]++
		}
	}
	counts := make(map[token.Kind]uint32, len(out))
	for k, n := range out {
		c, err := safecast.Conv[uint32](n)
		if err != nil {
			c = ^uint32(0)
		}
		counts[k] = c
	}
	return counts
}
