package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"llasm/internal/diag"
	"llasm/internal/diagfmt"
	"llasm/internal/driver"
	"llasm/internal/observ"
	"llasm/internal/source"
	"llasm/internal/version"
)

// printDiagnostics выводит bag в выбранном формате (pretty|short|json|sarif).
func printDiagnostics(w io.Writer, bag *diag.Bag, fs *source.FileSet, s *settings, format string, args []string) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	bag.Sort()
	switch format {
	case "", "pretty":
		f, _ := w.(*os.File)
		diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
			Color:     f != nil && s.useColor(f),
			Context:   int8(min(s.Context, 8)),
			ShowNotes: true,
		})
		return nil
	case "short":
		_, err := io.WriteString(w, diag.FormatShort(bag.Items(), fs, true))
		return err
	case "json":
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{IncludePositions: true, IncludeNotes: true})
	case "sarif":
		return diagfmt.Sarif(w, bag, fs, diagfmt.SarifRunMeta{
			ToolName:       "llasm",
			ToolVersion:    version.Plain(),
			InvocationArgs: args,
		})
	}
	return fmt.Errorf("unknown diagnostics format: %s", format)
}

func validDiagFormat(format string) error {
	switch format {
	case "pretty", "short", "json", "sarif":
		return nil
	}
	return fmt.Errorf("unknown diagnostics format %q (expected pretty|short|json|sarif)", format)
}

func printTimingReport(w io.Writer, report *observ.Report) {
	if report == nil {
		return
	}
	report.WriteText(w)
}

// printBatchTimings prints the phase totals of a batch and its slowest files.
func printBatchTimings(w io.Writer, results []driver.FileResult) {
	reports := make([]observ.Report, 0, len(results))
	elapsed := make(map[string]float64, len(results))
	for i := range results {
		reports = append(reports, results[i].Timing)
		elapsed[results[i].Path] = toMillis(results[i].Elapsed)
	}
	merged := observ.Merge(reports...)
	merged.WriteText(w)
	if len(results) < 2 {
		return
	}
	fmt.Fprintln(w, "slowest:")
	for _, path := range observ.Slowest(elapsed, 5) {
		fmt.Fprintf(w, "  %-40s %9.2f ms\n", path, elapsed[path])
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
