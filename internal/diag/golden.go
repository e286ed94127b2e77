package diag

import (
	"fmt"
	"strings"

	"llasm/internal/source"
)

// FormatShort renders one line per diagnostic:
//
//	path:line:col: SEVERITY CODE: message
//
// Notes follow on indented lines when includeNotes is set. The bag is
// expected to be sorted already.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	var b strings.Builder
	for _, d := range diags {
		fmt.Fprintf(&b, "%s: %s %s: %s\n", position(fs, d.Primary), d.Severity, d.Code.ID(), d.Message)
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(&b, "  note: %s: %s\n", position(fs, n.Span), n.Msg)
		}
	}
	return b.String()
}

func position(fs *source.FileSet, sp source.Span) string {
	if fs == nil || fs.Len() == 0 {
		return sp.String()
	}
	return fs.Position(sp)
}
