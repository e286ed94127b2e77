package diagfmt

import (
	"llasm/internal/diag"
	"llasm/internal/source"
)

// hasLocation reports whether sp can be resolved in fs. I/O diagnostics
// carry no position: the file they describe may be missing from the set.
func hasLocation(d diag.Code, sp source.Span, fs *source.FileSet) bool {
	if fs == nil || d.Class() == "IOError" {
		return false
	}
	return int(sp.File) < fs.Len()
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeRelative:
		return f.FormatPath(mode.String(), fs.BaseDir())
	default:
		return f.FormatPath(mode.String(), "")
	}
}
