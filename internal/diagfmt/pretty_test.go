package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"llasm/internal/diag"
	"llasm/internal/source"
)

func sampleBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSetWithBase("/home/user/project")
	content := []byte("@a = global i32 0\n@g = global i32* @missing\n")
	fileID := fs.AddVirtual("/home/user/project/ir/test.ll", content)

	bag := diag.NewBag(10)
	start := uint32(strings.Index(string(content), "@missing"))
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.UnrGlobal,
		Message:  "use of undefined value '@missing'",
		Primary:  source.Span{File: fileID, Start: start, End: start + 8},
		Notes: []diag.Note{{
			Span: source.Span{File: fileID, Start: 18, End: 20},
			Msg:  "referenced here",
		}},
	})
	return bag, fs
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	bag, fs := sampleBag(t)
	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{name: "Absolute path", mode: PathModeAbsolute, contains: "/home/user/project/ir/test.ll:2:18"},
		{name: "Relative path", mode: PathModeRelative, contains: "ir/test.ll:2:18"},
		{name: "Basename only", mode: PathModeBasename, contains: "test.ll:2:18"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode})
			output := buf.String()
			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "ERROR") || !strings.Contains(output, "UNR5001") {
				t.Errorf("severity or code missing:\n%s", output)
			}
		})
	}
}

func TestPrettySnippet(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: PathModeBasename, ShowNotes: true})
	want := strings.Join([]string{
		"test.ll:2:18: ERROR UNR5001: use of undefined value '@missing'",
		"1 | @a = global i32 0",
		"2 | @g = global i32* @missing",
		"  |                  ^~~~~~~~",
		"  note: test.ll:2:1: referenced here",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Fatalf("output mismatch:\n--- got\n%s\n--- want\n%s", got, want)
	}
}

func TestPrettyIODiagnosticHasNoLocation(t *testing.T) {
	fs := source.NewFileSetWithBase("")
	bag := diag.NewBag(0)
	bag.Add(diag.Diagnostic{Severity: diag.SevError, Code: diag.IOLoadFileError, Message: "failed to load file: gone.ll"})
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	if got := buf.String(); got != "ERROR IO7001: failed to load file: gone.ll\n" {
		t.Fatalf("got %q", got)
	}
}

func TestPrettyColor(t *testing.T) {
	bag, fs := sampleBag(t)
	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatalf("escape codes without Color")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("no escape codes with Color")
	}
}
