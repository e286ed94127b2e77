package asm

import (
	"path/filepath"
	"strings"
	"testing"

	"llasm/internal/ir"
)

// Печать и повторный разбор должны давать структурно равный модуль.
func TestRoundTrip(t *testing.T) {
	for _, path := range testdataFiles(t) {
		t.Run(filepath.Base(path), func(t *testing.T) {
			first, err := parseString(t, readTestdata(t, path))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			printed := ir.Print(first)
			second, err := parseString(t, printed)
			if err != nil {
				t.Fatalf("reparse: %v\n%s", err, printed)
			}
			if err := ir.Equal(first, second); err != nil {
				t.Fatalf("modules differ: %v\n%s", err, printed)
			}
			if again := ir.Print(second); again != printed {
				t.Fatalf("printing is not stable:\n--- first\n%s\n--- second\n%s", printed, again)
			}
		})
	}
}

func TestRoundTripDetectsDifference(t *testing.T) {
	a := mustParse(t, "@g = global i32 1\n")
	b := mustParse(t, "@g = global i32 2\n")
	if err := ir.Equal(a, b); err == nil {
		t.Fatalf("expected difference in initializers")
	}
}

func TestRoundTripMetadataCycle(t *testing.T) {
	src := "!0 = metadata !{metadata !1, metadata !\"x\"}\n!1 = metadata !{metadata !0}\n!n = !{!0}\n"
	first := mustParse(t, src)
	second := mustParse(t, ir.Print(first))
	if err := ir.Equal(first, second); err != nil {
		t.Fatalf("cycle did not survive: %v", err)
	}
}

func TestPrintAtomicOrderings(t *testing.T) {
	src := `define void @f(i32* %p) {
  %a = load atomic i32* %p unordered, align 4
  %b = cmpxchg i32* %p, i32 0, i32 1 acq_rel
  %c = atomicrmw add i32* %p, i32 1 seq_cst
  store atomic i32 %a, i32* %p release, align 4
  fence singlethread acquire
  ret void
}
`
	printed := ir.Print(mustParse(t, src))
	for _, want := range []string{
		"load atomic i32* %p unordered, align 4",
		"i32 1 acq_rel",
		"i32 1 seq_cst",
		"i32* %p release, align 4",
		"fence singlethread acquire",
	} {
		if !strings.Contains(printed, want) {
			t.Errorf("printed module lacks %q:\n%s", want, printed)
		}
	}
}
