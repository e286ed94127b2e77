package source

import (
	"testing"
)

func TestFileSetAddKeepsVersions(t *testing.T) {
	fs := NewFileSet()
	id1 := fs.Add("a.ll", []byte("one"), 0)
	id2 := fs.Add("a.ll", []byte("two"), 0)
	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %d twice", id1)
	}
	latest, ok := fs.GetLatest("a.ll")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d,%v; want %d,true", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "one" {
		t.Errorf("old version lost: %q", got)
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("m.ll", []byte("define void @f() {\nentry:\n  ret void\n}\n"))
	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{18, LineCol{1, 19}}, // сам '\n'
		{19, LineCol{2, 1}},
		{28, LineCol{3, 3}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("offset %d: got %+v want %+v", tt.off, start, tt.want)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("x.ll", []byte("first\nsecond\nthird")))
	for i, want := range []string{"first", "second", "third", ""} {
		if got := f.GetLine(uint32(i + 1)); got != want {
			t.Errorf("line %d: got %q want %q", i+1, got, want)
		}
	}
}

func TestNormalizeCRLFAndBOM(t *testing.T) {
	out, changed := normalizeCRLF([]byte("a\r\nb\rc"))
	if !changed || string(out) != "a\nb\rc" {
		t.Fatalf("normalizeCRLF = %q,%v", out, changed)
	}
	rest, had := removeBOM([]byte{0xEF, 0xBB, 0xBF, 'x'})
	if !had || string(rest) != "x" {
		t.Fatalf("removeBOM = %q,%v", rest, had)
	}
}

func TestAddRecordsFlags(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("v.ll", []byte("\xEF\xBB\xBFret\r\n")))
	if got := f.Flags.String(); got != "virtual|bom|crlf" {
		t.Fatalf("flags = %q", got)
	}
	if string(f.Content) != "ret\n" {
		t.Fatalf("content = %q", f.Content)
	}
	if lc := (LineCol{Line: 2, Col: 5}); lc.String() != "2:5" {
		t.Fatalf("LineCol.String = %q", lc.String())
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 12}
	b := Span{File: 1, Start: 4, End: 11}
	if got := a.Cover(b); got != (Span{File: 1, Start: 4, End: 12}) {
		t.Fatalf("Cover = %v", got)
	}
	if got := a.Cover(Span{File: 2, Start: 0, End: 100}); got != a {
		t.Fatalf("cross-file Cover changed span: %v", got)
	}
	if !b.Before(a) || a.Before(b) {
		t.Fatalf("Before ordering broken")
	}
}
