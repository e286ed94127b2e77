package lexer

import (
	"testing"

	"llasm/internal/source"
)

func newTestCursor(text string) Cursor {
	fs := source.NewFileSet()
	return NewCursor(fs.Get(fs.AddVirtual("c.ll", []byte(text))))
}

func TestCursorEatWhile(t *testing.T) {
	c := newTestCursor("1234abc")
	start := c.Mark()
	if n := c.EatWhile(isDec); n != 4 {
		t.Fatalf("EatWhile = %d, want 4", n)
	}
	if got := string(c.Text(start)); got != "1234" {
		t.Fatalf("Text = %q", got)
	}
	if n := c.EatWhile(isDec); n != 0 {
		t.Fatalf("second EatWhile = %d, want 0", n)
	}
	c.EatWhile(isLabelChar)
	if !c.EOF() || c.Peek() != 0 || c.Bump() != 0 {
		t.Fatalf("cursor should be at EOF")
	}
}

func TestCursorEatString(t *testing.T) {
	c := newTestCursor("..")
	if c.EatString("...") {
		t.Fatalf("EatString past the end succeeded")
	}
	if c.Off != 0 {
		t.Fatalf("failed EatString moved the cursor to %d", c.Off)
	}
	if !c.EatString("..") || !c.EOF() {
		t.Fatalf("EatString(..) failed")
	}
}

func TestCursorSkipLineAndSpan(t *testing.T) {
	c := newTestCursor("; comment\nret")
	c.SkipLine()
	if c.Peek() != '\n' {
		t.Fatalf("SkipLine stopped at %q", c.Peek())
	}
	c.Bump()
	m := c.Mark()
	c.EatWhile(isKeywordChar)
	sp := c.SpanFrom(m)
	if sp.Start != 10 || sp.End != 13 {
		t.Fatalf("span = %d..%d, want 10..13", sp.Start, sp.End)
	}
	c.Reset(m)
	if b0, b1, ok := c.Peek2(); !ok || b0 != 'r' || b1 != 'e' {
		t.Fatalf("Peek2 after Reset = %q %q %v", b0, b1, ok)
	}
	short := newTestCursor("ab")
	if _, _, _, ok := short.Peek3(); ok {
		t.Fatalf("Peek3 on two bytes should fail")
	}
}
