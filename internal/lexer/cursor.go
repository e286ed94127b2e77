package lexer

import (
	"fmt"

	"fortio.org/safecast"

	"llasm/internal/source"
)

// Cursor is a byte offset into one .ll file. LLVM assembly is ASCII outside
// of string literals and quoted names, so the lexer works on bytes.
type Cursor struct {
	File *source.File
	Off  uint32
	end  uint32
}

// NewCursor places a cursor at the start of f.
func NewCursor(f *source.File) Cursor {
	end, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("file %s is too large: %w", f.Path, err))
	}
	return Cursor{File: f, end: end}
}

// EOF проверяет, достигнут ли конец файла
func (c *Cursor) EOF() bool {
	return c.Off >= c.end
}

// Peek возвращает текущий байт или 0 на EOF
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.File.Content[c.Off]
}

// Peek2 returns the current and the next byte; ok is false if either is
// past the end.
func (c *Cursor) Peek2() (b0, b1 byte, ok bool) {
	if c.Off+1 >= c.end {
		return 0, 0, false
	}
	return c.File.Content[c.Off], c.File.Content[c.Off+1], true
}

// Peek3 is Peek2 with one more byte of lookahead, needed for "..." and
// exponent signs.
func (c *Cursor) Peek3() (b0, b1, b2 byte, ok bool) {
	if c.Off+2 >= c.end {
		return 0, 0, 0, false
	}
	return c.File.Content[c.Off], c.File.Content[c.Off+1], c.File.Content[c.Off+2], true
}

// Bump consumes one byte and returns it, 0 at EOF.
func (c *Cursor) Bump() byte {
	if c.EOF() {
		return 0
	}
	b := c.File.Content[c.Off]
	c.Off++
	return b
}

// Eat consumes b if it is next.
func (c *Cursor) Eat(b byte) bool {
	if !c.EOF() && c.File.Content[c.Off] == b {
		c.Off++
		return true
	}
	return false
}

// EatString consumes s if the input continues with it.
func (c *Cursor) EatString(s string) bool {
	n := uint32(len(s))
	if c.Off+n > c.end || string(c.File.Content[c.Off:c.Off+n]) != s {
		return false
	}
	c.Off += n
	return true
}

// EatWhile consumes bytes while pred holds and returns how many it took.
func (c *Cursor) EatWhile(pred func(byte) bool) int {
	from := c.Off
	for c.Off < c.end && pred(c.File.Content[c.Off]) {
		c.Off++
	}
	return int(c.Off - from)
}

// SkipLine consumes everything up to, not including, the next newline.
func (c *Cursor) SkipLine() {
	for c.Off < c.end && c.File.Content[c.Off] != '\n' {
		c.Off++
	}
}

// Mark is a saved offset.
type Mark uint32

func (c *Cursor) Mark() Mark {
	return Mark(c.Off)
}

// SpanFrom covers the bytes consumed since m.
func (c *Cursor) SpanFrom(m Mark) source.Span {
	return source.Span{File: c.File.ID, Start: uint32(m), End: c.Off}
}

// Text returns the bytes consumed since m without copying.
func (c *Cursor) Text(m Mark) []byte {
	return c.File.Content[m:c.Off]
}

// Reset возвращает курсор назад к метке
func (c *Cursor) Reset(m Mark) {
	c.Off = uint32(m)
}
