package lexer

import (
	"llasm/internal/diag"
	"llasm/internal/source"
	"llasm/internal/token"
)

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   *token.Token // 1 элементный буфер для токена
	errs   int
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

// Errors returns how many lexical errors were reported so far.
func (lx *Lexer) Errors() int {
	return lx.errs
}

// Next возвращает следующий значимый токен. Пробелы и комментарии
// до конца строки (';') пропускаются. После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.skipTrivia()
	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.emptySpan()}
	}

	ch := lx.cursor.Peek()
	switch {
	case ch == '@':
		return lx.scanVar(token.GlobalVar, token.GlobalID)
	case ch == '%':
		return lx.scanVar(token.LocalVar, token.LocalVarID)
	case ch == '!':
		return lx.scanExclaim()
	case ch == '#':
		return lx.scanHash()
	case ch == '"':
		return lx.scanQuote()
	case isDec(ch) || ch == '-':
		return lx.scanDigitOrNegative()
	case ch == '+':
		return lx.scanPositive()
	case ch == '.':
		if lx.cursor.EatString("...") {
			return lx.simple(token.DotDotDot, 3)
		}
		return lx.scanIdentifier()
	case isIdentStartByte(ch):
		return lx.scanIdentifier()
	}

	if k, ok := punct[ch]; ok {
		lx.cursor.Bump()
		return lx.simple(k, 1)
	}

	start := lx.cursor.Mark()
	lx.bumpRune()
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnknownChar, sp, "invalid character '"+lx.text(sp)+"'")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

var punct = map[byte]token.Kind{
	'=': token.Equal,
	',': token.Comma,
	'*': token.Star,
	'[': token.LSquare,
	']': token.RSquare,
	'{': token.LBrace,
	'}': token.RBrace,
	'<': token.Less,
	'>': token.Greater,
	'(': token.LParen,
	')': token.RParen,
}

func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case ' ', '\t', '\n', '\r':
			lx.cursor.Bump()
		case ';':
			lx.cursor.SkipLine()
		default:
			return
		}
	}
}

// simple builds a token from the last n consumed bytes.
func (lx *Lexer) simple(k token.Kind, n uint32) token.Token {
	sp := source.Span{File: lx.file.ID, Start: lx.cursor.Off - n, End: lx.cursor.Off}
	return token.Token{Kind: k, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) text(sp source.Span) string {
	return string(lx.file.Content[sp.Start:sp.End])
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

// Tokenize lexes the whole file, EOF included.
func Tokenize(file *source.File, opts Options) []token.Token {
	lx := New(file, opts)
	var out []token.Token
	for {
		t := lx.Next()
		out = append(out, t)
		if t.Kind == token.EOF {
			return out
		}
	}
}
