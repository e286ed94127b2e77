package lexer

import (
	"llasm/internal/diag"
	"llasm/internal/token"
)

// scanUntilQuote consumes bytes up to and including the closing '"' and
// returns the raw body. Строки в .ll могут содержать переводы строк.
func (lx *Lexer) scanUntilQuote() (raw []byte, closed bool) {
	bodyStart := lx.cursor.Mark()
	lx.cursor.EatWhile(func(b byte) bool { return b != '"' })
	raw = lx.cursor.Text(bodyStart)
	return raw, lx.cursor.Eat('"')
}

// scanQuote lexes "..." as a StringConstant, or "...": as a LabelStr.
func (lx *Lexer) scanQuote() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	raw, closed := lx.scanUntilQuote()
	if !closed {
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnterminatedString, sp, "end of file in string constant")
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}
	kind := token.StringConstant
	if lx.cursor.Eat(':') {
		kind = token.LabelStr
	}
	sp := lx.cursor.SpanFrom(start)
	val, ok := Unescape(raw)
	if !ok {
		lx.errLex(diag.LexBadEscape, sp, "invalid escape sequence in string constant")
	}
	return token.Token{Kind: kind, Span: sp, Text: val}
}
