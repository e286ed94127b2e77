package lexer

import (
	"llasm/internal/diag"
	"llasm/internal/token"
)

// scanDigitOrNegative lexes integers, decimal floats, hex floats (0x, 0xK,
// 0xL, 0xM, 0xH) and labels that start with a digit or '-'.
func (lx *Lexer) scanDigitOrNegative() token.Token {
	start := lx.cursor.Mark()
	first := lx.cursor.Peek()

	if first == '-' {
		_, b1, ok := lx.cursor.Peek2()
		if !ok || !isDec(b1) {
			lx.cursor.Bump()
			if tok, ok := lx.tryLabelTail(start); ok {
				return tok
			}
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexUnknownChar, sp, "invalid token '-'")
			return token.Token{Kind: token.Invalid, Span: sp, Text: "-"}
		}
	}
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '0' && b1 == 'x' {
		return lx.scanHex0x(start)
	}

	lx.cursor.Bump()
	lx.cursor.EatWhile(isDec)
	digitsEnd := lx.cursor.Mark()

	if tok, ok := lx.tryLabelTail(start); ok {
		return tok
	}
	lx.cursor.Reset(digitsEnd)

	if lx.cursor.Peek() != '.' {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: token.APSInt, Span: sp, Text: lx.text(sp)}
	}
	lx.cursor.Bump()
	lx.scanFraction()
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.APFloat, Span: sp, Text: lx.text(sp)}
}

// scanPositive lexes "+1.5e3"; a leading '+' is valid only on floats.
func (lx *Lexer) scanPositive() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	digits := lx.cursor.EatWhile(isDec)
	if digits == 0 || !lx.cursor.Eat('.') {
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexBadNumber, sp, "expected floating point constant after '+'")
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}
	lx.scanFraction()
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.APFloat, Span: sp, Text: lx.text(sp)}
}

// scanFraction consumes [0-9]*([eE][-+]?[0-9]+)? after the dot.
func (lx *Lexer) scanFraction() {
	lx.cursor.EatWhile(isDec)
	b0, b1, ok := lx.cursor.Peek2()
	if !ok || (b0 != 'e' && b0 != 'E') {
		return
	}
	if isDec(b1) {
		lx.cursor.Bump()
	} else if b1 == '-' || b1 == '+' {
		if _, _, b2, ok3 := lx.cursor.Peek3(); !ok3 || !isDec(b2) {
			return
		}
		lx.cursor.Bump()
		lx.cursor.Bump()
	} else {
		return
	}
	lx.cursor.EatWhile(isDec)
}

// scanHex0x lexes 0x[KLMH]?[0-9A-Fa-f]+ as an APFloat; Text keeps the prefix.
func (lx *Lexer) scanHex0x(start Mark) token.Token {
	lx.cursor.Bump()
	lx.cursor.Bump()
	switch lx.cursor.Peek() {
	case 'K', 'L', 'M', 'H':
		lx.cursor.Bump()
	}
	digits := lx.cursor.EatWhile(isHex)
	sp := lx.cursor.SpanFrom(start)
	if digits == 0 {
		lx.errLex(diag.LexBadNumber, sp, "expected hex digits after '0x'")
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}
	return token.Token{Kind: token.APFloat, Span: sp, Text: lx.text(sp)}
}

// tryLabelTail consumes [-a-zA-Z$._0-9]*: and returns a label token
// starting at start. Cursor is left untouched when no colon follows.
func (lx *Lexer) tryLabelTail(start Mark) (token.Token, bool) {
	save := lx.cursor.Mark()
	lx.cursor.EatWhile(isLabelChar)
	if lx.cursor.Peek() != ':' || lx.cursor.EOF() {
		lx.cursor.Reset(save)
		return token.Token{}, false
	}
	name := string(lx.cursor.Text(start))
	lx.cursor.Bump()
	sp := lx.cursor.SpanFrom(start)
	kind := token.LabelStr
	if allDigits(name) {
		kind = token.LabelID
	}
	return token.Token{Kind: kind, Span: sp, Text: name}, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDec(s[i]) {
			return false
		}
	}
	return true
}
