package lexer

import (
	"strings"

	"llasm/internal/diag"
	"llasm/internal/token"
)

// scanVar lexes @name, @"quoted", @N and the % forms of the same.
func (lx *Lexer) scanVar(named, numbered token.Kind) token.Token {
	start := lx.cursor.Mark()
	sigil := lx.cursor.Bump()
	b := lx.cursor.Peek()

	switch {
	case b == '"':
		lx.cursor.Bump()
		raw, closed := lx.scanUntilQuote()
		sp := lx.cursor.SpanFrom(start)
		if !closed {
			lx.errLex(diag.LexUnterminatedString, sp, "end of file in global variable name")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		}
		name, ok := Unescape(raw)
		if !ok {
			lx.errLex(diag.LexBadEscape, sp, "invalid escape sequence in name")
		}
		if strings.IndexByte(name, 0) >= 0 {
			lx.errLex(diag.LexBadName, sp, "Null bytes are not allowed in names")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		}
		return token.Token{Kind: named, Span: sp, Text: name}

	case isIdentStartByte(b) || b == '-':
		nameStart := lx.cursor.Mark()
		lx.cursor.EatWhile(isLabelChar)
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: named, Span: sp, Text: string(lx.cursor.Text(nameStart))}

	case isDec(b):
		numStart := lx.cursor.Mark()
		lx.cursor.EatWhile(isDec)
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: numbered, Span: sp, Text: string(lx.cursor.Text(numStart))}
	}

	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexBadName, sp, "expected name after '"+string(sigil)+"'")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}

// scanExclaim lexes !name as MetadataVar; any other '!' is a bare Exclaim
// and the parser reads what follows (!0, !{...}, !"str").
func (lx *Lexer) scanExclaim() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	b := lx.cursor.Peek()
	if lx.cursor.EOF() || !(isIdentStartByte(b) || b == '-' || b == '\\') {
		return lx.simple(token.Exclaim, 1)
	}
	nameStart := lx.cursor.Mark()
	lx.cursor.EatWhile(isMetadataNameChar)
	sp := lx.cursor.SpanFrom(start)
	name, ok := Unescape(lx.cursor.Text(nameStart))
	if !ok {
		lx.errLex(diag.LexBadEscape, sp, "invalid escape sequence in metadata name")
	}
	return token.Token{Kind: token.MetadataVar, Span: sp, Text: name}
}

// scanHash lexes #N.
func (lx *Lexer) scanHash() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	numStart := lx.cursor.Mark()
	digits := lx.cursor.EatWhile(isDec)
	sp := lx.cursor.SpanFrom(start)
	if digits == 0 {
		lx.errLex(diag.LexBadName, sp, "expected attribute group id after '#'")
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}
	return token.Token{Kind: token.AttrGrpID, Span: sp, Text: string(lx.cursor.Text(numStart))}
}
