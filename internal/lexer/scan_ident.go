package lexer

import (
	"strconv"

	"llasm/internal/diag"
	"llasm/internal/token"
)

// MaxIntBits is the widest iN accepted by the reader.
const MaxIntBits = 1<<23 - 1

var primitiveTypes = map[string]struct{}{
	"void":      {},
	"half":      {},
	"float":     {},
	"double":    {},
	"x86_fp80":  {},
	"fp128":     {},
	"ppc_fp128": {},
	"label":     {},
	"metadata":  {},
	"x86_mmx":   {},
}

// scanIdentifier lexes bare words: labels ("entry:"), keywords, primitive
// types, iN and the s0x/u0x hex integers.
func (lx *Lexer) scanIdentifier() token.Token {
	start := lx.cursor.Mark()
	var keywordEnd Mark
	haveKeywordEnd := false
	for !lx.cursor.EOF() && isLabelChar(lx.cursor.Peek()) {
		if !haveKeywordEnd && !isKeywordChar(lx.cursor.Peek()) {
			keywordEnd = lx.cursor.Mark()
			haveKeywordEnd = true
		}
		lx.cursor.Bump()
	}
	if !lx.cursor.EOF() && lx.cursor.Peek() == ':' {
		name := string(lx.cursor.Text(start))
		lx.cursor.Bump()
		return token.Token{Kind: token.LabelStr, Span: lx.cursor.SpanFrom(start), Text: name}
	}
	if haveKeywordEnd && keywordEnd != start {
		lx.cursor.Reset(keywordEnd)
	}
	sp := lx.cursor.SpanFrom(start)
	word := lx.text(sp)

	if len(word) > 1 && word[0] == 'i' && allDigits(word[1:]) {
		n, err := strconv.ParseUint(word[1:], 10, 32)
		if err != nil || n == 0 || n > MaxIntBits {
			lx.errLex(diag.LexBadNumber, sp, "bitwidth for integer type out of range")
			return token.Token{Kind: token.Invalid, Span: sp, Text: word}
		}
		return token.Token{Kind: token.Type, Span: sp, Text: word}
	}
	if _, ok := primitiveTypes[word]; ok {
		return token.Token{Kind: token.Type, Span: sp, Text: word}
	}
	if k, ok := token.LookupKeyword(word); ok {
		return token.Token{Kind: k, Span: sp, Text: word}
	}
	if len(word) > 3 && (word[0] == 's' || word[0] == 'u') && word[1] == '0' && word[2] == 'x' && allHex(word[3:]) {
		return token.Token{Kind: token.APSInt, Span: sp, Text: word}
	}
	if len(word) > 2 && word[0] == 'c' && word[1] == 'c' && allDigits(word[2:]) {
		// "cc10" это "cc" и число
		lx.cursor.Reset(start + 2)
		sp = lx.cursor.SpanFrom(start)
		return token.Token{Kind: token.KwCc, Span: sp, Text: "cc"}
	}

	lx.errLex(diag.LexUnknownChar, sp, "invalid token '"+word+"'")
	return token.Token{Kind: token.Invalid, Span: sp, Text: word}
}

func allHex(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isHex(s[i]) {
			return false
		}
	}
	return s != ""
}
