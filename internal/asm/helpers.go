package asm

import (
	"math/big"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"llasm/internal/diag"
	"llasm/internal/source"
	"llasm/internal/token"
)

// advance: съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	return tok
}

// getDiagnosticSpan: лучший span для диагностики: на EOF указываем в
// позицию сразу после последнего съеденного токена.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

// expect: ожидаем конкретный токен, иначе ошибка с msg.
func (p *Parser) expect(k token.Kind, msg string) (token.Token, error) {
	if p.at(k) {
		return p.advance(), nil
	}
	code := diag.SynUnexpectedToken
	if p.at(token.EOF) {
		code = diag.SynUnexpectedEOF
	}
	return token.Token{}, p.tokError(code, msg)
}

// eat съедает токен k, если он следующий.
func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// parseUInt32 reads a non-negative decimal literal that fits 32 bits.
func (p *Parser) parseUInt32() (uint32, source.Span, error) {
	tok := p.peek()
	if tok.Kind != token.APSInt || strings.HasPrefix(tok.Text, "-") || hasHexPrefix(tok.Text) {
		return 0, tok.Span, p.tokError(diag.SynUnexpectedToken, "expected integer")
	}
	v, err := strconv.ParseUint(tok.Text, 10, 32)
	if err != nil {
		return 0, tok.Span, p.tokError(diag.SynIntegerRange, "expected 32-bit integer (too large)")
	}
	p.advance()
	return uint32(v), tok.Span, nil
}

// parseUInt64 is parseUInt32 for array sizes and indices.
func (p *Parser) parseUInt64() (uint64, source.Span, error) {
	tok := p.peek()
	if tok.Kind != token.APSInt || strings.HasPrefix(tok.Text, "-") || hasHexPrefix(tok.Text) {
		return 0, tok.Span, p.tokError(diag.SynUnexpectedToken, "expected integer")
	}
	v, err := strconv.ParseUint(tok.Text, 10, 64)
	if err != nil {
		return 0, tok.Span, p.tokError(diag.SynIntegerRange, "expected 64-bit integer (too large)")
	}
	p.advance()
	return v, tok.Span, nil
}

// slotID converts the digits of %N, @N, !N or #N.
func (p *Parser) slotID(tok token.Token) (uint32, error) {
	v, err := strconv.ParseUint(tok.Text, 10, 32)
	if err != nil {
		return 0, p.failAt(diag.SynIntegerRange, tok.Span, "value number too large")
	}
	return uint32(v), nil
}

func (p *Parser) parseStringConstant() (string, error) {
	tok, err := p.expect(token.StringConstant, "expected string constant")
	if err != nil {
		return "", err
	}
	return tok.Text, nil
}

// parseAlignValue reads the N of "align N" and checks it is a power of two.
func (p *Parser) parseAlignValue() (uint32, error) {
	v, sp, err := p.parseUInt32()
	if err != nil {
		return 0, err
	}
	if v == 0 || v&(v-1) != 0 {
		return 0, p.failAt(diag.SynBadAlignment, sp, "alignment is not a power of two")
	}
	if v > 1<<29 {
		return 0, p.failAt(diag.SynBadAlignment, sp, "huge alignments are not supported yet")
	}
	return v, nil
}

// parseOptionalAlignment reads "align N" when present.
func (p *Parser) parseOptionalAlignment() (uint32, error) {
	if !p.eat(token.KwAlign) {
		return 0, nil
	}
	return p.parseAlignValue()
}

// parseOptionalCommaAlign reads ", align N". When the comma is followed by
// metadata instead, it reports ateExtraComma so the caller parses the
// attachments without another comma.
func (p *Parser) parseOptionalCommaAlign() (align uint32, ateExtraComma bool, err error) {
	for p.eat(token.Comma) {
		if p.at(token.MetadataVar) {
			return align, true, nil
		}
		if !p.at(token.KwAlign) {
			return 0, false, p.tokError(diag.SynUnexpectedToken, "expected metadata or 'align'")
		}
		if align, err = p.parseOptionalAlignment(); err != nil {
			return 0, false, err
		}
	}
	return align, false, nil
}

// parseAddrSpace reads "addrspace(N)" when present.
func (p *Parser) parseAddrSpace() (uint32, error) {
	if !p.eat(token.KwAddrspace) {
		return 0, nil
	}
	if _, err := p.expect(token.LParen, "expected '(' in address space"); err != nil {
		return 0, err
	}
	as, _, err := p.parseUInt32()
	if err != nil {
		return 0, err
	}
	if _, err := p.expect(token.RParen, "expected ')' in address space"); err != nil {
		return 0, err
	}
	return as, nil
}

func hasHexPrefix(text string) bool {
	return strings.HasPrefix(text, "s0x") || strings.HasPrefix(text, "u0x")
}

// parseBigInt decodes an APSInt literal: decimal (maybe negative), s0x
// (signed, width 4*digits) or u0x.
func parseBigInt(text string) (*big.Int, bool) {
	if hasHexPrefix(text) {
		digits := text[3:]
		v, ok := new(big.Int).SetString(digits, 16)
		if !ok {
			return nil, false
		}
		if text[0] == 's' && len(digits) > 0 {
			bits := uint(len(digits) * 4)
			if v.Bit(int(bits-1)) == 1 {
				v.Sub(v, new(big.Int).Lsh(big.NewInt(1), bits))
			}
		}
		return v, true
	}
	return new(big.Int).SetString(text, 10)
}

// truncInt wraps v to width bits and returns the signed value, the same
// canonical form the printer emits.
func truncInt(v *big.Int, width uint32) *big.Int {
	mod := new(big.Int).Lsh(big.NewInt(1), uint(width))
	r := new(big.Int).Mod(v, mod)
	half := new(big.Int).Rsh(mod, 1)
	if r.Cmp(half) >= 0 {
		r.Sub(r, mod)
	}
	return r
}

// constIndex returns the value of a small constant index.
func constIndex(v *big.Int) (uint64, bool) {
	if v.Sign() < 0 || !v.IsUint64() {
		return 0, false
	}
	return v.Uint64(), true
}

func u32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(err)
	}
	return v
}
