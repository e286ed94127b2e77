package asm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"llasm/internal/diag"
	"llasm/internal/ir"
)

// convertFloat builds a floating point constant of type ty. Decimal and
// plain 0x literals are read as doubles and must be exact in narrower
// types; 0xK, 0xL, 0xM and 0xH must match their own type.
func (p *Parser) convertFloat(ty ir.TypeID, v valID) (ir.Value, error) {
	t := p.t
	if !t.IsFloat(ty) {
		return nil, p.failAt(diag.TypInvalidConstant, v.span, "floating point constant invalid for type")
	}
	kind := t.Kind(ty)
	text := v.text

	if strings.HasPrefix(text, "0x") && len(text) > 2 {
		var want ir.Kind
		var digits int
		switch text[2] {
		case 'K':
			want, digits = ir.KindX86FP80, 20
		case 'L':
			want, digits = ir.KindFP128, 32
		case 'M':
			want, digits = ir.KindPPCFP128, 32
		case 'H':
			want, digits = ir.KindHalf, 4
		}
		if want != ir.KindInvalid {
			hex := strings.ToUpper(text[3:])
			if kind != want || len(hex) != digits {
				return nil, p.failAt(diag.TypInvalidConstant, v.span, "floating point constant invalid for type")
			}
			if want == ir.KindHalf {
				bits, err := strconv.ParseUint(hex, 16, 16)
				if err != nil {
					return nil, p.failAt(diag.SynBadConstant, v.span, "invalid half constant")
				}
				return &ir.ConstFloat{Typ: ty, V: halfToFloat64(uint16(bits))}, nil
			}
			return &ir.ConstFloat{Typ: ty, Hex: "0x" + text[2:3] + hex}, nil
		}
	}

	f, ok := parseDouble(text)
	if !ok {
		return nil, p.failAt(diag.SynBadConstant, v.span, "invalid floating point constant")
	}
	c := &ir.ConstFloat{Typ: ty, V: f}
	switch kind {
	case ir.KindHalf:
		if !halfExact(f) {
			return nil, p.failAt(diag.TypInvalidConstant, v.span, "floating point constant invalid for type")
		}
	case ir.KindFloat:
		if !math.IsNaN(f) && float64(float32(f)) != f {
			return nil, p.failAt(diag.TypInvalidConstant, v.span, "floating point constant invalid for type")
		}
	case ir.KindX86FP80:
		c.V, c.Hex = 0, x86FP80Hex(f)
	case ir.KindFP128:
		c.V, c.Hex = 0, fp128Hex(f)
	case ir.KindPPCFP128:
		c.V, c.Hex = 0, ppcFP128Hex(f)
	}
	return c, nil
}

// parseDouble reads a decimal literal or a 16 digit 0x bit pattern.
// Overflowing decimals become infinities.
func parseDouble(text string) (float64, bool) {
	if strings.HasPrefix(text, "0x") {
		bits, err := strconv.ParseUint(text[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		return math.Float64frombits(bits), true
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}

func halfToFloat64(h uint16) float64 {
	sign := 1.0
	if h&0x8000 != 0 {
		sign = -1
	}
	exp := int(h>>10) & 0x1f
	frac := float64(h & 0x3ff)
	switch exp {
	case 0:
		return sign * math.Ldexp(frac, -24)
	case 0x1f:
		if frac == 0 {
			return math.Inf(int(sign))
		}
		return math.NaN()
	}
	return sign * math.Ldexp(frac+1024, exp-25)
}

// halfExact reports whether f survives a round trip through half.
func halfExact(f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return true
	}
	a := math.Abs(f)
	if a > 65504 {
		return false
	}
	_, exp := math.Frexp(a)
	e := exp - 1
	if e < -14 {
		e = -14 // субнормальные: шаг 2^-24
	}
	q := a / math.Ldexp(1, e-10)
	return q == math.Trunc(q)
}

// x86FP80Hex spells f as 0xK: sign and exponent in 16 bits, then the
// 64 bit mantissa with its explicit integer bit.
func x86FP80Hex(f float64) string {
	bits := math.Float64bits(f)
	se := uint16(bits>>63) << 15
	var m uint64
	switch {
	case math.IsInf(f, 0):
		se |= 0x7fff
		m = 1 << 63
	case math.IsNaN(f):
		se |= 0x7fff
		m = 0xC000000000000000 | (bits&(1<<51-1))<<11
	case f == 0:
	default:
		frac, exp := math.Frexp(math.Abs(f))
		m = uint64(math.Ldexp(frac, 64))
		se |= uint16(exp - 1 + 16383)
	}
	return fmt.Sprintf("0xK%04X%016X", se, m)
}

// fp128Hex spells f as 0xL with the low 64 bits first.
func fp128Hex(f float64) string {
	bits := math.Float64bits(f)
	hi := bits >> 63 << 63
	var lo uint64
	switch {
	case math.IsInf(f, 0):
		hi |= 0x7fff << 48
	case math.IsNaN(f):
		hi |= 0x7fff<<48 | 1<<47
	case f == 0:
	default:
		frac, exp := math.Frexp(math.Abs(f))
		mant := uint64(math.Ldexp(frac*2-1, 52))
		hi |= uint64(exp-1+16383)<<48 | mant>>4
		lo = (mant & 0xf) << 60
	}
	return fmt.Sprintf("0xL%016X%016X", lo, hi)
}

// ppcFP128Hex spells f as a double-double whose low half is zero.
func ppcFP128Hex(f float64) string {
	return fmt.Sprintf("0xM%016X%016X", math.Float64bits(f), uint64(0))
}
