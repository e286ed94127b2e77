package asm

import (
	"llasm/internal/ir"
)

// Operand checks shared by instructions and constant expressions.

// castValid reports whether op may convert src to dst.
func (p *Parser) castValid(op ir.Opcode, src, dst ir.TypeID) bool {
	t := p.t
	sv, dv := t.IsVector(src), t.IsVector(dst)
	if op == ir.OpBitCast {
		return p.bitcastValid(src, dst)
	}
	if sv != dv || (sv && t.Lookup(src).Count != t.Lookup(dst).Count) {
		return false
	}
	s, d := t.Scalar(src), t.Scalar(dst)
	switch op {
	case ir.OpTrunc:
		return t.IsInt(s) && t.IsInt(d) && t.IntWidth(s) > t.IntWidth(d)
	case ir.OpZExt, ir.OpSExt:
		return t.IsInt(s) && t.IsInt(d) && t.IntWidth(s) < t.IntWidth(d)
	case ir.OpFPTrunc:
		return t.IsFloat(s) && t.IsFloat(d) && t.PrimitiveBits(s) > t.PrimitiveBits(d)
	case ir.OpFPExt:
		return t.IsFloat(s) && t.IsFloat(d) && t.PrimitiveBits(s) < t.PrimitiveBits(d)
	case ir.OpFPToUI, ir.OpFPToSI:
		return t.IsFloat(s) && t.IsInt(d)
	case ir.OpUIToFP, ir.OpSIToFP:
		return t.IsInt(s) && t.IsFloat(d)
	case ir.OpPtrToInt:
		return t.IsPointer(s) && t.IsInt(d)
	case ir.OpIntToPtr:
		return t.IsInt(s) && t.IsPointer(d)
	}
	return false
}

func (p *Parser) bitcastValid(src, dst ir.TypeID) bool {
	t := p.t
	if t.IsPtrOrPtrVector(src) || t.IsPtrOrPtrVector(dst) {
		if t.IsVector(src) != t.IsVector(dst) {
			return false
		}
		if t.IsVector(src) && t.Lookup(src).Count != t.Lookup(dst).Count {
			return false
		}
		s, d := t.Scalar(src), t.Scalar(dst)
		return t.IsPointer(s) && t.IsPointer(d) && t.Lookup(s).AddrSpace == t.Lookup(d).AddrSpace
	}
	if !t.IsSingleValue(src) || !t.IsSingleValue(dst) || t.IsLabel(src) || t.IsLabel(dst) {
		return false
	}
	bits := t.PrimitiveBits(src)
	return bits != 0 && bits == t.PrimitiveBits(dst)
}

// gepType computes the result of indexing ptr with idx; false when an
// index walks into something that cannot be indexed.
func (p *Parser) gepType(ptr ir.TypeID, idx []ir.Value) (ir.TypeID, bool) {
	t := p.t
	vec := t.IsVector(ptr)
	base := t.Scalar(ptr)
	if !t.IsPointer(base) {
		return ir.NoTypeID, false
	}
	cur := t.Elem(base)
	for i, v := range idx {
		if i == 0 {
			continue
		}
		switch t.Kind(cur) {
		case ir.KindStruct:
			c, ok := v.(*ir.ConstInt)
			if !ok || t.IntWidth(c.Typ) != 32 {
				return ir.NoTypeID, false
			}
			n, ok := constIndex(c.V)
			if !ok {
				return ir.NoTypeID, false
			}
			if cur, ok = t.IndexInto(cur, n); !ok {
				return ir.NoTypeID, false
			}
		case ir.KindArray, ir.KindVector:
			cur = t.Elem(cur)
		default:
			return ir.NoTypeID, false
		}
	}
	res := t.Pointer(cur, t.Lookup(base).AddrSpace)
	if vec {
		res = t.Vector(res, t.Lookup(ptr).Count)
	}
	return res, true
}

// indexedType follows extractvalue/insertvalue indices through structs and
// arrays.
func (p *Parser) indexedType(agg ir.TypeID, idx []uint64) (ir.TypeID, bool) {
	cur := agg
	for _, n := range idx {
		switch p.t.Kind(cur) {
		case ir.KindStruct, ir.KindArray:
		default:
			return ir.NoTypeID, false
		}
		next, ok := p.t.IndexInto(cur, n)
		if !ok {
			return ir.NoTypeID, false
		}
		cur = next
	}
	return cur, true
}

// cmpType is i1, or a vector of i1 as wide as the operands.
func (p *Parser) cmpType(operand ir.TypeID) ir.TypeID {
	i1 := p.t.Builtins().I1
	if p.t.IsVector(operand) {
		return p.t.Vector(i1, p.t.Lookup(operand).Count)
	}
	return i1
}

// selectInvalid returns why select c, a, b is malformed, or "".
func (p *Parser) selectInvalid(c, a, b ir.TypeID) string {
	t := p.t
	if a != b {
		return "both values to select must have same type"
	}
	if t.IsVector(c) {
		if t.Elem(c) != t.Builtins().I1 {
			return "vector select condition element type must be i1"
		}
		if !t.IsVector(a) {
			return "selected values for vector select must be vectors"
		}
		if t.Lookup(a).Count != t.Lookup(c).Count {
			return "vector select requires selected vectors to have the same vector length as select condition"
		}
		return ""
	}
	if c != t.Builtins().I1 {
		return "select condition must be i1 or <n x i1>"
	}
	return ""
}

func (p *Parser) extractElementValid(vec, idx ir.TypeID) bool {
	return p.t.IsVector(vec) && p.t.IsInt(idx)
}

func (p *Parser) insertElementValid(vec, elt, idx ir.TypeID) bool {
	return p.t.IsVector(vec) && p.t.Elem(vec) == elt && p.t.IsInt(idx)
}

// shuffleValid checks shufflevector operands; the mask must be a constant
// vector of i32.
func (p *Parser) shuffleValid(a, b, mask ir.Value) bool {
	t := p.t
	if !t.IsVector(a.Type()) || a.Type() != b.Type() {
		return false
	}
	mt := mask.Type()
	if !t.IsVector(mt) || t.Elem(mt) != t.Builtins().I32 {
		return false
	}
	switch mask.(type) {
	case *ir.ConstAggregate, *ir.ConstZero, *ir.ConstUndef:
		return true
	}
	return false
}

func (p *Parser) shuffleType(a, mask ir.TypeID) ir.TypeID {
	return p.t.Vector(p.t.Elem(a), p.t.Lookup(mask).Count)
}

// binaryInvalid checks the operand class of a binary operator and its
// flags; it returns the complaint or "".
func (p *Parser) binaryInvalid(info opInfo, ty ir.TypeID, flags ir.Flags) string {
	t := p.t
	switch {
	case flags&ir.FlagNUW != 0 && !t.IsIntOrIntVector(ty):
		return "nuw only applies to integer operations"
	case flags&ir.FlagNSW != 0 && !t.IsIntOrIntVector(ty):
		return "nsw only applies to integer operations"
	case flags&ir.FastMath != 0 && !t.IsFPOrFPVector(ty):
		return "fast-math flags only apply to floating point operations"
	}
	switch info.class {
	case classInt:
		if !t.IsIntOrIntVector(ty) {
			return "invalid operand type for instruction"
		}
	case classFP:
		if !t.IsFPOrFPVector(ty) {
			return "invalid operand type for instruction"
		}
	case classLogical:
		if !t.IsIntOrIntVector(ty) {
			return "instruction requires integer or integer vector operands"
		}
	}
	return ""
}
