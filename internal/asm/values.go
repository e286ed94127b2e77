package asm

import (
	"math/big"

	"llasm/internal/diag"
	"llasm/internal/ir"
	"llasm/internal/source"
	"llasm/internal/token"
)

type valKind uint8

const (
	valLocalID valKind = iota
	valLocalName
	valGlobalID
	valGlobalName
	valInt
	valFloat
	valTrue
	valFalse
	valNull
	valUndef
	valZero
	valStruct
	valPackedStruct
	valArray
	valVector
	valCString
	valConstant // готовое значение: константное выражение, blockaddress
	valInlineAsm
	valMetadata
)

// valID is a value as written, before the expected type is known. The
// type decides what it becomes in convertValID.
type valID struct {
	kind  valKind
	span  source.Span
	id    uint32
	name  string
	text  string
	elems []ir.Value
	str   string
	c     ir.Value
	asm   ir.InlineAsm
	md    ir.MDOperand
}

// parseValID reads one value token sequence. fs is nil in constant
// contexts; it is only consulted by convertValID.
func (p *Parser) parseValID() (valID, error) {
	tok := p.peek()
	v := valID{span: tok.Span}
	switch tok.Kind {
	case token.GlobalID, token.LocalVarID:
		p.advance()
		n, err := p.slotID(tok)
		if err != nil {
			return v, err
		}
		v.id = n
		v.kind = valGlobalID
		if tok.Kind == token.LocalVarID {
			v.kind = valLocalID
		}
	case token.GlobalVar:
		p.advance()
		v.kind, v.name = valGlobalName, tok.Text
	case token.LocalVar:
		p.advance()
		v.kind, v.name = valLocalName, tok.Text
	case token.Exclaim:
		op, err := p.parseMetadataOperand()
		if err != nil {
			return v, err
		}
		v.kind, v.md = valMetadata, op
	case token.APSInt:
		p.advance()
		v.kind, v.text = valInt, tok.Text
	case token.APFloat:
		p.advance()
		v.kind, v.text = valFloat, tok.Text
	case token.KwTrue:
		p.advance()
		v.kind = valTrue
	case token.KwFalse:
		p.advance()
		v.kind = valFalse
	case token.KwNull:
		p.advance()
		v.kind = valNull
	case token.KwUndef:
		p.advance()
		v.kind = valUndef
	case token.KwZeroinitializer:
		p.advance()
		v.kind = valZero
	case token.LBrace:
		p.advance()
		elems, err := p.parseGlobalValueVector(token.RBrace)
		if err != nil {
			return v, err
		}
		if _, err := p.expect(token.RBrace, "expected end of struct constant"); err != nil {
			return v, err
		}
		v.kind, v.elems = valStruct, elems
	case token.Less:
		p.advance()
		packed := p.eat(token.LBrace)
		closer := token.Greater
		if packed {
			closer = token.RBrace
		}
		elems, err := p.parseGlobalValueVector(closer)
		if err != nil {
			return v, err
		}
		if packed {
			if _, err := p.expect(token.RBrace, "expected end of packed struct"); err != nil {
				return v, err
			}
		}
		if _, err := p.expect(token.Greater, "expected end of constant"); err != nil {
			return v, err
		}
		v.elems = elems
		v.kind = valVector
		if packed {
			v.kind = valPackedStruct
		} else if len(elems) == 0 {
			return v, p.failAt(diag.TypInvalidConstant, v.span, "constant vector must not be empty")
		}
	case token.LSquare:
		p.advance()
		elems, err := p.parseGlobalValueVector(token.RSquare)
		if err != nil {
			return v, err
		}
		if _, err := p.expect(token.RSquare, "expected end of array constant"); err != nil {
			return v, err
		}
		v.kind, v.elems = valArray, elems
	case token.KwC:
		p.advance()
		s, err := p.parseStringConstant()
		if err != nil {
			return v, err
		}
		v.kind, v.str = valCString, s
	case token.KwAsm:
		p.advance()
		a := ir.InlineAsm{
			SideEffect: p.eat(token.KwSideeffect),
		}
		a.AlignStack = p.eat(token.KwAlignstack)
		a.IntelDialect = p.eat(token.KwInteldialect)
		var err error
		if a.Asm, err = p.parseStringConstant(); err != nil {
			return v, err
		}
		if _, err := p.expect(token.Comma, "expected comma in inline asm expression"); err != nil {
			return v, err
		}
		if a.Constraints, err = p.parseStringConstant(); err != nil {
			return v, err
		}
		v.kind, v.asm = valInlineAsm, a
	case token.KwBlockaddress:
		p.advance()
		c, err := p.parseBlockAddress(tok.Span)
		if err != nil {
			return v, err
		}
		v.kind, v.c = valConstant, c
	case token.Invalid:
		return v, p.lexError(tok)
	default:
		if info, ok := instrTable[tok.Kind]; ok && info.constExpr {
			p.advance()
			c, err := p.parseConstantExpr(tok, info)
			if err != nil {
				return v, err
			}
			v.kind, v.c = valConstant, c
			break
		}
		code := diag.SynExpectValue
		if tok.Kind == token.EOF {
			code = diag.SynUnexpectedEOF
		}
		return v, p.tokError(code, "expected value token")
	}
	v.span = v.span.Cover(p.lastSpan)
	return v, nil
}

// parseGlobalValueVector reads "T c, T c, ..." up to closer (not consumed).
func (p *Parser) parseGlobalValueVector(closer token.Kind) ([]ir.Value, error) {
	elems := []ir.Value{}
	if p.at(closer) {
		return elems, nil
	}
	for {
		c, err := p.parseGlobalTypeAndValue()
		if err != nil {
			return nil, err
		}
		elems = append(elems, c)
		if !p.eat(token.Comma) {
			return elems, nil
		}
	}
}

// parseValue reads a value of type ty. fs nil means constant context.
func (p *Parser) parseValue(ty ir.TypeID, fs *funcState, _ source.Span) (ir.Value, error) {
	v, err := p.parseValID()
	if err != nil {
		return nil, err
	}
	return p.convertValID(ty, v, fs)
}

// parseTypeAndValue reads "T v".
func (p *Parser) parseTypeAndValue(fs *funcState) (ir.Value, source.Span, error) {
	sp := p.peek().Span
	ty, err := p.parseType(false)
	if err != nil {
		return nil, sp, err
	}
	v, err := p.parseValue(ty, fs, sp)
	if err != nil {
		return nil, sp, err
	}
	return v, sp.Cover(p.lastSpan), nil
}

// parseGlobalTypeAndValue reads "T c" where c must be a constant.
func (p *Parser) parseGlobalTypeAndValue() (ir.Value, error) {
	v, _, err := p.parseTypeAndValue(nil)
	return v, err
}

// parseConstantValue reads a constant of the known type ty.
func (p *Parser) parseConstantValue(ty ir.TypeID) (ir.Value, error) {
	return p.parseValue(ty, nil, p.peek().Span)
}

func (p *Parser) mismatch(sp source.Span, want, got ir.TypeID) error {
	return p.failf(diag.TypInvalidConstant, sp, "constant expression type mismatch: expected '%s' but found '%s'",
		p.t.String(want), p.t.String(got))
}

// convertValID turns v into a value of type ty.
func (p *Parser) convertValID(ty ir.TypeID, v valID, fs *funcState) (ir.Value, error) {
	t := p.t
	if t.Kind(ty) == ir.KindFunc {
		return nil, p.failAt(diag.TypInvalidType, v.span, "functions are not values, refer to them as pointers")
	}
	if ty == t.Builtins().Metadata && v.kind != valMetadata {
		return nil, p.failAt(diag.TypInvalidConstant, v.span, "expected metadata operand")
	}

	switch v.kind {
	case valLocalID, valLocalName:
		if fs == nil {
			return nil, p.failAt(diag.SynBadConstant, v.span, "invalid use of function-local name")
		}
		return p.getLocal(fs, localRef{name: v.name, id: v.id, numbered: v.kind == valLocalID}, ty, v.span)
	case valGlobalID, valGlobalName:
		return p.getGlobal(globalRef{name: v.name, id: v.id, numbered: v.kind == valGlobalID}, ty, v.span)
	case valInt:
		if !t.IsInt(ty) {
			return nil, p.failAt(diag.TypInvalidConstant, v.span, "integer constant must have integer type")
		}
		n, ok := parseBigInt(v.text)
		if !ok {
			return nil, p.failAt(diag.SynBadConstant, v.span, "invalid integer constant")
		}
		return &ir.ConstInt{Typ: ty, V: truncInt(n, t.IntWidth(ty))}, nil
	case valFloat:
		return p.convertFloat(ty, v)
	case valTrue, valFalse:
		if ty != t.Builtins().I1 {
			return nil, p.mismatch(v.span, ty, t.Builtins().I1)
		}
		c := &ir.ConstInt{Typ: ty, V: big.NewInt(0)}
		if v.kind == valTrue {
			c.V = big.NewInt(-1)
		}
		return c, nil
	case valNull:
		if !t.IsPointer(ty) {
			return nil, p.failAt(diag.TypInvalidConstant, v.span, "null must be a pointer type")
		}
		return &ir.ConstNull{Typ: ty}, nil
	case valUndef:
		if (!t.IsFirstClass(ty) || t.IsLabel(ty)) && !t.IsAggregate(ty) {
			return nil, p.failAt(diag.TypInvalidConstant, v.span, "invalid type for undef constant")
		}
		return &ir.ConstUndef{Typ: ty}, nil
	case valZero:
		if (!t.IsFirstClass(ty) || t.IsLabel(ty)) && !t.IsAggregate(ty) {
			return nil, p.failAt(diag.TypInvalidConstant, v.span, "invalid type for null constant")
		}
		return &ir.ConstZero{Typ: ty}, nil
	case valStruct, valPackedStruct:
		st := t.Struct(ty)
		if st == nil {
			return nil, p.failf(diag.TypInvalidConstant, v.span, "struct constant is not of struct type '%s'", t.String(ty))
		}
		if st.Opaque || len(st.Fields) != len(v.elems) {
			return nil, p.failAt(diag.TypInvalidConstant, v.span, "initializer with struct type has wrong # elements")
		}
		if st.Packed != (v.kind == valPackedStruct) {
			return nil, p.failAt(diag.TypInvalidConstant, v.span, "packed'ness of initializer and type don't match")
		}
		for i, e := range v.elems {
			if e.Type() != st.Fields[i] {
				return nil, p.failf(diag.TypInvalidConstant, v.span,
					"element %d of struct initializer doesn't match struct element type: expected '%s' but found '%s'",
					i, t.String(st.Fields[i]), t.String(e.Type()))
			}
		}
		return p.aggregate(ty, v.elems), nil
	case valArray, valVector:
		isVec := v.kind == valVector
		if len(v.elems) == 0 {
			if t.Kind(ty) != ir.KindArray || t.Lookup(ty).Count != 0 {
				return nil, p.failAt(diag.TypInvalidConstant, v.span, "invalid empty array initializer")
			}
			return p.aggregate(ty, v.elems), nil
		}
		elem := v.elems[0].Type()
		for i, e := range v.elems[1:] {
			if e.Type() != elem {
				if isVec {
					return nil, p.failf(diag.TypInvalidConstant, v.span, "vector element #%d is not of type '%s'", i+1, t.String(elem))
				}
				return nil, p.failf(diag.TypInvalidConstant, v.span, "array element #%d is not of type '%s'", i+1, t.String(elem))
			}
		}
		var got ir.TypeID
		if isVec {
			if !t.ValidVectorElement(elem) {
				return nil, p.failAt(diag.TypInvalidConstant, v.span, "vector elements must have integer, pointer or floating point type")
			}
			got = t.Vector(elem, uint64(len(v.elems)))
		} else {
			if !t.ValidElement(elem) {
				return nil, p.failAt(diag.TypInvalidConstant, v.span, "invalid array element type")
			}
			got = t.Array(elem, uint64(len(v.elems)))
		}
		if got != ty {
			return nil, p.mismatch(v.span, ty, got)
		}
		return p.aggregate(ty, v.elems), nil
	case valCString:
		got := t.Array(t.Builtins().I8, uint64(len(v.str)))
		if got != ty {
			return nil, p.mismatch(v.span, ty, got)
		}
		return &ir.ConstString{Typ: ty, Data: []byte(v.str)}, nil
	case valConstant:
		if v.c.Type() != ty {
			return nil, p.mismatch(v.span, ty, v.c.Type())
		}
		return v.c, nil
	case valInlineAsm:
		if !t.IsPointer(ty) || t.Kind(t.Elem(ty)) != ir.KindFunc {
			return nil, p.failAt(diag.TypInvalidType, v.span, "invalid type for inline asm constraint string")
		}
		a := v.asm
		a.Typ = ty
		return &a, nil
	case valMetadata:
		if ty != t.Builtins().Metadata {
			return nil, p.failf(diag.TypInvalidConstant, v.span, "metadata operand used with type '%s'", t.String(ty))
		}
		return &ir.MetadataValue{Typ: ty, MD: v.md}, nil
	}
	return nil, p.failAt(diag.SynExpectValue, v.span, "expected value")
}

func (p *Parser) aggregate(ty ir.TypeID, elems []ir.Value) ir.Value {
	c := &ir.ConstAggregate{Typ: ty, Elems: elems}
	p.track(c)
	return c
}
