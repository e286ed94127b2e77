package asm

import (
	"strconv"

	"llasm/internal/diag"
	"llasm/internal/ir"
	"llasm/internal/source"
	"llasm/internal/token"
)

// typeSlot is one named or numbered type entry. An entry created by a use
// stays !defined until its "= type" line is seen.
type typeSlot struct {
	id      ir.TypeID
	defined bool
	use     source.Span
}

// typeTable maps %Name and %N to types. Identified structs may be used
// before their definition; anything else must be defined first.
type typeTable struct {
	named     map[string]*typeSlot
	namedSeq  []string // порядок первого упоминания
	numbered  map[uint32]*typeSlot
	lastDefNo int64
}

func newTypeTable() *typeTable {
	return &typeTable{
		named:     make(map[string]*typeSlot),
		numbered:  make(map[uint32]*typeSlot),
		lastDefNo: -1,
	}
}

type typeRef struct {
	name     string
	id       uint32
	numbered bool
}

func (r typeRef) String() string {
	if r.numbered {
		return "%" + strconv.FormatUint(uint64(r.id), 10)
	}
	return ir.QuoteName('%', r.name)
}

func (tt *typeTable) lookup(r typeRef) *typeSlot {
	if r.numbered {
		return tt.numbered[r.id]
	}
	return tt.named[r.name]
}

func (tt *typeTable) insert(r typeRef, s *typeSlot) {
	if r.numbered {
		tt.numbered[r.id] = s
		return
	}
	if _, seen := tt.named[r.name]; !seen {
		tt.namedSeq = append(tt.namedSeq, r.name)
	}
	tt.named[r.name] = s
}

// useType resolves a %T reference, creating an opaque identified struct
// when the name has not been seen.
func (p *Parser) useType(r typeRef, sp source.Span) ir.TypeID {
	if s := p.types.lookup(r); s != nil {
		return s.id
	}
	id := p.t.NewIdentified(r.refName(), r.numbered)
	p.types.insert(r, &typeSlot{id: id, use: sp})
	return id
}

func (r typeRef) refName() string {
	if r.numbered {
		return strconv.FormatUint(uint64(r.id), 10)
	}
	return r.name
}

// parseNamedType handles %Name = type ...
func (p *Parser) parseNamedType() error {
	nameTok := p.advance()
	return p.parseTypeDefinition(typeRef{name: nameTok.Text}, nameTok.Span)
}

// parseUnnamedType handles %N = type ...
func (p *Parser) parseUnnamedType() error {
	idTok := p.advance()
	n, err := p.slotID(idTok)
	if err != nil {
		return err
	}
	if int64(n) <= p.types.lastDefNo {
		return p.failf(diag.DupNumbering, idTok.Span,
			"type '%%%d' defined out of order, expected a number above %%%d", n, p.types.lastDefNo)
	}
	if err := p.parseTypeDefinition(typeRef{id: n, numbered: true}, idTok.Span); err != nil {
		return err
	}
	p.types.lastDefNo = int64(n)
	return nil
}

func (p *Parser) parseTypeDefinition(r typeRef, nameSpan source.Span) error {
	if _, err := p.expect(token.Equal, "expected '=' after name"); err != nil {
		return err
	}
	if _, err := p.expect(token.KwType, "expected 'type' after '='"); err != nil {
		return err
	}
	entry := p.types.lookup(r)
	if entry != nil && entry.defined {
		return p.failf(diag.DupType, nameSpan, "redefinition of type '%s'", r)
	}

	if p.eat(token.KwOpaque) {
		if entry == nil {
			entry = &typeSlot{id: p.t.NewIdentified(r.refName(), r.numbered)}
			p.types.insert(r, entry)
		}
		entry.defined = true
		p.addTypeDef(r, entry.id)
		return nil
	}

	bodyTok := p.peek()
	packed := p.eat(token.Less)
	if !p.at(token.LBrace) {
		// псевдоним не-структуры: без рекурсии и без ссылок вперёд
		if entry != nil {
			return p.failf(diag.TypForwardRef, bodyTok.Span,
				"forward references to non-struct type '%s'", r)
		}
		var body ir.TypeID
		var err error
		if packed {
			body, err = p.parseArrayVectorType(true)
		} else {
			body, err = p.parseType(false)
		}
		if err != nil {
			return err
		}
		if p.types.lookup(r) != nil {
			return p.failf(diag.TypInvalidType, nameSpan, "non-struct types may not be recursive ('%s')", r)
		}
		p.types.insert(r, &typeSlot{id: body, defined: true})
		p.addTypeDef(r, body)
		return nil
	}

	if entry == nil {
		entry = &typeSlot{id: p.t.NewIdentified(r.refName(), r.numbered)}
		p.types.insert(r, entry)
	}
	entry.defined = true
	fields, err := p.parseStructBody()
	if err != nil {
		return err
	}
	if packed {
		if _, err := p.expect(token.Greater, "expected '>' in packed struct"); err != nil {
			return err
		}
	}
	p.t.SetBody(entry.id, fields, packed)
	p.addTypeDef(r, entry.id)
	return nil
}

func (p *Parser) addTypeDef(r typeRef, id ir.TypeID) {
	p.m.TypeDefs = append(p.m.TypeDefs, ir.TypeDef{Name: r.refName(), Numbered: r.numbered, Type: id})
}

// parseType reads a full type including pointer and function suffixes.
func (p *Parser) parseType(allowVoid bool) (ir.TypeID, error) {
	start := p.peek().Span
	ty, err := p.parseBaseType()
	if err != nil {
		return ir.NoTypeID, err
	}
	for {
		switch p.peek().Kind {
		case token.Star:
			tok := p.advance()
			if ty, err = p.pointerTo(ty, 0, tok.Span); err != nil {
				return ir.NoTypeID, err
			}
		case token.KwAddrspace:
			as, err := p.parseAddrSpace()
			if err != nil {
				return ir.NoTypeID, err
			}
			tok, err := p.expect(token.Star, "expected '*' in address space")
			if err != nil {
				return ir.NoTypeID, err
			}
			if ty, err = p.pointerTo(ty, as, tok.Span); err != nil {
				return ir.NoTypeID, err
			}
		case token.LParen:
			if ty, err = p.parseFunctionType(ty); err != nil {
				return ir.NoTypeID, err
			}
		default:
			if !allowVoid && p.t.IsVoid(ty) {
				return ir.NoTypeID, p.failAt(diag.TypInvalidType, start.Cover(p.lastSpan), "void type only allowed for function results")
			}
			return ty, nil
		}
	}
}

func (p *Parser) pointerTo(elem ir.TypeID, as uint32, sp source.Span) (ir.TypeID, error) {
	switch {
	case p.t.IsLabel(elem):
		return ir.NoTypeID, p.failAt(diag.TypInvalidType, sp, "basic block pointers are invalid")
	case p.t.IsVoid(elem):
		return ir.NoTypeID, p.failAt(diag.TypInvalidType, sp, "pointers to void are invalid - use i8* instead")
	case !p.t.ValidPointee(elem):
		return ir.NoTypeID, p.failAt(diag.TypInvalidType, sp, "pointer to this type is invalid")
	}
	return p.t.Pointer(elem, as), nil
}

func (p *Parser) parseBaseType() (ir.TypeID, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.Type:
		p.advance()
		if id, ok := p.t.Primitive(tok.Text); ok {
			return id, nil
		}
		// iN
		w, err := strconv.ParseUint(tok.Text[1:], 10, 32)
		if err != nil {
			return ir.NoTypeID, p.failAt(diag.SynIntegerRange, tok.Span, "bitwidth for integer type out of range")
		}
		return p.t.Int(uint32(w)), nil
	case token.LBrace:
		fields, err := p.parseStructBody()
		if err != nil {
			return ir.NoTypeID, err
		}
		return p.t.LiteralStruct(fields, false), nil
	case token.Less:
		p.advance()
		if p.at(token.LBrace) {
			fields, err := p.parseStructBody()
			if err != nil {
				return ir.NoTypeID, err
			}
			if _, err := p.expect(token.Greater, "expected '>' at end of packed struct"); err != nil {
				return ir.NoTypeID, err
			}
			return p.t.LiteralStruct(fields, true), nil
		}
		return p.parseArrayVectorType(true)
	case token.LSquare:
		p.advance()
		return p.parseArrayVectorType(false)
	case token.LocalVar:
		p.advance()
		return p.useType(typeRef{name: tok.Text}, tok.Span), nil
	case token.LocalVarID:
		p.advance()
		n, err := p.slotID(tok)
		if err != nil {
			return ir.NoTypeID, err
		}
		return p.useType(typeRef{id: n, numbered: true}, tok.Span), nil
	case token.Invalid:
		return ir.NoTypeID, p.lexError(tok)
	}
	code := diag.SynExpectType
	if tok.Kind == token.EOF {
		code = diag.SynUnexpectedEOF
	}
	return ir.NoTypeID, p.tokError(code, "expected type")
}

// parseStructBody reads { T, T, ... } with the brace still pending.
func (p *Parser) parseStructBody() ([]ir.TypeID, error) {
	if _, err := p.expect(token.LBrace, "expected '{' in struct type"); err != nil {
		return nil, err
	}
	var fields []ir.TypeID
	if p.eat(token.RBrace) {
		return fields, nil
	}
	for {
		sp := p.peek().Span
		f, err := p.parseType(false)
		if err != nil {
			return nil, err
		}
		if !p.t.ValidElement(f) {
			return nil, p.failAt(diag.TypInvalidType, sp, "invalid element type for struct")
		}
		fields = append(fields, f)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, err := p.expect(token.RBrace, "expected '}' at end of struct"); err != nil {
		return nil, err
	}
	return fields, nil
}

// parseArrayVectorType reads "N x T" plus the closing bracket; the opening
// '[' or '<' is already consumed.
func (p *Parser) parseArrayVectorType(isVector bool) (ir.TypeID, error) {
	n, sizeSpan, err := p.parseUInt64()
	if err != nil {
		return ir.NoTypeID, err
	}
	if _, err := p.expect(token.KwX, "expected 'x' after element count"); err != nil {
		return ir.NoTypeID, err
	}
	elemSpan := p.peek().Span
	elem, err := p.parseType(false)
	if err != nil {
		return ir.NoTypeID, err
	}
	closer, msg := token.RSquare, "expected end of sequential type"
	if isVector {
		closer = token.Greater
	}
	if _, err := p.expect(closer, msg); err != nil {
		return ir.NoTypeID, err
	}
	if isVector {
		if n == 0 {
			return ir.NoTypeID, p.failAt(diag.TypInvalidType, sizeSpan, "zero element vector is illegal")
		}
		if n > 1<<32-1 {
			return ir.NoTypeID, p.failAt(diag.TypInvalidType, sizeSpan, "size too large for vector")
		}
		if !p.t.ValidVectorElement(elem) {
			return ir.NoTypeID, p.failAt(diag.TypInvalidType, elemSpan, "invalid vector element type")
		}
		return p.t.Vector(elem, n), nil
	}
	if !p.t.ValidElement(elem) {
		return ir.NoTypeID, p.failAt(diag.TypInvalidType, elemSpan, "invalid array element type")
	}
	return p.t.Array(elem, n), nil
}

// parseFunctionType reads "(T, T, ...)" after the result type.
func (p *Parser) parseFunctionType(result ir.TypeID) (ir.TypeID, error) {
	open := p.advance()
	if !p.t.ValidReturn(result) {
		return ir.NoTypeID, p.failAt(diag.TypInvalidType, open.Span, "invalid function return type")
	}
	var params []ir.TypeID
	variadic := false
	for !p.at(token.RParen) {
		if p.eat(token.DotDotDot) {
			variadic = true
			break
		}
		sp := p.peek().Span
		pt, err := p.parseType(false)
		if err != nil {
			return ir.NoTypeID, err
		}
		if p.atOr(paramAttrTokens...) {
			return ir.NoTypeID, p.tokError(diag.AtrMisuse, "argument attributes invalid in function type")
		}
		if p.atOr(token.LocalVar, token.LocalVarID) {
			return ir.NoTypeID, p.tokError(diag.SynUnexpectedToken, "argument name invalid in function type")
		}
		if !p.t.IsFirstClass(pt) {
			return ir.NoTypeID, p.failAt(diag.TypInvalidType, sp, "invalid type for function argument")
		}
		params = append(params, pt)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, err := p.expect(token.RParen, "expected ')' at end of argument list"); err != nil {
		return ir.NoTypeID, err
	}
	return p.t.Func(result, params, variadic), nil
}

// checkTypes is finalize step 4: every type used but never given a body
// line is an error. Numbered types are checked from the lowest, then named
// ones in order of first use.
func (p *Parser) checkTypes() error {
	var lowest *typeSlot
	var lowestID uint32
	for id, s := range p.types.numbered {
		if !s.defined && (lowest == nil || id < lowestID) {
			lowest, lowestID = s, id
		}
	}
	if lowest != nil {
		return p.failf(diag.UnrType, lowest.use, "use of undefined type '%%%d'", lowestID)
	}
	for _, name := range p.types.namedSeq {
		if s := p.types.named[name]; !s.defined {
			return p.failf(diag.UnrType, s.use, "use of undefined type named '%s'", name)
		}
	}
	return nil
}
