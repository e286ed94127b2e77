package asm

import (
	"llasm/internal/diag"
	"llasm/internal/ir"
	"llasm/internal/source"
	"llasm/internal/token"
)

// parseConstantExpr reads a constant expression after its opcode keyword.
// Operands go through the same checks as the matching instruction.
func (p *Parser) parseConstantExpr(tok token.Token, info opInfo) (ir.Value, error) {
	op := info.op
	if op == ir.OpFCmp {
		info.flags = 0
	}
	flags, err := p.parseFlags(tok, info)
	if err != nil {
		return nil, err
	}
	var pred ir.Predicate
	if op == ir.OpICmp || op == ir.OpFCmp {
		if pred, err = p.parsePredicate(op); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.LParen, "expected '(' after constantexpr "+op.String()); err != nil {
		return nil, err
	}
	var c *ir.ConstExpr
	switch {
	case op.IsCast():
		c, err = p.parseCastExpr(op)
	case op == ir.OpExtractValue || op == ir.OpInsertValue:
		c, err = p.parseAggregateExpr(op)
	default:
		c, err = p.parseOperandExpr(op, flags, pred, info)
	}
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen, "expected ')' in constantexpr "+op.String()); err != nil {
		return nil, err
	}
	c.Flags |= flags
	p.track(c)
	return c, nil
}

func (p *Parser) parseCastExpr(op ir.Opcode) (*ir.ConstExpr, error) {
	v, sp, err := p.parseTypeAndValue(nil)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwTo, "expected 'to' in constantexpr cast"); err != nil {
		return nil, err
	}
	dst, err := p.parseType(false)
	if err != nil {
		return nil, err
	}
	if !p.castValid(op, v.Type(), dst) {
		return nil, p.failf(diag.TypInvalidCast, sp.Cover(p.lastSpan), "invalid cast opcode for cast from '%s' to '%s'",
			p.t.String(v.Type()), p.t.String(dst))
	}
	return &ir.ConstExpr{Typ: dst, Op: op, Ops: []ir.Value{v}}, nil
}

func (p *Parser) parseAggregateExpr(op ir.Opcode) (*ir.ConstExpr, error) {
	n := 1
	if op == ir.OpInsertValue {
		n = 2
	}
	ops, sp, err := p.parseConstOperands(n)
	if err != nil {
		return nil, err
	}
	idx, ate, err := p.parseIndexList()
	if err != nil {
		return nil, err
	}
	if ate {
		return nil, p.tokError(diag.SynUnexpectedToken, "expected index")
	}
	sp = sp.Cover(p.lastSpan)
	if op == ir.OpInsertValue {
		if msg := p.insertValueInvalid(ops[0].Type(), ops[1].Type(), idx); msg != "" {
			return nil, p.failAt(diag.TypInvalidOperand, sp, msg)
		}
		return &ir.ConstExpr{Typ: ops[0].Type(), Op: op, Ops: ops, Indices: idx}, nil
	}
	if !p.t.IsAggregate(ops[0].Type()) {
		return nil, p.failAt(diag.TypInvalidOperand, sp, "extractvalue operand must be aggregate type")
	}
	ty, ok := p.indexedType(ops[0].Type(), idx)
	if !ok {
		return nil, p.failAt(diag.TypInvalidOperand, sp, "invalid indices for extractvalue")
	}
	return &ir.ConstExpr{Typ: ty, Op: op, Ops: ops, Indices: idx}, nil
}

// parseConstOperands reads n comma separated "T c".
func (p *Parser) parseConstOperands(n int) ([]ir.Value, source.Span, error) {
	ops := make([]ir.Value, 0, n)
	start := p.peek().Span
	for i := 0; i < n; i++ {
		if i > 0 {
			if _, err := p.expect(token.Comma, "expected comma in constantexpr"); err != nil {
				return nil, start, err
			}
		}
		v, err := p.parseGlobalTypeAndValue()
		if err != nil {
			return nil, start, err
		}
		ops = append(ops, v)
	}
	return ops, start.Cover(p.lastSpan), nil
}

// parseOperandExpr covers the expressions whose operands are a plain
// list: binary operators, compares, select, vector operations and
// getelementptr.
func (p *Parser) parseOperandExpr(op ir.Opcode, flags ir.Flags, pred ir.Predicate, info opInfo) (*ir.ConstExpr, error) {
	t := p.t
	switch {
	case op.IsBinary():
		ops, sp, err := p.parseConstOperands(2)
		if err != nil {
			return nil, err
		}
		if ops[0].Type() != ops[1].Type() {
			return nil, p.failf(diag.TypOperandMismatch, sp, "operands of constexpr must have same type: '%s' and '%s'",
				t.String(ops[0].Type()), t.String(ops[1].Type()))
		}
		if msg := p.binaryInvalid(info, ops[0].Type(), flags); msg != "" {
			return nil, p.failAt(diag.TypInvalidOperand, sp, msg)
		}
		return &ir.ConstExpr{Typ: ops[0].Type(), Op: op, Ops: ops}, nil
	case op == ir.OpICmp || op == ir.OpFCmp:
		ops, sp, err := p.parseConstOperands(2)
		if err != nil {
			return nil, err
		}
		if ops[0].Type() != ops[1].Type() {
			return nil, p.failf(diag.TypOperandMismatch, sp, "compare operands must have the same type: '%s' and '%s'",
				t.String(ops[0].Type()), t.String(ops[1].Type()))
		}
		if msg := p.compareInvalid(op, ops[0].Type()); msg != "" {
			return nil, p.failAt(diag.TypInvalidOperand, sp, msg)
		}
		return &ir.ConstExpr{Typ: p.cmpType(ops[0].Type()), Op: op, Ops: ops, Pred: pred}, nil
	case op == ir.OpGetElementPtr:
		ops, sp, err := p.parseGEPOperands()
		if err != nil {
			return nil, err
		}
		ty, ok := p.gepType(ops[0].Type(), ops[1:])
		if !ok {
			return nil, p.failAt(diag.TypInvalidOperand, sp, "invalid indices for getelementptr")
		}
		return &ir.ConstExpr{Typ: ty, Op: op, Ops: ops}, nil
	case op == ir.OpSelect:
		ops, sp, err := p.parseConstOperands(3)
		if err != nil {
			return nil, err
		}
		if msg := p.selectInvalid(ops[0].Type(), ops[1].Type(), ops[2].Type()); msg != "" {
			return nil, p.failAt(diag.TypInvalidOperand, sp, msg)
		}
		return &ir.ConstExpr{Typ: ops[1].Type(), Op: op, Ops: ops}, nil
	case op == ir.OpExtractElement:
		ops, sp, err := p.parseConstOperands(2)
		if err != nil {
			return nil, err
		}
		if !p.extractElementValid(ops[0].Type(), ops[1].Type()) {
			return nil, p.failAt(diag.TypInvalidOperand, sp, "invalid extractelement operands")
		}
		return &ir.ConstExpr{Typ: t.Elem(ops[0].Type()), Op: op, Ops: ops}, nil
	case op == ir.OpInsertElement:
		ops, sp, err := p.parseConstOperands(3)
		if err != nil {
			return nil, err
		}
		if !p.insertElementValid(ops[0].Type(), ops[1].Type(), ops[2].Type()) {
			return nil, p.failAt(diag.TypInvalidOperand, sp, "invalid insertelement operands")
		}
		return &ir.ConstExpr{Typ: ops[0].Type(), Op: op, Ops: ops}, nil
	case op == ir.OpShuffleVector:
		ops, sp, err := p.parseConstOperands(3)
		if err != nil {
			return nil, err
		}
		if !p.shuffleValid(ops[0], ops[1], ops[2]) {
			return nil, p.failAt(diag.TypInvalidOperand, sp, "invalid shufflevector operands")
		}
		return &ir.ConstExpr{Typ: p.shuffleType(ops[0].Type(), ops[2].Type()), Op: op, Ops: ops}, nil
	}
	return nil, p.failf(diag.SynExpectValue, p.lastSpan, "'%s' is not a constant expression", op)
}

// parseGEPOperands reads "T* base, T idx..." up to the closing paren.
func (p *Parser) parseGEPOperands() ([]ir.Value, source.Span, error) {
	start := p.peek().Span
	base, err := p.parseGlobalTypeAndValue()
	if err != nil {
		return nil, start, err
	}
	if !p.t.IsPtrOrPtrVector(base.Type()) {
		return nil, start, p.failAt(diag.TypNotPointer, start.Cover(p.lastSpan), "base of getelementptr must be a pointer")
	}
	ops := []ir.Value{base}
	for p.eat(token.Comma) {
		sp := p.peek().Span
		v, err := p.parseGlobalTypeAndValue()
		if err != nil {
			return nil, start, err
		}
		if !p.t.IsIntOrIntVector(v.Type()) {
			return nil, start, p.failAt(diag.TypInvalidOperand, sp.Cover(p.lastSpan), "getelementptr index must be an integer")
		}
		ops = append(ops, v)
	}
	return ops, start.Cover(p.lastSpan), nil
}
