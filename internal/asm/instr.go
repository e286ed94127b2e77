package asm

import (
	"github.com/llir/llvm/ir/enum"

	"llasm/internal/diag"
	"llasm/internal/ir"
	"llasm/internal/source"
	"llasm/internal/token"
)

func (p *Parser) newInstr(op ir.Opcode, ty ir.TypeID, ops ...ir.Value) *ir.Instr {
	return &ir.Instr{Op: op, Typ: ty, Ops: ops}
}

func (p *Parser) void() ir.TypeID { return p.t.Builtins().Void }

// parseTypeAndBasicBlock reads "label %bb".
func (p *Parser) parseTypeAndBasicBlock(fs *funcState) (ir.Value, error) {
	sp := p.peek().Span
	ty, err := p.parseType(false)
	if err != nil {
		return nil, err
	}
	if !p.t.IsLabel(ty) {
		return nil, p.failAt(diag.TypOperandMismatch, sp, "expected a basic block")
	}
	return p.parseValue(ty, fs, sp)
}

// parseOperand2 reads "T a, b" where b takes a's type.
func (p *Parser) parseOperand2(fs *funcState, msg string) (ir.Value, ir.Value, source.Span, error) {
	a, sp, err := p.parseTypeAndValue(fs)
	if err != nil {
		return nil, nil, sp, err
	}
	if _, err := p.expect(token.Comma, msg); err != nil {
		return nil, nil, sp, err
	}
	b, err := p.parseValue(a.Type(), fs, p.peek().Span)
	if err != nil {
		return nil, nil, sp, err
	}
	return a, b, sp.Cover(p.lastSpan), nil
}

// ===== Терминаторы =====

func (p *Parser) parseRet(fs *funcState, tok token.Token, _ opInfo) (*ir.Instr, bool, error) {
	want := p.t.FuncInfo(fs.fn.Sig).Result
	sp := p.peek().Span
	ty, err := p.parseType(true)
	if err != nil {
		return nil, false, err
	}
	if p.t.IsVoid(ty) {
		if !p.t.IsVoid(want) {
			return nil, false, p.failf(diag.TypOperandMismatch, tok.Span.Cover(sp),
				"value doesn't match function result type '%s'", p.t.String(want))
		}
		return p.newInstr(ir.OpRet, p.void()), false, nil
	}
	v, err := p.parseValue(ty, fs, sp)
	if err != nil {
		return nil, false, err
	}
	if ty != want {
		return nil, false, p.failf(diag.TypOperandMismatch, sp.Cover(p.lastSpan),
			"value of type '%s' doesn't match function result type '%s'", p.t.String(ty), p.t.String(want))
	}
	return p.newInstr(ir.OpRet, p.void(), v), false, nil
}

func (p *Parser) parseBr(fs *funcState, _ token.Token, _ opInfo) (*ir.Instr, bool, error) {
	v, sp, err := p.parseTypeAndValue(fs)
	if err != nil {
		return nil, false, err
	}
	if p.t.IsLabel(v.Type()) {
		return p.newInstr(ir.OpBr, p.void(), v), false, nil
	}
	if v.Type() != p.t.Builtins().I1 {
		return nil, false, p.failAt(diag.TypInvalidOperand, sp, "branch condition must have 'i1' type")
	}
	if _, err := p.expect(token.Comma, "expected ',' after branch condition"); err != nil {
		return nil, false, err
	}
	t, err := p.parseTypeAndBasicBlock(fs)
	if err != nil {
		return nil, false, err
	}
	if _, err := p.expect(token.Comma, "expected ',' after true destination"); err != nil {
		return nil, false, err
	}
	f, err := p.parseTypeAndBasicBlock(fs)
	if err != nil {
		return nil, false, err
	}
	return p.newInstr(ir.OpBr, p.void(), v, t, f), false, nil
}

func (p *Parser) parseSwitch(fs *funcState, _ token.Token, _ opInfo) (*ir.Instr, bool, error) {
	cond, sp, err := p.parseTypeAndValue(fs)
	if err != nil {
		return nil, false, err
	}
	if _, err := p.expect(token.Comma, "expected ',' after switch condition"); err != nil {
		return nil, false, err
	}
	def, err := p.parseTypeAndBasicBlock(fs)
	if err != nil {
		return nil, false, err
	}
	if _, err := p.expect(token.LSquare, "expected '[' with switch table"); err != nil {
		return nil, false, err
	}
	if !p.t.IsInt(cond.Type()) {
		return nil, false, p.failAt(diag.TypInvalidOperand, sp, "switch condition must have integer type")
	}
	ops := []ir.Value{cond, def}
	seen := make(map[string]bool)
	for !p.eat(token.RSquare) {
		cv, csp, err := p.parseTypeAndValue(fs)
		if err != nil {
			return nil, false, err
		}
		c, ok := cv.(*ir.ConstInt)
		if !ok {
			return nil, false, p.failAt(diag.SynBadConstant, csp, "case value is not a constant integer")
		}
		if c.Typ != cond.Type() {
			return nil, false, p.failf(diag.TypOperandMismatch, csp, "case value of type '%s' does not match condition type '%s'",
				p.t.String(c.Typ), p.t.String(cond.Type()))
		}
		key := c.V.String()
		if seen[key] {
			return nil, false, p.failAt(diag.DupSwitchCase, csp, "duplicate case value in switch")
		}
		seen[key] = true
		if _, err := p.expect(token.Comma, "expected ',' after case value"); err != nil {
			return nil, false, err
		}
		dest, err := p.parseTypeAndBasicBlock(fs)
		if err != nil {
			return nil, false, err
		}
		ops = append(ops, c, dest)
	}
	return p.newInstr(ir.OpSwitch, p.void(), ops...), false, nil
}

func (p *Parser) parseIndirectBr(fs *funcState, _ token.Token, _ opInfo) (*ir.Instr, bool, error) {
	addr, sp, err := p.parseTypeAndValue(fs)
	if err != nil {
		return nil, false, err
	}
	if !p.t.IsPointer(addr.Type()) {
		return nil, false, p.failAt(diag.TypNotPointer, sp, "indirectbr address must have pointer type")
	}
	if _, err := p.expect(token.Comma, "expected ',' after indirectbr address"); err != nil {
		return nil, false, err
	}
	if _, err := p.expect(token.LSquare, "expected '[' with indirectbr"); err != nil {
		return nil, false, err
	}
	ops := []ir.Value{addr}
	if !p.at(token.RSquare) {
		for {
			d, err := p.parseTypeAndBasicBlock(fs)
			if err != nil {
				return nil, false, err
			}
			ops = append(ops, d)
			if !p.eat(token.Comma) {
				break
			}
		}
	}
	if _, err := p.expect(token.RSquare, "expected ']' at end of block list"); err != nil {
		return nil, false, err
	}
	return p.newInstr(ir.OpIndirectBr, p.void(), ops...), false, nil
}

func (p *Parser) parseInvoke(fs *funcState, tok token.Token, _ opInfo) (*ir.Instr, bool, error) {
	in := &ir.Instr{Op: ir.OpInvoke}
	if err := p.parseCallTail(fs, tok, in); err != nil {
		return nil, false, err
	}
	if _, err := p.expect(token.KwTo, "expected 'to' in invoke"); err != nil {
		return nil, false, err
	}
	normal, err := p.parseTypeAndBasicBlock(fs)
	if err != nil {
		return nil, false, err
	}
	if _, err := p.expect(token.KwUnwind, "expected 'unwind' in invoke"); err != nil {
		return nil, false, err
	}
	unwind, err := p.parseTypeAndBasicBlock(fs)
	if err != nil {
		return nil, false, err
	}
	in.Ops = append(in.Ops, normal, unwind)
	return in, false, nil
}

func (p *Parser) parseResume(fs *funcState, _ token.Token, _ opInfo) (*ir.Instr, bool, error) {
	v, _, err := p.parseTypeAndValue(fs)
	if err != nil {
		return nil, false, err
	}
	return p.newInstr(ir.OpResume, p.void(), v), false, nil
}

func (p *Parser) parseUnreachable(_ *funcState, _ token.Token, _ opInfo) (*ir.Instr, bool, error) {
	return p.newInstr(ir.OpUnreachable, p.void()), false, nil
}

// ===== Арифметика, сравнения, приведения =====

func (p *Parser) parseBinary(fs *funcState, tok token.Token, info opInfo) (*ir.Instr, bool, error) {
	flags, err := p.parseFlags(tok, info)
	if err != nil {
		return nil, false, err
	}
	a, b, sp, err := p.parseOperand2(fs, "expected ',' in arithmetic operation")
	if err != nil {
		return nil, false, err
	}
	if msg := p.binaryInvalid(info, a.Type(), flags); msg != "" {
		return nil, false, p.failAt(diag.TypInvalidOperand, sp, msg)
	}
	in := p.newInstr(info.op, a.Type(), a, b)
	in.Flags = flags
	return in, false, nil
}

func (p *Parser) parseCompare(fs *funcState, tok token.Token, info opInfo) (*ir.Instr, bool, error) {
	flags, err := p.parseFlags(tok, info)
	if err != nil {
		return nil, false, err
	}
	pred, err := p.parsePredicate(info.op)
	if err != nil {
		return nil, false, err
	}
	a, b, sp, err := p.parseOperand2(fs, "expected ',' after compare value")
	if err != nil {
		return nil, false, err
	}
	if msg := p.compareInvalid(info.op, a.Type()); msg != "" {
		return nil, false, p.failAt(diag.TypInvalidOperand, sp, msg)
	}
	in := p.newInstr(info.op, p.cmpType(a.Type()), a, b)
	in.Pred = pred
	in.Flags = flags
	return in, false, nil
}

func (p *Parser) compareInvalid(op ir.Opcode, ty ir.TypeID) string {
	if op == ir.OpFCmp {
		if !p.t.IsFPOrFPVector(ty) {
			return "fcmp requires floating point operands"
		}
		return ""
	}
	if !p.t.IsIntOrIntVector(ty) && !p.t.IsPtrOrPtrVector(ty) {
		return "icmp requires integer operands"
	}
	return ""
}

func (p *Parser) parseCast(fs *funcState, _ token.Token, info opInfo) (*ir.Instr, bool, error) {
	v, sp, err := p.parseTypeAndValue(fs)
	if err != nil {
		return nil, false, err
	}
	if _, err := p.expect(token.KwTo, "expected 'to' after cast value"); err != nil {
		return nil, false, err
	}
	dst, err := p.parseType(false)
	if err != nil {
		return nil, false, err
	}
	if !p.castValid(info.op, v.Type(), dst) {
		return nil, false, p.failf(diag.TypInvalidCast, sp.Cover(p.lastSpan), "invalid cast opcode for cast from '%s' to '%s'",
			p.t.String(v.Type()), p.t.String(dst))
	}
	return p.newInstr(info.op, dst, v), false, nil
}

func (p *Parser) parseSelect(fs *funcState, _ token.Token, _ opInfo) (*ir.Instr, bool, error) {
	ops, sp, err := p.parseOperandList(fs, 3, "expected ',' after select condition")
	if err != nil {
		return nil, false, err
	}
	if msg := p.selectInvalid(ops[0].Type(), ops[1].Type(), ops[2].Type()); msg != "" {
		return nil, false, p.failAt(diag.TypInvalidOperand, sp, msg)
	}
	return p.newInstr(ir.OpSelect, ops[1].Type(), ops...), false, nil
}

// parseOperandList reads n comma separated "T v" operands.
func (p *Parser) parseOperandList(fs *funcState, n int, msg string) ([]ir.Value, source.Span, error) {
	ops := make([]ir.Value, 0, n)
	start := p.peek().Span
	for i := 0; i < n; i++ {
		if i > 0 {
			if _, err := p.expect(token.Comma, msg); err != nil {
				return nil, start, err
			}
		}
		v, _, err := p.parseTypeAndValue(fs)
		if err != nil {
			return nil, start, err
		}
		ops = append(ops, v)
	}
	return ops, start.Cover(p.lastSpan), nil
}

func (p *Parser) parseVAArg(fs *funcState, _ token.Token, _ opInfo) (*ir.Instr, bool, error) {
	ap, _, err := p.parseTypeAndValue(fs)
	if err != nil {
		return nil, false, err
	}
	if _, err := p.expect(token.Comma, "expected ',' after vaarg operand"); err != nil {
		return nil, false, err
	}
	sp := p.peek().Span
	ty, err := p.parseType(false)
	if err != nil {
		return nil, false, err
	}
	if !p.t.IsFirstClass(ty) {
		return nil, false, p.failAt(diag.TypNonFirstClass, sp, "va_arg requires operand with first class type")
	}
	return p.newInstr(ir.OpVAArg, ty, ap), false, nil
}

// ===== Векторы и агрегаты =====

func (p *Parser) parseExtractElement(fs *funcState, _ token.Token, _ opInfo) (*ir.Instr, bool, error) {
	ops, sp, err := p.parseOperandList(fs, 2, "expected ',' after extract value")
	if err != nil {
		return nil, false, err
	}
	if !p.extractElementValid(ops[0].Type(), ops[1].Type()) {
		return nil, false, p.failAt(diag.TypInvalidOperand, sp, "invalid extractelement operands")
	}
	return p.newInstr(ir.OpExtractElement, p.t.Elem(ops[0].Type()), ops...), false, nil
}

func (p *Parser) parseInsertElement(fs *funcState, _ token.Token, _ opInfo) (*ir.Instr, bool, error) {
	ops, sp, err := p.parseOperandList(fs, 3, "expected ',' after insertelement value")
	if err != nil {
		return nil, false, err
	}
	if !p.insertElementValid(ops[0].Type(), ops[1].Type(), ops[2].Type()) {
		return nil, false, p.failAt(diag.TypInvalidOperand, sp, "invalid insertelement operands")
	}
	return p.newInstr(ir.OpInsertElement, ops[0].Type(), ops...), false, nil
}

func (p *Parser) parseShuffleVector(fs *funcState, _ token.Token, _ opInfo) (*ir.Instr, bool, error) {
	ops, sp, err := p.parseOperandList(fs, 3, "expected ',' after shuffle value")
	if err != nil {
		return nil, false, err
	}
	if !p.shuffleValid(ops[0], ops[1], ops[2]) {
		return nil, false, p.failAt(diag.TypInvalidOperand, sp, "invalid shufflevector operands")
	}
	return p.newInstr(ir.OpShuffleVector, p.shuffleType(ops[0].Type(), ops[2].Type()), ops...), false, nil
}

// parseIndexList reads ", N, N..." for extractvalue and insertvalue.
func (p *Parser) parseIndexList() ([]uint64, bool, error) {
	if !p.at(token.Comma) {
		return nil, false, p.tokError(diag.SynUnexpectedToken, "expected ',' as start of index list")
	}
	var idx []uint64
	for p.eat(token.Comma) {
		if p.at(token.MetadataVar) {
			if len(idx) == 0 {
				return nil, false, p.tokError(diag.SynUnexpectedToken, "expected index")
			}
			return idx, true, nil
		}
		n, _, err := p.parseUInt32()
		if err != nil {
			return nil, false, err
		}
		idx = append(idx, uint64(n))
	}
	return idx, false, nil
}

func (p *Parser) parseExtractValue(fs *funcState, _ token.Token, _ opInfo) (*ir.Instr, bool, error) {
	agg, sp, err := p.parseTypeAndValue(fs)
	if err != nil {
		return nil, false, err
	}
	idx, ate, err := p.parseIndexList()
	if err != nil {
		return nil, false, err
	}
	if !p.t.IsAggregate(agg.Type()) {
		return nil, false, p.failAt(diag.TypInvalidOperand, sp, "extractvalue operand must be aggregate type")
	}
	ty, ok := p.indexedType(agg.Type(), idx)
	if !ok {
		return nil, false, p.failAt(diag.TypInvalidOperand, sp.Cover(p.lastSpan), "invalid indices for extractvalue")
	}
	in := p.newInstr(ir.OpExtractValue, ty, agg)
	in.Indices = idx
	return in, ate, nil
}

func (p *Parser) parseInsertValue(fs *funcState, _ token.Token, _ opInfo) (*ir.Instr, bool, error) {
	ops, sp, err := p.parseOperandList(fs, 2, "expected comma after insertvalue operand")
	if err != nil {
		return nil, false, err
	}
	idx, ate, err := p.parseIndexList()
	if err != nil {
		return nil, false, err
	}
	if msg := p.insertValueInvalid(ops[0].Type(), ops[1].Type(), idx); msg != "" {
		return nil, false, p.failAt(diag.TypInvalidOperand, sp.Cover(p.lastSpan), msg)
	}
	in := p.newInstr(ir.OpInsertValue, ops[0].Type(), ops...)
	in.Indices = idx
	return in, ate, nil
}

func (p *Parser) insertValueInvalid(agg, val ir.TypeID, idx []uint64) string {
	if !p.t.IsAggregate(agg) {
		return "insertvalue operand must be aggregate type"
	}
	field, ok := p.indexedType(agg, idx)
	if !ok {
		return "invalid indices for insertvalue"
	}
	if field != val {
		return "insertvalue operand and field disagree in type: '" + p.t.String(val) +
			"' instead of '" + p.t.String(field) + "'"
	}
	return ""
}

// ===== Память =====

func (p *Parser) parseAlloca(fs *funcState, _ token.Token, _ opInfo) (*ir.Instr, bool, error) {
	sp := p.peek().Span
	ty, err := p.parseType(false)
	if err != nil {
		return nil, false, err
	}
	if !p.t.ValidPointee(ty) || p.t.Kind(ty) == ir.KindFunc {
		return nil, false, p.failf(diag.TypInvalidType, sp, "invalid type '%s' for alloca", p.t.String(ty))
	}
	in := p.newInstr(ir.OpAlloca, p.t.Pointer(ty, 0))
	in.ElemType = ty
	var ate bool
	if p.eat(token.Comma) {
		switch {
		case p.at(token.KwAlign):
			if in.Align, err = p.parseOptionalAlignment(); err != nil {
				return nil, false, err
			}
			var more uint32
			if more, ate, err = p.parseOptionalCommaAlign(); err != nil {
				return nil, false, err
			}
			if more != 0 {
				in.Align = more
			}
		case p.at(token.MetadataVar):
			ate = true
		default:
			n, nsp, err := p.parseTypeAndValue(fs)
			if err != nil {
				return nil, false, err
			}
			if !p.t.IsInt(n.Type()) {
				return nil, false, p.failAt(diag.TypInvalidOperand, nsp, "element count must have integer type")
			}
			in.Ops = []ir.Value{n}
			if in.Align, ate, err = p.parseOptionalCommaAlign(); err != nil {
				return nil, false, err
			}
		}
	}
	return in, ate, nil
}

func (p *Parser) parseLoad(fs *funcState, _ token.Token, _ opInfo) (*ir.Instr, bool, error) {
	in := &ir.Instr{Op: ir.OpLoad}
	atomic := p.eat(token.KwAtomic)
	if p.eat(token.KwVolatile) {
		in.Flags |= ir.FlagVolatile
	}
	ptr, sp, err := p.parseTypeAndValue(fs)
	if err != nil {
		return nil, false, err
	}
	if atomic {
		in.Flags |= ir.FlagAtomic
		if err := p.parseScopeAndOrdering(in); err != nil {
			return nil, false, err
		}
	}
	align, ate, err := p.parseOptionalCommaAlign()
	if err != nil {
		return nil, false, err
	}
	in.Align = align
	t := p.t
	if !t.IsPointer(ptr.Type()) || !t.IsFirstClass(t.Elem(ptr.Type())) {
		return nil, false, p.failAt(diag.TypNotPointer, sp, "load operand must be a pointer to a first class type")
	}
	if atomic {
		if align == 0 {
			return nil, false, p.failAt(diag.SynBadAlignment, sp, "atomic load must have explicit non-zero alignment")
		}
		if in.Ordering == enum.AtomicOrderingRelease || in.Ordering == enum.AtomicOrderingAcquireRelease {
			return nil, false, p.failAt(diag.SynBadOrdering, sp, "atomic load cannot use Release ordering")
		}
	}
	in.Typ = t.Elem(ptr.Type())
	in.Ops = []ir.Value{ptr}
	return in, ate, nil
}

func (p *Parser) parseStore(fs *funcState, _ token.Token, _ opInfo) (*ir.Instr, bool, error) {
	in := &ir.Instr{Op: ir.OpStore, Typ: p.void()}
	atomic := p.eat(token.KwAtomic)
	if p.eat(token.KwVolatile) {
		in.Flags |= ir.FlagVolatile
	}
	val, vsp, err := p.parseTypeAndValue(fs)
	if err != nil {
		return nil, false, err
	}
	if _, err := p.expect(token.Comma, "expected ',' after store operand"); err != nil {
		return nil, false, err
	}
	ptr, psp, err := p.parseTypeAndValue(fs)
	if err != nil {
		return nil, false, err
	}
	if atomic {
		in.Flags |= ir.FlagAtomic
		if err := p.parseScopeAndOrdering(in); err != nil {
			return nil, false, err
		}
	}
	align, ate, err := p.parseOptionalCommaAlign()
	if err != nil {
		return nil, false, err
	}
	in.Align = align
	t := p.t
	if !t.IsPointer(ptr.Type()) {
		return nil, false, p.failAt(diag.TypNotPointer, psp, "store operand must be a pointer")
	}
	if !t.IsFirstClass(val.Type()) {
		return nil, false, p.failAt(diag.TypNonFirstClass, vsp, "store operand must be a first class value")
	}
	if t.Elem(ptr.Type()) != val.Type() {
		return nil, false, p.failf(diag.TypOperandMismatch, vsp.Cover(psp), "stored value of type '%s' and pointer type '%s' do not match",
			t.String(val.Type()), t.String(ptr.Type()))
	}
	if atomic {
		if align == 0 {
			return nil, false, p.failAt(diag.SynBadAlignment, psp, "atomic store must have explicit non-zero alignment")
		}
		if in.Ordering == enum.AtomicOrderingAcquire || in.Ordering == enum.AtomicOrderingAcquireRelease {
			return nil, false, p.failAt(diag.SynBadOrdering, psp, "atomic store cannot use Acquire ordering")
		}
	}
	in.Ops = []ir.Value{val, ptr}
	return in, ate, nil
}

// atomicIntValid: integer of at least 8 bits and a power of two wide.
func (p *Parser) atomicIntValid(ty ir.TypeID) bool {
	if !p.t.IsInt(ty) {
		return false
	}
	w := p.t.IntWidth(ty)
	return w >= 8 && w&(w-1) == 0
}

func (p *Parser) parseCmpXchg(fs *funcState, _ token.Token, _ opInfo) (*ir.Instr, bool, error) {
	in := &ir.Instr{Op: ir.OpCmpXchg}
	if p.eat(token.KwVolatile) {
		in.Flags |= ir.FlagVolatile
	}
	ops, sp, err := p.parseOperandList(fs, 3, "expected ',' after cmpxchg address")
	if err != nil {
		return nil, false, err
	}
	if err := p.parseScopeAndOrdering(in); err != nil {
		return nil, false, err
	}
	t := p.t
	ptr, cmpv, newv := ops[0], ops[1], ops[2]
	switch {
	case in.Ordering == enum.AtomicOrderingUnordered:
		return nil, false, p.failAt(diag.SynBadOrdering, sp, "cmpxchg cannot be unordered")
	case !t.IsPointer(ptr.Type()):
		return nil, false, p.failAt(diag.TypNotPointer, sp, "cmpxchg operand must be a pointer")
	case t.Elem(ptr.Type()) != cmpv.Type():
		return nil, false, p.failf(diag.TypOperandMismatch, sp, "compare value of type '%s' and pointer type '%s' do not match",
			t.String(cmpv.Type()), t.String(ptr.Type()))
	case t.Elem(ptr.Type()) != newv.Type():
		return nil, false, p.failf(diag.TypOperandMismatch, sp, "new value of type '%s' and pointer type '%s' do not match",
			t.String(newv.Type()), t.String(ptr.Type()))
	case !t.IsInt(cmpv.Type()):
		return nil, false, p.failAt(diag.TypInvalidOperand, sp, "cmpxchg operand must be an integer")
	case !p.atomicIntValid(cmpv.Type()):
		return nil, false, p.failAt(diag.TypInvalidOperand, sp, "cmpxchg operand must be power-of-two byte-sized integer")
	}
	in.Typ = cmpv.Type()
	in.Ops = ops
	return in, false, nil
}

func (p *Parser) parseAtomicRMW(fs *funcState, _ token.Token, _ opInfo) (*ir.Instr, bool, error) {
	in := &ir.Instr{Op: ir.OpAtomicRMW}
	if p.eat(token.KwVolatile) {
		in.Flags |= ir.FlagVolatile
	}
	rmw, ok := rmwOps[p.peek().Kind]
	if !ok {
		return nil, false, p.tokError(diag.SynUnexpectedToken, "expected binary operation in atomicrmw")
	}
	p.advance()
	in.RMW = rmw
	ops, sp, err := p.parseOperandList(fs, 2, "expected ',' after atomicrmw address")
	if err != nil {
		return nil, false, err
	}
	if err := p.parseScopeAndOrdering(in); err != nil {
		return nil, false, err
	}
	t := p.t
	ptr, val := ops[0], ops[1]
	switch {
	case in.Ordering == enum.AtomicOrderingUnordered:
		return nil, false, p.failAt(diag.SynBadOrdering, sp, "atomicrmw cannot be unordered")
	case !t.IsPointer(ptr.Type()):
		return nil, false, p.failAt(diag.TypNotPointer, sp, "atomicrmw operand must be a pointer")
	case t.Elem(ptr.Type()) != val.Type():
		return nil, false, p.failf(diag.TypOperandMismatch, sp, "atomicrmw value of type '%s' and pointer type '%s' do not match",
			t.String(val.Type()), t.String(ptr.Type()))
	case !t.IsInt(val.Type()):
		return nil, false, p.failAt(diag.TypInvalidOperand, sp, "atomicrmw operand must be an integer")
	case !p.atomicIntValid(val.Type()):
		return nil, false, p.failAt(diag.TypInvalidOperand, sp, "atomicrmw operand must be power-of-two byte-sized integer")
	}
	in.Typ = val.Type()
	in.Ops = ops
	return in, false, nil
}

func (p *Parser) parseFence(_ *funcState, tok token.Token, _ opInfo) (*ir.Instr, bool, error) {
	in := p.newInstr(ir.OpFence, p.void())
	if err := p.parseScopeAndOrdering(in); err != nil {
		return nil, false, err
	}
	switch in.Ordering {
	case enum.AtomicOrderingUnordered:
		return nil, false, p.failAt(diag.SynBadOrdering, tok.Span.Cover(p.lastSpan), "fence cannot be unordered")
	case enum.AtomicOrderingMonotonic:
		return nil, false, p.failAt(diag.SynBadOrdering, tok.Span.Cover(p.lastSpan), "fence cannot be monotonic")
	}
	return in, false, nil
}

func (p *Parser) parseGEP(fs *funcState, tok token.Token, info opInfo) (*ir.Instr, bool, error) {
	flags, err := p.parseFlags(tok, info)
	if err != nil {
		return nil, false, err
	}
	ptr, sp, err := p.parseTypeAndValue(fs)
	if err != nil {
		return nil, false, err
	}
	if !p.t.IsPtrOrPtrVector(ptr.Type()) {
		return nil, false, p.failAt(diag.TypNotPointer, sp, "base of getelementptr must be a pointer")
	}
	ops := []ir.Value{ptr}
	var ate bool
	for p.eat(token.Comma) {
		if p.at(token.MetadataVar) {
			ate = true
			break
		}
		v, vsp, err := p.parseTypeAndValue(fs)
		if err != nil {
			return nil, false, err
		}
		if !p.t.IsIntOrIntVector(v.Type()) {
			return nil, false, p.failAt(diag.TypInvalidOperand, vsp, "getelementptr index must be an integer")
		}
		ops = append(ops, v)
	}
	ty, ok := p.gepType(ptr.Type(), ops[1:])
	if !ok {
		return nil, false, p.failAt(diag.TypInvalidOperand, sp.Cover(p.lastSpan), "invalid getelementptr indices")
	}
	in := p.newInstr(ir.OpGetElementPtr, ty, ops...)
	in.Flags = flags
	return in, ate, nil
}

// ===== phi, landingpad =====

func (p *Parser) parsePhi(fs *funcState, _ token.Token, _ opInfo) (*ir.Instr, bool, error) {
	sp := p.peek().Span
	ty, err := p.parseType(false)
	if err != nil {
		return nil, false, err
	}
	if !p.t.IsFirstClass(ty) || p.t.IsLabel(ty) {
		return nil, false, p.failAt(diag.TypNonFirstClass, sp, "phi node must have first class type")
	}
	var ops []ir.Value
	var ate bool
	for {
		if _, err := p.expect(token.LSquare, "expected '[' in phi value list"); err != nil {
			return nil, false, err
		}
		v, err := p.parseValue(ty, fs, p.peek().Span)
		if err != nil {
			return nil, false, err
		}
		if _, err := p.expect(token.Comma, "expected ',' after insertelement value"); err != nil {
			return nil, false, err
		}
		bb, err := p.parseValue(p.t.Builtins().Label, fs, p.peek().Span)
		if err != nil {
			return nil, false, err
		}
		if _, err := p.expect(token.RSquare, "expected ']' in phi value list"); err != nil {
			return nil, false, err
		}
		ops = append(ops, v, bb)
		if !p.eat(token.Comma) {
			break
		}
		if p.at(token.MetadataVar) {
			ate = true
			break
		}
	}
	return p.newInstr(ir.OpPhi, ty, ops...), ate, nil
}

func (p *Parser) parseLandingPad(fs *funcState, _ token.Token, _ opInfo) (*ir.Instr, bool, error) {
	ty, err := p.parseType(false)
	if err != nil {
		return nil, false, err
	}
	if _, err := p.expect(token.KwPersonality, "expected 'personality'"); err != nil {
		return nil, false, err
	}
	pers, _, err := p.parseTypeAndValue(fs)
	if err != nil {
		return nil, false, err
	}
	in := p.newInstr(ir.OpLandingPad, ty, pers)
	in.Cleanup = p.eat(token.KwCleanup)
	for p.at(token.KwCatch) || p.at(token.KwFilter) {
		kind := ir.ClauseCatch
		if p.advance().Kind == token.KwFilter {
			kind = ir.ClauseFilter
		}
		v, sp, err := p.parseTypeAndValue(fs)
		if err != nil {
			return nil, false, err
		}
		isArray := p.t.Kind(v.Type()) == ir.KindArray
		if kind == ir.ClauseCatch && isArray {
			return nil, false, p.failAt(diag.TypInvalidOperand, sp, "'catch' clause has an invalid type")
		}
		if kind == ir.ClauseFilter && !isArray {
			return nil, false, p.failAt(diag.TypInvalidOperand, sp, "'filter' clause has an invalid type")
		}
		in.Ops = append(in.Ops, v)
		in.Clauses = append(in.Clauses, kind)
	}
	return in, false, nil
}

// ===== call, invoke =====

func (p *Parser) parseCall(fs *funcState, tok token.Token, info opInfo) (*ir.Instr, bool, error) {
	in := &ir.Instr{Op: ir.OpCall}
	if tok.Kind == token.KwTail {
		if _, err := p.expect(token.KwCall, "expected 'call' after 'tail'"); err != nil {
			return nil, false, err
		}
		in.Flags |= info.flags
	}
	if err := p.parseCallTail(fs, tok, in); err != nil {
		return nil, false, err
	}
	return in, false, nil
}

type callArg struct {
	v     ir.Value
	attrs ir.AttrSet
	span  source.Span
}

// parseCallTail reads "[cc] [ret attrs] T callee(args) [fn attrs]" shared
// by call and invoke, and fills in's callee, arguments and attributes.
func (p *Parser) parseCallTail(fs *funcState, tok token.Token, in *ir.Instr) error {
	cc, err := p.parseOptionalCallingConv()
	if err != nil {
		return err
	}
	ret, err := p.parseAttrList(ir.PosReturn, false)
	if err != nil {
		return err
	}
	retSp := p.peek().Span
	retTy, err := p.parseType(true)
	if err != nil {
		return err
	}
	callee, err := p.parseValID()
	if err != nil {
		return err
	}
	args, err := p.parseCallArgs(fs)
	if err != nil {
		return err
	}
	fnAttrs, err := p.parseAttrList(ir.PosFunction, false)
	if err != nil {
		return err
	}
	if fnAttrs.set.Align != 0 {
		return p.failf(diag.AtrMisuse, tok.Span.Cover(p.lastSpan), "'align' is not valid on a call")
	}

	t := p.t
	fnTy := ir.NoTypeID
	if t.IsPointer(retTy) && t.Kind(t.Elem(retTy)) == ir.KindFunc {
		fnTy = t.Elem(retTy)
	} else {
		if !t.ValidReturn(retTy) {
			return p.failAt(diag.TypInvalidType, retSp, "Invalid result type for LLVM function")
		}
		params := make([]ir.TypeID, len(args))
		for i, a := range args {
			params[i] = a.v.Type()
		}
		fnTy = t.Func(retTy, params, false)
	}
	cv, err := p.convertValID(t.Pointer(fnTy, 0), callee, fs)
	if err != nil {
		return err
	}

	sig := t.FuncInfo(fnTy)
	for i, a := range args {
		if i >= len(sig.Params) {
			if !sig.Variadic {
				return p.failAt(diag.TypCallSignature, a.span, "too many arguments specified")
			}
			continue
		}
		if a.v.Type() != sig.Params[i] {
			return p.failf(diag.TypCallSignature, a.span, "argument of type '%s' is not of expected type '%s'",
				t.String(a.v.Type()), t.String(sig.Params[i]))
		}
	}
	if len(args) < len(sig.Params) {
		return p.failAt(diag.TypCallSignature, p.lastSpan, "not enough parameters specified for call")
	}

	in.Typ = sig.Result
	in.ElemType = fnTy
	in.CallConv = cc
	in.RetAttrs = ret.set
	in.FnAttrs = fnAttrs.set
	in.AttrGroups = fnAttrs.groups
	p.groups.addRefs(fnAttrs, nil, in)
	in.Ops = append(in.Ops, cv)
	in.ParamAttrs = make([]ir.AttrSet, len(args))
	hasParamAttrs := false
	for i, a := range args {
		in.Ops = append(in.Ops, a.v)
		in.ParamAttrs[i] = a.attrs
		hasParamAttrs = hasParamAttrs || !a.attrs.Empty()
	}
	if !hasParamAttrs {
		in.ParamAttrs = nil
	}
	return nil
}

// parseCallArgs reads "(T [attrs] v, ...)".
func (p *Parser) parseCallArgs(fs *funcState) ([]callArg, error) {
	if _, err := p.expect(token.LParen, "expected '(' in call"); err != nil {
		return nil, err
	}
	var args []callArg
	for !p.eat(token.RParen) {
		if len(args) > 0 {
			if _, err := p.expect(token.Comma, "expected ',' in argument list"); err != nil {
				return nil, err
			}
		}
		sp := p.peek().Span
		ty, err := p.parseType(false)
		if err != nil {
			return nil, err
		}
		attrs, err := p.parseAttrList(ir.PosParam, false)
		if err != nil {
			return nil, err
		}
		v, err := p.parseValue(ty, fs, sp)
		if err != nil {
			return nil, err
		}
		args = append(args, callArg{v: v, attrs: attrs.set, span: sp.Cover(p.lastSpan)})
	}
	return args, nil
}
