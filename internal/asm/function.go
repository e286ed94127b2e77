package asm

import (
	"strconv"

	"llasm/internal/diag"
	"llasm/internal/ir"
	"llasm/internal/source"
	"llasm/internal/token"
	"llasm/internal/trace"
)

// localFwd is a function-local value used before its definition.
type localFwd struct {
	fwd *ir.Forward
	use source.Span
}

// funcState is the local symbol table of the function body being parsed.
// It is created at '{' and dropped at '}'.
type funcState struct {
	fn       *ir.Function
	key      string // ключ для blockaddress: имя или "#N"
	named    map[string]ir.Value
	numbered []ir.Value
	fwdNamed map[string]*localFwd
	fwdSeq   []string
	fwdIDs   map[uint32]*localFwd
}

func newFuncState(fn *ir.Function, key string) *funcState {
	return &funcState{
		fn:       fn,
		key:      key,
		named:    make(map[string]ir.Value),
		fwdNamed: make(map[string]*localFwd),
		fwdIDs:   make(map[uint32]*localFwd),
	}
}

// localRef names %name or %N.
type localRef struct {
	name     string
	id       uint32
	numbered bool
}

func (r localRef) String() string {
	if r.numbered {
		return "%" + strconv.FormatUint(uint64(r.id), 10)
	}
	return ir.QuoteName('%', r.name)
}

func (fs *funcState) lookup(r localRef) ir.Value {
	if r.numbered {
		if int(r.id) < len(fs.numbered) {
			return fs.numbered[r.id]
		}
		return nil
	}
	return fs.named[r.name]
}

func (fs *funcState) forward(r localRef) *localFwd {
	if r.numbered {
		return fs.fwdIDs[r.id]
	}
	return fs.fwdNamed[r.name]
}

func (fs *funcState) dropForward(r localRef) {
	if r.numbered {
		delete(fs.fwdIDs, r.id)
	} else {
		delete(fs.fwdNamed, r.name)
	}
}

// getLocal returns the local r at type ty, creating a placeholder when it
// is not defined yet.
func (p *Parser) getLocal(fs *funcState, r localRef, ty ir.TypeID, sp source.Span) (ir.Value, error) {
	if v := fs.lookup(r); v != nil {
		if v.Type() == ty {
			return v, nil
		}
		if p.t.IsLabel(ty) {
			return nil, p.failf(diag.TypForwardRef, sp, "'%s' is not a basic block", r)
		}
		return nil, p.failf(diag.TypForwardRef, sp, "'%s' defined with type '%s' but expected '%s'",
			r, p.t.String(v.Type()), p.t.String(ty))
	}
	if f := fs.forward(r); f != nil {
		if f.fwd.Typ != ty {
			if p.t.IsLabel(ty) || p.t.IsLabel(f.fwd.Typ) {
				return nil, p.failf(diag.TypForwardRef, sp, "'%s' is not a basic block", r)
			}
			return nil, p.failf(diag.TypForwardRef, sp, "'%s' used with type '%s' but previously used with type '%s'",
				r, p.t.String(ty), p.t.String(f.fwd.Typ))
		}
		return f.fwd, nil
	}
	if !p.t.IsFirstClass(ty) && !p.t.IsLabel(ty) {
		return nil, p.failAt(diag.TypNonFirstClass, sp, "invalid use of a non-first-class type")
	}
	f := &localFwd{fwd: &ir.Forward{Typ: ty, Ref: r.String()}, use: sp}
	if r.numbered {
		fs.fwdIDs[r.id] = f
	} else {
		fs.fwdNamed[r.name] = f
		fs.fwdSeq = append(fs.fwdSeq, r.name)
	}
	return f.fwd, nil
}

// defineLocal binds r to v. Numbered definitions must continue the
// sequence exactly; what is the next number is decided by the table.
func (p *Parser) defineLocal(fs *funcState, r localRef, v ir.Value, what string, sp source.Span) error {
	if r.numbered {
		if want := len(fs.numbered); int(r.id) != want {
			return p.failf(diag.DupNumbering, sp, "%s expected to be numbered '%%%d'", what, want)
		}
	} else if _, dup := fs.named[r.name]; dup {
		return p.failf(diag.DupLocal, sp, "multiple definition of local value named '%s'", r.name)
	}
	if f := fs.forward(r); f != nil {
		if f.fwd.Typ != v.Type() {
			if p.t.IsLabel(f.fwd.Typ) {
				return p.failf(diag.TypForwardRef, sp, "'%s' is used as a basic block but defined with type '%s'",
					r, p.t.String(v.Type()))
			}
			return p.failf(diag.TypForwardRef, sp, "%s forward referenced with type '%s' but defined with type '%s'",
				what, p.t.String(f.fwd.Typ), p.t.String(v.Type()))
		}
		f.fwd.Resolve(v)
		fs.dropForward(r)
	}
	if r.numbered {
		fs.numbered = append(fs.numbered, v)
	} else {
		fs.named[r.name] = v
	}
	return nil
}

// nextLocal is the implicit number of the next unnamed value.
func (fs *funcState) nextLocal() localRef {
	return localRef{id: u32(len(fs.numbered)), numbered: true}
}

// finish checks the body's forward references (lowest number first, then
// names in order of first use) and drains blockaddress uses waiting for
// this function.
func (p *Parser) finishFunction(fs *funcState) error {
	if len(fs.fwdIDs) > 0 {
		var lowest uint32
		first := true
		for id := range fs.fwdIDs {
			if first || id < lowest {
				lowest, first = id, false
			}
		}
		return p.failf(diag.UnrLocal, fs.fwdIDs[lowest].use, "use of undefined value '%%%d'", lowest)
	}
	for _, name := range fs.fwdSeq {
		if f, ok := fs.fwdNamed[name]; ok {
			return p.failf(diag.UnrLocal, f.use, "use of undefined value '%s'", ir.QuoteName('%', name))
		}
	}
	return p.resolveBlockAddresses(fs)
}

// ===== Заголовок функции =====

var callConvKinds = map[token.Kind]ir.CallConv{
	token.KwCcc:           ir.CallConvC,
	token.KwFastcc:        ir.CallConvFast,
	token.KwColdcc:        ir.CallConvCold,
	token.KwX86Stdcallcc:  ir.CallConvX86Stdcall,
	token.KwX86Fastcallcc: ir.CallConvX86Fastcall,
	token.KwX86Thiscallcc: ir.CallConvX86Thiscall,
	token.KwArmApcscc:     ir.CallConvARMAPCS,
	token.KwArmAapcscc:    ir.CallConvARMAAPCS,
	token.KwArmAapcsVfpcc: ir.CallConvARMAAPCSVFP,
	token.KwMsp430Intrcc:  ir.CallConvMSP430Intr,
	token.KwPtxKernel:     ir.CallConvPTXKernel,
	token.KwPtxDevice:     ir.CallConvPTXDevice,
	token.KwSpirKernel:    ir.CallConvSPIRKernel,
	token.KwSpirFunc:      ir.CallConvSPIRFunc,
	token.KwIntelOclBicc:  ir.CallConvIntelOCLBI,
	token.KwX8664Sysvcc:   ir.CallConvX8664SysV,
	token.KwX8664Win64cc:  ir.CallConvX8664Win64,
}

// parseOptionalCallingConv reads a convention keyword or "cc N".
func (p *Parser) parseOptionalCallingConv() (ir.CallConv, error) {
	if cc, ok := callConvKinds[p.peek().Kind]; ok {
		p.advance()
		return cc, nil
	}
	if !p.eat(token.KwCc) {
		return ir.CallConvC, nil
	}
	n, _, err := p.parseUInt32()
	if err != nil {
		return ir.CallConvC, err
	}
	return ir.CallConv(n), nil
}

// parseDeclare handles "declare" FunctionHeader.
func (p *Parser) parseDeclare() error {
	p.advance()
	_, _, err := p.parseFunctionHeader(false)
	return err
}

// parseDefine handles "define" FunctionHeader '{' ... '}'.
func (p *Parser) parseDefine() error {
	p.advance()
	fn, key, err := p.parseFunctionHeader(true)
	if err != nil {
		return err
	}
	return p.parseFunctionBody(fn, key)
}

func (p *Parser) parseFunctionHeader(isDefine bool) (*ir.Function, string, error) {
	linkTok := p.peek()
	linkage, hasLinkage := p.parseOptionalLinkage()
	if hasLinkage {
		switch {
		case !isDefine && !linkage.ValidForDeclaration():
			return nil, "", p.failAt(diag.SynBadLinkage, linkTok.Span, "invalid linkage for function declaration")
		case isDefine && (linkage == ir.LinkageExternWeak || linkage == ir.LinkageDLLImport):
			return nil, "", p.failAt(diag.SynBadLinkage, linkTok.Span, "invalid linkage for function definition")
		}
	}
	vis := p.parseOptionalVisibility()
	cc, err := p.parseOptionalCallingConv()
	if err != nil {
		return nil, "", err
	}
	retAttrs, err := p.parseAttrList(ir.PosReturn, false)
	if err != nil {
		return nil, "", err
	}
	retSpan := p.peek().Span
	ret, err := p.parseType(true)
	if err != nil {
		return nil, "", err
	}
	if !p.t.ValidReturn(ret) {
		return nil, "", p.failAt(diag.TypInvalidType, retSpan, "invalid function return type")
	}

	nameTok := p.peek()
	var r globalRef
	switch nameTok.Kind {
	case token.GlobalVar:
		r = globalRef{name: nameTok.Text}
	case token.GlobalID:
		n, err := p.slotID(nameTok)
		if err != nil {
			return nil, "", err
		}
		if want := u32(len(p.glob.numbered)); n != want {
			return nil, "", p.failf(diag.DupNumbering, nameTok.Span, "function expected to be numbered '@%d'", want)
		}
		r = globalRef{id: n, numbered: true}
	default:
		return nil, "", p.tokError(diag.SynUnexpectedToken, "expected function name")
	}
	p.advance()

	fn := &ir.Function{
		Name:       r.name,
		Numbered:   r.numbered,
		Linkage:    linkage,
		Visibility: vis,
		CallConv:   cc,
		RetAttrs:   retAttrs.set,
	}
	variadic, err := p.parseArgumentList(fn, isDefine)
	if err != nil {
		return nil, "", err
	}
	fn.UnnamedAddr = p.eat(token.KwUnnamedAddr)

	fnAttrs, err := p.parseAttrList(ir.PosFunction, false)
	if err != nil {
		return nil, "", err
	}
	if fnAttrs.builtin != (source.Span{}) {
		return nil, "", p.failAt(diag.AtrMisuse, fnAttrs.builtin, "'builtin' attribute not valid on function")
	}
	fn.FnAttrs = fnAttrs.set
	fn.Align, fn.FnAttrs.Align = fn.FnAttrs.Align, 0
	fn.AttrGroups = fnAttrs.groups
	p.groups.addRefs(fnAttrs, fn, nil)

	if p.eat(token.KwSection) {
		if fn.Section, err = p.parseStringConstant(); err != nil {
			return nil, "", err
		}
	}
	if p.at(token.KwAlign) {
		if fn.Align, err = p.parseOptionalAlignment(); err != nil {
			return nil, "", err
		}
	}
	if p.eat(token.KwGc) {
		if fn.GC, err = p.parseStringConstant(); err != nil {
			return nil, "", err
		}
	}

	params := make([]ir.TypeID, len(fn.Params))
	for i, a := range fn.Params {
		params[i] = a.Typ
		if a.Attrs.Has(ir.AttrSRet) && !p.t.IsVoid(ret) {
			return nil, "", p.failAt(diag.AtrMisuse, nameTok.Span, "functions with 'sret' argument must return void")
		}
	}
	fn.Sig = p.t.Func(ret, params, variadic)
	fn.Typ = p.t.Pointer(fn.Sig, 0)

	if err := p.defineGlobal(r, fn, "function", nameTok.Span); err != nil {
		return nil, "", err
	}
	p.m.Funcs = append(p.m.Funcs, fn)
	key := r.name
	if r.numbered {
		key = "#" + strconv.FormatUint(uint64(r.id), 10)
	}
	return fn, key, nil
}

// parseArgumentList reads "(T attrs %name, ..., ...)" into fn.Params.
func (p *Parser) parseArgumentList(fn *ir.Function, isDefine bool) (bool, error) {
	if _, err := p.expect(token.LParen, "expected '(' in function argument list"); err != nil {
		return false, err
	}
	variadic := false
	nextID := uint32(0)
	for !p.at(token.RParen) {
		if p.eat(token.DotDotDot) {
			variadic = true
			break
		}
		tySpan := p.peek().Span
		ty, err := p.parseType(true)
		if err != nil {
			return false, err
		}
		if p.t.IsVoid(ty) {
			return false, p.failAt(diag.TypInvalidType, tySpan, "argument can not have void type")
		}
		if !p.t.IsFirstClass(ty) {
			return false, p.failAt(diag.TypInvalidType, tySpan, "invalid type for function argument")
		}
		attrs, err := p.parseAttrList(ir.PosParam, false)
		if err != nil {
			return false, err
		}
		arg := &ir.Argument{Typ: ty, Attrs: attrs.set, Parent: fn, Index: len(fn.Params)}
		switch tok := p.peek(); tok.Kind {
		case token.LocalVar:
			p.advance()
			arg.Name = tok.Text
		case token.LocalVarID:
			p.advance()
			n, err := p.slotID(tok)
			if err != nil {
				return false, err
			}
			if n != nextID {
				return false, p.failf(diag.DupNumbering, tok.Span, "argument expected to be numbered '%%%d'", nextID)
			}
			nextID++
		default:
			nextID++
		}
		fn.Params = append(fn.Params, arg)
		if !p.eat(token.Comma) {
			break
		}
	}
	_, err := p.expect(token.RParen, "expected ')' at end of argument list")
	return variadic, err
}

// ===== Тело функции =====

func (p *Parser) parseFunctionBody(fn *ir.Function, key string) error {
	if _, err := p.expect(token.LBrace, "expected '{' in function body"); err != nil {
		return err
	}
	sp := p.span.Child(trace.ScopeFunction, "function "+key)
	defer sp.End("")

	fs := newFuncState(fn, key)
	for _, a := range fn.Params {
		if a.Name == "" {
			fs.numbered = append(fs.numbered, a)
			continue
		}
		if _, dup := fs.named[a.Name]; dup {
			return p.failf(diag.DupLocal, p.lastSpan, "redefinition of argument '%%%s'", a.Name)
		}
		fs.named[a.Name] = a
	}
	p.fn = fs
	defer func() { p.fn = nil }()

	if p.at(token.RBrace) {
		return p.tokError(diag.SynMissingBody, "function body requires at least one basic block")
	}
	for !p.at(token.RBrace) {
		if p.at(token.EOF) {
			return p.tokError(diag.SynUnexpectedEOF, "found end of file when expecting more instructions")
		}
		if err := p.parseBasicBlock(fs); err != nil {
			return err
		}
	}
	p.advance()
	sp.WithExtra("blocks", strconv.Itoa(len(fn.Blocks)))
	return p.finishFunction(fs)
}

// parseBasicBlock reads an optional label and instructions up to and
// including the terminator.
func (p *Parser) parseBasicBlock(fs *funcState) error {
	labelTok := p.peek()
	r := fs.nextLocal()
	switch labelTok.Kind {
	case token.LabelStr:
		p.advance()
		r = localRef{name: labelTok.Text}
	case token.LabelID:
		p.advance()
		n, err := p.slotID(labelTok)
		if err != nil {
			return err
		}
		r = localRef{id: n, numbered: true}
	}
	bb := &ir.Block{Typ: p.t.Builtins().Label, Parent: fs.fn}
	if !r.numbered {
		bb.Name = r.name
	}
	if err := p.defineLocal(fs, r, bb, "label", labelTok.Span); err != nil {
		return err
	}
	fs.fn.Blocks = append(fs.fn.Blocks, bb)

	for {
		in, err := p.parseNamedInstruction(fs)
		if err != nil {
			return err
		}
		in.Parent = bb
		bb.Instrs = append(bb.Instrs, in)
		if in.Op.IsTerminator() {
			return nil
		}
	}
}

// parseNamedInstruction reads "[%x =] inst [, !md ...]".
func (p *Parser) parseNamedInstruction(fs *funcState) (*ir.Instr, error) {
	nameTok := p.peek()
	var r *localRef
	switch nameTok.Kind {
	case token.LocalVarID:
		p.advance()
		n, err := p.slotID(nameTok)
		if err != nil {
			return nil, err
		}
		r = &localRef{id: n, numbered: true}
		if _, err := p.expect(token.Equal, "expected '=' after instruction id"); err != nil {
			return nil, err
		}
	case token.LocalVar:
		p.advance()
		r = &localRef{name: nameTok.Text}
		if _, err := p.expect(token.Equal, "expected '=' after instruction name"); err != nil {
			return nil, err
		}
	}

	in, ateExtraComma, err := p.parseInstruction(fs)
	if err != nil {
		return nil, err
	}
	if err := p.parseInstructionMetadata(in, ateExtraComma); err != nil {
		return nil, err
	}
	p.track(in)

	if p.t.IsVoid(in.Typ) {
		if r != nil {
			return nil, p.failAt(diag.SynUnexpectedToken, nameTok.Span, "instructions returning void cannot have a name")
		}
		return in, nil
	}
	ref := fs.nextLocal()
	if r != nil {
		ref = *r
	}
	if !ref.numbered {
		in.Name = ref.name
	}
	if err := p.defineLocal(fs, ref, in, "instruction", nameTok.Span); err != nil {
		return nil, err
	}
	return in, nil
}

// track registers every pending placeholder operand of u so resolution
// can rewrite the slot.
func (p *Parser) track(u ir.Operander) {
	for i, v := range u.Operands() {
		if f, ok := v.(*ir.Forward); ok {
			f.AddUse(u, i)
		}
	}
}

// isLocal reports whether v belongs to a function body.
func isLocal(v ir.Value) bool {
	switch v := v.(type) {
	case *ir.Instr, *ir.Argument, *ir.Block:
		return true
	case *ir.Forward:
		return len(v.Ref) > 0 && v.Ref[0] == '%'
	}
	return false
}
