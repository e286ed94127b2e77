package asm

import (
	"strconv"

	"llasm/internal/diag"
	"llasm/internal/ir"
	"llasm/internal/source"
	"llasm/internal/token"
)

// globalFwd is a module-level value used before its definition.
type globalFwd struct {
	fwd *ir.Forward
	use source.Span
}

// globalTable owns every module-level name: variables, functions and
// aliases share one namespace.
type globalTable struct {
	defs     map[string]ir.Global
	numbered []ir.Global
	fwdNamed map[string]*globalFwd
	fwdSeq   []string
	fwdIDs   map[uint32]*globalFwd
}

func newGlobalTable() *globalTable {
	return &globalTable{
		defs:     make(map[string]ir.Global),
		fwdNamed: make(map[string]*globalFwd),
		fwdIDs:   make(map[uint32]*globalFwd),
	}
}

// globalRef names @name or @N.
type globalRef struct {
	name     string
	id       uint32
	numbered bool
}

func (r globalRef) String() string {
	if r.numbered {
		return "@" + strconv.FormatUint(uint64(r.id), 10)
	}
	return ir.QuoteName('@', r.name)
}

func (gt *globalTable) lookup(r globalRef) ir.Global {
	if r.numbered {
		if int(r.id) < len(gt.numbered) {
			return gt.numbered[r.id]
		}
		return nil
	}
	return gt.defs[r.name]
}

func (gt *globalTable) forward(r globalRef) *globalFwd {
	if r.numbered {
		return gt.fwdIDs[r.id]
	}
	return gt.fwdNamed[r.name]
}

// getGlobal returns the global r at type ty, creating a placeholder when it
// is not defined yet.
func (p *Parser) getGlobal(r globalRef, ty ir.TypeID, sp source.Span) (ir.Value, error) {
	if !p.t.IsPointer(ty) {
		return nil, p.failf(diag.TypNotPointer, sp, "global variable reference must have pointer type")
	}
	if g := p.glob.lookup(r); g != nil {
		if g.Type() != ty {
			return nil, p.failf(diag.TypForwardRef, sp, "'%s' defined with type '%s' but expected '%s'",
				r, p.t.String(g.Type()), p.t.String(ty))
		}
		return g, nil
	}
	if f := p.glob.forward(r); f != nil {
		if f.fwd.Typ != ty {
			return nil, p.failf(diag.TypForwardRef, sp, "'%s' used with type '%s' but previously used with type '%s'",
				r, p.t.String(ty), p.t.String(f.fwd.Typ))
		}
		return f.fwd, nil
	}
	f := &globalFwd{fwd: &ir.Forward{Typ: ty, Ref: r.String()}, use: sp}
	if r.numbered {
		p.glob.fwdIDs[r.id] = f
	} else {
		p.glob.fwdNamed[r.name] = f
		p.glob.fwdSeq = append(p.glob.fwdSeq, r.name)
	}
	return f.fwd, nil
}

// defineGlobal binds r to g and resolves any placeholder. kind is used in
// messages ("variable", "function", "alias").
func (p *Parser) defineGlobal(r globalRef, g ir.Global, kind string, sp source.Span) error {
	if r.numbered {
		if want := len(p.glob.numbered); int(r.id) != want {
			return p.failf(diag.DupNumbering, sp, "%s expected to be numbered '@%d'", kind, want)
		}
	} else if _, dup := p.glob.defs[r.name]; dup {
		if kind == "function" {
			return p.failf(diag.DupGlobal, sp, "invalid redefinition of function '%s'", r)
		}
		return p.failf(diag.DupGlobal, sp, "redefinition of global '%s'", r)
	}

	if f := p.glob.forward(r); f != nil {
		if f.fwd.Typ != g.Type() {
			msg := "forward reference and definition of global have different types"
			if kind == "function" {
				msg = "invalid forward reference to function '" + r.String() + "' with wrong type"
			}
			return p.failf(diag.TypForwardRef, sp, "%s: used as '%s', defined as '%s'",
				msg, p.t.String(f.fwd.Typ), p.t.String(g.Type()))
		}
		f.fwd.Resolve(g)
		if r.numbered {
			delete(p.glob.fwdIDs, r.id)
		} else {
			delete(p.glob.fwdNamed, r.name)
		}
	}

	if r.numbered {
		p.glob.numbered = append(p.glob.numbered, g)
	} else {
		p.glob.defs[r.name] = g
	}
	return nil
}

// checkGlobals is finalize step 5. Named references are reported before
// numbered ones.
func (p *Parser) checkGlobals() error {
	for _, name := range p.glob.fwdSeq {
		if f, ok := p.glob.fwdNamed[name]; ok {
			return p.failf(diag.UnrGlobal, f.use, "use of undefined value '%s'", ir.QuoteName('@', name))
		}
	}
	if len(p.glob.fwdIDs) > 0 {
		var lowest uint32
		first := true
		for id := range p.glob.fwdIDs {
			if first || id < lowest {
				lowest, first = id, false
			}
		}
		f := p.glob.fwdIDs[lowest]
		return p.failf(diag.UnrGlobal, f.use, "use of undefined value '@%d'", lowest)
	}
	return nil
}

var linkageKinds = map[token.Kind]ir.Linkage{
	token.KwPrivate:             ir.LinkagePrivate,
	token.KwLinkerPrivate:       ir.LinkageLinkerPrivate,
	token.KwLinkerPrivateWeak:   ir.LinkageLinkerPrivateWeak,
	token.KwInternal:            ir.LinkageInternal,
	token.KwWeak:                ir.LinkageWeak,
	token.KwWeakOdr:             ir.LinkageWeakODR,
	token.KwLinkonce:            ir.LinkageLinkonce,
	token.KwLinkonceOdr:         ir.LinkageLinkonceODR,
	token.KwLinkonceOdrAutoHide: ir.LinkageLinkonceODRAutoHide,
	token.KwAvailableExternally: ir.LinkageAvailableExternally,
	token.KwAppending:           ir.LinkageAppending,
	token.KwDllexport:           ir.LinkageDLLExport,
	token.KwCommon:              ir.LinkageCommon,
	token.KwDllimport:           ir.LinkageDLLImport,
	token.KwExternWeak:          ir.LinkageExternWeak,
	token.KwExternal:            ir.LinkageExternal,
}

// globalPrefixKinds may start an unnamed global without "@N =".
var globalPrefixKinds = []token.Kind{
	token.KwDefault, token.KwHidden, token.KwProtected, token.KwThreadLocal,
	token.KwAddrspace, token.KwUnnamedAddr, token.KwExternallyInitialized,
	token.KwGlobal, token.KwConstant,
}

func (p *Parser) parseOptionalLinkage() (ir.Linkage, bool) {
	if l, ok := linkageKinds[p.peek().Kind]; ok {
		p.advance()
		return l, true
	}
	return ir.LinkageExternal, false
}

func (p *Parser) parseOptionalVisibility() ir.Visibility {
	switch {
	case p.eat(token.KwDefault):
		return ir.VisibilityDefault
	case p.eat(token.KwHidden):
		return ir.VisibilityHidden
	case p.eat(token.KwProtected):
		return ir.VisibilityProtected
	}
	return ir.VisibilityDefault
}

// parseOptionalThreadLocal reads thread_local [(model)].
func (p *Parser) parseOptionalThreadLocal() (ir.TLSModel, error) {
	if !p.eat(token.KwThreadLocal) {
		return ir.TLSNone, nil
	}
	if !p.eat(token.LParen) {
		return ir.TLSGeneralDynamic, nil
	}
	var model ir.TLSModel
	switch {
	case p.eat(token.KwLocaldynamic):
		model = ir.TLSLocalDynamic
	case p.eat(token.KwInitialexec):
		model = ir.TLSInitialExec
	case p.eat(token.KwLocalexec):
		model = ir.TLSLocalExec
	default:
		return ir.TLSNone, p.tokError(diag.SynUnexpectedToken, "expected localdynamic, initialexec or localexec")
	}
	if _, err := p.expect(token.RParen, "expected ')' after thread local model"); err != nil {
		return ir.TLSNone, err
	}
	return model, nil
}

// parseNamedGlobal handles @name = ...
func (p *Parser) parseNamedGlobal() error {
	nameTok := p.advance()
	if _, err := p.expect(token.Equal, "expected '=' here"); err != nil {
		return err
	}
	return p.parseGlobalOrAlias(globalRef{name: nameTok.Text}, nameTok.Span)
}

// parseUnnamedGlobal handles "@N = ..." as well as a bare unnamed global.
func (p *Parser) parseUnnamedGlobal() error {
	sp := p.peek().Span
	want := u32(len(p.glob.numbered))
	if p.at(token.GlobalID) {
		idTok := p.advance()
		n, err := p.slotID(idTok)
		if err != nil {
			return err
		}
		if n != want {
			return p.failf(diag.DupNumbering, idTok.Span, "variable expected to be numbered '@%d'", want)
		}
		if _, err := p.expect(token.Equal, "expected '=' after name"); err != nil {
			return err
		}
	}
	return p.parseGlobalOrAlias(globalRef{id: want, numbered: true}, sp)
}

func (p *Parser) parseGlobalOrAlias(r globalRef, sp source.Span) error {
	linkage, hasLinkage := p.parseOptionalLinkage()
	vis := p.parseOptionalVisibility()
	if !hasLinkage && p.at(token.KwAlias) {
		return p.parseAlias(r, sp, vis)
	}
	return p.parseGlobal(r, sp, linkage, hasLinkage, vis)
}

// parseGlobal reads the rest of a global variable definition.
func (p *Parser) parseGlobal(r globalRef, sp source.Span, linkage ir.Linkage, hasLinkage bool, vis ir.Visibility) error {
	tls, err := p.parseOptionalThreadLocal()
	if err != nil {
		return err
	}
	as, err := p.parseAddrSpace()
	if err != nil {
		return err
	}
	g := &ir.GlobalVar{
		Name:       r.name,
		Numbered:   r.numbered,
		Linkage:    linkage,
		Visibility: vis,
		TLS:        tls,
		AddrSpace:  as,
	}
	g.UnnamedAddr = p.eat(token.KwUnnamedAddr)
	g.ExternallyInitialized = p.eat(token.KwExternallyInitialized)
	switch {
	case p.eat(token.KwConstant):
		g.Constant = true
	case p.eat(token.KwGlobal):
	default:
		return p.tokError(diag.SynUnexpectedToken, "expected 'global' or 'constant'")
	}

	tySpan := p.peek().Span
	ty, err := p.parseType(false)
	if err != nil {
		return err
	}
	if p.t.Kind(ty) == ir.KindFunc || p.t.IsLabel(ty) {
		return p.failAt(diag.TypInvalidType, tySpan, "invalid type for global variable")
	}
	g.ValueType = ty
	g.Typ = p.t.Pointer(ty, as)

	// Без инициализатора только внешние глобалы.
	if !hasLinkage || !linkage.IsExternalLike() {
		init, err := p.parseConstantValue(ty)
		if err != nil {
			return err
		}
		g.Init = init
	}

	for p.eat(token.Comma) {
		switch p.peek().Kind {
		case token.KwSection:
			p.advance()
			if g.Section, err = p.parseStringConstant(); err != nil {
				return err
			}
		case token.KwAlign:
			if g.Align, err = p.parseOptionalAlignment(); err != nil {
				return err
			}
		default:
			return p.tokError(diag.SynUnexpectedToken, "unknown global variable property!")
		}
	}

	p.track(g)
	if err := p.defineGlobal(r, g, "variable", sp); err != nil {
		return err
	}
	p.m.Vars = append(p.m.Vars, g)
	return nil
}

// parseAlias reads "alias [linkage] T aliasee".
func (p *Parser) parseAlias(r globalRef, sp source.Span, vis ir.Visibility) error {
	p.advance() // alias
	linkTok := p.peek()
	linkage, _ := p.parseOptionalLinkage()
	if !linkage.ValidForAlias() {
		return p.failAt(diag.SynBadLinkage, linkTok.Span, "invalid linkage type for alias")
	}
	valSpan := p.peek().Span
	aliasee, err := p.parseGlobalTypeAndValue()
	if err != nil {
		return err
	}
	if !p.t.IsPointer(aliasee.Type()) {
		return p.failAt(diag.TypNotPointer, valSpan, "alias must have pointer type")
	}
	switch c := aliasee.(type) {
	case ir.Global, *ir.Forward:
	case *ir.ConstExpr:
		if c.Op != ir.OpBitCast && c.Op != ir.OpGetElementPtr {
			return p.failAt(diag.TypInvalidConstant, valSpan, "invalid aliasee")
		}
	default:
		return p.failAt(diag.TypInvalidConstant, valSpan, "invalid aliasee")
	}
	a := &ir.Alias{
		Name:       r.name,
		Numbered:   r.numbered,
		Typ:        aliasee.Type(),
		Linkage:    linkage,
		Visibility: vis,
		Aliasee:    aliasee,
	}
	p.track(a)
	if err := p.defineGlobal(r, a, "alias", sp); err != nil {
		return err
	}
	p.m.Aliases = append(p.m.Aliases, a)
	return nil
}

// parseModuleAsm handles module asm "...".
func (p *Parser) parseModuleAsm() error {
	p.advance()
	if _, err := p.expect(token.KwAsm, "expected 'module asm'"); err != nil {
		return err
	}
	s, err := p.parseStringConstant()
	if err != nil {
		return err
	}
	if p.m.ModuleAsm == "" {
		p.m.ModuleAsm = s
	} else {
		p.m.ModuleAsm += "\n" + s
	}
	return nil
}

// parseTargetDefinition handles target triple/datalayout = "...".
func (p *Parser) parseTargetDefinition() error {
	p.advance()
	var dst *string
	msg := "expected '=' after target triple"
	switch {
	case p.eat(token.KwTriple):
		dst = &p.m.Triple
	case p.eat(token.KwDatalayout):
		dst = &p.m.DataLayout
		msg = "expected '=' after target datalayout"
	default:
		return p.tokError(diag.SynUnexpectedToken, "unknown target property")
	}
	if _, err := p.expect(token.Equal, msg); err != nil {
		return err
	}
	s, err := p.parseStringConstant()
	if err != nil {
		return err
	}
	*dst = s
	return nil
}

// parseDepLibs handles deplibs = [ "a", "b" ].
func (p *Parser) parseDepLibs() error {
	p.advance()
	if _, err := p.expect(token.Equal, "expected '=' after deplibs"); err != nil {
		return err
	}
	if _, err := p.expect(token.LSquare, "expected '[' after deplibs ="); err != nil {
		return err
	}
	if p.eat(token.RSquare) {
		return nil
	}
	for {
		s, err := p.parseStringConstant()
		if err != nil {
			return err
		}
		p.m.Deplibs = append(p.m.Deplibs, s)
		if !p.eat(token.Comma) {
			break
		}
	}
	_, err := p.expect(token.RSquare, "expected ']' at end of list")
	return err
}
