package asm

import (
	"cmp"
	"slices"

	"llasm/internal/diag"
	"llasm/internal/ir"
	"llasm/internal/source"
	"llasm/internal/token"
)

var attrKinds = map[token.Kind]ir.AttrKind{
	token.KwZeroext:         ir.AttrZExt,
	token.KwSignext:         ir.AttrSExt,
	token.KwInreg:           ir.AttrInReg,
	token.KwByval:           ir.AttrByVal,
	token.KwSret:            ir.AttrSRet,
	token.KwNest:            ir.AttrNest,
	token.KwNoalias:         ir.AttrNoAlias,
	token.KwNocapture:       ir.AttrNoCapture,
	token.KwReturned:        ir.AttrReturned,
	token.KwReadnone:        ir.AttrReadNone,
	token.KwReadonly:        ir.AttrReadOnly,
	token.KwAlwaysinline:    ir.AttrAlwaysInline,
	token.KwBuiltin:         ir.AttrBuiltin,
	token.KwCold:            ir.AttrCold,
	token.KwInlinehint:      ir.AttrInlineHint,
	token.KwMinsize:         ir.AttrMinSize,
	token.KwNaked:           ir.AttrNaked,
	token.KwNobuiltin:       ir.AttrNoBuiltin,
	token.KwNoduplicate:     ir.AttrNoDuplicate,
	token.KwNoimplicitfloat: ir.AttrNoImplicitFloat,
	token.KwNoinline:        ir.AttrNoInline,
	token.KwNonlazybind:     ir.AttrNonLazyBind,
	token.KwNoredzone:       ir.AttrNoRedZone,
	token.KwNoreturn:        ir.AttrNoReturn,
	token.KwNounwind:        ir.AttrNoUnwind,
	token.KwOptsize:         ir.AttrOptSize,
	token.KwReturnsTwice:    ir.AttrReturnsTwice,
	token.KwSsp:             ir.AttrSSP,
	token.KwSspreq:          ir.AttrSSPReq,
	token.KwSspstrong:       ir.AttrSSPStrong,
	token.KwSanitizeAddress: ir.AttrSanitizeAddress,
	token.KwSanitizeThread:  ir.AttrSanitizeThread,
	token.KwSanitizeMemory:  ir.AttrSanitizeMemory,
	token.KwUwtable:         ir.AttrUWTable,
}

// paramAttrTokens start a parameter attribute list.
var paramAttrTokens = []token.Kind{
	token.KwZeroext, token.KwSignext, token.KwInreg, token.KwByval, token.KwSret,
	token.KwNest, token.KwNoalias, token.KwNocapture, token.KwReturned,
	token.KwReadnone, token.KwReadonly, token.KwAlign,
}

// attrList is the result of scanning one attribute list.
type attrList struct {
	set    ir.AttrSet
	groups []uint32
	refs   []source.Span // спаны #N, параллельно groups
	// builtin is where "builtin" was written, used to reject it on
	// function headers.
	builtin source.Span
}

var positionNames = map[ir.Position]string{
	ir.PosParam:    "parameter",
	ir.PosReturn:   "return value",
	ir.PosFunction: "function",
}

// parseAttrList scans attributes valid at pos. Misplaced attributes are
// all reported before the list fails, so one pass shows every misuse.
// inGroup selects the "attributes #N = { }" spelling.
func (p *Parser) parseAttrList(pos ir.Position, inGroup bool) (attrList, error) {
	var out attrList
	var firstErr error
	misuse := func(code diag.Code, sp source.Span, format string, args ...any) {
		err := p.failf(code, sp, format, args...)
		if firstErr == nil {
			firstErr = err
		}
	}

	for {
		tok := p.peek()
		if k, ok := attrKinds[tok.Kind]; ok {
			p.advance()
			if !k.ValidAt(pos) {
				misuse(diag.AtrMisuse, tok.Span, "'%s' is not valid on a %s", k, positionNames[pos])
				continue
			}
			if k == ir.AttrBuiltin {
				out.builtin = tok.Span
			}
			out.set = out.set.With(k)
			continue
		}
		switch tok.Kind {
		case token.AttrGrpID:
			if pos != ir.PosFunction {
				return out, firstErr
			}
			p.advance()
			id, err := p.slotID(tok)
			if err != nil {
				return out, err
			}
			if inGroup {
				misuse(diag.AtrNestedGroup, tok.Span, "cannot have an attribute group reference in an attribute group")
				continue
			}
			out.groups = append(out.groups, id)
			out.refs = append(out.refs, tok.Span)
		case token.StringConstant:
			if pos != ir.PosFunction {
				return out, firstErr
			}
			p.advance()
			val := ""
			if p.eat(token.Equal) {
				v, err := p.parseStringConstant()
				if err != nil {
					return out, err
				}
				val = v
			}
			out.set = out.set.SetString(tok.Text, val)
		case token.KwAlign:
			if pos == ir.PosReturn {
				return out, firstErr
			}
			p.advance()
			if inGroup {
				if _, err := p.expect(token.Equal, "expected '=' here"); err != nil {
					return out, err
				}
			}
			a, err := p.parseAlignValue()
			if err != nil {
				return out, err
			}
			if inGroup && p.opts.AlignAttr == AlignReject {
				misuse(diag.AtrAlignment, tok.Span, "'align' in an attribute group is not allowed; use the function's align")
				continue
			}
			out.set.Align = a
		case token.KwAlignstack:
			if pos != ir.PosFunction {
				return out, firstErr
			}
			p.advance()
			var a uint32
			var err error
			if inGroup {
				if _, err := p.expect(token.Equal, "expected '=' here"); err != nil {
					return out, err
				}
				a, err = p.parseAlignValue()
			} else {
				if _, err := p.expect(token.LParen, "expected '('"); err != nil {
					return out, err
				}
				if a, err = p.parseAlignValue(); err == nil {
					_, err = p.expect(token.RParen, "expected ')'")
				}
			}
			if err != nil {
				return out, err
			}
			out.set.StackAlign = a
		default:
			return out, firstErr
		}
	}
}

// attrGroupRef is one "#N" use waiting for finalize.
type attrGroupRef struct {
	id    uint32
	span  source.Span
	fn    *ir.Function
	instr *ir.Instr
}

// attrGroupTable holds "attributes #N" definitions and their uses. Uses
// are merged into the referencing entity only at finalize, so a group may
// be defined after it is used.
type attrGroupTable struct {
	defs map[uint32]ir.AttrSet
	refs []attrGroupRef
}

func newAttrGroupTable() *attrGroupTable {
	return &attrGroupTable{defs: make(map[uint32]ir.AttrSet)}
}

func (gt *attrGroupTable) addRefs(l attrList, fn *ir.Function, in *ir.Instr) {
	for i, id := range l.groups {
		gt.refs = append(gt.refs, attrGroupRef{id: id, span: l.refs[i], fn: fn, instr: in})
	}
}

// parseAttributeGroup handles attributes #N = { ... }.
func (p *Parser) parseAttributeGroup() error {
	p.advance()
	idTok, err := p.expect(token.AttrGrpID, "expected attribute group id")
	if err != nil {
		return err
	}
	id, err := p.slotID(idTok)
	if err != nil {
		return err
	}
	if _, err := p.expect(token.Equal, "expected '=' here"); err != nil {
		return err
	}
	if _, err := p.expect(token.LBrace, "expected '{' here"); err != nil {
		return err
	}
	l, err := p.parseAttrList(ir.PosFunction, true)
	if err != nil {
		return err
	}
	closeTok, err := p.expect(token.RBrace, "expected end of attribute group")
	if err != nil {
		return err
	}
	if l.set.Empty() {
		return p.failf(diag.AtrEmptyGroup, idTok.Span.Cover(closeTok.Span), "attribute group #%d has no attributes", id)
	}
	if _, dup := p.groups.defs[id]; dup {
		return p.failf(diag.DupAttrGroup, idTok.Span, "redefinition of attribute group #%d", id)
	}
	p.groups.defs[id] = l.set
	p.m.AttrGroups = append(p.m.AttrGroups, ir.AttrGroup{ID: id, Attrs: l.set})
	return nil
}

// mergeAttrGroups is finalize step 2. Group attributes are folded into the
// function or call that named them; a group alignment becomes the
// function's align unless the header gave one.
func (p *Parser) mergeAttrGroups() error {
	var missing *attrGroupRef
	for i := range p.groups.refs {
		r := &p.groups.refs[i]
		if _, ok := p.groups.defs[r.id]; !ok && (missing == nil || r.id < missing.id) {
			missing = r
		}
	}
	if missing != nil {
		return p.failf(diag.UnrAttrGroup, missing.span, "use of undefined attribute group '#%d'", missing.id)
	}
	for _, r := range p.groups.refs {
		set := p.groups.defs[r.id]
		switch {
		case r.fn != nil:
			r.fn.FnAttrs = r.fn.FnAttrs.Union(set)
			if r.fn.FnAttrs.Align != 0 {
				if r.fn.Align == 0 {
					r.fn.Align = r.fn.FnAttrs.Align
				}
				r.fn.FnAttrs.Align = 0
			}
		case r.instr != nil:
			r.instr.FnAttrs = r.instr.FnAttrs.Union(set)
		}
	}
	slices.SortFunc(p.m.AttrGroups, func(a, b ir.AttrGroup) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return nil
}
