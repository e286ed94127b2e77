package asm

import (
	"strconv"

	"llasm/internal/diag"
	"llasm/internal/ir"
	"llasm/internal/source"
	"llasm/internal/token"
)

// pendingBlockAddr is a blockaddress naming a function whose body has not
// been parsed yet.
type pendingBlockAddr struct {
	ba    *ir.BlockAddress
	fn    globalRef
	label localRef
	span  source.Span
}

// blockAddrTable keeps deferred blockaddress constants keyed by the
// function they point into; a body drains its own entry when it closes.
type blockAddrTable struct {
	byFunc map[string][]pendingBlockAddr
	order  []string
	// done remembers finished bodies so later references resolve at once.
	done map[string]*funcState
}

func newBlockAddrTable() *blockAddrTable {
	return &blockAddrTable{
		byFunc: make(map[string][]pendingBlockAddr),
		done:   make(map[string]*funcState),
	}
}

func fnKey(r globalRef) string {
	if r.numbered {
		return "#" + strconv.FormatUint(uint64(r.id), 10)
	}
	return r.name
}

// parseBlockAddress reads blockaddress(@f, %bb) after the keyword.
func (p *Parser) parseBlockAddress(start source.Span) (ir.Value, error) {
	if _, err := p.expect(token.LParen, "expected '(' in block address expression"); err != nil {
		return nil, err
	}
	fnTok := p.peek()
	var fr globalRef
	switch fnTok.Kind {
	case token.GlobalVar:
		fr = globalRef{name: fnTok.Text}
	case token.GlobalID:
		n, err := p.slotID(fnTok)
		if err != nil {
			return nil, err
		}
		fr = globalRef{id: n, numbered: true}
	default:
		return nil, p.tokError(diag.SynUnexpectedToken, "expected function name in blockaddress")
	}
	p.advance()
	if _, err := p.expect(token.Comma, "expected comma in block address expression"); err != nil {
		return nil, err
	}
	lblTok := p.peek()
	var lr localRef
	switch lblTok.Kind {
	case token.LocalVar:
		lr = localRef{name: lblTok.Text}
	case token.LocalVarID:
		n, err := p.slotID(lblTok)
		if err != nil {
			return nil, err
		}
		lr = localRef{id: n, numbered: true}
	default:
		return nil, p.tokError(diag.SynUnexpectedToken, "expected basic block name in blockaddress")
	}
	p.advance()
	closeTok, err := p.expect(token.RParen, "expected ')' in block address expression")
	if err != nil {
		return nil, err
	}
	sp := start.Cover(closeTok.Span)

	ba := &ir.BlockAddress{Typ: p.t.Pointer(p.t.Builtins().I8, 0)}
	key := fnKey(fr)
	switch {
	case p.fn != nil && p.fn.key == key:
		// внутри собственного тела: метка может быть ещё впереди
		bb, err := p.getLocal(p.fn, lr, p.t.Builtins().Label, lblTok.Span)
		if err != nil {
			return nil, err
		}
		ba.Ops = [2]ir.Value{p.fn.fn, bb}
		p.track(ba)
	case p.baddr.done[key] != nil:
		if err := p.bindBlockAddress(p.baddr.done[key], pendingBlockAddr{ba: ba, fn: fr, label: lr, span: sp}); err != nil {
			return nil, err
		}
	default:
		if _, seen := p.baddr.byFunc[key]; !seen {
			p.baddr.order = append(p.baddr.order, key)
		}
		p.baddr.byFunc[key] = append(p.baddr.byFunc[key], pendingBlockAddr{ba: ba, fn: fr, label: lr, span: sp})
	}
	return ba, nil
}

// bindBlockAddress fills pb from the finished local table fs.
func (p *Parser) bindBlockAddress(fs *funcState, pb pendingBlockAddr) error {
	bb, ok := fs.lookup(pb.label).(*ir.Block)
	if !ok {
		return p.failf(diag.UnrBlockAddress, pb.span, "referenced value '%s' is not a basic block in '%s'", pb.label, pb.fn)
	}
	pb.ba.Ops = [2]ir.Value{fs.fn, bb}
	return nil
}

// resolveBlockAddresses runs when fs's body closes.
func (p *Parser) resolveBlockAddresses(fs *funcState) error {
	for _, pb := range p.baddr.byFunc[fs.key] {
		if err := p.bindBlockAddress(fs, pb); err != nil {
			return err
		}
	}
	delete(p.baddr.byFunc, fs.key)
	p.baddr.done[fs.key] = fs
	return nil
}

// checkBlockAddresses is finalize step 3: whatever is still deferred names
// a function that never got a body.
func (p *Parser) checkBlockAddresses() error {
	for _, key := range p.baddr.order {
		if pending := p.baddr.byFunc[key]; len(pending) > 0 {
			pb := pending[0]
			return p.failf(diag.UnrBlockAddress, pb.span, "blockaddress refers to '%s', which is not a defined function", pb.fn)
		}
	}
	return nil
}
