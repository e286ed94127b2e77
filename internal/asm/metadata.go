package asm

import (
	"slices"

	"llasm/internal/diag"
	"llasm/internal/ir"
	"llasm/internal/source"
	"llasm/internal/token"
)

// mdTable maps numbered slots (!N) to arena nodes. A slot mentioned before
// its definition gets a temporary node which the definition fills in place,
// so references taken earlier (cycles included) stay valid.
type mdTable struct {
	slots   map[uint32]ir.MDID
	uses    map[uint32]source.Span
	defined map[uint32]bool
	lastDef int64
	// pending are instruction attachments naming slots that were never
	// mentioned at the time; they are bound at finalize.
	pending []pendingAttachment
}

type pendingAttachment struct {
	instr *ir.Instr
	kind  string
	slot  uint32
	span  source.Span
}

func newMDTable() *mdTable {
	return &mdTable{
		slots:   make(map[uint32]ir.MDID),
		uses:    make(map[uint32]source.Span),
		defined: make(map[uint32]bool),
		lastDef: -1,
	}
}

// mdRef returns the node for slot n, allocating a temporary on first use.
func (p *Parser) mdRef(n uint32, sp source.Span) ir.MDID {
	if id, ok := p.md.slots[n]; ok {
		return id
	}
	id := p.m.MD.NewTemporary()
	p.md.slots[n] = id
	p.md.uses[n] = sp
	return id
}

// parseMDSlot reads "!" N after the '!' token was seen.
func (p *Parser) parseMDSlot() (uint32, source.Span, error) {
	bang := p.advance()
	n, sp, err := p.parseUInt32()
	if err != nil {
		return 0, sp, err
	}
	return n, bang.Span.Cover(sp), nil
}

// parseStandaloneMetadata handles "!N = [metadata] !{...}".
func (p *Parser) parseStandaloneMetadata() error {
	n, sp, err := p.parseMDSlot()
	if err != nil {
		return err
	}
	if _, err := p.expect(token.Equal, "expected '=' here"); err != nil {
		return err
	}
	if p.at(token.Type) && p.peek().Text == "metadata" {
		p.advance()
	}
	if _, err := p.expect(token.Exclaim, "Expected '!' here"); err != nil {
		return err
	}
	ops, local, err := p.parseMDNodeBody()
	if err != nil {
		return err
	}
	if local {
		return p.failAt(diag.SynBadConstant, sp, "function-local metadata is not allowed at module level")
	}

	if p.md.defined[n] {
		return p.failf(diag.DupMetadata, sp, "Metadata id is already used (!%d)", n)
	}
	if int64(n) <= p.md.lastDef {
		return p.failf(diag.DupNumbering, sp, "metadata '!%d' defined out of order, expected a number above !%d", n, p.md.lastDef)
	}
	var id ir.MDID
	if fwd, ok := p.md.slots[n]; ok {
		p.m.MD.Fill(fwd, ops)
		id = fwd
	} else {
		id = p.m.MD.New(ops)
		p.md.slots[n] = id
	}
	p.trackMD(p.m.MD.Node(id))
	p.md.defined[n] = true
	p.md.lastDef = int64(n)
	p.m.MDSlots = append(p.m.MDSlots, ir.MDSlot{Slot: n, Node: id})
	return nil
}

// parseNamedMetadata handles "!name = !{!0, !1}".
func (p *Parser) parseNamedMetadata() error {
	nameTok := p.advance()
	if _, err := p.expect(token.Equal, "expected '=' here"); err != nil {
		return err
	}
	if _, err := p.expect(token.Exclaim, "Expected '!' here"); err != nil {
		return err
	}
	if _, err := p.expect(token.LBrace, "Expected '{' here"); err != nil {
		return err
	}
	var nodes []ir.MDID
	if !p.at(token.RBrace) {
		for {
			if !p.at(token.Exclaim) {
				return p.tokError(diag.SynUnexpectedToken, "Expected '!' here")
			}
			n, sp, err := p.parseMDSlot()
			if err != nil {
				return err
			}
			nodes = append(nodes, p.mdRef(n, sp))
			if !p.eat(token.Comma) {
				break
			}
		}
	}
	if _, err := p.expect(token.RBrace, "expected end of metadata node"); err != nil {
		return err
	}
	for i := range p.m.NamedMD {
		if p.m.NamedMD[i].Name == nameTok.Text {
			p.m.NamedMD[i].Nodes = append(p.m.NamedMD[i].Nodes, nodes...)
			return nil
		}
	}
	p.m.NamedMD = append(p.m.NamedMD, ir.NamedMD{Name: nameTok.Text, Nodes: nodes})
	return nil
}

// parseMDNodeBody reads "{ elements }" after '!'. local reports whether an
// element refers to a function-local value.
func (p *Parser) parseMDNodeBody() (ops []ir.MDOperand, local bool, err error) {
	if _, err := p.expect(token.LBrace, "Expected '{' here"); err != nil {
		return nil, false, err
	}
	ops = []ir.MDOperand{}
	if p.eat(token.RBrace) {
		return ops, false, nil
	}
	for {
		if p.eat(token.KwNull) {
			ops = append(ops, ir.MDOperand{Kind: ir.MDOpNull})
		} else {
			sp := p.peek().Span
			ty, err := p.parseType(false)
			if err != nil {
				return nil, false, err
			}
			if ty == p.t.Builtins().Metadata {
				op, err := p.parseMetadataOperand()
				if err != nil {
					return nil, false, err
				}
				ops = append(ops, op)
			} else {
				v, err := p.parseValue(ty, p.fn, sp)
				if err != nil {
					return nil, false, err
				}
				if isLocal(v) {
					local = true
				}
				ops = append(ops, ir.MDOperand{Kind: ir.MDOpValue, Value: v})
			}
		}
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, err := p.expect(token.RBrace, "expected end of metadata node"); err != nil {
		return nil, false, err
	}
	return ops, local, nil
}

// parseMetadataOperand reads what follows the type "metadata": !N, !"str"
// or an inline node !{...}.
func (p *Parser) parseMetadataOperand() (ir.MDOperand, error) {
	if !p.at(token.Exclaim) {
		return ir.MDOperand{}, p.tokError(diag.SynExpectValue, "expected metadata operand")
	}
	bang := p.advance()
	switch tok := p.peek(); tok.Kind {
	case token.APSInt:
		n, sp, err := p.parseUInt32()
		if err != nil {
			return ir.MDOperand{}, err
		}
		return ir.MDOperand{Kind: ir.MDOpNode, Node: p.mdRef(n, bang.Span.Cover(sp))}, nil
	case token.StringConstant:
		p.advance()
		return ir.MDOperand{Kind: ir.MDOpString, Str: tok.Text}, nil
	case token.LBrace:
		ops, local, err := p.parseMDNodeBody()
		if err != nil {
			return ir.MDOperand{}, err
		}
		id := p.m.MD.New(ops)
		node := p.m.MD.Node(id)
		node.FunctionLocal = local
		p.trackMD(node)
		return ir.MDOperand{Kind: ir.MDOpNode, Node: id}, nil
	}
	return ir.MDOperand{}, p.tokError(diag.SynExpectValue, "expected metadata operand")
}

// parseInstructionMetadata reads ", !kind !N" attachments. The leading
// comma is already consumed when ateExtraComma is set.
func (p *Parser) parseInstructionMetadata(in *ir.Instr, ateExtraComma bool) error {
	if !ateExtraComma {
		if !p.eat(token.Comma) {
			return nil
		}
	}
	for {
		kindTok, err := p.expect(token.MetadataVar, "expected metadata after comma")
		if err != nil {
			return err
		}
		p.m.MDKindID(kindTok.Text)
		if !p.at(token.Exclaim) {
			return p.tokError(diag.SynExpectValue, "expected '!' here")
		}
		bang := p.advance()
		var node ir.MDID
		switch p.peek().Kind {
		case token.LBrace:
			ops, local, err := p.parseMDNodeBody()
			if err != nil {
				return err
			}
			node = p.m.MD.New(ops)
			p.m.MD.Node(node).FunctionLocal = local
			p.trackMD(p.m.MD.Node(node))
		default:
			n, sp, err := p.parseUInt32()
			if err != nil {
				return err
			}
			sp = bang.Span.Cover(sp)
			id, known := p.md.slots[n]
			if !known {
				// место в списке занимаем сразу, чтобы сохранить порядок
				in.SetAttachment(kindTok.Text, ir.NoMD)
				p.md.pending = append(p.md.pending, pendingAttachment{instr: in, kind: kindTok.Text, slot: n, span: sp})
				if !p.eat(token.Comma) {
					return nil
				}
				continue
			}
			node = id
		}
		in.SetAttachment(kindTok.Text, node)
		if !p.eat(token.Comma) {
			return nil
		}
	}
}

// bindPendingAttachments is finalize step 1.
func (p *Parser) bindPendingAttachments() error {
	var missing *pendingAttachment
	for i := range p.md.pending {
		pa := &p.md.pending[i]
		if !p.md.defined[pa.slot] {
			if missing == nil || pa.slot < missing.slot {
				missing = pa
			}
		}
	}
	if missing != nil {
		return p.failf(diag.UnrMetadata, missing.span, "use of undefined metadata '!%d'", missing.slot)
	}
	for _, pa := range p.md.pending {
		pa.instr.SetAttachment(pa.kind, p.md.slots[pa.slot])
	}
	p.md.pending = nil
	return nil
}

// checkMetadata is finalize step 6: every slot must be defined; then nodes
// on reference cycles are marked resolved.
func (p *Parser) checkMetadata() error {
	var missing []uint32
	for n := range p.md.slots {
		if !p.md.defined[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		n := missing[0]
		return p.failf(diag.UnrMetadata, p.md.uses[n], "use of undefined metadata '!%d'", n)
	}
	p.m.MD.ResolveCycles()
	return nil
}

// trackMD records placeholder value operands of a node.
func (p *Parser) trackMD(n *ir.MDNode) {
	for i, op := range n.Ops {
		if f, ok := op.Value.(*ir.Forward); ok && op.Kind == ir.MDOpValue {
			f.AddUse(n, i)
		}
	}
}
