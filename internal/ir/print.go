package ir

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Printer renders a module back to textual IR. Unnamed values are numbered
// the same way the reader expects them, so the output re-parses.
type Printer struct {
	m      *Module
	buf    strings.Builder
	names  map[Value]string
	mdSlot map[MDID]uint32
}

// Print returns the textual form of m.
func Print(m *Module) string {
	p := NewPrinter(m)
	p.module()
	return p.buf.String()
}

// Fprint writes the textual form of m to w.
func Fprint(w io.Writer, m *Module) error {
	_, err := io.WriteString(w, Print(m))
	return err
}

// NewPrinter prepares slot numbering for m.
func NewPrinter(m *Module) *Printer {
	p := &Printer{
		m:      m,
		names:  make(map[Value]string),
		mdSlot: make(map[MDID]uint32, len(m.MDSlots)),
	}
	for _, s := range m.MDSlots {
		p.mdSlot[s.Node] = s.Slot
	}
	p.numberGlobals()
	for _, f := range m.Funcs {
		p.numberLocals(f)
	}
	return p
}

func (p *Printer) numberGlobals() {
	next := 0
	name := func(v Value, named bool, n string) {
		if named {
			p.names[v] = QuoteName('@', n)
			return
		}
		p.names[v] = "@" + strconv.Itoa(next)
		next++
	}
	for _, g := range p.m.Vars {
		name(g, !g.Numbered, g.Name)
	}
	for _, a := range p.m.Aliases {
		name(a, !a.Numbered, a.Name)
	}
	for _, f := range p.m.Funcs {
		name(f, !f.Numbered, f.Name)
	}
}

func (p *Printer) numberLocals(f *Function) {
	next := 0
	local := func(v Value, n string) {
		if n != "" {
			p.names[v] = QuoteName('%', n)
			return
		}
		p.names[v] = "%" + strconv.Itoa(next)
		next++
	}
	for _, a := range f.Params {
		local(a, a.Name)
	}
	for _, b := range f.Blocks {
		local(b, b.Name)
		for _, in := range b.Instrs {
			if p.m.Types.IsVoid(in.Typ) {
				continue
			}
			local(in, in.Name)
		}
	}
}

func (p *Printer) ty(id TypeID) string {
	return p.m.Types.String(id)
}

func (p *Printer) module() {
	m := p.m
	if m.DataLayout != "" {
		fmt.Fprintf(&p.buf, "target datalayout = \"%s\"\n", EscapeString(m.DataLayout))
	}
	if m.Triple != "" {
		fmt.Fprintf(&p.buf, "target triple = \"%s\"\n", EscapeString(m.Triple))
	}
	if m.ModuleAsm != "" {
		for _, line := range strings.Split(m.ModuleAsm, "\n") {
			fmt.Fprintf(&p.buf, "module asm \"%s\"\n", EscapeString(line))
		}
	}
	if len(m.Deplibs) > 0 {
		quoted := make([]string, len(m.Deplibs))
		for i, d := range m.Deplibs {
			quoted[i] = `"` + EscapeString(d) + `"`
		}
		fmt.Fprintf(&p.buf, "deplibs = [ %s ]\n", strings.Join(quoted, ", "))
	}
	p.section()

	for _, td := range m.TypeDefs {
		name := "%" + td.Name
		if !td.Numbered {
			name = QuoteName('%', td.Name)
		}
		body := m.Types.String(td.Type)
		if info := m.Types.Struct(td.Type); info != nil && !info.Literal {
			body = m.Types.BodyString(td.Type)
		}
		fmt.Fprintf(&p.buf, "%s = type %s\n", name, body)
	}
	p.section()

	for _, g := range m.Vars {
		p.globalVar(g)
	}
	for _, a := range m.Aliases {
		p.alias(a)
	}
	p.section()

	for i, f := range m.Funcs {
		if i > 0 && !f.IsDeclaration() {
			p.buf.WriteByte('\n')
		}
		p.function(f)
	}
	p.section()

	for _, g := range m.AttrGroups {
		fmt.Fprintf(&p.buf, "attributes #%d = { %s }\n", g.ID, g.Attrs.Format(true))
	}
	p.section()

	for _, n := range m.NamedMD {
		refs := make([]string, len(n.Nodes))
		for i, id := range n.Nodes {
			refs[i] = p.mdRef(id)
		}
		fmt.Fprintf(&p.buf, "%s = !{%s}\n", mdName(n.Name), strings.Join(refs, ", "))
	}
	for _, s := range m.MDSlots {
		node := m.MD.Node(s.Node)
		fmt.Fprintf(&p.buf, "!%d = metadata %s\n", s.Slot, p.mdBody(node))
	}
}

// section puts a blank line between non-empty groups.
func (p *Printer) section() {
	s := p.buf.String()
	if len(s) > 0 && !strings.HasSuffix(s, "\n\n") {
		p.buf.WriteByte('\n')
	}
}

func (p *Printer) globalVar(g *GlobalVar) {
	var parts []string
	if g.Init == nil || g.Linkage != LinkageExternal {
		parts = append(parts, g.Linkage.String())
	}
	if g.Visibility != VisibilityDefault {
		parts = append(parts, g.Visibility.String())
	}
	if g.TLS != TLSNone {
		parts = append(parts, g.TLS.String())
	}
	if g.AddrSpace != 0 {
		parts = append(parts, fmt.Sprintf("addrspace(%d)", g.AddrSpace))
	}
	if g.UnnamedAddr {
		parts = append(parts, "unnamed_addr")
	}
	if g.ExternallyInitialized {
		parts = append(parts, "externally_initialized")
	}
	if g.Constant {
		parts = append(parts, "constant")
	} else {
		parts = append(parts, "global")
	}
	parts = append(parts, p.ty(g.ValueType))
	if g.Init != nil {
		parts = append(parts, p.value(g.Init))
	}
	line := p.names[g] + " = " + strings.Join(parts, " ")
	if g.Section != "" {
		line += fmt.Sprintf(", section \"%s\"", EscapeString(g.Section))
	}
	if g.Align != 0 {
		line += fmt.Sprintf(", align %d", g.Align)
	}
	p.buf.WriteString(line + "\n")
}

func (p *Printer) alias(a *Alias) {
	p.buf.WriteString(p.names[a] + " = ")
	if a.Visibility != VisibilityDefault {
		p.buf.WriteString(a.Visibility.String() + " ")
	}
	p.buf.WriteString("alias ")
	if a.Linkage != LinkageExternal {
		p.buf.WriteString(a.Linkage.String() + " ")
	}
	p.buf.WriteString(p.typed(a.Aliasee) + "\n")
}

func (p *Printer) function(f *Function) {
	sig := p.m.Types.FuncInfo(f.Sig)
	var head strings.Builder
	if f.IsDeclaration() {
		head.WriteString("declare ")
	} else {
		head.WriteString("define ")
	}
	if f.Linkage != LinkageExternal {
		head.WriteString(f.Linkage.String() + " ")
	}
	if f.Visibility != VisibilityDefault {
		head.WriteString(f.Visibility.String() + " ")
	}
	if cc := f.CallConv.String(); cc != "" {
		head.WriteString(cc + " ")
	}
	if !f.RetAttrs.Empty() {
		head.WriteString(f.RetAttrs.Format(false) + " ")
	}
	fmt.Fprintf(&head, "%s %s(", p.ty(sig.Result), p.names[f])
	for i, a := range f.Params {
		if i > 0 {
			head.WriteString(", ")
		}
		head.WriteString(p.ty(a.Typ))
		if !a.Attrs.Empty() {
			head.WriteString(" " + a.Attrs.Format(false))
		}
		if !f.IsDeclaration() || a.Name != "" {
			head.WriteString(" " + p.names[a])
		}
	}
	if sig.Variadic {
		if len(f.Params) > 0 {
			head.WriteString(", ")
		}
		head.WriteString("...")
	}
	head.WriteByte(')')
	if f.UnnamedAddr {
		head.WriteString(" unnamed_addr")
	}
	if !f.FnAttrs.Empty() {
		head.WriteString(" " + f.FnAttrs.Format(false))
	}
	if f.Section != "" {
		fmt.Fprintf(&head, " section \"%s\"", EscapeString(f.Section))
	}
	if f.Align != 0 {
		fmt.Fprintf(&head, " align %d", f.Align)
	}
	if f.GC != "" {
		fmt.Fprintf(&head, " gc \"%s\"", EscapeString(f.GC))
	}
	p.buf.WriteString(head.String())
	if f.IsDeclaration() {
		p.buf.WriteByte('\n')
		return
	}
	p.buf.WriteString(" {\n")
	for i, b := range f.Blocks {
		if i > 0 {
			p.buf.WriteByte('\n')
		}
		p.buf.WriteString(labelOf(p.names[b]) + ":\n")
		for _, in := range b.Instrs {
			p.buf.WriteString("  " + p.instr(in) + "\n")
		}
	}
	p.buf.WriteString("}\n")
}

// labelOf turns "%name" into the label spelling; quoted names stay quoted.
func labelOf(ref string) string {
	return strings.TrimPrefix(ref, "%")
}

// ===== Значения =====

// Name returns the printed reference of a global or local value.
func (p *Printer) Name(v Value) string {
	return p.names[v]
}

func (p *Printer) typed(v Value) string {
	if v == nil {
		return "<null operand>"
	}
	return p.ty(v.Type()) + " " + p.value(v)
}

func (p *Printer) value(v Value) string {
	if name, ok := p.names[v]; ok {
		return name
	}
	t := p.m.Types
	switch c := v.(type) {
	case *ConstInt:
		if t.IntWidth(c.Typ) == 1 {
			if c.V.Sign() == 0 {
				return "false"
			}
			return "true"
		}
		return c.V.String()
	case *ConstFloat:
		if c.Hex != "" {
			return c.Hex
		}
		return fmt.Sprintf("0x%016X", math.Float64bits(c.V))
	case *ConstNull:
		return "null"
	case *ConstUndef:
		return "undef"
	case *ConstZero:
		return "zeroinitializer"
	case *ConstString:
		return `c"` + EscapeString(string(c.Data)) + `"`
	case *ConstAggregate:
		elems := make([]string, len(c.Elems))
		for i, e := range c.Elems {
			elems[i] = p.typed(e)
		}
		body := strings.Join(elems, ", ")
		switch t.Kind(c.Typ) {
		case KindArray:
			return "[" + body + "]"
		case KindVector:
			return "<" + body + ">"
		default:
			s := "{}"
			if body != "" {
				s = "{ " + body + " }"
			}
			if info := t.Struct(c.Typ); info != nil && info.Packed {
				return "<" + s + ">"
			}
			return s
		}
	case *ConstExpr:
		return p.constExpr(c)
	case *BlockAddress:
		return fmt.Sprintf("blockaddress(%s, %s)", p.value(c.Ops[0]), p.value(c.Ops[1]))
	case *InlineAsm:
		var b strings.Builder
		b.WriteString("asm ")
		if c.SideEffect {
			b.WriteString("sideeffect ")
		}
		if c.AlignStack {
			b.WriteString("alignstack ")
		}
		if c.IntelDialect {
			b.WriteString("inteldialect ")
		}
		fmt.Fprintf(&b, "\"%s\", \"%s\"", EscapeString(c.Asm), EscapeString(c.Constraints))
		return b.String()
	case *MetadataValue:
		return p.mdOperand(c.MD, false)
	case *Forward:
		return c.Ref
	}
	return fmt.Sprintf("<unknown %T>", v)
}

func (p *Printer) constExpr(c *ConstExpr) string {
	var b strings.Builder
	b.WriteString(c.Op.String())
	switch {
	case c.Op == OpICmp:
		b.WriteString(" " + IPredNames[c.Pred.I])
	case c.Op == OpFCmp:
		b.WriteString(" " + FPredNames[c.Pred.F])
	}
	b.WriteString(flagsString(c.Op, c.Flags))
	b.WriteString(" (")
	ops := make([]string, len(c.Ops))
	for i, o := range c.Ops {
		ops[i] = p.typed(o)
	}
	b.WriteString(strings.Join(ops, ", "))
	switch {
	case c.Op.IsCast():
		b.WriteString(" to " + p.ty(c.Typ))
	case c.Op == OpExtractValue || c.Op == OpInsertValue:
		for _, idx := range c.Indices {
			fmt.Fprintf(&b, ", %d", idx)
		}
	}
	b.WriteByte(')')
	return b.String()
}

// flagsString renders wrap/exact/inbounds/fast-math flags with a leading space.
func flagsString(op Opcode, f Flags) string {
	var parts []string
	if f&FlagInBounds != 0 {
		parts = append(parts, "inbounds")
	}
	if f&FlagNUW != 0 {
		parts = append(parts, "nuw")
	}
	if f&FlagNSW != 0 {
		parts = append(parts, "nsw")
	}
	if f&FlagExact != 0 {
		parts = append(parts, "exact")
	}
	if f&FlagFast != 0 {
		parts = append(parts, "fast")
	} else {
		for _, fm := range fastMathNames[1:] {
			if f&fm.f != 0 {
				parts = append(parts, fm.name)
			}
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

// ===== Метаданные =====

func mdName(name string) string {
	var b strings.Builder
	b.WriteByte('!')
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isNameChar(c) {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "\\%02X", c)
		}
	}
	return b.String()
}

func (p *Printer) mdRef(id MDID) string {
	if slot, ok := p.mdSlot[id]; ok {
		return "!" + strconv.FormatUint(uint64(slot), 10)
	}
	return p.mdBody(p.m.MD.Node(id))
}

func (p *Printer) mdBody(n *MDNode) string {
	if n == nil {
		return "!{}"
	}
	ops := make([]string, len(n.Ops))
	for i, op := range n.Ops {
		ops[i] = p.mdOperand(op, true)
	}
	return "!{" + strings.Join(ops, ", ") + "}"
}

// mdOperand renders an operand; typed adds the "metadata" prefix used
// inside node bodies.
func (p *Printer) mdOperand(op MDOperand, typed bool) string {
	prefix := ""
	if typed {
		prefix = "metadata "
	}
	switch op.Kind {
	case MDOpNull:
		return "null"
	case MDOpNode:
		return prefix + p.mdRef(op.Node)
	case MDOpString:
		return prefix + `!"` + EscapeString(op.Str) + `"`
	default:
		return p.typed(op.Value)
	}
}
