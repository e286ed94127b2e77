package ir

import (
	"fmt"
	"math"
	"slices"
)

// Equal compares two modules structurally: type graphs, global values,
// function bodies and metadata graphs. Unnamed entities are matched by
// position; spelling and formatting are ignored. It returns nil when the
// modules agree, otherwise an error describing the first difference.
func Equal(a, b *Module) error {
	c := &comparer{
		a:        a,
		b:        b,
		typePair: make(map[[2]TypeID]bool),
		mdPair:   make(map[[2]MDID]bool),
		slotA:    make(map[Value]string),
		slotB:    make(map[Value]string),
	}
	return c.modules()
}

type comparer struct {
	a, b     *Module
	typePair map[[2]TypeID]bool
	mdPair   map[[2]MDID]bool
	// slotA/slotB give every global and local a position key so operands can
	// be compared across modules.
	slotA map[Value]string
	slotB map[Value]string
}

func (c *comparer) modules() error {
	a, b := c.a, c.b
	if a.Triple != b.Triple {
		return fmt.Errorf("target triple: %q vs %q", a.Triple, b.Triple)
	}
	if a.DataLayout != b.DataLayout {
		return fmt.Errorf("datalayout: %q vs %q", a.DataLayout, b.DataLayout)
	}
	if a.ModuleAsm != b.ModuleAsm {
		return fmt.Errorf("module asm differs")
	}
	if !slices.Equal(a.Deplibs, b.Deplibs) {
		return fmt.Errorf("deplibs differ")
	}
	if len(a.TypeDefs) != len(b.TypeDefs) {
		return fmt.Errorf("type definitions: %d vs %d", len(a.TypeDefs), len(b.TypeDefs))
	}
	for i := range a.TypeDefs {
		ta, tb := a.TypeDefs[i], b.TypeDefs[i]
		if ta.Name != tb.Name || ta.Numbered != tb.Numbered {
			return fmt.Errorf("type definition %d: %%%s vs %%%s", i, ta.Name, tb.Name)
		}
		if !c.types(ta.Type, tb.Type) {
			return fmt.Errorf("type %%%s: %s vs %s", ta.Name, a.Types.BodyString(ta.Type), b.Types.BodyString(tb.Type))
		}
	}
	if len(a.Vars) != len(b.Vars) || len(a.Aliases) != len(b.Aliases) || len(a.Funcs) != len(b.Funcs) {
		return fmt.Errorf("global counts: %d/%d/%d vs %d/%d/%d",
			len(a.Vars), len(a.Aliases), len(a.Funcs), len(b.Vars), len(b.Aliases), len(b.Funcs))
	}
	c.keyGlobals()
	for i := range a.Vars {
		if err := c.globalVar(a.Vars[i], b.Vars[i]); err != nil {
			return err
		}
	}
	for i := range a.Aliases {
		aa, ab := a.Aliases[i], b.Aliases[i]
		if aa.Name != ab.Name || aa.Linkage != ab.Linkage || aa.Visibility != ab.Visibility {
			return fmt.Errorf("alias @%s differs", aa.Name)
		}
		if !c.values(aa.Aliasee, ab.Aliasee) {
			return fmt.Errorf("alias @%s: aliasee differs", aa.Name)
		}
	}
	for i := range a.Funcs {
		if err := c.function(a.Funcs[i], b.Funcs[i]); err != nil {
			return err
		}
	}
	if err := c.attrGroups(); err != nil {
		return err
	}
	return c.metadata()
}

func (c *comparer) keyGlobals() {
	for i := range c.a.Vars {
		c.slotA[c.a.Vars[i]] = fmt.Sprintf("var%d", i)
		c.slotB[c.b.Vars[i]] = fmt.Sprintf("var%d", i)
	}
	for i := range c.a.Aliases {
		c.slotA[c.a.Aliases[i]] = fmt.Sprintf("alias%d", i)
		c.slotB[c.b.Aliases[i]] = fmt.Sprintf("alias%d", i)
	}
	for i := range c.a.Funcs {
		fa, fb := c.a.Funcs[i], c.b.Funcs[i]
		c.slotA[fa] = fmt.Sprintf("fn%d", i)
		c.slotB[fb] = fmt.Sprintf("fn%d", i)
		keyLocals(c.slotA, fa, i)
		keyLocals(c.slotB, fb, i)
	}
}

func keyLocals(slots map[Value]string, f *Function, fi int) {
	for i, a := range f.Params {
		slots[a] = fmt.Sprintf("fn%d.arg%d", fi, i)
	}
	for bi, b := range f.Blocks {
		slots[b] = fmt.Sprintf("fn%d.bb%d", fi, bi)
		for ii, in := range b.Instrs {
			slots[in] = fmt.Sprintf("fn%d.bb%d.i%d", fi, bi, ii)
		}
	}
}

func (c *comparer) globalVar(ga, gb *GlobalVar) error {
	if ga.Name != gb.Name || ga.Numbered != gb.Numbered {
		return fmt.Errorf("global @%s vs @%s", ga.Name, gb.Name)
	}
	if ga.Linkage != gb.Linkage || ga.Visibility != gb.Visibility || ga.TLS != gb.TLS ||
		ga.AddrSpace != gb.AddrSpace || ga.UnnamedAddr != gb.UnnamedAddr ||
		ga.ExternallyInitialized != gb.ExternallyInitialized || ga.Constant != gb.Constant ||
		ga.Section != gb.Section || ga.Align != gb.Align {
		return fmt.Errorf("global @%s: attributes differ", ga.Name)
	}
	if !c.types(ga.ValueType, gb.ValueType) {
		return fmt.Errorf("global @%s: type differs", ga.Name)
	}
	if (ga.Init == nil) != (gb.Init == nil) || (ga.Init != nil && !c.values(ga.Init, gb.Init)) {
		return fmt.Errorf("global @%s: initializer differs", ga.Name)
	}
	return nil
}

func (c *comparer) function(fa, fb *Function) error {
	if fa.Name != fb.Name || fa.Numbered != fb.Numbered {
		return fmt.Errorf("function @%s vs @%s", fa.Name, fb.Name)
	}
	if !c.types(fa.Sig, fb.Sig) {
		return fmt.Errorf("function @%s: signature differs", fa.Name)
	}
	if fa.Linkage != fb.Linkage || fa.Visibility != fb.Visibility || fa.CallConv != fb.CallConv ||
		fa.UnnamedAddr != fb.UnnamedAddr || fa.Section != fb.Section || fa.Align != fb.Align || fa.GC != fb.GC {
		return fmt.Errorf("function @%s: header differs", fa.Name)
	}
	if !fa.RetAttrs.Equal(fb.RetAttrs) || !fa.FnAttrs.Equal(fb.FnAttrs) {
		return fmt.Errorf("function @%s: attributes differ", fa.Name)
	}
	for i := range fa.Params {
		if fa.Params[i].Name != fb.Params[i].Name || !fa.Params[i].Attrs.Equal(fb.Params[i].Attrs) {
			return fmt.Errorf("function @%s: parameter %d differs", fa.Name, i)
		}
	}
	if len(fa.Blocks) != len(fb.Blocks) {
		return fmt.Errorf("function @%s: %d vs %d blocks", fa.Name, len(fa.Blocks), len(fb.Blocks))
	}
	for bi := range fa.Blocks {
		ba, bb := fa.Blocks[bi], fb.Blocks[bi]
		if ba.Name != bb.Name || len(ba.Instrs) != len(bb.Instrs) {
			return fmt.Errorf("function @%s: block %d differs", fa.Name, bi)
		}
		for ii := range ba.Instrs {
			if err := c.instr(ba.Instrs[ii], bb.Instrs[ii]); err != nil {
				return fmt.Errorf("function @%s, block %d, instruction %d: %w", fa.Name, bi, ii, err)
			}
		}
	}
	return nil
}

func (c *comparer) instr(ia, ib *Instr) error {
	if ia.Op != ib.Op {
		return fmt.Errorf("opcode %s vs %s", ia.Op, ib.Op)
	}
	if ia.Name != ib.Name || !c.types(ia.Typ, ib.Typ) {
		return fmt.Errorf("%s: result differs", ia.Op)
	}
	if ia.Flags != ib.Flags || ia.Pred != ib.Pred || ia.Align != ib.Align ||
		ia.SingleThread != ib.SingleThread || ia.RMW != ib.RMW || ia.CallConv != ib.CallConv ||
		ia.Cleanup != ib.Cleanup || !slices.Equal(ia.Indices, ib.Indices) || !slices.Equal(ia.Clauses, ib.Clauses) {
		return fmt.Errorf("%s: modifiers differ", ia.Op)
	}
	if ia.Flags&FlagAtomic != 0 || ia.Op == OpFence || ia.Op == OpCmpXchg || ia.Op == OpAtomicRMW {
		if ia.Ordering != ib.Ordering {
			return fmt.Errorf("%s: ordering differs", ia.Op)
		}
	}
	if (ia.ElemType == NoTypeID) != (ib.ElemType == NoTypeID) || (ia.ElemType != NoTypeID && !c.types(ia.ElemType, ib.ElemType)) {
		return fmt.Errorf("%s: element type differs", ia.Op)
	}
	if !ia.RetAttrs.Equal(ib.RetAttrs) || !ia.FnAttrs.Equal(ib.FnAttrs) || len(ia.ParamAttrs) != len(ib.ParamAttrs) {
		return fmt.Errorf("%s: attributes differ", ia.Op)
	}
	for i := range ia.ParamAttrs {
		if !ia.ParamAttrs[i].Equal(ib.ParamAttrs[i]) {
			return fmt.Errorf("%s: argument %d attributes differ", ia.Op, i)
		}
	}
	if len(ia.Ops) != len(ib.Ops) {
		return fmt.Errorf("%s: %d vs %d operands", ia.Op, len(ia.Ops), len(ib.Ops))
	}
	for i := range ia.Ops {
		if !c.values(ia.Ops[i], ib.Ops[i]) {
			return fmt.Errorf("%s: operand %d differs", ia.Op, i)
		}
	}
	if len(ia.MD) != len(ib.MD) {
		return fmt.Errorf("%s: metadata attachments differ", ia.Op)
	}
	for i := range ia.MD {
		if ia.MD[i].Kind != ib.MD[i].Kind || !c.nodes(ia.MD[i].Node, ib.MD[i].Node) {
			return fmt.Errorf("%s: attachment !%s differs", ia.Op, ia.MD[i].Kind)
		}
	}
	return nil
}

func (c *comparer) attrGroups() error {
	if len(c.a.AttrGroups) != len(c.b.AttrGroups) {
		return fmt.Errorf("attribute groups: %d vs %d", len(c.a.AttrGroups), len(c.b.AttrGroups))
	}
	for i, ga := range c.a.AttrGroups {
		gb := c.b.AttrGroups[i]
		if ga.ID != gb.ID || !ga.Attrs.Equal(gb.Attrs) {
			return fmt.Errorf("attribute group #%d differs", ga.ID)
		}
	}
	return nil
}

func (c *comparer) metadata() error {
	if len(c.a.MDSlots) != len(c.b.MDSlots) {
		return fmt.Errorf("metadata slots: %d vs %d", len(c.a.MDSlots), len(c.b.MDSlots))
	}
	for i, sa := range c.a.MDSlots {
		sb := c.b.MDSlots[i]
		if sa.Slot != sb.Slot || !c.nodes(sa.Node, sb.Node) {
			return fmt.Errorf("metadata !%d differs", sa.Slot)
		}
	}
	if len(c.a.NamedMD) != len(c.b.NamedMD) {
		return fmt.Errorf("named metadata: %d vs %d", len(c.a.NamedMD), len(c.b.NamedMD))
	}
	for i, na := range c.a.NamedMD {
		nb := c.b.NamedMD[i]
		if na.Name != nb.Name || len(na.Nodes) != len(nb.Nodes) {
			return fmt.Errorf("named metadata !%s differs", na.Name)
		}
		for j := range na.Nodes {
			if !c.nodes(na.Nodes[j], nb.Nodes[j]) {
				return fmt.Errorf("named metadata !%s: operand %d differs", na.Name, j)
			}
		}
	}
	return nil
}

// types compares two type graphs. Identified structs are compared by name
// and, once, by body; the pair memo makes recursive structs terminate.
func (c *comparer) types(ta, tb TypeID) bool {
	key := [2]TypeID{ta, tb}
	if done, ok := c.typePair[key]; ok {
		return done
	}
	A, B := c.a.Types, c.b.Types
	xa, xb := A.Lookup(ta), B.Lookup(tb)
	if xa.Kind != xb.Kind {
		return false
	}
	c.typePair[key] = true // предположение для циклов
	ok := true
	switch xa.Kind {
	case KindInt:
		ok = xa.Width == xb.Width
	case KindPointer:
		ok = xa.AddrSpace == xb.AddrSpace && c.types(xa.Elem, xb.Elem)
	case KindArray, KindVector:
		ok = xa.Count == xb.Count && c.types(xa.Elem, xb.Elem)
	case KindFunc:
		fa, fb := A.FuncInfo(ta), B.FuncInfo(tb)
		ok = fa.Variadic == fb.Variadic && len(fa.Params) == len(fb.Params) && c.types(fa.Result, fb.Result)
		for i := 0; ok && i < len(fa.Params); i++ {
			ok = c.types(fa.Params[i], fb.Params[i])
		}
	case KindStruct:
		sa, sb := A.Struct(ta), B.Struct(tb)
		ok = sa.Literal == sb.Literal && sa.Name == sb.Name && sa.Numbered == sb.Numbered &&
			sa.Opaque == sb.Opaque && sa.Packed == sb.Packed && len(sa.Fields) == len(sb.Fields)
		for i := 0; ok && i < len(sa.Fields); i++ {
			ok = c.types(sa.Fields[i], sb.Fields[i])
		}
	}
	c.typePair[key] = ok
	return ok
}

func (c *comparer) values(va, vb Value) bool {
	if va == nil || vb == nil {
		return va == nil && vb == nil
	}
	if ka, ok := c.slotA[va]; ok {
		return c.slotB[vb] == ka
	}
	if !c.types(va.Type(), vb.Type()) {
		return false
	}
	switch x := va.(type) {
	case *ConstInt:
		y, ok := vb.(*ConstInt)
		return ok && x.V.Cmp(y.V) == 0
	case *ConstFloat:
		y, ok := vb.(*ConstFloat)
		return ok && x.Hex == y.Hex && (x.V == y.V || (math.IsNaN(x.V) && math.IsNaN(y.V)))
	case *ConstNull:
		_, ok := vb.(*ConstNull)
		return ok
	case *ConstUndef:
		_, ok := vb.(*ConstUndef)
		return ok
	case *ConstZero:
		_, ok := vb.(*ConstZero)
		return ok
	case *ConstString:
		y, ok := vb.(*ConstString)
		return ok && string(x.Data) == string(y.Data)
	case *ConstAggregate:
		y, ok := vb.(*ConstAggregate)
		return ok && c.valueLists(x.Elems, y.Elems)
	case *ConstExpr:
		y, ok := vb.(*ConstExpr)
		return ok && x.Op == y.Op && x.Flags == y.Flags && x.Pred == y.Pred &&
			slices.Equal(x.Indices, y.Indices) && c.valueLists(x.Ops, y.Ops)
	case *BlockAddress:
		y, ok := vb.(*BlockAddress)
		return ok && c.values(x.Ops[0], y.Ops[0]) && c.values(x.Ops[1], y.Ops[1])
	case *InlineAsm:
		y, ok := vb.(*InlineAsm)
		return ok && *x == *y
	case *MetadataValue:
		y, ok := vb.(*MetadataValue)
		return ok && c.mdOperands(x.MD, y.MD)
	}
	return false
}

func (c *comparer) valueLists(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !c.values(a[i], b[i]) {
			return false
		}
	}
	return true
}

// nodes compares metadata graphs; the pair memo tolerates cycles.
func (c *comparer) nodes(ma, mb MDID) bool {
	key := [2]MDID{ma, mb}
	if done, ok := c.mdPair[key]; ok {
		return done
	}
	na, nb := c.a.MD.Node(ma), c.b.MD.Node(mb)
	if na == nil || nb == nil {
		return na == nil && nb == nil
	}
	c.mdPair[key] = true
	ok := len(na.Ops) == len(nb.Ops) && na.FunctionLocal == nb.FunctionLocal
	for i := 0; ok && i < len(na.Ops); i++ {
		ok = c.mdOperands(na.Ops[i], nb.Ops[i])
	}
	c.mdPair[key] = ok
	return ok
}

func (c *comparer) mdOperands(a, b MDOperand) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case MDOpNode:
		return c.nodes(a.Node, b.Node)
	case MDOpString:
		return a.Str == b.Str
	case MDOpValue:
		return c.values(a.Value, b.Value)
	}
	return true
}
