package ir

import (
	"fmt"
	"strings"
)

func (p *Printer) instr(in *Instr) string {
	var b strings.Builder
	if !p.m.Types.IsVoid(in.Typ) {
		b.WriteString(p.names[in] + " = ")
	}
	p.instrBody(&b, in)
	for _, a := range in.MD {
		fmt.Fprintf(&b, ", %s %s", mdName(a.Kind), p.mdRef(a.Node))
	}
	return b.String()
}

func (p *Printer) atomicSuffix(b *strings.Builder, in *Instr) {
	if in.SingleThread {
		b.WriteString(" singlethread")
	}
	b.WriteString(" " + in.Ordering.String())
}

func (p *Printer) alignSuffix(b *strings.Builder, align uint32) {
	if align != 0 {
		fmt.Fprintf(b, ", align %d", align)
	}
}

func (p *Printer) label(v Value) string {
	return "label " + p.value(v)
}

func (p *Printer) instrBody(b *strings.Builder, in *Instr) {
	op := in.Op
	ops := in.Ops
	switch {
	case op.IsBinary():
		fmt.Fprintf(b, "%s%s %s, %s", op, flagsString(op, in.Flags), p.typed(ops[0]), p.value(ops[1]))
		return
	case op.IsCast():
		fmt.Fprintf(b, "%s %s to %s", op, p.typed(ops[0]), p.ty(in.Typ))
		return
	}

	switch op {
	case OpRet:
		if len(ops) == 0 {
			b.WriteString("ret void")
		} else {
			b.WriteString("ret " + p.typed(ops[0]))
		}
	case OpBr:
		if len(ops) == 1 {
			b.WriteString("br " + p.label(ops[0]))
		} else {
			fmt.Fprintf(b, "br %s, %s, %s", p.typed(ops[0]), p.label(ops[1]), p.label(ops[2]))
		}
	case OpSwitch:
		fmt.Fprintf(b, "switch %s, %s [", p.typed(ops[0]), p.label(ops[1]))
		for i := 2; i+1 < len(ops); i += 2 {
			fmt.Fprintf(b, "\n    %s, %s", p.typed(ops[i]), p.label(ops[i+1]))
		}
		if len(ops) > 2 {
			b.WriteString("\n  ")
		}
		b.WriteByte(']')
	case OpIndirectBr:
		dests := make([]string, 0, len(ops)-1)
		for _, d := range ops[1:] {
			dests = append(dests, p.label(d))
		}
		fmt.Fprintf(b, "indirectbr %s, [%s]", p.typed(ops[0]), strings.Join(dests, ", "))
	case OpInvoke:
		b.WriteString("invoke")
		p.callTail(b, in, ops[0], ops[1:len(ops)-2])
		fmt.Fprintf(b, " to %s unwind %s", p.label(ops[len(ops)-2]), p.label(ops[len(ops)-1]))
	case OpResume:
		b.WriteString("resume " + p.typed(ops[0]))
	case OpUnreachable:
		b.WriteString("unreachable")
	case OpAlloca:
		b.WriteString("alloca " + p.ty(in.ElemType))
		if len(ops) > 0 {
			b.WriteString(", " + p.typed(ops[0]))
		}
		p.alignSuffix(b, in.Align)
	case OpLoad:
		b.WriteString("load")
		if in.Flags&FlagAtomic != 0 {
			b.WriteString(" atomic")
		}
		if in.Flags&FlagVolatile != 0 {
			b.WriteString(" volatile")
		}
		b.WriteString(" " + p.typed(ops[0]))
		if in.Flags&FlagAtomic != 0 {
			p.atomicSuffix(b, in)
		}
		p.alignSuffix(b, in.Align)
	case OpStore:
		b.WriteString("store")
		if in.Flags&FlagAtomic != 0 {
			b.WriteString(" atomic")
		}
		if in.Flags&FlagVolatile != 0 {
			b.WriteString(" volatile")
		}
		fmt.Fprintf(b, " %s, %s", p.typed(ops[0]), p.typed(ops[1]))
		if in.Flags&FlagAtomic != 0 {
			p.atomicSuffix(b, in)
		}
		p.alignSuffix(b, in.Align)
	case OpFence:
		b.WriteString("fence")
		p.atomicSuffix(b, in)
	case OpCmpXchg:
		b.WriteString("cmpxchg")
		if in.Flags&FlagVolatile != 0 {
			b.WriteString(" volatile")
		}
		fmt.Fprintf(b, " %s, %s, %s", p.typed(ops[0]), p.typed(ops[1]), p.typed(ops[2]))
		p.atomicSuffix(b, in)
	case OpAtomicRMW:
		b.WriteString("atomicrmw")
		if in.Flags&FlagVolatile != 0 {
			b.WriteString(" volatile")
		}
		fmt.Fprintf(b, " %s %s, %s", in.RMW, p.typed(ops[0]), p.typed(ops[1]))
		p.atomicSuffix(b, in)
	case OpGetElementPtr:
		b.WriteString("getelementptr")
		if in.Flags&FlagInBounds != 0 {
			b.WriteString(" inbounds")
		}
		parts := make([]string, len(ops))
		for i, o := range ops {
			parts[i] = p.typed(o)
		}
		b.WriteString(" " + strings.Join(parts, ", "))
	case OpICmp:
		fmt.Fprintf(b, "icmp %s %s, %s", IPredNames[in.Pred.I], p.typed(ops[0]), p.value(ops[1]))
	case OpFCmp:
		fmt.Fprintf(b, "fcmp%s %s %s, %s", flagsString(op, in.Flags), FPredNames[in.Pred.F], p.typed(ops[0]), p.value(ops[1]))
	case OpPhi:
		fmt.Fprintf(b, "phi %s ", p.ty(in.Typ))
		for i := 0; i+1 < len(ops); i += 2 {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "[ %s, %s ]", p.value(ops[i]), p.value(ops[i+1]))
		}
	case OpCall:
		if in.Flags&FlagTail != 0 {
			b.WriteString("tail ")
		}
		b.WriteString("call")
		p.callTail(b, in, ops[0], ops[1:])
	case OpSelect:
		fmt.Fprintf(b, "select %s, %s, %s", p.typed(ops[0]), p.typed(ops[1]), p.typed(ops[2]))
	case OpVAArg:
		fmt.Fprintf(b, "va_arg %s, %s", p.typed(ops[0]), p.ty(in.Typ))
	case OpExtractElement:
		fmt.Fprintf(b, "extractelement %s, %s", p.typed(ops[0]), p.typed(ops[1]))
	case OpInsertElement:
		fmt.Fprintf(b, "insertelement %s, %s, %s", p.typed(ops[0]), p.typed(ops[1]), p.typed(ops[2]))
	case OpShuffleVector:
		fmt.Fprintf(b, "shufflevector %s, %s, %s", p.typed(ops[0]), p.typed(ops[1]), p.typed(ops[2]))
	case OpExtractValue, OpInsertValue:
		parts := make([]string, len(ops))
		for i, o := range ops {
			parts[i] = p.typed(o)
		}
		fmt.Fprintf(b, "%s %s", op, strings.Join(parts, ", "))
		for _, idx := range in.Indices {
			fmt.Fprintf(b, ", %d", idx)
		}
	case OpLandingPad:
		fmt.Fprintf(b, "landingpad %s personality %s", p.ty(in.Typ), p.typed(ops[0]))
		if in.Cleanup {
			b.WriteString("\n          cleanup")
		}
		for i, c := range in.Clauses {
			kw := "catch"
			if c == ClauseFilter {
				kw = "filter"
			}
			fmt.Fprintf(b, "\n          %s %s", kw, p.typed(ops[i+1]))
		}
	default:
		fmt.Fprintf(b, "<unknown opcode %s>", op)
	}
}

// callTail renders " [cc] [retattrs] <type> <callee>(<args>) [fnattrs]".
func (p *Printer) callTail(b *strings.Builder, in *Instr, callee Value, args []Value) {
	t := p.m.Types
	if cc := in.CallConv.String(); cc != "" {
		b.WriteString(" " + cc)
	}
	if !in.RetAttrs.Empty() {
		b.WriteString(" " + in.RetAttrs.Format(false))
	}
	sig := t.FuncInfo(in.ElemType)
	shown := in.Typ
	if sig != nil {
		ret := sig.Result
		retIsFnPtr := t.IsPointer(ret) && t.Kind(t.Elem(ret)) == KindFunc
		if sig.Variadic || retIsFnPtr {
			shown = t.Pointer(in.ElemType, 0)
		} else {
			shown = ret
		}
	}
	fmt.Fprintf(b, " %s %s(", p.ty(shown), p.value(callee))
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.ty(a.Type()))
		if i < len(in.ParamAttrs) && !in.ParamAttrs[i].Empty() {
			b.WriteString(" " + in.ParamAttrs[i].Format(false))
		}
		b.WriteString(" " + p.value(a))
	}
	b.WriteByte(')')
	if !in.FnAttrs.Empty() {
		b.WriteString(" " + in.FnAttrs.Format(false))
	}
}
