package ir

import (
	"fmt"

	"github.com/llir/llvm/ir/enum"
)

// Opcode enumerates instruction and constant expression operators.
type Opcode uint8

const (
	OpInvalid Opcode = iota
	// terminators
	OpRet
	OpBr
	OpSwitch
	OpIndirectBr
	OpInvoke
	OpResume
	OpUnreachable
	// binary
	OpAdd
	OpFAdd
	OpSub
	OpFSub
	OpMul
	OpFMul
	OpUDiv
	OpSDiv
	OpFDiv
	OpURem
	OpSRem
	OpFRem
	OpShl
	OpLShr
	OpAShr
	OpAnd
	OpOr
	OpXor
	// memory
	OpAlloca
	OpLoad
	OpStore
	OpGetElementPtr
	OpFence
	OpCmpXchg
	OpAtomicRMW
	// casts
	OpTrunc
	OpZExt
	OpSExt
	OpFPToUI
	OpFPToSI
	OpUIToFP
	OpSIToFP
	OpFPTrunc
	OpFPExt
	OpPtrToInt
	OpIntToPtr
	OpBitCast
	// other
	OpICmp
	OpFCmp
	OpPhi
	OpCall
	OpSelect
	OpVAArg
	OpExtractElement
	OpInsertElement
	OpShuffleVector
	OpExtractValue
	OpInsertValue
	OpLandingPad
	opcodeEnd
)

var opcodeNames = [...]string{
	OpInvalid:        "invalid",
	OpRet:            "ret",
	OpBr:             "br",
	OpSwitch:         "switch",
	OpIndirectBr:     "indirectbr",
	OpInvoke:         "invoke",
	OpResume:         "resume",
	OpUnreachable:    "unreachable",
	OpAdd:            "add",
	OpFAdd:           "fadd",
	OpSub:            "sub",
	OpFSub:           "fsub",
	OpMul:            "mul",
	OpFMul:           "fmul",
	OpUDiv:           "udiv",
	OpSDiv:           "sdiv",
	OpFDiv:           "fdiv",
	OpURem:           "urem",
	OpSRem:           "srem",
	OpFRem:           "frem",
	OpShl:            "shl",
	OpLShr:           "lshr",
	OpAShr:           "ashr",
	OpAnd:            "and",
	OpOr:             "or",
	OpXor:            "xor",
	OpAlloca:         "alloca",
	OpLoad:           "load",
	OpStore:          "store",
	OpGetElementPtr:  "getelementptr",
	OpFence:          "fence",
	OpCmpXchg:        "cmpxchg",
	OpAtomicRMW:      "atomicrmw",
	OpTrunc:          "trunc",
	OpZExt:           "zext",
	OpSExt:           "sext",
	OpFPToUI:         "fptoui",
	OpFPToSI:         "fptosi",
	OpUIToFP:         "uitofp",
	OpSIToFP:         "sitofp",
	OpFPTrunc:        "fptrunc",
	OpFPExt:          "fpext",
	OpPtrToInt:       "ptrtoint",
	OpIntToPtr:       "inttoptr",
	OpBitCast:        "bitcast",
	OpICmp:           "icmp",
	OpFCmp:           "fcmp",
	OpPhi:            "phi",
	OpCall:           "call",
	OpSelect:         "select",
	OpVAArg:          "va_arg",
	OpExtractElement: "extractelement",
	OpInsertElement:  "insertelement",
	OpShuffleVector:  "shufflevector",
	OpExtractValue:   "extractvalue",
	OpInsertValue:    "insertvalue",
	OpLandingPad:     "landingpad",
}

func (op Opcode) String() string {
	if op < opcodeEnd {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", op)
}

func (op Opcode) IsTerminator() bool { return op >= OpRet && op <= OpUnreachable }
func (op Opcode) IsBinary() bool     { return op >= OpAdd && op <= OpXor }
func (op Opcode) IsCast() bool       { return op >= OpTrunc && op <= OpBitCast }

// Flags are the optional keywords an instruction or expression carries.
type Flags uint16

const (
	FlagNUW Flags = 1 << iota
	FlagNSW
	FlagExact
	FlagInBounds
	FlagVolatile
	FlagTail
	FlagNNaN
	FlagNInf
	FlagNSZ
	FlagARcp
	FlagFast
	FlagAtomic // load atomic, store atomic
)

// FastMath selects the fast-math subset of Flags.
const FastMath = FlagNNaN | FlagNInf | FlagNSZ | FlagARcp | FlagFast

var fastMathNames = []struct {
	f    Flags
	name string
}{
	{FlagFast, "fast"},
	{FlagNNaN, "nnan"},
	{FlagNInf, "ninf"},
	{FlagNSZ, "nsz"},
	{FlagARcp, "arcp"},
}

// Predicate is the comparison predicate of icmp/fcmp; only the field
// matching the opcode is meaningful.
type Predicate struct {
	I enum.IPred
	F enum.FPred
}

// IPredNames maps integer predicates to their keywords.
var IPredNames = map[enum.IPred]string{
	enum.IPredEQ:  "eq",
	enum.IPredNE:  "ne",
	enum.IPredUGT: "ugt",
	enum.IPredUGE: "uge",
	enum.IPredULT: "ult",
	enum.IPredULE: "ule",
	enum.IPredSGT: "sgt",
	enum.IPredSGE: "sge",
	enum.IPredSLT: "slt",
	enum.IPredSLE: "sle",
}

// FPredNames maps floating point predicates to their keywords.
var FPredNames = map[enum.FPred]string{
	enum.FPredFalse: "false",
	enum.FPredOEQ:   "oeq",
	enum.FPredOGT:   "ogt",
	enum.FPredOGE:   "oge",
	enum.FPredOLT:   "olt",
	enum.FPredOLE:   "ole",
	enum.FPredONE:   "one",
	enum.FPredORD:   "ord",
	enum.FPredUEQ:   "ueq",
	enum.FPredUGT:   "ugt",
	enum.FPredUGE:   "uge",
	enum.FPredULT:   "ult",
	enum.FPredULE:   "ule",
	enum.FPredUNE:   "une",
	enum.FPredUNO:   "uno",
	enum.FPredTrue:  "true",
}

// AtomicOp is the operation of atomicrmw.
type AtomicOp uint8

const (
	AtomicXchg AtomicOp = iota
	AtomicAdd
	AtomicSub
	AtomicAnd
	AtomicNand
	AtomicOr
	AtomicXor
	AtomicMax
	AtomicMin
	AtomicUMax
	AtomicUMin
)

var atomicOpNames = [...]string{"xchg", "add", "sub", "and", "nand", "or", "xor", "max", "min", "umax", "umin"}

func (op AtomicOp) String() string {
	if int(op) < len(atomicOpNames) {
		return atomicOpNames[op]
	}
	return fmt.Sprintf("AtomicOp(%d)", op)
}

// ClauseKind tags landingpad clauses.
type ClauseKind uint8

const (
	ClauseCatch ClauseKind = iota
	ClauseFilter
)

// MDAttachment is a trailing ", !kind !N" on an instruction.
type MDAttachment struct {
	Kind string
	Node MDID
}

// Instr is one instruction. The operand layout per opcode:
//
//	ret            [] | [v]
//	br             [dest] | [cond, iftrue, iffalse]
//	switch         [cond, default, case0, dest0, ...]
//	indirectbr     [addr, dest...]
//	invoke         [callee, args..., normal, unwind]
//	call           [callee, args...]
//	phi            [v0, bb0, v1, bb1, ...]
//	landingpad     [personality, clause...]
//	alloca         [] | [count]
//	store          [value, ptr]
//	cmpxchg        [ptr, cmp, new]
//	atomicrmw      [ptr, value]
//	getelementptr  [ptr, idx...]
//
// Everything else lists its operands in source order.
type Instr struct {
	Op     Opcode
	Name   string // "" for unnamed (numbered or void) results
	Typ    TypeID // result type, void when nothing is produced
	Ops    []Value
	Parent *Block

	Flags        Flags
	Pred         Predicate
	Ordering     enum.AtomicOrdering
	SingleThread bool
	RMW          AtomicOp
	Align        uint32
	Indices      []uint64 // extractvalue, insertvalue

	// ElemType is the allocated type of alloca and the callee function type
	// of call and invoke.
	ElemType TypeID

	CallConv   CallConv
	RetAttrs   AttrSet
	FnAttrs    AttrSet
	ParamAttrs []AttrSet
	AttrGroups []uint32

	Clauses []ClauseKind // landingpad, parallel to Ops[1:]
	Cleanup bool

	MD []MDAttachment
}

func (in *Instr) Type() TypeID              { return in.Typ }
func (in *Instr) Operands() []Value         { return in.Ops }
func (in *Instr) SetOperand(i int, v Value) { in.Ops[i] = v }

// Callee returns the called value of call and invoke.
func (in *Instr) Callee() Value {
	if (in.Op == OpCall || in.Op == OpInvoke) && len(in.Ops) > 0 {
		return in.Ops[0]
	}
	return nil
}

// Args returns the call arguments of call and invoke.
func (in *Instr) Args() []Value {
	switch in.Op {
	case OpCall:
		return in.Ops[1:]
	case OpInvoke:
		return in.Ops[1 : len(in.Ops)-2]
	}
	return nil
}

// Attachment looks up a metadata attachment by kind name.
func (in *Instr) Attachment(kind string) (MDID, bool) {
	for _, a := range in.MD {
		if a.Kind == kind {
			return a.Node, true
		}
	}
	return NoMD, false
}

// SetAttachment adds or replaces the attachment of kind.
func (in *Instr) SetAttachment(kind string, node MDID) {
	for i := range in.MD {
		if in.MD[i].Kind == kind {
			in.MD[i].Node = node
			return
		}
	}
	in.MD = append(in.MD, MDAttachment{Kind: kind, Node: node})
}
