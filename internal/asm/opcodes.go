package asm

import (
	"github.com/llir/llvm/ir/enum"

	"llasm/internal/diag"
	"llasm/internal/ir"
	"llasm/internal/token"
)

// operandClass restricts the operand types of a binary operator.
type operandClass uint8

const (
	classNone operandClass = iota
	classInt
	classFP
	classLogical
)

// instrParser parses an instruction after its opcode keyword. It returns
// ateExtraComma when a trailing comma turned out to start metadata.
type instrParser func(p *Parser, fs *funcState, tok token.Token, info opInfo) (*ir.Instr, bool, error)

// opInfo describes one opcode keyword.
type opInfo struct {
	op    ir.Opcode
	class operandClass
	// flags lists the keywords allowed right after the opcode.
	flags     ir.Flags
	constExpr bool
	parse     instrParser
}

var instrTable map[token.Kind]opInfo

func init() {
	const wrap = ir.FlagNUW | ir.FlagNSW
	binary := func(op ir.Opcode, class operandClass, flags ir.Flags) opInfo {
		return opInfo{op: op, class: class, flags: flags, constExpr: true, parse: (*Parser).parseBinary}
	}
	cast := func(op ir.Opcode) opInfo {
		return opInfo{op: op, constExpr: true, parse: (*Parser).parseCast}
	}
	instrTable = map[token.Kind]opInfo{
		token.KwRet:         {op: ir.OpRet, parse: (*Parser).parseRet},
		token.KwBr:          {op: ir.OpBr, parse: (*Parser).parseBr},
		token.KwSwitch:      {op: ir.OpSwitch, parse: (*Parser).parseSwitch},
		token.KwIndirectbr:  {op: ir.OpIndirectBr, parse: (*Parser).parseIndirectBr},
		token.KwInvoke:      {op: ir.OpInvoke, parse: (*Parser).parseInvoke},
		token.KwResume:      {op: ir.OpResume, parse: (*Parser).parseResume},
		token.KwUnreachable: {op: ir.OpUnreachable, parse: (*Parser).parseUnreachable},

		token.KwAdd:  binary(ir.OpAdd, classInt, wrap),
		token.KwSub:  binary(ir.OpSub, classInt, wrap),
		token.KwMul:  binary(ir.OpMul, classInt, wrap),
		token.KwShl:  binary(ir.OpShl, classInt, wrap),
		token.KwUdiv: binary(ir.OpUDiv, classInt, ir.FlagExact),
		token.KwSdiv: binary(ir.OpSDiv, classInt, ir.FlagExact),
		token.KwLshr: binary(ir.OpLShr, classInt, ir.FlagExact),
		token.KwAshr: binary(ir.OpAShr, classInt, ir.FlagExact),
		token.KwUrem: binary(ir.OpURem, classInt, 0),
		token.KwSrem: binary(ir.OpSRem, classInt, 0),
		token.KwFadd: binary(ir.OpFAdd, classFP, ir.FastMath),
		token.KwFsub: binary(ir.OpFSub, classFP, ir.FastMath),
		token.KwFmul: binary(ir.OpFMul, classFP, ir.FastMath),
		token.KwFdiv: binary(ir.OpFDiv, classFP, ir.FastMath),
		token.KwFrem: binary(ir.OpFRem, classFP, ir.FastMath),
		token.KwAnd:  binary(ir.OpAnd, classLogical, 0),
		token.KwOr:   binary(ir.OpOr, classLogical, 0),
		token.KwXor:  binary(ir.OpXor, classLogical, 0),

		token.KwTrunc:    cast(ir.OpTrunc),
		token.KwZext:     cast(ir.OpZExt),
		token.KwSext:     cast(ir.OpSExt),
		token.KwFptrunc:  cast(ir.OpFPTrunc),
		token.KwFpext:    cast(ir.OpFPExt),
		token.KwUitofp:   cast(ir.OpUIToFP),
		token.KwSitofp:   cast(ir.OpSIToFP),
		token.KwFptoui:   cast(ir.OpFPToUI),
		token.KwFptosi:   cast(ir.OpFPToSI),
		token.KwInttoptr: cast(ir.OpIntToPtr),
		token.KwPtrtoint: cast(ir.OpPtrToInt),
		token.KwBitcast:  cast(ir.OpBitCast),

		token.KwIcmp: {op: ir.OpICmp, constExpr: true, parse: (*Parser).parseCompare},
		token.KwFcmp: {op: ir.OpFCmp, flags: ir.FastMath, constExpr: true, parse: (*Parser).parseCompare},

		token.KwAlloca:        {op: ir.OpAlloca, parse: (*Parser).parseAlloca},
		token.KwLoad:          {op: ir.OpLoad, parse: (*Parser).parseLoad},
		token.KwStore:         {op: ir.OpStore, parse: (*Parser).parseStore},
		token.KwCmpxchg:       {op: ir.OpCmpXchg, parse: (*Parser).parseCmpXchg},
		token.KwAtomicrmw:     {op: ir.OpAtomicRMW, parse: (*Parser).parseAtomicRMW},
		token.KwFence:         {op: ir.OpFence, parse: (*Parser).parseFence},
		token.KwGetelementptr: {op: ir.OpGetElementPtr, flags: ir.FlagInBounds, constExpr: true, parse: (*Parser).parseGEP},

		token.KwPhi:            {op: ir.OpPhi, parse: (*Parser).parsePhi},
		token.KwLandingpad:     {op: ir.OpLandingPad, parse: (*Parser).parseLandingPad},
		token.KwCall:           {op: ir.OpCall, parse: (*Parser).parseCall},
		token.KwTail:           {op: ir.OpCall, flags: ir.FlagTail, parse: (*Parser).parseCall},
		token.KwSelect:         {op: ir.OpSelect, constExpr: true, parse: (*Parser).parseSelect},
		token.KwVaArg:          {op: ir.OpVAArg, parse: (*Parser).parseVAArg},
		token.KwExtractelement: {op: ir.OpExtractElement, constExpr: true, parse: (*Parser).parseExtractElement},
		token.KwInsertelement:  {op: ir.OpInsertElement, constExpr: true, parse: (*Parser).parseInsertElement},
		token.KwShufflevector:  {op: ir.OpShuffleVector, constExpr: true, parse: (*Parser).parseShuffleVector},
		token.KwExtractvalue:   {op: ir.OpExtractValue, constExpr: true, parse: (*Parser).parseExtractValue},
		token.KwInsertvalue:    {op: ir.OpInsertValue, constExpr: true, parse: (*Parser).parseInsertValue},
	}
}

var flagKeywords = map[token.Kind]ir.Flags{
	token.KwNuw:      ir.FlagNUW,
	token.KwNsw:      ir.FlagNSW,
	token.KwExact:    ir.FlagExact,
	token.KwInbounds: ir.FlagInBounds,
	token.KwNnan:     ir.FlagNNaN,
	token.KwNinf:     ir.FlagNInf,
	token.KwNsz:      ir.FlagNSZ,
	token.KwArcp:     ir.FlagARcp,
	token.KwFast:     ir.FlagFast,
}

// parseFlags reads the keywords after an opcode that info allows.
func (p *Parser) parseFlags(tok token.Token, info opInfo) (ir.Flags, error) {
	var flags ir.Flags
	for {
		next := p.peek()
		f, ok := flagKeywords[next.Kind]
		if !ok {
			return flags, nil
		}
		if info.flags&f == 0 {
			return 0, p.failf(diag.SynUnexpectedToken, next.Span, "'%s' is not allowed on '%s'", next.Text, tok.Text)
		}
		p.advance()
		flags |= f
	}
}

var icmpPreds = map[token.Kind]enum.IPred{
	token.KwEq:  enum.IPredEQ,
	token.KwNe:  enum.IPredNE,
	token.KwSlt: enum.IPredSLT,
	token.KwSgt: enum.IPredSGT,
	token.KwSle: enum.IPredSLE,
	token.KwSge: enum.IPredSGE,
	token.KwUlt: enum.IPredULT,
	token.KwUgt: enum.IPredUGT,
	token.KwUle: enum.IPredULE,
	token.KwUge: enum.IPredUGE,
}

var fcmpPreds = map[token.Kind]enum.FPred{
	token.KwFalse: enum.FPredFalse,
	token.KwOeq:   enum.FPredOEQ,
	token.KwOne:   enum.FPredONE,
	token.KwOlt:   enum.FPredOLT,
	token.KwOgt:   enum.FPredOGT,
	token.KwOle:   enum.FPredOLE,
	token.KwOge:   enum.FPredOGE,
	token.KwOrd:   enum.FPredORD,
	token.KwUno:   enum.FPredUNO,
	token.KwUeq:   enum.FPredUEQ,
	token.KwUne:   enum.FPredUNE,
	token.KwUlt:   enum.FPredULT,
	token.KwUgt:   enum.FPredUGT,
	token.KwUle:   enum.FPredULE,
	token.KwUge:   enum.FPredUGE,
	token.KwTrue:  enum.FPredTrue,
}

// parsePredicate reads the predicate of icmp or fcmp.
func (p *Parser) parsePredicate(op ir.Opcode) (ir.Predicate, error) {
	tok := p.peek()
	var pred ir.Predicate
	if op == ir.OpICmp {
		ip, ok := icmpPreds[tok.Kind]
		if !ok {
			return pred, p.tokError(diag.SynUnexpectedToken, "expected icmp predicate (e.g. 'eq')")
		}
		pred.I = ip
	} else {
		fp, ok := fcmpPreds[tok.Kind]
		if !ok {
			return pred, p.tokError(diag.SynUnexpectedToken, "expected fcmp predicate (e.g. 'oeq')")
		}
		pred.F = fp
	}
	p.advance()
	return pred, nil
}

var orderings = map[token.Kind]enum.AtomicOrdering{
	token.KwUnordered: enum.AtomicOrderingUnordered,
	token.KwMonotonic: enum.AtomicOrderingMonotonic,
	token.KwAcquire:   enum.AtomicOrderingAcquire,
	token.KwRelease:   enum.AtomicOrderingRelease,
	token.KwAcqRel:    enum.AtomicOrderingAcquireRelease,
	token.KwSeqCst:    enum.AtomicOrderingSequentiallyConsistent,
}

// parseScopeAndOrdering reads "[singlethread] ordering".
func (p *Parser) parseScopeAndOrdering(in *ir.Instr) error {
	in.SingleThread = p.eat(token.KwSinglethread)
	o, ok := orderings[p.peek().Kind]
	if !ok {
		return p.tokError(diag.SynBadOrdering, "Expected ordering on atomic instruction")
	}
	p.advance()
	in.Ordering = o
	return nil
}

var rmwOps = map[token.Kind]ir.AtomicOp{
	token.KwXchg: ir.AtomicXchg,
	token.KwAdd:  ir.AtomicAdd,
	token.KwSub:  ir.AtomicSub,
	token.KwAnd:  ir.AtomicAnd,
	token.KwNand: ir.AtomicNand,
	token.KwOr:   ir.AtomicOr,
	token.KwXor:  ir.AtomicXor,
	token.KwMax:  ir.AtomicMax,
	token.KwMin:  ir.AtomicMin,
	token.KwUmax: ir.AtomicUMax,
	token.KwUmin: ir.AtomicUMin,
}

// parseInstruction dispatches on the opcode keyword.
func (p *Parser) parseInstruction(fs *funcState) (*ir.Instr, bool, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.EOF:
		return nil, false, p.tokError(diag.SynUnexpectedEOF, "found end of file when expecting more instructions")
	case token.Invalid:
		return nil, false, p.lexError(tok)
	}
	info, ok := instrTable[tok.Kind]
	if !ok {
		return nil, false, p.tokError(diag.SynUnexpectedToken, "expected instruction opcode")
	}
	p.advance()
	return info.parse(p, fs, tok, info)
}
