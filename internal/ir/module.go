package ir

import (
	"fmt"
	"strconv"
)

// Linkage of a global value.
type Linkage uint8

const (
	LinkageExternal Linkage = iota
	LinkagePrivate
	LinkageLinkerPrivate
	LinkageLinkerPrivateWeak
	LinkageInternal
	LinkageWeak
	LinkageWeakODR
	LinkageLinkonce
	LinkageLinkonceODR
	LinkageLinkonceODRAutoHide
	LinkageAvailableExternally
	LinkageAppending
	LinkageDLLExport
	LinkageCommon
	LinkageDLLImport
	LinkageExternWeak
)

var linkageNames = [...]string{
	LinkageExternal:            "external",
	LinkagePrivate:             "private",
	LinkageLinkerPrivate:       "linker_private",
	LinkageLinkerPrivateWeak:   "linker_private_weak",
	LinkageInternal:            "internal",
	LinkageWeak:                "weak",
	LinkageWeakODR:             "weak_odr",
	LinkageLinkonce:            "linkonce",
	LinkageLinkonceODR:         "linkonce_odr",
	LinkageLinkonceODRAutoHide: "linkonce_odr_auto_hide",
	LinkageAvailableExternally: "available_externally",
	LinkageAppending:           "appending",
	LinkageDLLExport:           "dllexport",
	LinkageCommon:              "common",
	LinkageDLLImport:           "dllimport",
	LinkageExternWeak:          "extern_weak",
}

func (l Linkage) String() string {
	if int(l) < len(linkageNames) {
		return linkageNames[l]
	}
	return fmt.Sprintf("Linkage(%d)", l)
}

// IsExternalLike reports linkages that allow a global without initializer.
func (l Linkage) IsExternalLike() bool {
	return l == LinkageExternal || l == LinkageExternWeak || l == LinkageDLLImport
}

// ValidForDeclaration reports linkages a body-less function may carry.
func (l Linkage) ValidForDeclaration() bool {
	return l == LinkageExternal || l == LinkageExternWeak || l == LinkageDLLImport
}

// ValidForAlias reports linkages an alias may carry.
func (l Linkage) ValidForAlias() bool {
	switch l {
	case LinkageExternal, LinkageInternal, LinkagePrivate, LinkageLinkerPrivate,
		LinkageLinkerPrivateWeak, LinkageWeak, LinkageWeakODR:
		return true
	}
	return false
}

// Visibility of a global value.
type Visibility uint8

const (
	VisibilityDefault Visibility = iota
	VisibilityHidden
	VisibilityProtected
)

func (v Visibility) String() string {
	switch v {
	case VisibilityHidden:
		return "hidden"
	case VisibilityProtected:
		return "protected"
	}
	return "default"
}

// TLSModel is the thread_local model.
type TLSModel uint8

const (
	TLSNone TLSModel = iota
	TLSGeneralDynamic
	TLSLocalDynamic
	TLSInitialExec
	TLSLocalExec
)

func (m TLSModel) String() string {
	switch m {
	case TLSGeneralDynamic:
		return "thread_local"
	case TLSLocalDynamic:
		return "thread_local(localdynamic)"
	case TLSInitialExec:
		return "thread_local(initialexec)"
	case TLSLocalExec:
		return "thread_local(localexec)"
	}
	return ""
}

// CallConv is a calling convention number.
type CallConv uint32

const (
	CallConvC           CallConv = 0
	CallConvFast        CallConv = 8
	CallConvCold        CallConv = 9
	CallConvX86Stdcall  CallConv = 64
	CallConvX86Fastcall CallConv = 65
	CallConvARMAPCS     CallConv = 66
	CallConvARMAAPCS    CallConv = 67
	CallConvARMAAPCSVFP CallConv = 68
	CallConvMSP430Intr  CallConv = 69
	CallConvX86Thiscall CallConv = 70
	CallConvPTXKernel   CallConv = 71
	CallConvPTXDevice   CallConv = 72
	CallConvSPIRFunc    CallConv = 75
	CallConvSPIRKernel  CallConv = 76
	CallConvIntelOCLBI  CallConv = 77
	CallConvX8664SysV   CallConv = 78
	CallConvX8664Win64  CallConv = 79
)

var callConvNames = map[CallConv]string{
	CallConvFast:        "fastcc",
	CallConvCold:        "coldcc",
	CallConvX86Stdcall:  "x86_stdcallcc",
	CallConvX86Fastcall: "x86_fastcallcc",
	CallConvARMAPCS:     "arm_apcscc",
	CallConvARMAAPCS:    "arm_aapcscc",
	CallConvARMAAPCSVFP: "arm_aapcs_vfpcc",
	CallConvMSP430Intr:  "msp430_intrcc",
	CallConvX86Thiscall: "x86_thiscallcc",
	CallConvPTXKernel:   "ptx_kernel",
	CallConvPTXDevice:   "ptx_device",
	CallConvSPIRFunc:    "spir_func",
	CallConvSPIRKernel:  "spir_kernel",
	CallConvIntelOCLBI:  "intel_ocl_bicc",
	CallConvX8664SysV:   "x86_64_sysvcc",
	CallConvX8664Win64:  "x86_64_win64cc",
}

// String returns "" for the C convention.
func (cc CallConv) String() string {
	if cc == CallConvC {
		return ""
	}
	if name, ok := callConvNames[cc]; ok {
		return name
	}
	return "cc " + strconv.FormatUint(uint64(cc), 10)
}

// Global is a module-level value: *GlobalVar, *Function or *Alias.
type Global interface {
	Value
	GlobalName() string
	IsNumbered() bool
}

// GlobalVar is @g = ... global/constant.
type GlobalVar struct {
	Name     string
	Numbered bool
	Typ      TypeID // pointer to ValueType
	// ValueType is the type of the initializer.
	ValueType TypeID

	Linkage               Linkage
	Visibility            Visibility
	TLS                   TLSModel
	AddrSpace             uint32
	UnnamedAddr           bool
	ExternallyInitialized bool
	Constant              bool
	Init                  Value // nil for declarations
	Section               string
	Align                 uint32
}

func (g *GlobalVar) Type() TypeID       { return g.Typ }
func (g *GlobalVar) GlobalName() string { return g.Name }
func (g *GlobalVar) IsNumbered() bool   { return g.Numbered }
func (g *GlobalVar) Operands() []Value {
	if g.Init == nil {
		return nil
	}
	return []Value{g.Init}
}
func (g *GlobalVar) SetOperand(_ int, v Value) { g.Init = v }

// Alias is @a = alias <aliasee>.
type Alias struct {
	Name       string
	Numbered   bool
	Typ        TypeID
	Linkage    Linkage
	Visibility Visibility
	Aliasee    Value
}

func (a *Alias) Type() TypeID              { return a.Typ }
func (a *Alias) GlobalName() string        { return a.Name }
func (a *Alias) IsNumbered() bool          { return a.Numbered }
func (a *Alias) Operands() []Value         { return []Value{a.Aliasee} }
func (a *Alias) SetOperand(_ int, v Value) { a.Aliasee = v }

// Argument is a formal parameter.
type Argument struct {
	Name   string
	Typ    TypeID
	Attrs  AttrSet
	Parent *Function
	Index  int
}

func (a *Argument) Type() TypeID { return a.Typ }

// Block is a basic block. Its type is label.
type Block struct {
	Name   string // "" when numbered
	Typ    TypeID
	Parent *Function
	Instrs []*Instr
}

func (b *Block) Type() TypeID { return b.Typ }

// Terminator returns the last instruction when it is a terminator.
func (b *Block) Terminator() *Instr {
	if len(b.Instrs) == 0 {
		return nil
	}
	last := b.Instrs[len(b.Instrs)-1]
	if !last.Op.IsTerminator() {
		return nil
	}
	return last
}

// Function is a declared or defined function.
type Function struct {
	Name     string
	Numbered bool
	Typ      TypeID // pointer to Sig
	Sig      TypeID

	Linkage     Linkage
	Visibility  Visibility
	CallConv    CallConv
	UnnamedAddr bool
	RetAttrs    AttrSet
	FnAttrs     AttrSet
	// AttrGroups are the #N references; merged into FnAttrs at finalize.
	AttrGroups []uint32
	Section    string
	Align      uint32
	GC         string

	Params []*Argument
	Blocks []*Block
}

func (f *Function) Type() TypeID       { return f.Typ }
func (f *Function) GlobalName() string { return f.Name }
func (f *Function) IsNumbered() bool   { return f.Numbered }

// IsDeclaration is true for functions without a body.
func (f *Function) IsDeclaration() bool { return len(f.Blocks) == 0 }

// TypeDef is one "%T = type ..." line. Named slots alias non-struct types;
// struct definitions point at the identified struct.
type TypeDef struct {
	Name     string // digits when Numbered
	Numbered bool
	Type     TypeID
}

// NamedMD is !name = !{!0, !1}.
type NamedMD struct {
	Name  string
	Nodes []MDID
}

// MDSlot binds a numbered metadata slot to its node.
type MDSlot struct {
	Slot uint32
	Node MDID
}

// AttrGroup is attributes #N = { ... }.
type AttrGroup struct {
	ID    uint32
	Attrs AttrSet
}

// Module is the result of reading one .ll file.
type Module struct {
	Name       string
	Types      *Types
	TypeDefs   []TypeDef
	ModuleAsm  string
	Triple     string
	DataLayout string
	Deplibs    []string

	// Globals in definition order; a forward-referenced global lands at the
	// position of its definition.
	Vars    []*GlobalVar
	Aliases []*Alias
	Funcs   []*Function

	AttrGroups []AttrGroup
	MD         *MDArena
	MDSlots    []MDSlot // sorted by Slot
	NamedMD    []NamedMD
	MDKinds    []string
}

// NewModule returns an empty module with fresh type and metadata arenas.
func NewModule(name string) *Module {
	return &Module{
		Name:    name,
		Types:   NewTypes(),
		MD:      NewMDArena(),
		MDKinds: []string{"dbg", "tbaa", "prof", "fpmath", "range", "tbaa.struct"},
	}
}

// MDKindID interns an attachment kind name.
func (m *Module) MDKindID(name string) int {
	for i, k := range m.MDKinds {
		if k == name {
			return i
		}
	}
	m.MDKinds = append(m.MDKinds, name)
	return len(m.MDKinds) - 1
}

// Function looks a function up by name.
func (m *Module) Function(name string) *Function {
	for _, f := range m.Funcs {
		if !f.Numbered && f.Name == name {
			return f
		}
	}
	return nil
}

// Global looks a global variable up by name.
func (m *Module) Global(name string) *GlobalVar {
	for _, g := range m.Vars {
		if !g.Numbered && g.Name == name {
			return g
		}
	}
	return nil
}

// Alias looks an alias up by name.
func (m *Module) Alias(name string) *Alias {
	for _, a := range m.Aliases {
		if !a.Numbered && a.Name == name {
			return a
		}
	}
	return nil
}

// AttrGroup returns the attribute group with the given ID.
func (m *Module) AttrGroup(id uint32) (AttrSet, bool) {
	for _, g := range m.AttrGroups {
		if g.ID == id {
			return g.Attrs, true
		}
	}
	return AttrSet{}, false
}

// MDSlot returns the node bound to numbered slot n.
func (m *Module) MDSlot(n uint32) (MDID, bool) {
	for _, s := range m.MDSlots {
		if s.Slot == n {
			return s.Node, true
		}
	}
	return NoMD, false
}

// NamedMetadata returns the named metadata list.
func (m *Module) NamedMetadata(name string) ([]MDID, bool) {
	for _, n := range m.NamedMD {
		if n.Name == name {
			return n.Nodes, true
		}
	}
	return nil, false
}

// Stats counts module entities.
type Stats struct {
	Types      int
	Globals    int
	Aliases    int
	Functions  int
	Decls      int
	Blocks     int
	Instrs     int
	MDNodes    int
	NamedMD    int
	AttrGroups int
}

func (m *Module) Stats() Stats {
	s := Stats{
		Types:      len(m.TypeDefs),
		Globals:    len(m.Vars),
		Aliases:    len(m.Aliases),
		Functions:  len(m.Funcs),
		MDNodes:    m.MD.Len(),
		NamedMD:    len(m.NamedMD),
		AttrGroups: len(m.AttrGroups),
	}
	for _, f := range m.Funcs {
		if f.IsDeclaration() {
			s.Decls++
		}
		s.Blocks += len(f.Blocks)
		for _, b := range f.Blocks {
			s.Instrs += len(b.Instrs)
		}
	}
	return s
}
