package ir

import "math/big"

// Value is anything that can appear as an operand.
type Value interface {
	Type() TypeID
}

// User is a value (or metadata node) owning operand slots that may be
// rewritten when a forward reference resolves.
type User interface {
	SetOperand(i int, v Value)
}

// Operander exposes operand slots for walking.
type Operander interface {
	User
	Operands() []Value
}

// Use names one operand slot of a User.
type Use struct {
	User  User
	Index int
}

// ForwardState is the tag of a Forward placeholder.
type ForwardState uint8

const (
	ForwardPending ForwardState = iota
	ForwardResolved
)

// Forward stands in for a value referenced before its definition. While
// pending it records every operand slot holding it; Resolve rewrites those
// slots to the real value exactly once and drops the list.
type Forward struct {
	Typ   TypeID
	Ref   string // как было написано в исходнике: "@g", "%5", "%bb"
	State ForwardState
	Uses  []Use
	// Target is the definition after resolution.
	Target Value
}

func (f *Forward) Type() TypeID { return f.Typ }

// AddUse records that u's operand i holds f.
func (f *Forward) AddUse(u User, i int) {
	if f.State == ForwardPending {
		f.Uses = append(f.Uses, Use{User: u, Index: i})
	}
}

// Resolve repoints every recorded use to v.
func (f *Forward) Resolve(v Value) {
	if f.State == ForwardResolved {
		return
	}
	for _, u := range f.Uses {
		u.User.SetOperand(u.Index, v)
	}
	f.Uses = nil
	f.State = ForwardResolved
	f.Target = v
}

// ===== Константы =====

// ConstInt is an integer constant of any width.
type ConstInt struct {
	Typ TypeID
	V   *big.Int
}

func (c *ConstInt) Type() TypeID { return c.Typ }

// ConstFloat is a floating point constant. Half, float and double values
// are kept in V; the wide formats keep their hex spelling in Hex.
type ConstFloat struct {
	Typ TypeID
	V   float64
	Hex string // 0xK..., 0xL..., 0xM... for x86_fp80/fp128/ppc_fp128
}

func (c *ConstFloat) Type() TypeID { return c.Typ }

type ConstNull struct{ Typ TypeID }

func (c *ConstNull) Type() TypeID { return c.Typ }

type ConstUndef struct{ Typ TypeID }

func (c *ConstUndef) Type() TypeID { return c.Typ }

// ConstZero is zeroinitializer.
type ConstZero struct{ Typ TypeID }

func (c *ConstZero) Type() TypeID { return c.Typ }

// ConstAggregate is a struct, array or vector constant; its type tells which.
type ConstAggregate struct {
	Typ   TypeID
	Elems []Value
}

func (c *ConstAggregate) Type() TypeID              { return c.Typ }
func (c *ConstAggregate) Operands() []Value         { return c.Elems }
func (c *ConstAggregate) SetOperand(i int, v Value) { c.Elems[i] = v }

// ConstString is c"..." (an [N x i8] array).
type ConstString struct {
	Typ  TypeID
	Data []byte
}

func (c *ConstString) Type() TypeID { return c.Typ }

// ConstExpr is a constant expression. Ops follow the same layout as the
// instruction with the same opcode.
type ConstExpr struct {
	Typ     TypeID
	Op      Opcode
	Ops     []Value
	Flags   Flags
	Pred    Predicate
	Indices []uint64 // extractvalue, insertvalue
}

func (c *ConstExpr) Type() TypeID              { return c.Typ }
func (c *ConstExpr) Operands() []Value         { return c.Ops }
func (c *ConstExpr) SetOperand(i int, v Value) { c.Ops[i] = v }

// BlockAddress is blockaddress(@f, %bb). Ops[0] is the function, Ops[1]
// the block; both may be forward references until the body is parsed.
type BlockAddress struct {
	Typ TypeID
	Ops [2]Value
}

func (c *BlockAddress) Type() TypeID              { return c.Typ }
func (c *BlockAddress) Operands() []Value         { return c.Ops[:] }
func (c *BlockAddress) SetOperand(i int, v Value) { c.Ops[i] = v }

// InlineAsm is asm [sideeffect] [alignstack] [inteldialect] "asm", "constraints".
type InlineAsm struct {
	Typ          TypeID // pointer to the function type
	Asm          string
	Constraints  string
	SideEffect   bool
	AlignStack   bool
	IntelDialect bool
}

func (c *InlineAsm) Type() TypeID { return c.Typ }

// MetadataValue wraps a metadata operand used where a value is expected
// (call arguments of type metadata).
type MetadataValue struct {
	Typ TypeID
	MD  MDOperand
}

func (c *MetadataValue) Type() TypeID { return c.Typ }

// IsConstant reports whether v is a constant (globals included).
func IsConstant(v Value) bool {
	switch v.(type) {
	case *ConstInt, *ConstFloat, *ConstNull, *ConstUndef, *ConstZero,
		*ConstAggregate, *ConstString, *ConstExpr, *BlockAddress,
		*GlobalVar, *Function, *Alias:
		return true
	}
	return false
}
