package ir

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// TypeID uniquely identifies a type inside Types. Two values have the same
// type exactly when their TypeIDs are equal.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindHalf
	KindFloat
	KindDouble
	KindX86FP80
	KindFP128
	KindPPCFP128
	KindLabel
	KindMetadata
	KindX86MMX
	KindInt
	KindPointer
	KindArray
	KindVector
	KindStruct
	KindFunc
)

var kindNames = [...]string{
	KindInvalid:  "invalid",
	KindVoid:     "void",
	KindHalf:     "half",
	KindFloat:    "float",
	KindDouble:   "double",
	KindX86FP80:  "x86_fp80",
	KindFP128:    "fp128",
	KindPPCFP128: "ppc_fp128",
	KindLabel:    "label",
	KindMetadata: "metadata",
	KindX86MMX:   "x86_mmx",
	KindInt:      "int",
	KindPointer:  "pointer",
	KindArray:    "array",
	KindVector:   "vector",
	KindStruct:   "struct",
	KindFunc:     "function",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind      Kind
	Elem      TypeID // pointer, array, vector
	Count     uint64 // array, vector
	Width     uint32 // int
	AddrSpace uint32 // pointer
	Payload   uint32 // slot in structs/funcs
}

// StructInfo stores the body of a struct type. Identified structs are
// unique per definition; literal structs are interned by shape.
type StructInfo struct {
	Name     string // "" for literal structs; digits when Numbered
	Numbered bool
	Literal  bool
	Opaque   bool // identified struct without a body yet
	Packed   bool
	Fields   []TypeID
}

// FuncInfo stores the signature of a function type.
type FuncInfo struct {
	Result   TypeID
	Params   []TypeID
	Variadic bool
}

// Builtins stores TypeIDs for the primitive types.
type Builtins struct {
	Void     TypeID
	Half     TypeID
	Float    TypeID
	Double   TypeID
	X86FP80  TypeID
	FP128    TypeID
	PPCFP128 TypeID
	Label    TypeID
	Metadata TypeID
	X86MMX   TypeID
	I1       TypeID
	I8       TypeID
	I32      TypeID
	I64      TypeID
}

// Types interns type descriptors. Pointer, array, vector, integer, function
// and literal struct types are deduplicated structurally.
type Types struct {
	types     []Type
	index     map[typeKey]TypeID
	composite map[string]TypeID
	structs   []StructInfo
	funcs     []FuncInfo
	builtins  Builtins
	prims     map[string]TypeID
}

type typeKey struct {
	Kind      Kind
	Elem      TypeID
	Count     uint64
	Width     uint32
	AddrSpace uint32
}

// NewTypes constructs an arena seeded with primitive types.
func NewTypes() *Types {
	t := &Types{
		index:     make(map[typeKey]TypeID, 64),
		composite: make(map[string]TypeID),
		prims:     make(map[string]TypeID, 16),
	}
	t.types = append(t.types, Type{Kind: KindInvalid}) // 0 = NoTypeID
	prim := func(k Kind) TypeID {
		id := t.intern(Type{Kind: k})
		t.prims[k.String()] = id
		return id
	}
	t.builtins = Builtins{
		Void:     prim(KindVoid),
		Half:     prim(KindHalf),
		Float:    prim(KindFloat),
		Double:   prim(KindDouble),
		X86FP80:  prim(KindX86FP80),
		FP128:    prim(KindFP128),
		PPCFP128: prim(KindPPCFP128),
		Label:    prim(KindLabel),
		Metadata: prim(KindMetadata),
		X86MMX:   prim(KindX86MMX),
	}
	t.builtins.I1 = t.Int(1)
	t.builtins.I8 = t.Int(8)
	t.builtins.I32 = t.Int(32)
	t.builtins.I64 = t.Int(64)
	return t
}

// Builtins returns TypeIDs for primitive types.
func (t *Types) Builtins() Builtins {
	return t.builtins
}

// Primitive resolves a primitive type keyword (void, double, label, ...).
func (t *Types) Primitive(name string) (TypeID, bool) {
	id, ok := t.prims[name]
	return id, ok
}

// Len reports how many types were created, NoTypeID included.
func (t *Types) Len() int {
	return len(t.types)
}

func (t *Types) intern(tt Type) TypeID {
	key := typeKey{Kind: tt.Kind, Elem: tt.Elem, Count: tt.Count, Width: tt.Width, AddrSpace: tt.AddrSpace}
	if id, ok := t.index[key]; ok {
		return id
	}
	id := t.appendType(tt)
	t.index[key] = id
	return id
}

func (t *Types) appendType(tt Type) TypeID {
	n, err := safecast.Conv[uint32](len(t.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	t.types = append(t.types, tt)
	return TypeID(n)
}

func slotOf(n int) uint32 {
	s, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("type payload overflow: %w", err))
	}
	return s
}

// Int returns the iN type.
func (t *Types) Int(width uint32) TypeID {
	return t.intern(Type{Kind: KindInt, Width: width})
}

// Pointer returns elem addrspace(n)*.
func (t *Types) Pointer(elem TypeID, addrSpace uint32) TypeID {
	return t.intern(Type{Kind: KindPointer, Elem: elem, AddrSpace: addrSpace})
}

// Array returns [n x elem].
func (t *Types) Array(elem TypeID, n uint64) TypeID {
	return t.intern(Type{Kind: KindArray, Elem: elem, Count: n})
}

// Vector returns <n x elem>.
func (t *Types) Vector(elem TypeID, n uint64) TypeID {
	return t.intern(Type{Kind: KindVector, Elem: elem, Count: n})
}

// Func returns the function type result (params...).
func (t *Types) Func(result TypeID, params []TypeID, variadic bool) TypeID {
	var b strings.Builder
	fmt.Fprintf(&b, "fn:%d:%t", result, variadic)
	for _, p := range params {
		fmt.Fprintf(&b, ",%d", p)
	}
	key := b.String()
	if id, ok := t.composite[key]; ok {
		return id
	}
	t.funcs = append(t.funcs, FuncInfo{Result: result, Params: append([]TypeID(nil), params...), Variadic: variadic})
	id := t.appendType(Type{Kind: KindFunc, Payload: slotOf(len(t.funcs) - 1)})
	t.composite[key] = id
	return id
}

// LiteralStruct returns the anonymous struct { fields } (or <{ fields }>).
func (t *Types) LiteralStruct(fields []TypeID, packed bool) TypeID {
	var b strings.Builder
	fmt.Fprintf(&b, "st:%t", packed)
	for _, f := range fields {
		fmt.Fprintf(&b, ",%d", f)
	}
	key := b.String()
	if id, ok := t.composite[key]; ok {
		return id
	}
	t.structs = append(t.structs, StructInfo{Literal: true, Packed: packed, Fields: append([]TypeID(nil), fields...)})
	id := t.appendType(Type{Kind: KindStruct, Payload: slotOf(len(t.structs) - 1)})
	t.composite[key] = id
	return id
}

// NewIdentified creates a fresh opaque identified struct. Each call returns
// a distinct type even for equal names.
func (t *Types) NewIdentified(name string, numbered bool) TypeID {
	t.structs = append(t.structs, StructInfo{Name: name, Numbered: numbered, Opaque: true})
	return t.appendType(Type{Kind: KindStruct, Payload: slotOf(len(t.structs) - 1)})
}

// SetBody completes an identified struct. It reports false when id is not
// an identified struct or already has a body.
func (t *Types) SetBody(id TypeID, fields []TypeID, packed bool) bool {
	info := t.Struct(id)
	if info == nil || info.Literal || !info.Opaque {
		return false
	}
	info.Fields = append([]TypeID(nil), fields...)
	info.Packed = packed
	info.Opaque = false
	return true
}

// Lookup returns the descriptor for a TypeID.
func (t *Types) Lookup(id TypeID) Type {
	if int(id) >= len(t.types) {
		return Type{}
	}
	return t.types[id]
}

// Kind is a shortcut for Lookup(id).Kind.
func (t *Types) Kind(id TypeID) Kind {
	return t.Lookup(id).Kind
}

// Struct returns struct details, or nil for non-struct types.
func (t *Types) Struct(id TypeID) *StructInfo {
	tt := t.Lookup(id)
	if tt.Kind != KindStruct {
		return nil
	}
	return &t.structs[tt.Payload]
}

// FuncInfo returns function details, or nil for non-function types.
func (t *Types) FuncInfo(id TypeID) *FuncInfo {
	tt := t.Lookup(id)
	if tt.Kind != KindFunc {
		return nil
	}
	return &t.funcs[tt.Payload]
}

// Elem returns the element of a pointer, array or vector type.
func (t *Types) Elem(id TypeID) TypeID {
	return t.Lookup(id).Elem
}

// ===== Предикаты =====

func (t *Types) IsInt(id TypeID) bool     { return t.Kind(id) == KindInt }
func (t *Types) IsPointer(id TypeID) bool { return t.Kind(id) == KindPointer }
func (t *Types) IsVector(id TypeID) bool  { return t.Kind(id) == KindVector }
func (t *Types) IsVoid(id TypeID) bool    { return t.Kind(id) == KindVoid }
func (t *Types) IsLabel(id TypeID) bool   { return t.Kind(id) == KindLabel }

// IsFloat reports the floating point primitives.
func (t *Types) IsFloat(id TypeID) bool {
	switch t.Kind(id) {
	case KindHalf, KindFloat, KindDouble, KindX86FP80, KindFP128, KindPPCFP128:
		return true
	}
	return false
}

// Scalar returns the element type of a vector, or id itself.
func (t *Types) Scalar(id TypeID) TypeID {
	if t.IsVector(id) {
		return t.Elem(id)
	}
	return id
}

func (t *Types) IsIntOrIntVector(id TypeID) bool { return t.IsInt(t.Scalar(id)) }
func (t *Types) IsFPOrFPVector(id TypeID) bool   { return t.IsFloat(t.Scalar(id)) }
func (t *Types) IsPtrOrPtrVector(id TypeID) bool { return t.IsPointer(t.Scalar(id)) }

// IsAggregate is true for arrays and structs.
func (t *Types) IsAggregate(id TypeID) bool {
	k := t.Kind(id)
	return k == KindArray || k == KindStruct
}

// IsFirstClass is true for anything an instruction may produce.
func (t *Types) IsFirstClass(id TypeID) bool {
	k := t.Kind(id)
	return k != KindInvalid && k != KindVoid && k != KindFunc
}

// IsSingleValue excludes aggregates from first class types.
func (t *Types) IsSingleValue(id TypeID) bool {
	return t.IsFirstClass(id) && !t.IsAggregate(id) && t.Kind(id) != KindLabel && t.Kind(id) != KindMetadata
}

// IntWidth returns the bit width of an integer type, zero otherwise.
func (t *Types) IntWidth(id TypeID) uint32 {
	tt := t.Lookup(id)
	if tt.Kind != KindInt {
		return 0
	}
	return tt.Width
}

// PrimitiveBits returns the size in bits of scalar types, zero when unknown.
func (t *Types) PrimitiveBits(id TypeID) uint64 {
	tt := t.Lookup(id)
	switch tt.Kind {
	case KindInt:
		return uint64(tt.Width)
	case KindHalf:
		return 16
	case KindFloat:
		return 32
	case KindDouble, KindX86MMX:
		return 64
	case KindX86FP80:
		return 80
	case KindFP128, KindPPCFP128:
		return 128
	case KindVector:
		return tt.Count * t.PrimitiveBits(tt.Elem)
	}
	return 0
}

// ValidPointee reports whether elem may be pointed to.
func (t *Types) ValidPointee(elem TypeID) bool {
	switch t.Kind(elem) {
	case KindVoid, KindLabel, KindMetadata, KindInvalid:
		return false
	}
	return true
}

// ValidElement reports whether elem may appear in arrays and structs.
func (t *Types) ValidElement(elem TypeID) bool {
	return t.ValidPointee(elem) && t.Kind(elem) != KindFunc
}

// ValidVectorElement reports whether elem may appear in a vector.
func (t *Types) ValidVectorElement(elem TypeID) bool {
	return t.IsInt(elem) || t.IsFloat(elem) || t.IsPointer(elem)
}

// ValidReturn reports whether id may be a function result.
func (t *Types) ValidReturn(id TypeID) bool {
	switch t.Kind(id) {
	case KindFunc, KindLabel, KindMetadata, KindInvalid:
		return false
	}
	return true
}

// IsSized reports whether values of the type have a known size.
func (t *Types) IsSized(id TypeID) bool {
	return t.isSized(id, nil)
}

func (t *Types) isSized(id TypeID, visiting map[TypeID]bool) bool {
	tt := t.Lookup(id)
	switch tt.Kind {
	case KindInt, KindPointer, KindX86MMX, KindHalf, KindFloat, KindDouble, KindX86FP80, KindFP128, KindPPCFP128:
		return true
	case KindArray, KindVector:
		return t.isSized(tt.Elem, visiting)
	case KindStruct:
		info := t.Struct(id)
		if info.Opaque {
			return false
		}
		if visiting == nil {
			visiting = make(map[TypeID]bool)
		}
		if visiting[id] {
			return false
		}
		visiting[id] = true
		defer delete(visiting, id)
		for _, f := range info.Fields {
			if !t.isSized(f, visiting) {
				return false
			}
		}
		return true
	}
	return false
}

// IndexInto returns the type reached by stepping into an aggregate with the
// constant index idx, or false when the index is invalid.
func (t *Types) IndexInto(agg TypeID, idx uint64) (TypeID, bool) {
	tt := t.Lookup(agg)
	switch tt.Kind {
	case KindArray, KindVector:
		if tt.Kind == KindArray && idx >= tt.Count {
			return NoTypeID, false
		}
		return tt.Elem, true
	case KindStruct:
		info := t.Struct(agg)
		if info.Opaque || idx >= uint64(len(info.Fields)) {
			return NoTypeID, false
		}
		return info.Fields[idx], true
	}
	return NoTypeID, false
}

// ===== Печать =====

// String renders the type in textual IR syntax. Identified structs print as
// their name.
func (t *Types) String(id TypeID) string {
	var b strings.Builder
	t.write(&b, id)
	return b.String()
}

// BodyString renders an identified struct's body (or "opaque").
func (t *Types) BodyString(id TypeID) string {
	info := t.Struct(id)
	if info == nil || info.Literal {
		return t.String(id)
	}
	if info.Opaque {
		return "opaque"
	}
	var b strings.Builder
	t.writeFields(&b, info)
	return b.String()
}

func (t *Types) write(b *strings.Builder, id TypeID) {
	tt := t.Lookup(id)
	switch tt.Kind {
	case KindInt:
		fmt.Fprintf(b, "i%d", tt.Width)
	case KindPointer:
		t.write(b, tt.Elem)
		if tt.AddrSpace != 0 {
			fmt.Fprintf(b, " addrspace(%d)", tt.AddrSpace)
		}
		b.WriteByte('*')
	case KindArray:
		fmt.Fprintf(b, "[%d x ", tt.Count)
		t.write(b, tt.Elem)
		b.WriteByte(']')
	case KindVector:
		fmt.Fprintf(b, "<%d x ", tt.Count)
		t.write(b, tt.Elem)
		b.WriteByte('>')
	case KindFunc:
		info := &t.funcs[tt.Payload]
		t.write(b, info.Result)
		b.WriteString(" (")
		for i, p := range info.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			t.write(b, p)
		}
		if info.Variadic {
			if len(info.Params) > 0 {
				b.WriteString(", ")
			}
			b.WriteString("...")
		}
		b.WriteByte(')')
	case KindStruct:
		info := &t.structs[tt.Payload]
		if !info.Literal {
			if info.Numbered {
				b.WriteString("%" + info.Name)
			} else {
				b.WriteString(QuoteName('%', info.Name))
			}
			return
		}
		t.writeFields(b, info)
	default:
		b.WriteString(tt.Kind.String())
	}
}

func (t *Types) writeFields(b *strings.Builder, info *StructInfo) {
	if info.Packed {
		b.WriteByte('<')
	}
	if len(info.Fields) == 0 {
		b.WriteString("{}")
	} else {
		b.WriteString("{ ")
		for i, f := range info.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			t.write(b, f)
		}
		b.WriteString(" }")
	}
	if info.Packed {
		b.WriteByte('>')
	}
}
