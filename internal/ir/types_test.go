package ir

import "testing"

func TestTypesDeduplicateStructurally(t *testing.T) {
	ts := NewTypes()
	i32 := ts.Builtins().I32
	if ts.Int(32) != i32 {
		t.Fatalf("i32 should be interned")
	}
	p1 := ts.Pointer(i32, 0)
	p2 := ts.Pointer(i32, 0)
	if p1 != p2 {
		t.Fatalf("pointer types should be deduplicated")
	}
	if ts.Pointer(i32, 1) == p1 {
		t.Fatalf("address space must affect identity")
	}
	f1 := ts.Func(i32, []TypeID{p1}, false)
	f2 := ts.Func(i32, []TypeID{p1}, false)
	if f1 != f2 || ts.Func(i32, []TypeID{p1}, true) == f1 {
		t.Fatalf("function types interned incorrectly")
	}
	s1 := ts.LiteralStruct([]TypeID{i32, p1}, false)
	if s1 != ts.LiteralStruct([]TypeID{i32, p1}, false) || s1 == ts.LiteralStruct([]TypeID{i32, p1}, true) {
		t.Fatalf("literal structs interned incorrectly")
	}
}

func TestIdentifiedStructsAreUnique(t *testing.T) {
	ts := NewTypes()
	a := ts.NewIdentified("Node", false)
	b := ts.NewIdentified("Node", false)
	if a == b {
		t.Fatalf("identified structs must be distinct")
	}
	node := ts.NewIdentified("Node", false)
	if !ts.SetBody(node, []TypeID{ts.Builtins().I32, ts.Pointer(node, 0)}, false) {
		t.Fatalf("SetBody on opaque struct failed")
	}
	if ts.SetBody(node, nil, false) {
		t.Fatalf("second SetBody must fail")
	}
	if got := ts.BodyString(node); got != "{ i32, %Node* }" {
		t.Fatalf("BodyString = %q", got)
	}
	if !ts.IsSized(node) {
		t.Fatalf("recursive struct through a pointer is sized")
	}
	if ts.IsSized(a) {
		t.Fatalf("opaque struct is not sized")
	}
}

func TestTypeString(t *testing.T) {
	ts := NewTypes()
	b := ts.Builtins()
	tests := []struct {
		id   TypeID
		want string
	}{
		{b.Void, "void"},
		{ts.Int(7), "i7"},
		{ts.Pointer(b.I8, 2), "i8 addrspace(2)*"},
		{ts.Array(ts.Vector(b.Float, 4), 3), "[3 x <4 x float>]"},
		{ts.Func(b.I32, []TypeID{b.I8}, true), "i32 (i8, ...)"},
		{ts.LiteralStruct(nil, true), "<{}>"},
		{ts.NewIdentified("my type", false), `%"my type"`},
		{ts.NewIdentified("3", true), "%3"},
	}
	for _, tt := range tests {
		if got := ts.String(tt.id); got != tt.want {
			t.Errorf("String = %q, want %q", got, tt.want)
		}
	}
}

func TestTypePredicates(t *testing.T) {
	ts := NewTypes()
	b := ts.Builtins()
	if ts.ValidPointee(b.Void) || ts.ValidPointee(b.Label) {
		t.Fatalf("void and label are not valid pointees")
	}
	fn := ts.Func(b.Void, nil, false)
	if ts.ValidElement(fn) || !ts.ValidPointee(fn) {
		t.Fatalf("functions may be pointed to but not stored in arrays")
	}
	if ts.ValidReturn(b.Label) || !ts.ValidReturn(b.Void) {
		t.Fatalf("ValidReturn wrong")
	}
	v := ts.Vector(b.I32, 4)
	if !ts.IsIntOrIntVector(v) || ts.IsFPOrFPVector(v) {
		t.Fatalf("vector predicates wrong")
	}
	st := ts.LiteralStruct([]TypeID{b.I32, b.Double}, false)
	if got, ok := ts.IndexInto(st, 1); !ok || got != b.Double {
		t.Fatalf("IndexInto struct = %v, %v", got, ok)
	}
	if _, ok := ts.IndexInto(st, 2); ok {
		t.Fatalf("IndexInto out of range must fail")
	}
}
