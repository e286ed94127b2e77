package ir

import (
	"math/big"
	"testing"
)

func TestForwardResolveRepointsUses(t *testing.T) {
	ts := NewTypes()
	i32 := ts.Builtins().I32
	ptr := ts.Pointer(i32, 0)
	fwd := &Forward{Typ: ptr, Ref: "@h"}

	g := &GlobalVar{Name: "g", Typ: ts.Pointer(ptr, 0), ValueType: ptr, Init: fwd}
	agg := &ConstAggregate{Typ: ts.Array(ptr, 2), Elems: []Value{fwd, fwd}}
	fwd.AddUse(g, 0)
	fwd.AddUse(agg, 0)
	fwd.AddUse(agg, 1)

	h := &GlobalVar{Name: "h", Typ: ptr, ValueType: i32, Init: &ConstInt{Typ: i32, V: big.NewInt(0)}}
	fwd.Resolve(h)

	if g.Init != h {
		t.Fatalf("global initializer not repointed")
	}
	if agg.Elems[0] != h || agg.Elems[1] != h {
		t.Fatalf("aggregate operands not repointed")
	}
	if fwd.State != ForwardResolved || fwd.Uses != nil || fwd.Target != h {
		t.Fatalf("forward not marked resolved: %+v", fwd)
	}
	fwd.AddUse(g, 0)
	if len(fwd.Uses) != 0 {
		t.Fatalf("resolved forward must not record new uses")
	}
}

func TestAttrSetUnionKeepsExplicitAlign(t *testing.T) {
	inline := AttrSet{Align: 16}.With(AttrNoUnwind)
	group := AttrSet{Align: 4}.With(AttrNoInline).SetString("k", "v")
	got := inline.Union(group)
	if !got.Has(AttrNoInline) || !got.Has(AttrNoUnwind) || got.Align != 16 {
		t.Fatalf("Union = %+v", got)
	}
	if v, ok := got.StringValue("k"); !ok || v != "v" {
		t.Fatalf("string attribute lost")
	}
	if f := got.Format(true); f != `noinline nounwind align=16 "k"="v"` {
		t.Fatalf("Format(group) = %q", f)
	}
	if f := got.Format(false); f != `noinline nounwind align 16 "k"="v"` {
		t.Fatalf("Format(inline) = %q", f)
	}
}

func TestAttrPositions(t *testing.T) {
	tests := []struct {
		k    AttrKind
		pos  Position
		want bool
	}{
		{AttrNoAlias, PosReturn, true},
		{AttrByVal, PosReturn, false},
		{AttrByVal, PosParam, true},
		{AttrNoInline, PosParam, false},
		{AttrNoInline, PosFunction, true},
		{AttrSRet, PosFunction, false},
		{AttrReadOnly, PosParam, true},
	}
	for _, tt := range tests {
		if got := tt.k.ValidAt(tt.pos); got != tt.want {
			t.Errorf("%s.ValidAt(%d) = %v", tt.k, tt.pos, got)
		}
	}
}

func TestQuoteName(t *testing.T) {
	tests := map[string]string{
		"main":   "@main",
		"a.b$c":  "@a.b$c",
		"1x":     `@"1x"`,
		"has sp": `@"has sp"`,
		"q\"":    `@"q\22"`,
	}
	for in, want := range tests {
		if got := QuoteName('@', in); got != want {
			t.Errorf("QuoteName(%q) = %s, want %s", in, got, want)
		}
	}
}
