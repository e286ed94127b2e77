package ir

import "testing"

func TestMetadataCycleResolves(t *testing.T) {
	a := NewMDArena()
	n0 := a.NewTemporary()
	n1 := a.New([]MDOperand{{Kind: MDOpNode, Node: n0}})
	if !a.Fill(n0, []MDOperand{{Kind: MDOpNode, Node: n1}}) {
		t.Fatalf("Fill of temporary failed")
	}
	if a.Fill(n0, nil) {
		t.Fatalf("second Fill must fail")
	}
	if got := a.ResolveCycles(); got != 2 {
		t.Fatalf("ResolveCycles = %d, want 2", got)
	}
	if !a.Node(n0).Resolved || !a.Node(n1).Resolved {
		t.Fatalf("cycle members must be resolved")
	}
	if a.Node(n0).Ops[0].Node != n1 || a.Node(n1).Ops[0].Node != n0 {
		t.Fatalf("cycle edges lost")
	}
}

func TestMetadataTemporaryBlocksResolution(t *testing.T) {
	a := NewMDArena()
	tmp := a.NewTemporary()
	user := a.New([]MDOperand{{Kind: MDOpString, Str: "x"}, {Kind: MDOpNode, Node: tmp}})
	leaf := a.New([]MDOperand{{Kind: MDOpNull}})
	a.ResolveCycles()
	if a.Node(user).Resolved {
		t.Fatalf("node reaching a temporary must stay unresolved")
	}
	if !a.Node(leaf).Resolved {
		t.Fatalf("leaf must resolve")
	}
	if got := a.Temporaries(); len(got) != 1 || got[0] != tmp {
		t.Fatalf("Temporaries = %v", got)
	}
}
