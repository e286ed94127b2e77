package asm

import (
	"context"
	"strings"
	"testing"

	"llasm/internal/ir"
)

func TestAttrGroupMergedAtFinalize(t *testing.T) {
	src := `declare void @g()

define void @f() {
  call void @g() #2
  ret void
}

attributes #2 = { noinline }
`
	p := newParser(context.Background(), loadFile(t, "groups.ll", src), Options{})
	if err := p.parseModule(); err != nil {
		t.Fatalf("parse: %v", err)
	}
	call := p.m.Function("f").Blocks[0].Instrs[0]
	if call.Op != ir.OpCall {
		t.Fatalf("first instruction is %s, want call", call.Op)
	}
	if call.FnAttrs.Has(ir.AttrNoInline) {
		t.Fatalf("noinline merged before finalize")
	}
	if len(call.AttrGroups) != 1 || call.AttrGroups[0] != 2 {
		t.Fatalf("call groups = %v, want [2]", call.AttrGroups)
	}
	if err := p.finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !call.FnAttrs.Has(ir.AttrNoInline) {
		t.Fatalf("noinline missing after finalize")
	}
}

func TestAttrGroupAlignMovesToFunction(t *testing.T) {
	src := "define void @f() #0 {\n  ret void\n}\nattributes #0 = { nounwind align=16 }\n"
	m := mustParse(t, src)
	f := m.Function("f")
	if f.Align != 16 {
		t.Fatalf("align = %d, want 16", f.Align)
	}
	if f.FnAttrs.Align != 0 {
		t.Fatalf("alignment left in attribute set")
	}
	if !f.FnAttrs.Has(ir.AttrNoUnwind) {
		t.Fatalf("nounwind not merged")
	}
}

func TestAttrGroupAlignRejected(t *testing.T) {
	src := "attributes #0 = { nounwind align=16 }\n"
	_, err := Parse(context.Background(), loadFile(t, "align.ll", src), Options{AlignAttr: AlignReject})
	if class, _ := ClassOf(err); class != AttributeMisuse {
		t.Fatalf("class = %s, want %s (%v)", class, AttributeMisuse, err)
	}
}

func TestFinalizeStepOrder(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "attachment before attribute group",
			src:  "define void @f() #9 {\n  ret void, !dbg !4\n}\n",
			want: "!4",
		},
		{
			name: "attribute group before blockaddress",
			src:  "declare void @f() #9\n@ba = global i8* blockaddress(@g, %bb)\n",
			want: "#9",
		},
		{
			name: "blockaddress before types",
			src:  "@ba = global i8* blockaddress(@g, %bb)\n@p = global %Missing* null\n",
			want: "@g",
		},
		{
			name: "types before globals",
			src:  "@q = global i32* @nowhere\n@p = global %Missing* null\n",
			want: "Missing",
		},
		{
			name: "globals before metadata",
			src:  "!0 = metadata !{metadata !5}\n@q = global i32* @nowhere\n",
			want: "@nowhere",
		},
		{
			name: "lowest metadata slot first",
			src:  "!0 = metadata !{metadata !9, metadata !3}\n",
			want: "!3",
		},
		{
			name: "lowest numbered global first",
			src:  "@a = global i32* @5\n@b = global i32* @2\n",
			want: "@2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseString(t, tt.src)
			if err == nil {
				t.Fatalf("expected finalize error")
			}
			if class, _ := ClassOf(err); class != UnresolvedReference {
				t.Fatalf("class = %s (%v)", class, err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q should name %q", err.Error(), tt.want)
			}
		})
	}
}

func TestNoPlaceholderSurvives(t *testing.T) {
	for _, path := range testdataFiles(t) {
		src := readTestdata(t, path)
		m, err := parseString(t, src)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		check := func(where string, ops []ir.Value) {
			for _, v := range ops {
				if _, ok := v.(*ir.Forward); ok {
					t.Fatalf("%s: placeholder left in %s", path, where)
				}
			}
		}
		for _, g := range m.Vars {
			check("@"+g.Name, g.Operands())
		}
		for _, a := range m.Aliases {
			check("@"+a.Name, a.Operands())
		}
		for _, f := range m.Funcs {
			for _, b := range f.Blocks {
				for _, in := range b.Instrs {
					check("@"+f.Name, in.Ops)
				}
			}
		}
	}
}
