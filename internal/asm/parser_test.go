package asm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"llasm/internal/diag"
	"llasm/internal/ir"
	"llasm/internal/source"
)

func loadFile(t *testing.T, name, src string) *source.File {
	t.Helper()
	fs := source.NewFileSetWithBase("")
	id := fs.AddVirtual(name, []byte(src))
	return fs.Get(id)
}

func parseString(t *testing.T, src string) (*ir.Module, error) {
	t.Helper()
	return Parse(context.Background(), loadFile(t, "test.ll", src), Options{})
}

func mustParse(t *testing.T, src string) *ir.Module {
	t.Helper()
	m, err := parseString(t, src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return m
}

func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil {
		return "<nil bag>"
	}
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

func testdataFiles(t *testing.T) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join("testdata", "*.ll"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("no testdata")
	}
	return files
}

func readTestdata(t *testing.T, path string) string {
	t.Helper()
	src, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(src)
}

func TestParseTestdata(t *testing.T) {
	for _, path := range testdataFiles(t) {
		t.Run(filepath.Base(path), func(t *testing.T) {
			m, err := parseString(t, readTestdata(t, path))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if err := ir.Verify(m); err != nil {
				t.Fatalf("verify: %v", err)
			}
		})
	}
}

func TestSelfReferentialStruct(t *testing.T) {
	m := mustParse(t, "%Node = type { i32, %Node* }\n@head = global %Node* null\n")
	var node ir.TypeID = ir.NoTypeID
	for _, td := range m.TypeDefs {
		if td.Name == "Node" {
			node = td.Type
		}
	}
	if node == ir.NoTypeID {
		t.Fatalf("type Node not recorded")
	}
	st := m.Types.Struct(node)
	if st == nil || st.Opaque || len(st.Fields) != 2 {
		t.Fatalf("unexpected body for %%Node: %+v", st)
	}
	if got := m.Types.Elem(st.Fields[1]); got != node {
		t.Fatalf("second field points at %s, want %%Node", m.Types.String(got))
	}
}

func TestRecursiveNonStructFails(t *testing.T) {
	_, err := parseString(t, "%T = type %T\n")
	if err == nil {
		t.Fatalf("expected error for recursive alias")
	}
	if !strings.Contains(err.Error(), "may not be recursive") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestForwardGlobalInitializer(t *testing.T) {
	m := mustParse(t, "@g = global i32* @h\n@h = global i32 0\n")
	g, h := m.Global("g"), m.Global("h")
	if g == nil || h == nil {
		t.Fatalf("globals missing: g=%v h=%v", g, h)
	}
	if g.Init != ir.Value(h) {
		t.Fatalf("@g initializer is %T, want @h itself", g.Init)
	}
	if m.Vars[0] != g || m.Vars[1] != h {
		t.Fatalf("globals out of definition order")
	}
}

func TestForwardNumberedGlobal(t *testing.T) {
	m := mustParse(t, "@0 = global i32* @1\n@1 = global i32 42\n")
	if len(m.Vars) != 2 {
		t.Fatalf("got %d globals, want 2", len(m.Vars))
	}
	if m.Vars[0].Init != ir.Value(m.Vars[1]) {
		t.Fatalf("@0 does not point at @1")
	}
}

func TestMetadataCycle(t *testing.T) {
	m := mustParse(t, "!0 = metadata !{metadata !1}\n!1 = metadata !{metadata !0}\n")
	a, ok := m.MDSlot(0)
	if !ok {
		t.Fatalf("!0 missing")
	}
	b, ok := m.MDSlot(1)
	if !ok {
		t.Fatalf("!1 missing")
	}
	na, nb := m.MD.Node(a), m.MD.Node(b)
	if len(na.Ops) != 1 || na.Ops[0].Kind != ir.MDOpNode || na.Ops[0].Node != b {
		t.Fatalf("!0 should reference !1, got %+v", na.Ops)
	}
	if len(nb.Ops) != 1 || nb.Ops[0].Kind != ir.MDOpNode || nb.Ops[0].Node != a {
		t.Fatalf("!1 should reference !0, got %+v", nb.Ops)
	}
	if na.Temporary || nb.Temporary {
		t.Fatalf("cycle left temporary nodes")
	}
}

func TestBlockAddressBeforeFunction(t *testing.T) {
	src := `@ba = global i8* blockaddress(@f, %bb)

define void @f() {
entry:
  br label %bb
bb:
  ret void
}
`
	m := mustParse(t, src)
	ba, ok := m.Global("ba").Init.(*ir.BlockAddress)
	if !ok {
		t.Fatalf("initializer is %T, want blockaddress", m.Global("ba").Init)
	}
	f := m.Function("f")
	if ba.Ops[0] != ir.Value(f) {
		t.Fatalf("blockaddress function is %T", ba.Ops[0])
	}
	if ba.Ops[1] != ir.Value(f.Blocks[1]) {
		t.Fatalf("blockaddress block does not point at %%bb")
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		class Class
		want  []string
	}{
		{
			name:  "global type mismatch names both types",
			src:   "@p = global i32* @g\n@g = global i64 0\n",
			class: TypeMismatch,
			want:  []string{"i32*", "i64*"},
		},
		{
			name:  "unresolved numbered local",
			src:   "define i32 @f(i32, i32) {\n  %3 = add i32 %0, %1\n  %4 = add i32 %3, %5\n  ret i32 %4\n}\n",
			class: UnresolvedReference,
			want:  []string{"'%5'"},
		},
		{
			name:  "unresolved global",
			src:   "@p = global i32* @nowhere\n",
			class: UnresolvedReference,
			want:  []string{"@nowhere"},
		},
		{
			name:  "unresolved type",
			src:   "@p = global %Missing* null\n",
			class: UnresolvedReference,
			want:  []string{"Missing"},
		},
		{
			name:  "blockaddress to missing block",
			src:   "@ba = global i8* blockaddress(@f, %nope)\ndefine void @f() {\nentry:\n  ret void\n}\n",
			class: UnresolvedReference,
			want:  []string{"%nope"},
		},
		{
			name:  "blockaddress to undefined function",
			src:   "@ba = global i8* blockaddress(@f, %bb)\n",
			class: UnresolvedReference,
		},
		{
			name:  "undefined metadata",
			src:   "!0 = metadata !{metadata !7}\n",
			class: UnresolvedReference,
			want:  []string{"!7"},
		},
		{
			name:  "undefined attribute group",
			src:   "declare void @f() #4\n",
			class: UnresolvedReference,
			want:  []string{"#4"},
		},
		{
			name:  "duplicate global",
			src:   "@g = global i32 0\n@g = global i32 1\n",
			class: DuplicateDefinition,
		},
		{
			name:  "duplicate type",
			src:   "%T = type { i32 }\n%T = type { i64 }\n",
			class: DuplicateDefinition,
		},
		{
			name:  "duplicate local",
			src:   "define void @f() {\n  %x = add i32 0, 0\n  %x = add i32 1, 1\n  ret void\n}\n",
			class: DuplicateDefinition,
		},
		{
			name:  "duplicate switch case",
			src:   "define void @f(i32 %x) {\nentry:\n  switch i32 %x, label %d [ i32 1, label %d\n i32 1, label %d ]\nd:\n  ret void\n}\n",
			class: DuplicateDefinition,
		},
		{
			name:  "duplicate attribute group",
			src:   "attributes #0 = { nounwind }\nattributes #0 = { noreturn }\n",
			class: DuplicateDefinition,
		},
		{
			name:  "syntax error",
			src:   "@g = global i32\n",
			class: SyntaxError,
		},
		{
			name:  "unknown top level",
			src:   "42\n",
			class: SyntaxError,
			want:  []string{"expected top-level entity"},
		},
		{
			name:  "binary operand mismatch",
			src:   "define void @f(i32 %a, i64 %b) {\n  %c = add i32 %a, %b\n  ret void\n}\n",
			class: TypeMismatch,
			want:  []string{"i32", "i64"},
		},
		{
			name:  "ret type mismatch",
			src:   "define i32 @f() {\n  ret i64 0\n}\n",
			class: TypeMismatch,
			want:  []string{"i32", "i64"},
		},
		{
			name:  "store mismatch",
			src:   "define void @f(i32* %p) {\n  store i64 0, i32* %p\n  ret void\n}\n",
			class: TypeMismatch,
			want:  []string{"i64", "i32*"},
		},
		{
			name:  "call argument mismatch",
			src:   "declare void @g(i32)\ndefine void @f() {\n  call void @g(i64 1)\n  ret void\n}\n",
			class: TypeMismatch,
			want:  []string{"i64", "i32"},
		},
		{
			name:  "invalid cast",
			src:   "define void @f(i32 %a) {\n  %b = trunc i32 %a to i64\n  ret void\n}\n",
			class: TypeMismatch,
			want:  []string{"i32", "i64"},
		},
		{
			name:  "fast-math on integers",
			src:   "define void @f(i32 %a) {\n  %b = add nnan i32 %a, %a\n  ret void\n}\n",
			class: SyntaxError,
			want:  []string{"'nnan' is not allowed on 'add'"},
		},
		{
			name:  "atomic load needs alignment",
			src:   "define void @f(i32* %p) {\n  %v = load atomic i32* %p seq_cst\n  ret void\n}\n",
			class: SyntaxError,
			want:  []string{"alignment"},
		},
		{
			name:  "atomic store cannot acquire",
			src:   "define void @f(i32* %p) {\n  store atomic i32 0, i32* %p acquire, align 4\n  ret void\n}\n",
			class: SyntaxError,
			want:  []string{"Acquire"},
		},
		{
			name:  "atomic load cannot release",
			src:   "define void @f(i32* %p) {\n  %v = load atomic i32* %p acq_rel, align 4\n  ret void\n}\n",
			class: SyntaxError,
			want:  []string{"Release"},
		},
		{
			name:  "nuw on floating point",
			src:   "define void @f(float %a) {\n  %b = add nuw float %a, %a\n  ret void\n}\n",
			class: TypeMismatch,
			want:  []string{"nuw only applies to integer operations"},
		},
		{
			name:  "nsw on floating point vector",
			src:   "define void @f(<2 x float> %a) {\n  %b = mul nsw <2 x float> %a, %a\n  ret void\n}\n",
			class: TypeMismatch,
			want:  []string{"nsw only applies to integer operations"},
		},
		{
			name:  "exact on floating point",
			src:   "define void @f(double %a) {\n  %b = udiv exact double %a, %a\n  ret void\n}\n",
			class: TypeMismatch,
			want:  []string{"invalid operand type for instruction"},
		},
		{
			name:  "unordered cmpxchg",
			src:   "define void @f(i32* %p) {\n  %v = cmpxchg i32* %p, i32 0, i32 1 unordered\n  ret void\n}\n",
			class: SyntaxError,
			want:  []string{"cmpxchg cannot be unordered"},
		},
		{
			name:  "unordered atomicrmw",
			src:   "define void @f(i32* %p) {\n  %v = atomicrmw add i32* %p, i32 1 unordered\n  ret void\n}\n",
			class: SyntaxError,
			want:  []string{"atomicrmw cannot be unordered"},
		},
		{
			name:  "monotonic fence",
			src:   "define void @f() {\n  fence monotonic\n  ret void\n}\n",
			class: SyntaxError,
			want:  []string{"fence cannot be monotonic"},
		},
		{
			name:  "unordered fence",
			src:   "define void @f() {\n  fence singlethread unordered\n  ret void\n}\n",
			class: SyntaxError,
			want:  []string{"fence cannot be unordered"},
		},
		{
			name:  "group reference inside group",
			src:   "attributes #0 = { #1 }\n",
			class: AttributeMisuse,
		},
		{
			name:  "function attribute on parameter",
			src:   "declare void @f(i32 noreturn)\n",
			class: AttributeMisuse,
		},
		{
			name:  "align on call",
			src:   "declare void @g()\ndefine void @f() {\n  call void @g() align 4\n  ret void\n}\n",
			class: AttributeMisuse,
		},
		{
			name:  "void pointer",
			src:   "@g = global void* null\n",
			class: TypeMismatch,
			want:  []string{"i8*"},
		},
		{
			name:  "float constant too precise for float",
			src:   "@f = global float 0.1\n",
			class: TypeMismatch,
		},
		{
			name:  "empty vector constant",
			src:   "@v = global <2 x i32> < >\n",
			class: TypeMismatch,
		},
		{
			name:  "struct initializer element mismatch",
			src:   "@s = global { i32, i8 } { i32 1, i32 2 }\n",
			class: TypeMismatch,
		},
		{
			name:  "missing terminator at eof",
			src:   "define void @f() {\n  %x = add i32 0, 0\n",
			class: SyntaxError,
			want:  []string{"end of file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := diag.NewBag(8)
			_, err := Parse(context.Background(), loadFile(t, "err.ll", tt.src), Options{Reporter: diag.BagReporter{Bag: bag}})
			if err == nil {
				t.Fatalf("expected %s, parse succeeded", tt.class)
			}
			class, ok := ClassOf(err)
			if !ok {
				t.Fatalf("error %v is not a parse error", err)
			}
			if class != tt.class {
				t.Fatalf("class = %s, want %s (%v)", class, tt.class, err)
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q does not mention %q", err.Error(), w)
				}
			}
			if bag.Len() != 1 {
				t.Fatalf("want exactly one reported diagnostic, got %s", diagnosticsSummary(bag))
			}
		})
	}
}

// Все неверные атрибуты списка сообщаются, ошибка возвращается по первому.
func TestAttrListReportsEveryMisuse(t *testing.T) {
	src := "declare void @f(i32 noreturn zeroext nounwind %x)\n"
	bag := diag.NewBag(8)
	_, err := Parse(context.Background(), loadFile(t, "attrs.ll", src), Options{Reporter: diag.BagReporter{Bag: bag}})
	if err == nil {
		t.Fatalf("expected attribute misuse, parse succeeded")
	}
	if class, _ := ClassOf(err); class != AttributeMisuse {
		t.Fatalf("class = %s, want %s (%v)", class, AttributeMisuse, err)
	}
	if !strings.Contains(err.Error(), "'noreturn'") {
		t.Fatalf("returned error %q should name the first misuse", err)
	}
	items := bag.Items()
	if len(items) != 2 {
		t.Fatalf("want two reported misuses, got %s", diagnosticsSummary(bag))
	}
	if !strings.Contains(items[0].Message, "'noreturn'") || !strings.Contains(items[1].Message, "'nounwind'") {
		t.Fatalf("misuses reported out of order: %s", diagnosticsSummary(bag))
	}
}

func TestUnresolvedReportOrder(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "numbered type before named type",
			src:  "@a = global %Named* null\n@b = global %0* null\n",
			want: "'%0'",
		},
		{
			name: "named global before numbered global",
			src:  "@a = global i32* @0\n@b = global i32* @named\n",
			want: "'@named'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseString(t, tt.src)
			if class, _ := ClassOf(err); class != UnresolvedReference {
				t.Fatalf("class = %s, want %s (%v)", class, UnresolvedReference, err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q should name %s first", err, tt.want)
			}
		})
	}
}

func TestOrderingInvariant(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"globals", "@1 = global i32 0\n"},
		{"globals skipped", "@0 = global i32 0\n@2 = global i32 0\n"},
		{"locals", "define void @f() {\n  %2 = add i32 0, 0\n  ret void\n}\n"},
		{"arguments", "define void @f(i32 %0, i32 %2) {\n  ret void\n}\n"},
		{"types", "%1 = type { i32 }\n%0 = type { i8 }\n"},
		{"metadata", "!1 = metadata !{}\n!0 = metadata !{}\n"},
		{"functions", "define void @1() {\n  ret void\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseString(t, tt.src)
			if err == nil {
				t.Fatalf("expected numbering error")
			}
			if class, _ := ClassOf(err); class != DuplicateDefinition {
				t.Fatalf("class = %s, want %s (%v)", class, DuplicateDefinition, err)
			}
		})
	}
}

func TestNumberedEntitiesInOrder(t *testing.T) {
	src := `%0 = type { i32 }
%1 = type { %0 }
@0 = global %1 zeroinitializer
@1 = global i32 1
define i32 @2(i32) {
  %2 = add i32 %0, 1
  br label %3
  %4 = mul i32 %2, 2
  ret i32 %4
}
!0 = metadata !{}
!1 = metadata !{metadata !0}
`
	m := mustParse(t, src)
	if len(m.Vars) != 2 || len(m.Funcs) != 1 {
		t.Fatalf("got %d vars, %d funcs", len(m.Vars), len(m.Funcs))
	}
	if got := len(m.Funcs[0].Blocks); got != 2 {
		t.Fatalf("got %d blocks, want 2", got)
	}
}

func TestLocalForwardReferenceType(t *testing.T) {
	src := "define void @f() {\nentry:\n  %a = add i32 %b, 1\n  %b = add i64 0, 0\n  ret void\n}\n"
	_, err := parseString(t, src)
	if err == nil {
		t.Fatalf("expected type mismatch")
	}
	if class, _ := ClassOf(err); class != TypeMismatch {
		t.Fatalf("class = %s (%v)", class, err)
	}
	if !strings.Contains(err.Error(), "i32") || !strings.Contains(err.Error(), "i64") {
		t.Fatalf("message should name both types: %v", err)
	}
}

func TestErrorSpan(t *testing.T) {
	src := "@g = global i32 0\n@g = global i32 1\n"
	file := loadFile(t, "span.ll", src)
	_, err := Parse(context.Background(), file, Options{})
	var pe *Error
	if !asError(err, &pe) {
		t.Fatalf("want *Error, got %v", err)
	}
	if pe.Span.File != file.ID {
		t.Fatalf("span file = %d, want %d", pe.Span.File, file.ID)
	}
	if int(pe.Span.Start) != strings.LastIndex(src, "@g") {
		t.Fatalf("span starts at %d, want second @g", pe.Span.Start)
	}
}

func asError(err error, target **Error) bool {
	pe, ok := err.(*Error)
	if ok {
		*target = pe
	}
	return ok
}
