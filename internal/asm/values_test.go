package asm

import (
	"math"
	"strings"
	"testing"

	"llasm/internal/ir"
)

func initOf(t *testing.T, src, name string) ir.Value {
	t.Helper()
	m := mustParse(t, src)
	g := m.Global(name)
	if g == nil {
		t.Fatalf("global @%s missing", name)
	}
	return g.Init
}

func TestFloatConstants(t *testing.T) {
	tests := []struct {
		src  string
		v    float64
		hex  string
		nan  bool
		desc string
	}{
		{src: "@x = global double 1.5", v: 1.5, desc: "decimal double"},
		{src: "@x = global float 0.5", v: 0.5, desc: "exact float"},
		{src: "@x = global double 0x3FF0000000000000", v: 1, desc: "hex double"},
		{src: "@x = global float 0x3FB99999A0000000", v: float64(float32(0.1)), desc: "hex float"},
		{src: "@x = global half 0xH3C00", v: 1, desc: "half bits"},
		{src: "@x = global half 0xH0001", v: math.Ldexp(1, -24), desc: "half subnormal"},
		{src: "@x = global half 2.0", v: 2, desc: "decimal half"},
		{src: "@x = global double 1.0e400", v: math.Inf(1), desc: "overflow to inf"},
		{src: "@x = global float 0x7FF8000000000000", nan: true, desc: "nan float"},
		{src: "@x = global x86_fp80 0xK3FFF8000000000000000", hex: "0xK3FFF8000000000000000", desc: "fp80 bits"},
		{src: "@x = global x86_fp80 1.0", hex: "0xK3FFF8000000000000000", desc: "fp80 from decimal"},
		{src: "@x = global fp128 0xL00000000000000003fff000000000000", hex: "0xL00000000000000003FFF000000000000", desc: "fp128 lower case digits"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			c, ok := initOf(t, tt.src+"\n", "x").(*ir.ConstFloat)
			if !ok {
				t.Fatalf("initializer is not a float constant")
			}
			switch {
			case tt.hex != "":
				if c.Hex != tt.hex {
					t.Fatalf("hex = %q, want %q", c.Hex, tt.hex)
				}
			case tt.nan:
				if !math.IsNaN(c.V) {
					t.Fatalf("value = %v, want NaN", c.V)
				}
			default:
				if c.V != tt.v {
					t.Fatalf("value = %v, want %v", c.V, tt.v)
				}
			}
		})
	}
}

func TestFloatConstantErrors(t *testing.T) {
	tests := []string{
		"@x = global float 0.1\n",
		"@x = global half 0.1\n",
		"@x = global double 0xK3FFF8000000000000000\n",
		"@x = global half 0xH3C0\n",
		"@x = global i32 1.0\n",
		// без точки экспонента не делает литерал вещественным
		"@x = global double 1e400\n",
	}
	for _, src := range tests {
		if _, err := parseString(t, src); err == nil {
			t.Errorf("%q: expected error", strings.TrimSpace(src))
		}
	}
}

func TestIntegerConstants(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"@x = global i32 -7", "-7"},
		{"@x = global i1 true", "-1"},
		{"@x = global i1 false", "0"},
		{"@x = global i128 170141183460469231731687303715884105727", "170141183460469231731687303715884105727"},
		{"@x = global i8 255", "-1"},
	}
	for _, tt := range tests {
		c, ok := initOf(t, tt.src+"\n", "x").(*ir.ConstInt)
		if !ok {
			t.Fatalf("%s: not an integer constant", tt.src)
		}
		if got := c.V.String(); got != tt.want {
			t.Errorf("%s: value = %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestConstantExpressions(t *testing.T) {
	src := `@arr = global [4 x i32] zeroinitializer
@gep = global i32* getelementptr inbounds ([4 x i32]* @arr, i32 0, i32 2)
@cast = global i64 ptrtoint (i32* @gep2 to i64)
@gep2 = global i32 0
@cmp = global i1 icmp ne (i32* @gep2, i32* null)
@fcmp = global i1 fcmp ogt (double 1.0, double 0.0)
@ev = global i8 extractvalue ({ i32, i8 } { i32 1, i8 2 }, 1)
@sv = global <2 x i32> shufflevector (<2 x i32> <i32 1, i32 2>, <2 x i32> undef, <2 x i32> <i32 1, i32 0>)
`
	m := mustParse(t, src)
	tests := []struct {
		name  string
		op    ir.Opcode
		flags ir.Flags
	}{
		{"gep", ir.OpGetElementPtr, ir.FlagInBounds},
		{"cast", ir.OpPtrToInt, 0},
		{"cmp", ir.OpICmp, 0},
		{"fcmp", ir.OpFCmp, 0},
		{"ev", ir.OpExtractValue, 0},
		{"sv", ir.OpShuffleVector, 0},
	}
	for _, tt := range tests {
		c, ok := m.Global(tt.name).Init.(*ir.ConstExpr)
		if !ok {
			t.Fatalf("@%s: initializer is %T", tt.name, m.Global(tt.name).Init)
		}
		if c.Op != tt.op || c.Flags != tt.flags {
			t.Errorf("@%s: got %s flags %v, want %s flags %v", tt.name, c.Op, c.Flags, tt.op, tt.flags)
		}
	}
	cast := m.Global("cast").Init.(*ir.ConstExpr)
	if cast.Ops[0] != ir.Value(m.Global("gep2")) {
		t.Fatalf("forward operand of ptrtoint not resolved")
	}
}

func TestConstantExpressionErrors(t *testing.T) {
	tests := []struct {
		src   string
		class Class
		want  string
	}{
		{"@x = global i32 add (i32 1, i64 2)\n", TypeMismatch, "i64"},
		{"@x = global i64 trunc (i32 1 to i64)\n", TypeMismatch, "invalid cast"},
		{"@x = global i32 add nnan (i32 1, i32 2)\n", SyntaxError, "nnan"},
		{"@x = global i1 fcmp fast oeq (double 1.0, double 2.0)\n", SyntaxError, "fast"},
		{"@x = global i32 getelementptr (i32 1, i32 0)\n", TypeMismatch, "pointer"},
		{"@x = global i64 add (i32 1, i32 2)\n", TypeMismatch, "i64"},
	}
	for _, tt := range tests {
		_, err := parseString(t, tt.src)
		if err == nil {
			t.Errorf("%q: expected error", strings.TrimSpace(tt.src))
			continue
		}
		if class, _ := ClassOf(err); class != tt.class {
			t.Errorf("%q: class = %s, want %s (%v)", strings.TrimSpace(tt.src), class, tt.class, err)
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%q: error %q does not mention %q", strings.TrimSpace(tt.src), err.Error(), tt.want)
		}
	}
}

func TestAggregateConstants(t *testing.T) {
	m := mustParse(t, `@s = global { i32, i8 } { i32 1, i8 2 }
@a = global [2 x i16] [i16 1, i16 2]
@str = global [3 x i8] c"ab\00"
@v = global <2 x float> <float 1.0, float 2.0>
`)
	if agg, ok := m.Global("s").Init.(*ir.ConstAggregate); !ok || len(agg.Elems) != 2 {
		t.Fatalf("struct initializer = %#v", m.Global("s").Init)
	}
	if agg, ok := m.Global("a").Init.(*ir.ConstAggregate); !ok || len(agg.Elems) != 2 {
		t.Fatalf("array initializer = %#v", m.Global("a").Init)
	}
	if s, ok := m.Global("str").Init.(*ir.ConstString); !ok || string(s.Data) != "ab\x00" {
		t.Fatalf("string initializer = %#v", m.Global("str").Init)
	}
	if agg, ok := m.Global("v").Init.(*ir.ConstAggregate); !ok || len(agg.Elems) != 2 {
		t.Fatalf("vector initializer = %#v", m.Global("v").Init)
	}
}
