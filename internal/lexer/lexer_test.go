package lexer_test

import (
	"fmt"
	"strings"
	"testing"

	"llasm/internal/diag"
	"llasm/internal/lexer"
	"llasm/internal/source"
	"llasm/internal/token"
)

// makeTestLexer создаёт лексер для тестовой строки
func makeTestLexer(input string) (*lexer.Lexer, *diag.Bag) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.ll", []byte(input))
	bag := diag.NewBag(100)
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	return lx, bag
}

func collect(lx *lexer.Lexer) []token.Token {
	var toks []token.Token
	for {
		t := lx.Next()
		if t.Kind == token.EOF {
			return toks
		}
		toks = append(toks, t)
	}
}

func kindsAndTexts(toks []token.Token) string {
	parts := make([]string, 0, len(toks))
	for _, t := range toks {
		parts = append(parts, fmt.Sprintf("%s(%s)", t.Kind, t.Text))
	}
	return strings.Join(parts, " ")
}

func diagnosticsSummary(bag *diag.Bag) string {
	items := bag.Items()
	parts := make([]string, 0, len(items))
	for _, d := range items {
		parts = append(parts, fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message))
	}
	return strings.Join(parts, "; ")
}

func TestTokenKinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.Kind
		texts []string
	}{
		{"global name", "@foo", []token.Kind{token.GlobalVar}, []string{"foo"}},
		{"quoted global", `@"a b\41"`, []token.Kind{token.GlobalVar}, []string{"a bA"}},
		{"global id", "@12", []token.Kind{token.GlobalID}, []string{"12"}},
		{"local dotted", "%x.y", []token.Kind{token.LocalVar}, []string{"x.y"}},
		{"local id", "%5", []token.Kind{token.LocalVarID}, []string{"5"}},
		{"metadata var", "!dbg", []token.Kind{token.MetadataVar}, []string{"dbg"}},
		{"metadata ref", "!0", []token.Kind{token.Exclaim, token.APSInt}, []string{"!", "0"}},
		{"metadata node", "!{", []token.Kind{token.Exclaim, token.LBrace}, []string{"!", "{"}},
		{"attr group", "#3", []token.Kind{token.AttrGrpID}, []string{"3"}},
		{"label", "entry:", []token.Kind{token.LabelStr}, []string{"entry"}},
		{"dotted label", ".lr.ph:", []token.Kind{token.LabelStr}, []string{".lr.ph"}},
		{"quoted label", `"my label":`, []token.Kind{token.LabelStr}, []string{"my label"}},
		{"numeric label", "1:", []token.Kind{token.LabelID}, []string{"1"}},
		{"string", `"hi\0A"`, []token.Kind{token.StringConstant}, []string{"hi\n"}},
		{"c string", `c"ab\00"`, []token.Kind{token.KwC, token.StringConstant}, []string{"c", "ab\x00"}},
		{"negative int", "-42", []token.Kind{token.APSInt}, []string{"-42"}},
		{"decimal float", "1.5e+3", []token.Kind{token.APFloat}, []string{"1.5e+3"}},
		{"hex double", "0x3FF0000000000000", []token.Kind{token.APFloat}, []string{"0x3FF0000000000000"}},
		{"hex x86_fp80", "0xK3FFF8000000000000000", []token.Kind{token.APFloat}, []string{"0xK3FFF8000000000000000"}},
		{"hex half", "0xH3C00", []token.Kind{token.APFloat}, []string{"0xH3C00"}},
		{"signed hex int", "s0x1F", []token.Kind{token.APSInt}, []string{"s0x1F"}},
		{"int type", "i32", []token.Kind{token.Type}, []string{"i32"}},
		{"pointer", "i8*", []token.Kind{token.Type, token.Star}, []string{"i8", "*"}},
		{"prim types", "void x86_fp80 metadata", []token.Kind{token.Type, token.Type, token.Type}, []string{"void", "x86_fp80", "metadata"}},
		{"keywords", "define internal fastcc", []token.Kind{token.KwDefine, token.KwInternal, token.KwFastcc}, nil},
		{"cc number", "cc10", []token.Kind{token.KwCc, token.APSInt}, []string{"cc", "10"}},
		{"varargs", "(i32, ...)", []token.Kind{token.LParen, token.Type, token.Comma, token.DotDotDot, token.RParen}, nil},
		{"comment", "ret ; trailing\nvoid", []token.Kind{token.KwRet, token.Type}, nil},
		{"vector", "<4 x float>", []token.Kind{token.Less, token.APSInt, token.KwX, token.Type, token.Greater}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx, bag := makeTestLexer(tt.input)
			toks := collect(lx)
			if bag.Len() != 0 {
				t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
			}
			if len(toks) != len(tt.want) {
				t.Fatalf("got %s, want %d tokens", kindsAndTexts(toks), len(tt.want))
			}
			for i, k := range tt.want {
				if toks[i].Kind != k {
					t.Fatalf("token %d: got %s, want %s (all: %s)", i, toks[i].Kind, k, kindsAndTexts(toks))
				}
				if tt.texts != nil && toks[i].Text != tt.texts[i] {
					t.Fatalf("token %d: text %q, want %q", i, toks[i].Text, tt.texts[i])
				}
			}
		})
	}
}

func TestSpans(t *testing.T) {
	lx, _ := makeTestLexer("  @g = global i32 0")
	tok := lx.Next()
	if tok.Span.Start != 2 || tok.Span.End != 4 {
		t.Fatalf("span of @g = %v, want 2..4", tok.Span)
	}
	if peek := lx.Peek(); peek.Kind != token.Equal {
		t.Fatalf("Peek returned %s", peek.Kind)
	}
	if next := lx.Next(); next.Kind != token.Equal {
		t.Fatalf("Next after Peek returned %s", next.Kind)
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diag.Code
	}{
		{"unterminated string", `"abc`, diag.LexUnterminatedString},
		{"bad char", "^", diag.LexUnknownChar},
		{"unknown word", "frobnicate", diag.LexUnknownChar},
		{"int width", "i8388608", diag.LexBadNumber},
		{"empty hex", "0x", diag.LexBadNumber},
		{"bare at", "@ ", diag.LexBadName},
		{"bad hash", "#x", diag.LexBadName},
		{"null in name", `@"a\00b"`, diag.LexBadName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx, bag := makeTestLexer(tt.input)
			collect(lx)
			if bag.Len() == 0 {
				t.Fatalf("expected a diagnostic for %q", tt.input)
			}
			if got := bag.Items()[0].Code; got != tt.code {
				t.Fatalf("code = %s, want %s (%s)", got.ID(), tt.code.ID(), diagnosticsSummary(bag))
			}
			if lx.Errors() == 0 {
				t.Fatalf("Errors() not incremented")
			}
		})
	}
}

func TestTokenizeEndsWithEOF(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.ll", []byte("define void @f() {\nentry:\n  ret void\n}\n"))
	toks := lexer.Tokenize(fs.Get(id), lexer.Options{})
	if len(toks) != 11 {
		t.Fatalf("got %d tokens", len(toks))
	}
	if toks[len(toks)-1].Kind != token.EOF {
		t.Fatalf("last token is %s", toks[len(toks)-1].Kind)
	}
}

func TestUnescape(t *testing.T) {
	got, ok := lexer.Unescape([]byte(`a\5Cb\\c\22`))
	if !ok || got != `a\b\c"` {
		t.Fatalf("Unescape = %q, %v", got, ok)
	}
	if _, ok := lexer.Unescape([]byte(`bad\q`)); ok {
		t.Fatalf("expected failure on \\q")
	}
}
