package token_test

import (
	"testing"

	"llasm/internal/token"
)

func TestLookupKeyword(t *testing.T) {
	cases := map[string]token.Kind{
		"define":        token.KwDefine,
		"getelementptr": token.KwGetelementptr,
		"seq_cst":       token.KwSeqCst,
		"x86_stdcallcc": token.KwX86Stdcallcc,
		"linkonce_odr":  token.KwLinkonceOdr,
		"blockaddress":  token.KwBlockaddress,
		"umax":          token.KwUmax,
	}
	for lexeme, want := range cases {
		got, ok := token.LookupKeyword(lexeme)
		if !ok || got != want {
			t.Fatalf("LookupKeyword(%q) = %v,%v; want %v", lexeme, got, ok, want)
		}
		if !got.IsKeyword() {
			t.Fatalf("%v must be a keyword", got)
		}
	}
}

func TestLookupKeywordNegative(t *testing.T) {
	for _, s := range []string{"i32", "entry", "Define", "", "%x"} {
		if k, ok := token.LookupKeyword(s); ok {
			t.Fatalf("LookupKeyword(%q) unexpectedly = %v", s, k)
		}
	}
}

func TestKindString(t *testing.T) {
	if got := token.KwDefine.String(); got != "'define'" {
		t.Fatalf("KwDefine.String() = %q", got)
	}
	if got := token.Equal.String(); got != "'='" {
		t.Fatalf("Equal.String() = %q", got)
	}
	if token.Equal.IsKeyword() || token.Type.IsKeyword() {
		t.Fatalf("punctuation classified as keyword")
	}
}
