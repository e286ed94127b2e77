package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join("testdata", "project", configFileName)}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseSummary(t *testing.T) {
	out, err := execute(t, "parse", "--format", "summary", filepath.Join("testdata", "project", "sub", "ok.ll"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(out, "1 globals") || !strings.Contains(out, "1 functions") {
		t.Fatalf("summary = %q", out)
	}
}

func TestParseFailureIsSilentError(t *testing.T) {
	_, err := execute(t, "parse", "--format", "none", filepath.Join("testdata", "project", "sub", "bad.ll"))
	if !errors.Is(err, errFailed) {
		t.Fatalf("err = %v, want errFailed", err)
	}
}

func TestCheckDirectory(t *testing.T) {
	out, err := execute(t, "check", "--format", "short", filepath.Join("testdata", "project", "sub"))
	if !errors.Is(err, errFailed) {
		t.Fatalf("err = %v, want errFailed", err)
	}
	if !strings.Contains(out, "checked 2 file(s): 1 failed") {
		t.Fatalf("output = %q", out)
	}
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, "version", "--format", "json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	for _, want := range []string{`"tool": "llasm"`, `"dialect": "LLVM 3.3"`, `"align_attr": "reject"`, `"cache_schema": 1`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q lacks %s", out, want)
		}
	}
	if strings.Contains(out, `"commit"`) {
		t.Fatalf("build details printed without --build: %q", out)
	}
}

func TestVersionPretty(t *testing.T) {
	out, err := execute(t, "version", "--format", "pretty")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "llasm ") || !strings.Contains(out, "align_attr:   reject") {
		t.Fatalf("output = %q", out)
	}
}
