package main

import (
	"path/filepath"
	"strings"
	"testing"

	"llasm/internal/asm"
)

func TestFindConfigWalksUp(t *testing.T) {
	start := filepath.Join("testdata", "project", "sub")
	path, ok, err := findConfig(start)
	if err != nil || !ok {
		t.Fatalf("findConfig: ok=%v err=%v", ok, err)
	}
	if filepath.Base(path) != configFileName || filepath.Base(filepath.Dir(path)) != "project" {
		t.Fatalf("path = %s", path)
	}
}

func TestFindConfigMissing(t *testing.T) {
	_, ok, err := findConfig(t.TempDir())
	if err != nil {
		t.Fatalf("findConfig: %v", err)
	}
	if ok {
		t.Skip("an llasm.toml exists above the temp dir")
	}
}

func TestLoadConfigApply(t *testing.T) {
	cfg, err := loadConfig(filepath.Join("testdata", "project", configFileName))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	s := defaultSettings()
	if err := s.apply(cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if s.Color != "off" || s.MaxDiagnostics != 5 || s.Context != 1 {
		t.Fatalf("diagnostics settings = %+v", s)
	}
	if s.Jobs != 2 || s.AlignAttr != asm.AlignReject {
		t.Fatalf("parse settings = %+v", s)
	}
	if s.CacheDir != ".cache" || s.CacheEnabled {
		t.Fatalf("cache settings = %+v", s)
	}
	// не заданное в файле остаётся по умолчанию
	if s.TraceLevel != "off" || s.TraceMode != "stream" {
		t.Fatalf("trace settings = %+v", s)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	_, err := loadConfig(filepath.Join("testdata", "badkey.toml"))
	if err == nil || !strings.Contains(err.Error(), "diagnostics.colour") {
		t.Fatalf("err = %v", err)
	}
}

func TestParseAlignPolicy(t *testing.T) {
	tests := []struct {
		in   string
		want asm.AlignPolicy
		ok   bool
	}{
		{"", asm.AlignMigrate, true},
		{"migrate", asm.AlignMigrate, true},
		{" Reject ", asm.AlignReject, true},
		{"drop", asm.AlignMigrate, false},
	}
	for _, tt := range tests {
		got, err := parseAlignPolicy(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("parseAlignPolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestParseProgressMode(t *testing.T) {
	tests := []struct {
		in   string
		want progressMode
		ok   bool
	}{
		{"", progressAuto, true},
		{"auto", progressAuto, true},
		{"ON", progressOn, true},
		{"never", progressOff, true},
		{"sometimes", progressAuto, false},
	}
	for _, tt := range tests {
		got, err := parseProgressMode(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("parseProgressMode(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestShowProgress(t *testing.T) {
	if !showProgress(progressOn, 1, true) {
		t.Errorf("--ui=on must show the view")
	}
	if showProgress(progressOff, 100, false) {
		t.Errorf("--ui=off must hide the view")
	}
	if showProgress(progressAuto, progressMinFiles-1, false) {
		t.Errorf("auto mode shows the view for a small batch")
	}
	if showProgress(progressAuto, 100, true) {
		t.Errorf("auto mode shows the view under --quiet")
	}
}
