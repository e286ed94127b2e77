package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"llasm/internal/asm"
)

const configFileName = "llasm.toml"

// fileConfig mirrors llasm.toml. Every section is optional.
type fileConfig struct {
	Diagnostics struct {
		Color   string `toml:"color"`
		Max     int    `toml:"max"`
		Context int    `toml:"context"`
	} `toml:"diagnostics"`
	Trace struct {
		Level  string `toml:"level"`
		Mode   string `toml:"mode"`
		Output string `toml:"output"`
	} `toml:"trace"`
	Cache struct {
		Dir     string `toml:"dir"`
		Enabled bool   `toml:"enabled"`
	} `toml:"cache"`
	Parse struct {
		Jobs      int    `toml:"jobs"`
		AlignAttr string `toml:"align_attr"`
	} `toml:"parse"`
}

// settings is the merged view of defaults, llasm.toml and flags.
type settings struct {
	ConfigPath string

	Color          string
	Quiet          bool
	Timings        bool
	MaxDiagnostics int
	Context        int

	TraceOutput string
	TraceLevel  string
	TraceMode   string

	CacheEnabled bool
	CacheDir     string

	Jobs      int
	AlignAttr asm.AlignPolicy
}

func defaultSettings() *settings {
	return &settings{
		Color:          "auto",
		MaxDiagnostics: 100,
		Context:        2,
		TraceLevel:     "off",
		TraceMode:      "stream",
	}
}

// findConfig ищет llasm.toml от start вверх до корня файловой системы.
func findConfig(start string) (string, bool, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false, err
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && !info.IsDir():
			return candidate, true, nil
		case err != nil && !errors.Is(err, os.ErrNotExist):
			return "", false, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fileConfig{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("diagnostics", "max") && cfg.Diagnostics.Max < 0 {
		return fileConfig{}, fmt.Errorf("%s: [diagnostics].max must not be negative", path)
	}
	if meta.IsDefined("parse", "jobs") && cfg.Parse.Jobs < 0 {
		return fileConfig{}, fmt.Errorf("%s: [parse].jobs must not be negative", path)
	}
	return cfg, nil
}

func parseAlignPolicy(s string) (asm.AlignPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "migrate":
		return asm.AlignMigrate, nil
	case "reject":
		return asm.AlignReject, nil
	}
	return asm.AlignMigrate, fmt.Errorf("invalid align_attr %q (expected migrate|reject)", s)
}

// apply переносит заданные в файле значения поверх текущих.
func (s *settings) apply(cfg fileConfig) error {
	if cfg.Diagnostics.Color != "" {
		s.Color = cfg.Diagnostics.Color
	}
	if cfg.Diagnostics.Max > 0 {
		s.MaxDiagnostics = cfg.Diagnostics.Max
	}
	if cfg.Diagnostics.Context > 0 {
		s.Context = cfg.Diagnostics.Context
	}
	if cfg.Trace.Level != "" {
		s.TraceLevel = cfg.Trace.Level
	}
	if cfg.Trace.Mode != "" {
		s.TraceMode = cfg.Trace.Mode
	}
	if cfg.Trace.Output != "" {
		s.TraceOutput = cfg.Trace.Output
	}
	s.CacheEnabled = s.CacheEnabled || cfg.Cache.Enabled
	if cfg.Cache.Dir != "" {
		s.CacheDir = cfg.Cache.Dir
	}
	if cfg.Parse.Jobs > 0 {
		s.Jobs = cfg.Parse.Jobs
	}
	if cfg.Parse.AlignAttr != "" {
		policy, err := parseAlignPolicy(cfg.Parse.AlignAttr)
		if err != nil {
			return err
		}
		s.AlignAttr = policy
	}
	return nil
}

// resolveSettings merges defaults, the config file and explicitly set flags,
// in that order.
func resolveSettings(cmd *cobra.Command) (*settings, error) {
	s := defaultSettings()
	flags := cmd.Root().PersistentFlags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if configPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		found, ok, err := findConfig(wd)
		if err != nil {
			return nil, err
		}
		if ok {
			configPath = found
		}
	}
	if configPath != "" {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return nil, err
		}
		if err := s.apply(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", configPath, err)
		}
		s.ConfigPath = configPath
		if s.CacheDir != "" && !filepath.IsAbs(s.CacheDir) {
			s.CacheDir = filepath.Join(filepath.Dir(configPath), s.CacheDir)
		}
	}

	if flags.Changed("color") {
		s.Color, _ = flags.GetString("color")
	}
	if flags.Changed("max-diagnostics") {
		s.MaxDiagnostics, _ = flags.GetInt("max-diagnostics")
	}
	if flags.Changed("trace") {
		s.TraceOutput, _ = flags.GetString("trace")
	}
	if flags.Changed("trace-level") {
		s.TraceLevel, _ = flags.GetString("trace-level")
	}
	if flags.Changed("trace-mode") {
		s.TraceMode, _ = flags.GetString("trace-mode")
	}
	if flags.Changed("align-attr") {
		v, _ := flags.GetString("align-attr")
		policy, err := parseAlignPolicy(v)
		if err != nil {
			return nil, err
		}
		s.AlignAttr = policy
	}
	s.Quiet, _ = flags.GetBool("quiet")
	s.Timings, _ = flags.GetBool("timings")

	switch s.Color {
	case "auto", "on", "off":
	default:
		return nil, fmt.Errorf("invalid color mode %q (expected auto|on|off)", s.Color)
	}
	return s, nil
}

func (s *settings) useColor(f *os.File) bool {
	return s.Color == "on" || (s.Color == "auto" && isTerminal(f))
}
