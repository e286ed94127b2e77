package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Tracer receives events. Emit must be safe for concurrent use: batch
// workers share one tracer.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// Dumper is a tracer that keeps recent events in memory.
type Dumper interface {
	Dump(w io.Writer, format Format) error
}

// StorageMode selects where events go.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // written immediately
	ModeRing                          // kept in memory, written on failure
	ModeBoth
)

var modeNames = [...]string{
	ModeStream: "stream",
	ModeRing:   "ring",
	ModeBoth:   "both",
}

func (m StorageMode) String() string {
	if int(m) < len(modeNames) && modeNames[m] != "" {
		return modeNames[m]
	}
	return "unknown"
}

// ParseMode accepts stream, ring and both.
func ParseMode(s string) (StorageMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n != "" && n == name {
			return StorageMode(m), nil
		}
	}
	return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

type Config struct {
	Level  Level
	Mode   StorageMode
	Format Format // FormatAuto picks by OutputPath extension
	// Output wins over OutputPath. OutputPath "" or "-" is stderr.
	Output     io.Writer
	OutputPath string
	RingSize   int
	Heartbeat  time.Duration
}

// EffectiveMode is Mode, except that LevelError always uses the ring.
func (c Config) EffectiveMode() StorageMode {
	if c.Level == LevelError {
		return ModeRing
	}
	return c.Mode
}

// EffectiveFormat resolves FormatAuto: *.ndjson gives NDJSON, *.json gives
// chrome, anything else text.
func (c Config) EffectiveFormat() Format {
	if c.Format != FormatAuto {
		return c.Format
	}
	switch {
	case c.Output != nil, c.OutputPath == "", c.OutputPath == "-":
		return FormatText
	case strings.HasSuffix(c.OutputPath, ".ndjson"):
		return FormatNDJSON
	case strings.HasSuffix(c.OutputPath, ".json"):
		return FormatChrome
	}
	return FormatText
}

// New builds the tracer described by cfg. In ring mode nothing is opened
// until DumpRecent.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	switch cfg.EffectiveMode() {
	case ModeStream:
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		return NewStreamTracer(w, cfg.Level, cfg.EffectiveFormat()), nil
	case ModeRing:
		return NewRingTracer(cfg.RingSize, cfg.Level), nil
	case ModeBoth:
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		return NewMultiTracer(cfg.Level,
			NewStreamTracer(w, cfg.Level, cfg.EffectiveFormat()),
			NewRingTracer(cfg.RingSize, cfg.Level),
		), nil
	}
	return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
}

// DumpRecent writes the events t keeps in memory after a failed run. In
// ring mode they go to the configured output; in both mode the output
// already has them, so the tail goes to stderr. Tracers without memory are
// left alone.
func DumpRecent(t Tracer, cfg Config) error {
	d, ok := t.(Dumper)
	if !ok {
		return nil
	}
	if cfg.EffectiveMode() == ModeBoth {
		return d.Dump(os.Stderr, FormatText)
	}
	w, err := openOutput(cfg)
	if err != nil {
		return err
	}
	err = d.Dump(w, cfg.EffectiveFormat())
	if c, ok := w.(io.Closer); ok && w != os.Stderr {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}
