// Package diag defines the diagnostic model shared by the tokenizer, the IR
// reader and the driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error (severity.go).
//   - Code: compact numeric identifier with a stable string form (codes.go).
//     Code ranges map one-to-one onto the reader's error classes:
//     LEX/SYN are syntax errors, DUP duplicate definitions, TYP type
//     mismatches, UNR unresolved references and ATR attribute misuse.
//   - Message: short human text, usually quoting the offending name.
//   - Primary: the source.Span of the issue.
//   - Notes: optional secondary spans ("previous definition is here").
//
// # Producers
//
// Producers talk to a Reporter. BagReporter stores into a Bag with an upper
// limit, DedupReporter filters repeats, NopReporter drops everything.
// ReportBuilder is a small fluent helper for attaching notes before Emit.
//
// Package diag does no IO and no colouring; rendering lives in
// internal/diagfmt.
package diag
