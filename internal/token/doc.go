// Package token defines lexical token kinds for the textual IR.
// Invariants:
//   - Text of @/%/! tokens is the decoded name without its sigil; quoted
//     names have their \XX escapes applied.
//   - Primitive type names (i1, i32, void, float, label, metadata, ...) are a
//     single Type kind; the parser maps Text to a type.
//   - Comments (';' to end of line) never reach the token stream.
package token
