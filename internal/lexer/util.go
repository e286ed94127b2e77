package lexer

import (
	"fmt"
	"unicode/utf8"

	"fortio.org/safecast"
)

// bumpRune перемещает курсор на размер текущей руны
func (lx *Lexer) bumpRune() {
	if lx.cursor.EOF() {
		return
	}
	_, sz := utf8.DecodeRune(lx.file.Content[lx.cursor.Off:])
	usz, err := safecast.Conv[uint32](sz)
	if err != nil {
		panic(fmt.Errorf("bumpRune overflow: %w", err))
	}
	lx.cursor.Off += usz
}

// ===== Классификаторы =====

func isIdentStartByte(b byte) bool {
	return b == '_' || b == '$' || b == '.' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// isLabelChar is [-a-zA-Z$._0-9].
func isLabelChar(b byte) bool {
	return isIdentStartByte(b) || b == '-' || isDec(b)
}

// isMetadataNameChar also admits '\\' for escaped bytes in !names.
func isMetadataNameChar(b byte) bool {
	return isLabelChar(b) || b == '\\'
}

// isKeywordChar is the subset allowed inside keywords and type names.
func isKeywordChar(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || isDec(b)
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }
func isHex(b byte) bool {
	return (b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'f') ||
		(b >= 'A' && b <= 'F')
}

func hexVal(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}

// Unescape decodes \\ and \XX sequences. ok is false on a dangling
// backslash or a non-hex escape.
func Unescape(raw []byte) (out string, ok bool) {
	buf := make([]byte, 0, len(raw))
	ok = true
	for i := 0; i < len(raw); i++ {
		b := raw[i]
		if b != '\\' {
			buf = append(buf, b)
			continue
		}
		if i+1 < len(raw) && raw[i+1] == '\\' {
			buf = append(buf, '\\')
			i++
			continue
		}
		if i+2 < len(raw) && isHex(raw[i+1]) && isHex(raw[i+2]) {
			buf = append(buf, hexVal(raw[i+1])<<4|hexVal(raw[i+2]))
			i += 2
			continue
		}
		ok = false
		buf = append(buf, b)
	}
	return string(buf), ok
}
