package ir

import (
	"fmt"
	"strings"
)

func isNameStart(b byte) bool {
	return b == '-' || b == '$' || b == '.' || b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameChar(b byte) bool {
	return isNameStart(b) || (b >= '0' && b <= '9')
}

// QuoteName renders a symbol with its sigil, quoting it when it does not
// fit the bare [-a-zA-Z$._][-a-zA-Z$._0-9]* form.
func QuoteName(sigil byte, name string) string {
	bare := name != "" && isNameStart(name[0])
	for i := 0; bare && i < len(name); i++ {
		bare = isNameChar(name[i])
	}
	if bare {
		return string(sigil) + name
	}
	return string(sigil) + `"` + EscapeString(name) + `"`
}

// EscapeString escapes bytes that cannot appear verbatim inside "...".
func EscapeString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' || c < 0x20 || c >= 0x7f {
			fmt.Fprintf(&b, "\\%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
