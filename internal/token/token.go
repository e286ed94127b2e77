package token

import (
	"fmt"

	"llasm/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	// Text is the payload: decoded name for @/%/! tokens, digits for IDs,
	// the literal for numbers and types, decoded bytes for strings.
	Text string
}

// IsIdentLike reports whether the token names a value or a slot.
func (t Token) IsIdentLike() bool {
	switch t.Kind {
	case GlobalVar, GlobalID, LocalVar, LocalVarID:
		return true
	default:
		return false
	}
}

var punctNames = map[Kind]string{
	Invalid:        "invalid",
	EOF:            "end of file",
	Equal:          "'='",
	Comma:          "','",
	Star:           "'*'",
	LSquare:        "'['",
	RSquare:        "']'",
	LBrace:         "'{'",
	RBrace:         "'}'",
	Less:           "'<'",
	Greater:        "'>'",
	LParen:         "'('",
	RParen:         "')'",
	Exclaim:        "'!'",
	DotDotDot:      "'...'",
	GlobalVar:      "global name",
	GlobalID:       "global id",
	LocalVar:       "local name",
	LocalVarID:     "local id",
	LabelStr:       "label",
	LabelID:        "numbered label",
	MetadataVar:    "metadata name",
	AttrGrpID:      "attribute group id",
	StringConstant: "string constant",
	APSInt:         "integer",
	APFloat:        "floating point constant",
	Type:           "type",
}

func (k Kind) String() string {
	if name, ok := punctNames[k]; ok {
		return name
	}
	if name, ok := keywordNames[k]; ok {
		return "'" + name + "'"
	}
	return fmt.Sprintf("Kind(%d)", uint16(k))
}
