package ir

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"
)

// AttrKind enumerates enum-style attributes.
type AttrKind uint8

const (
	AttrNone AttrKind = iota
	// parameter / return
	AttrZExt
	AttrSExt
	AttrInReg
	AttrByVal
	AttrSRet
	AttrNest
	AttrNoAlias
	AttrNoCapture
	AttrReturned
	// function
	AttrReadNone
	AttrReadOnly
	AttrAlwaysInline
	AttrBuiltin
	AttrCold
	AttrInlineHint
	AttrMinSize
	AttrNaked
	AttrNoBuiltin
	AttrNoDuplicate
	AttrNoImplicitFloat
	AttrNoInline
	AttrNonLazyBind
	AttrNoRedZone
	AttrNoReturn
	AttrNoUnwind
	AttrOptSize
	AttrReturnsTwice
	AttrSSP
	AttrSSPReq
	AttrSSPStrong
	AttrSanitizeAddress
	AttrSanitizeThread
	AttrSanitizeMemory
	AttrUWTable
	attrKindEnd
)

var attrNames = [...]string{
	AttrNone:            "none",
	AttrZExt:            "zeroext",
	AttrSExt:            "signext",
	AttrInReg:           "inreg",
	AttrByVal:           "byval",
	AttrSRet:            "sret",
	AttrNest:            "nest",
	AttrNoAlias:         "noalias",
	AttrNoCapture:       "nocapture",
	AttrReturned:        "returned",
	AttrReadNone:        "readnone",
	AttrReadOnly:        "readonly",
	AttrAlwaysInline:    "alwaysinline",
	AttrBuiltin:         "builtin",
	AttrCold:            "cold",
	AttrInlineHint:      "inlinehint",
	AttrMinSize:         "minsize",
	AttrNaked:           "naked",
	AttrNoBuiltin:       "nobuiltin",
	AttrNoDuplicate:     "noduplicate",
	AttrNoImplicitFloat: "noimplicitfloat",
	AttrNoInline:        "noinline",
	AttrNonLazyBind:     "nonlazybind",
	AttrNoRedZone:       "noredzone",
	AttrNoReturn:        "noreturn",
	AttrNoUnwind:        "nounwind",
	AttrOptSize:         "optsize",
	AttrReturnsTwice:    "returns_twice",
	AttrSSP:             "ssp",
	AttrSSPReq:          "sspreq",
	AttrSSPStrong:       "sspstrong",
	AttrSanitizeAddress: "sanitize_address",
	AttrSanitizeThread:  "sanitize_thread",
	AttrSanitizeMemory:  "sanitize_memory",
	AttrUWTable:         "uwtable",
}

func (k AttrKind) String() string {
	if k < attrKindEnd {
		return attrNames[k]
	}
	return fmt.Sprintf("AttrKind(%d)", k)
}

// Position says where an attribute list appears.
type Position uint8

const (
	PosParam Position = iota
	PosReturn
	PosFunction
)

// ValidAt reports whether k may be written at pos. readnone and readonly
// are accepted on parameters as well as functions.
func (k AttrKind) ValidAt(pos Position) bool {
	switch pos {
	case PosReturn:
		return k == AttrZExt || k == AttrSExt || k == AttrInReg || k == AttrNoAlias
	case PosParam:
		return k < AttrReadNone || k == AttrReadNone || k == AttrReadOnly
	default:
		return k >= AttrReadNone
	}
}

// StringAttr is a "key"="value" target dependent attribute.
type StringAttr struct {
	Key   string
	Value string
}

// AttrSet is an immutable-by-convention attribute collection.
type AttrSet struct {
	Kinds      uint64 // bit i set when AttrKind(i) present
	Align      uint32 // align N / align=N, 0 when absent
	StackAlign uint32 // alignstack(N), 0 when absent
	Strings    []StringAttr
}

func (s AttrSet) Has(k AttrKind) bool {
	return s.Kinds&(1<<k) != 0
}

// With returns a copy of s with k added.
func (s AttrSet) With(k AttrKind) AttrSet {
	s.Kinds |= 1 << k
	return s
}

func (s AttrSet) Empty() bool {
	return s.Kinds == 0 && s.Align == 0 && s.StackAlign == 0 && len(s.Strings) == 0
}

// Len returns the number of attributes in the set.
func (s AttrSet) Len() int {
	n := bits.OnesCount64(s.Kinds) + len(s.Strings)
	if s.Align != 0 {
		n++
	}
	if s.StackAlign != 0 {
		n++
	}
	return n
}

// List returns enum attributes in declaration order.
func (s AttrSet) List() []AttrKind {
	var out []AttrKind
	for k := AttrZExt; k < attrKindEnd; k++ {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// SetString adds or replaces a string attribute.
func (s AttrSet) SetString(key, value string) AttrSet {
	out := make([]StringAttr, 0, len(s.Strings)+1)
	for _, a := range s.Strings {
		if a.Key != key {
			out = append(out, a)
		}
	}
	s.Strings = append(out, StringAttr{Key: key, Value: value})
	return s
}

// Union merges other into s. Explicit alignment in s wins over other's.
func (s AttrSet) Union(other AttrSet) AttrSet {
	s.Kinds |= other.Kinds
	if s.Align == 0 {
		s.Align = other.Align
	}
	if s.StackAlign == 0 {
		s.StackAlign = other.StackAlign
	}
	for _, a := range other.Strings {
		if _, ok := s.StringValue(a.Key); !ok {
			s = s.SetString(a.Key, a.Value)
		}
	}
	return s
}

// StringValue looks up a string attribute.
func (s AttrSet) StringValue(key string) (string, bool) {
	for _, a := range s.Strings {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Equal compares two sets ignoring string attribute order.
func (s AttrSet) Equal(o AttrSet) bool {
	if s.Kinds != o.Kinds || s.Align != o.Align || s.StackAlign != o.StackAlign || len(s.Strings) != len(o.Strings) {
		return false
	}
	for _, a := range s.Strings {
		if v, ok := o.StringValue(a.Key); !ok || v != a.Value {
			return false
		}
	}
	return true
}

// Format renders the set. inGroup selects the attribute group spelling
// (align=N, alignstack=N) over the inline one (align N, alignstack(N)).
func (s AttrSet) Format(inGroup bool) string {
	parts := make([]string, 0, s.Len())
	for _, k := range s.List() {
		parts = append(parts, k.String())
	}
	if s.Align != 0 {
		if inGroup {
			parts = append(parts, fmt.Sprintf("align=%d", s.Align))
		} else {
			parts = append(parts, fmt.Sprintf("align %d", s.Align))
		}
	}
	if s.StackAlign != 0 {
		if inGroup {
			parts = append(parts, fmt.Sprintf("alignstack=%d", s.StackAlign))
		} else {
			parts = append(parts, fmt.Sprintf("alignstack(%d)", s.StackAlign))
		}
	}
	strs := append([]StringAttr(nil), s.Strings...)
	sort.Slice(strs, func(i, j int) bool { return strs[i].Key < strs[j].Key })
	for _, a := range strs {
		if a.Value == "" {
			parts = append(parts, `"`+EscapeString(a.Key)+`"`)
		} else {
			parts = append(parts, `"`+EscapeString(a.Key)+`"="`+EscapeString(a.Value)+`"`)
		}
	}
	return strings.Join(parts, " ")
}
