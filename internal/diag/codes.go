package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1003
	LexBadName            Code = 1004
	LexBadEscape          Code = 1005

	// SyntaxError
	SynInfo            Code = 2000
	SynUnexpectedToken Code = 2001
	SynExpectType      Code = 2002
	SynExpectValue     Code = 2003
	SynUnexpectedEOF   Code = 2004
	SynBadLinkage      Code = 2005
	SynBadAlignment    Code = 2006
	SynBadOrdering     Code = 2007
	SynIntegerRange    Code = 2008
	SynBadConstant     Code = 2009
	SynMissingBody     Code = 2010

	// DuplicateDefinitionError
	DupInfo         Code = 3000
	DupType         Code = 3001
	DupGlobal       Code = 3002
	DupLocal        Code = 3003
	DupMetadata     Code = 3004
	DupNumbering    Code = 3005
	DupSwitchCase   Code = 3006
	DupAttrGroup    Code = 3007
	DupFunctionBody Code = 3008

	// TypeMismatchError
	TypInfo            Code = 4000
	TypForwardRef      Code = 4001
	TypOperandMismatch Code = 4002
	TypInvalidOperand  Code = 4003
	TypInvalidCast     Code = 4004
	TypNotPointer      Code = 4005
	TypInvalidConstant Code = 4006
	TypNonFirstClass   Code = 4007
	TypInvalidType     Code = 4008
	TypCallSignature   Code = 4009

	// UnresolvedReferenceError
	UnrInfo         Code = 5000
	UnrGlobal       Code = 5001
	UnrLocal        Code = 5002
	UnrType         Code = 5003
	UnrMetadata     Code = 5004
	UnrBlockAddress Code = 5005
	UnrAttrGroup    Code = 5006

	// AttributeMisuseError
	AtrInfo        Code = 6000
	AtrMisuse      Code = 6001
	AtrNestedGroup Code = 6002
	AtrEmptyGroup  Code = 6003
	AtrAlignment   Code = 6004

	// I/O
	IOInfo          Code = 7000
	IOLoadFileError Code = 7001
	IOCacheError    Code = 7002
)

var (
	codeDescription = map[Code]string{
		UnknownCode:           "Unknown error",
		LexInfo:               "Lexical information",
		LexUnknownChar:        "Unknown character",
		LexUnterminatedString: "Unterminated string literal",
		LexBadNumber:          "Malformed numeric literal",
		LexBadName:            "Malformed name",
		LexBadEscape:          "Malformed escape sequence",
		SynInfo:               "Syntax information",
		SynUnexpectedToken:    "Unexpected token",
		SynExpectType:         "Expected type",
		SynExpectValue:        "Expected value",
		SynUnexpectedEOF:      "Unexpected end of file",
		SynBadLinkage:         "Invalid linkage",
		SynBadAlignment:       "Invalid alignment",
		SynBadOrdering:        "Invalid atomic ordering",
		SynIntegerRange:       "Integer out of range",
		SynBadConstant:        "Invalid constant",
		SynMissingBody:        "Missing function body",
		DupInfo:               "Definition information",
		DupType:               "Type redefinition",
		DupGlobal:             "Global value redefinition",
		DupLocal:              "Local value redefinition",
		DupMetadata:           "Metadata redefinition",
		DupNumbering:          "Numbered slot out of order",
		DupSwitchCase:         "Duplicate switch case",
		DupAttrGroup:          "Attribute group redefinition",
		DupFunctionBody:       "Function redefinition",
		TypInfo:               "Type information",
		TypForwardRef:         "Forward reference type mismatch",
		TypOperandMismatch:    "Operand type mismatch",
		TypInvalidOperand:     "Invalid operand type",
		TypInvalidCast:        "Invalid cast",
		TypNotPointer:         "Pointer type required",
		TypInvalidConstant:    "Constant does not match type",
		TypNonFirstClass:      "Non first-class type",
		TypInvalidType:        "Invalid type",
		TypCallSignature:      "Call signature mismatch",
		UnrInfo:               "Reference information",
		UnrGlobal:             "Undefined global value",
		UnrLocal:              "Undefined local value",
		UnrType:               "Undefined type",
		UnrMetadata:           "Undefined metadata",
		UnrBlockAddress:       "Unresolved block address",
		UnrAttrGroup:          "Undefined attribute group",
		AtrInfo:               "Attribute information",
		AtrMisuse:             "Attribute used in the wrong position",
		AtrNestedGroup:        "Nested attribute group",
		AtrEmptyGroup:         "Empty attribute group",
		AtrAlignment:          "Alignment passed as attribute",
		IOInfo:                "I/O information",
		IOLoadFileError:       "Failed to load file",
		IOCacheError:          "Cache failure",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("DUP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("UNR%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("ATR%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

// Class names the error family a code belongs to.
func (c Code) Class() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 3000:
		return "SyntaxError"
	case ic >= 3000 && ic < 4000:
		return "DuplicateDefinitionError"
	case ic >= 4000 && ic < 5000:
		return "TypeMismatchError"
	case ic >= 5000 && ic < 6000:
		return "UnresolvedReferenceError"
	case ic >= 6000 && ic < 7000:
		return "AttributeMisuseError"
	case ic >= 7000 && ic < 8000:
		return "IOError"
	}
	return "Error"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
