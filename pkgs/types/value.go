package types

import (
	"strconv"

	"github.com/spf13/cast"
)

// Kind identifies the type carried by a Value.
type Kind int

const (
	KindUnknown Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
)

// String returns a human-readable kind name for error messages.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is the tagged datum flowing through evaluation.
//
// The textual representation is canonical: numbers carry their decimal
// digits, booleans carry "1" or "0". Array values carry their elements in
// Items and have an empty Raw. KindUnknown is the absent/error sentinel
// produced by failed lookups or coercions.
type Value struct {
	Kind  Kind
	Raw   string
	Items []Value
}

// Str builds a string Value.
func Str(s string) Value {
	return Value{Kind: KindString, Raw: s}
}

// Num builds a number Value from an int64.
func Num(n int64) Value {
	return Value{Kind: KindNumber, Raw: strconv.FormatInt(n, 10)}
}

// NumFromString builds a number Value from an already-validated digit run.
func NumFromString(s string) Value {
	return Value{Kind: KindNumber, Raw: s}
}

// BoolValue builds a bool Value with the canonical "1"/"0" representation.
func BoolValue(b bool) Value {
	if b {
		return Value{Kind: KindBool, Raw: "1"}
	}
	return Value{Kind: KindBool, Raw: "0"}
}

// ArrayOf builds an array Value over the given elements.
func ArrayOf(items []Value) Value {
	return Value{Kind: KindArray, Items: items}
}

// Unknown returns the error/absent sentinel.
func Unknown() Value {
	return Value{Kind: KindUnknown}
}

// IsUnknown reports whether v is the Unknown sentinel.
func (v Value) IsUnknown() bool {
	return v.Kind == KindUnknown
}

// Int64 converts the canonical representation to an int64. Callers must
// have checked the kind; a malformed representation surfaces as an error.
func (v Value) Int64() (int64, error) {
	return cast.ToInt64E(v.Raw)
}

// IsDigits reports whether s is a non-empty run of ASCII digits, the
// canonical form of a number literal.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
