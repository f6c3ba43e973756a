package issue

import (
	"cmp"
	"strconv"
	"strings"
)

// Kind classifies an extracted property value.
type Kind int

const (
	KindNone Kind = iota
	KindInt
	KindString
	KindList
)

// Value is a comparable property value, usable as a map key.
// List values keep their elements joined by listSeparator.
type Value struct {
	Kind Kind
	Int  int
	Str  string
}

// listSeparator joins the elements of a list value. XML cannot carry NUL, so
// no feed label contains it, and comparing the joined form orders lists
// element by element.
const listSeparator = "\x00"

// None is the absent value.
var None = Value{}

func IntValue(n int) Value       { return Value{Kind: KindInt, Int: n} }
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// ListValue builds a list value. An empty list is None.
func ListValue(items []string) Value {
	if len(items) == 0 {
		return None
	}
	return Value{Kind: KindList, Str: strings.Join(items, listSeparator)}
}

// IsNone reports whether the value is absent.
func (v Value) IsNone() bool {
	return v.Kind == KindNone
}

// Items returns the elements of a list value, or the single scalar rendered as text.
func (v Value) Items() []string {
	switch v.Kind {
	case KindNone:
		return nil
	case KindList:
		return strings.Split(v.Str, listSeparator)
	default:
		return []string{v.String()}
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.Itoa(v.Int)
	case KindString:
		return v.Str
	case KindList:
		return "[" + strings.Join(v.Items(), ",") + "]"
	default:
		return "None"
	}
}

// rank orders kinds: ints, then strings, then lists, and None last.
func (k Kind) rank() int {
	switch k {
	case KindInt:
		return 0
	case KindString:
		return 1
	case KindList:
		return 2
	default:
		return 3
	}
}

// Compare is a total order over values: ints numerically, then strings and lists
// lexically, with None sorting after everything else.
func Compare(a, b Value) int {
	if c := cmp.Compare(a.Kind.rank(), b.Kind.rank()); c != 0 {
		return c
	}
	switch a.Kind {
	case KindInt:
		return cmp.Compare(a.Int, b.Int)
	case KindString, KindList:
		return cmp.Compare(a.Str, b.Str)
	default:
		return 0
	}
}
