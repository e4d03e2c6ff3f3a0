// Package document models loaded JSON/XML documents as schema-less trees.
//
// A document is a tree of Values: undefined, null, booleans, numbers,
// strings, sequences and mappings. Mappings keep the order in which their
// keys were first set, so rows built from a document keep the column order
// of the source text and projections keep the order of the SELECT list.
//
// The package also implements path resolution over such trees (Resolve),
// the canonicalization of arbitrary values into rows (ToRow) and discovery
// of every array in a document as a candidate table (DiscoverTables).
package document

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/segmentio/encoding/json"
)

// Kind identifies the variant held by a Value
type Kind uint8

const (
	// KindUndefined marks an absent value (a missing key, an index out of range)
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is a node of a document tree. The zero Value is undefined.
//
// Sequences and mappings are reference values: two Values compare strictly
// equal only when they share the same underlying sequence or mapping.
type Value struct {
	kind Kind
	b    bool
	num  float64
	str  string
	seq  *[]Value
	obj  *Object
}

// Undefined returns the undefined value
func Undefined() Value { return Value{} }

// Null returns the null value
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// String returns a string value
func String(s string) Value { return Value{kind: KindString, str: s} }

// Sequence returns a sequence value holding items
func Sequence(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindSequence, seq: &items}
}

// Mapping returns a mapping value backed by obj. A nil obj yields an empty mapping.
func Mapping(obj *Object) Value {
	if obj == nil {
		obj = NewObject()
	}
	return Value{kind: KindMapping, obj: obj}
}

// Kind returns the variant held by v
func (v Value) Kind() Kind { return v.kind }

// IsUndefined reports whether v is undefined
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// IsNull reports whether v is null
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNullish reports whether v is null or undefined
func (v Value) IsNullish() bool { return v.kind == KindUndefined || v.kind == KindNull }

// AsBool returns the boolean held by v
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsNumber returns the number held by v
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsString returns the string held by v
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsSequence returns the items of a sequence. The slice must not be modified.
func (v Value) AsSequence() ([]Value, bool) {
	if v.kind != KindSequence {
		return nil, false
	}
	return *v.seq, true
}

// AsMapping returns the object behind a mapping
func (v Value) AsMapping() (*Object, bool) {
	if v.kind != KindMapping {
		return nil, false
	}
	return v.obj, true
}

// Truthy reports whether v counts as true in a boolean context.
// Undefined, null, false, 0, NaN and "" are falsy; everything else is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case KindString:
		return v.str != ""
	case KindSequence, KindMapping:
		return true
	default:
		return false
	}
}

// ToNumber converts v to a number the way an arithmetic context does:
// null is 0, booleans are 0 or 1, strings are parsed (blank is 0) and
// anything that cannot be read as a number is NaN.
func (v Value) ToNumber() float64 {
	switch v.kind {
	case KindNull:
		return 0
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindNumber:
		return v.num
	case KindString:
		return parseNumber(v.str)
	case KindSequence:
		return parseNumber(v.String())
	default:
		return math.NaN()
	}
}

// String converts v to its string form: numbers use the shortest
// round-trip representation, sequences join their items with commas and
// mappings render as "[object Object]".
func (v Value) String() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return formatNumber(v.num)
	case KindString:
		return v.str
	case KindSequence:
		items := *v.seq
		parts := make([]string, len(items))
		for i, item := range items {
			if !item.IsNullish() {
				parts[i] = item.String()
			}
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

// Interface converts v into plain Go values: nil, bool, float64, string,
// []interface{} and map[string]interface{}. Undefined mapping fields are dropped.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindSequence:
		items := *v.seq
		out := make([]interface{}, len(items))
		for i, item := range items {
			out[i] = item.Interface()
		}
		return out
	case KindMapping:
		return v.obj.Interface()
	default:
		return nil
	}
}

// MarshalJSON encodes v. Undefined and non-finite numbers encode as null.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			buf.WriteString("null")
		} else {
			buf.WriteString(formatNumber(v.num))
		}
	case KindString:
		b, err := json.Append(buf.AvailableBuffer(), v.str, 0)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindSequence:
		buf.WriteByte('[')
		for i, item := range *v.seq {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMapping:
		return v.obj.writeJSON(buf)
	default:
		buf.WriteString("null")
	}
	return nil
}

// StrictEqual reports whether a and b are identical: same kind and same
// scalar, or the very same sequence or mapping. NaN is not equal to itself.
func StrictEqual(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num
	case KindString:
		return a.str == b.str
	case KindSequence:
		return a.seq == b.seq
	case KindMapping:
		return a.obj == b.obj
	default:
		return false
	}
}

// Compare orders a and b for the relational operators. Two strings compare
// lexically; anything else is compared numerically after ToNumber. The
// second result is false when the values are unordered (a NaN is involved).
func Compare(a, b Value) (int, bool) {
	pa, pb := primitive(a), primitive(b)
	if pa.kind == KindString && pb.kind == KindString {
		return strings.Compare(pa.str, pb.str), true
	}
	na, nb := pa.ToNumber(), pb.ToNumber()
	if math.IsNaN(na) || math.IsNaN(nb) {
		return 0, false
	}
	switch {
	case na < nb:
		return -1, true
	case na > nb:
		return 1, true
	default:
		return 0, true
	}
}

// primitive reduces sequences and mappings to their string form
func primitive(v Value) Value {
	if v.kind == KindSequence || v.kind == KindMapping {
		return String(v.String())
	}
	return v
}

// parseNumber reads s as a numeric literal, returning NaN when it is not one
func parseNumber(s string) float64 {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0
	}
	switch t {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	lower := strings.ToLower(t)
	for _, prefix := range []struct {
		p    string
		base int
	}{{"0x", 16}, {"0o", 8}, {"0b", 2}} {
		if strings.HasPrefix(lower, prefix.p) {
			n, err := strconv.ParseUint(lower[2:], prefix.base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	// strconv accepts inf, nan, hex floats and underscores; plain numerals do not
	if strings.ContainsAny(lower, "inxp_") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// formatNumber renders n in its shortest round-trip form, switching to
// exponent notation outside [1e-6, 1e21)
func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	}
	abs := math.Abs(n)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(n, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
