package document

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Resolve follows a dotted path from root.
//
// "*" and "" return root itself. Bracket indexes are accepted, so
// "items[0].name" equals "items.0.name". Each segment made only of digits indexes a
// sequence (or a string, yielding one character). Any other segment is a key:
// an exact match wins, otherwise the first key in insertion order that
// matches case-insensitively. "length" on a sequence or string yields its
// length. Reaching null or undefined before the last segment, or a missing
// key or index, yields undefined.
func Resolve(root Value, path string) Value {
	if path == "" || path == "*" {
		return root
	}
	cur := root
	for _, seg := range strings.Split(NormalizePath(path), ".") {
		if cur.IsNullish() {
			return Undefined()
		}
		cur = step(cur, seg)
	}
	return cur
}

func step(cur Value, seg string) Value {
	if isIndex(seg) {
		idx, err := strconv.Atoi(seg)
		if err != nil {
			return Undefined()
		}
		switch cur.kind {
		case KindSequence:
			items := *cur.seq
			if idx < len(items) {
				return items[idx]
			}
			return Undefined()
		case KindString:
			return charAt(cur.str, idx)
		case KindMapping:
			v, _ := cur.obj.Get(strconv.Itoa(idx))
			return v
		default:
			return Undefined()
		}
	}

	switch cur.kind {
	case KindMapping:
		v, _ := cur.obj.GetFold(seg)
		return v
	case KindSequence:
		if seg == "length" {
			return Number(float64(len(*cur.seq)))
		}
	case KindString:
		if seg == "length" {
			return Number(float64(utf8.RuneCountInString(cur.str)))
		}
	}
	return Undefined()
}

func charAt(s string, idx int) Value {
	i := 0
	for _, r := range s {
		if i == idx {
			return String(string(r))
		}
		i++
	}
	return Undefined()
}

func isIndex(seg string) bool {
	if seg == "" {
		return false
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return false
		}
	}
	return true
}

var bracketIndex = regexp.MustCompile(`\[(\d+)\]`)

// NormalizePath rewrites bracket indexes into dotted segments,
// so "data.items[0].tags" becomes "data.items.0.tags".
func NormalizePath(path string) string {
	return bracketIndex.ReplaceAllString(path, ".$1")
}
