package reader

import (
	"github.com/tidwall/gjson"

	"github.com/vegasq/jsonxml2sql/document"
)

// ParseJSON decodes JSON text keeping object keys in document order. It
// reports false for invalid JSON and for a bare null document.
func ParseJSON(data []byte) (document.Value, bool) {
	if !gjson.ValidBytes(data) {
		return document.Value{}, false
	}
	v := fromJSON(gjson.ParseBytes(data))
	if v.IsNull() {
		return document.Value{}, false
	}
	return v, true
}

func fromJSON(r gjson.Result) document.Value {
	switch r.Type {
	case gjson.Null:
		return document.Null()
	case gjson.False:
		return document.Bool(false)
	case gjson.True:
		return document.Bool(true)
	case gjson.Number:
		return document.Number(r.Num)
	case gjson.String:
		return document.String(r.Str)
	}

	if r.IsArray() {
		var items []document.Value
		r.ForEach(func(_, item gjson.Result) bool {
			items = append(items, fromJSON(item))
			return true
		})
		return document.Sequence(items)
	}

	obj := document.NewObject()
	r.ForEach(func(key, value gjson.Result) bool {
		obj.Set(key.Str, fromJSON(value))
		return true
	})
	return document.Mapping(obj)
}
