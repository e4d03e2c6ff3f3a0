package document

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/spf13/cast"
)

// FromGo converts a plain Go value into a Value. Maps become mappings with
// their keys sorted, slices and arrays become sequences, every numeric type
// becomes a number and times are rendered as RFC 3339 strings.
func FromGo(in interface{}) Value {
	switch v := in.(type) {
	case nil:
		return Null()
	case Value:
		return v
	case *Object:
		if v == nil {
			return Null()
		}
		return Mapping(v)
	case bool:
		return Bool(v)
	case string:
		return String(v)
	case []byte:
		return String(string(v))
	case time.Time:
		return String(v.Format(time.RFC3339Nano))
	case []interface{}:
		items := make([]Value, len(v))
		for i, item := range v {
			items[i] = FromGo(item)
		}
		return Sequence(items)
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			obj.Set(k, FromGo(v[k]))
		}
		return Mapping(obj)
	}

	rv := reflect.ValueOf(in)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
		return FromGo(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := range items {
			items[i] = FromGo(rv.Index(i).Interface())
		}
		return Sequence(items)
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]reflect.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := fmt.Sprint(iter.Key().Interface())
			keys = append(keys, k)
			byKey[k] = iter.Value()
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			obj.Set(k, FromGo(byKey[k].Interface()))
		}
		return Mapping(obj)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if f, err := cast.ToFloat64E(in); err == nil {
			return Number(f)
		}
		// cast only knows the predeclared types, not named ones like "type score int"
		return Number(rv.Convert(reflect.TypeOf(float64(0))).Float())
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.String:
		return String(rv.String())
	}
	return String(fmt.Sprint(in))
}
