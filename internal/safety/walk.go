package safety

import "reflect"

// Walk returns a copy of v in which every string leaf has been passed through
// fn. Maps, slices, arrays, pointers and exported struct fields, including
// those promoted from embedded structs, are visited; other values are
// returned as they are. v must be a tree: cycles are not detected.
func Walk(v any, fn func(string) string) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return fn(t)
	case map[string]any:
		if t == nil {
			return t
		}
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = Walk(item, fn)
		}
		return out
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Walk(item, fn)
		}
		return out
	case []string:
		if t == nil {
			return t
		}
		out := make([]string, len(t))
		for i, item := range t {
			out[i] = fn(item)
		}
		return out
	case map[string]string:
		if t == nil {
			return t
		}
		out := make(map[string]string, len(t))
		for k, item := range t {
			out[k] = fn(item)
		}
		return out
	}
	return walkValue(reflect.ValueOf(v), fn).Interface()
}

func walkValue(rv reflect.Value, fn func(string) string) reflect.Value {
	switch rv.Kind() {
	case reflect.String:
		out := reflect.New(rv.Type()).Elem()
		out.SetString(fn(rv.String()))
		return out

	case reflect.Map:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), walkValue(iter.Value(), fn))
		}
		return out

	case reflect.Slice:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(walkValue(rv.Index(i), fn))
		}
		return out

	case reflect.Array:
		out := reflect.New(rv.Type()).Elem()
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(walkValue(rv.Index(i), fn))
		}
		return out

	case reflect.Pointer:
		if rv.IsNil() {
			return rv
		}
		out := reflect.New(rv.Elem().Type())
		out.Elem().Set(walkValue(rv.Elem(), fn))
		return out

	case reflect.Interface:
		if rv.IsNil() {
			return rv
		}
		out := reflect.New(rv.Type()).Elem()
		out.Set(walkValue(rv.Elem(), fn))
		return out

	case reflect.Struct:
		out := reflect.New(rv.Type()).Elem()
		out.Set(rv)
		walkFields(out, rv, fn)
		return out
	}
	return rv
}

// walkFields rewrites the exported fields of src into dst, which must be an
// addressable copy of src. Embedded structs of unexported type are entered so
// their promoted fields are covered too. An embedded pointer to an unexported
// struct cannot be replaced and is left shared.
func walkFields(dst, src reflect.Value, fn func(string) string) {
	for i := 0; i < src.NumField(); i++ {
		field := src.Type().Field(i)
		if field.IsExported() {
			dst.Field(i).Set(walkValue(src.Field(i), fn))
			continue
		}
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			walkFields(dst.Field(i), src.Field(i), fn)
		}
	}
}

// IsContainer reports whether v can hold string leaves, as opposed to a bare
// scalar. Guard entry points return non-containers unchanged.
func IsContainer(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return true
	}
	return false
}
