package store

import (
	"encoding"
	"encoding/json"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

var (
	jsonUnmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// conform reshapes node so it decodes into t. A list is turned into a map
// keyed by index where t is a map, and a numerically keyed map into a list
// where t is a slice.
func conform(node any, t reflect.Type) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if reflect.PointerTo(t).Implements(jsonUnmarshalerType) {
		return node
	}

	switch t.Kind() {
	case reflect.Map:
		var m map[string]any
		switch v := node.(type) {
		case []any:
			m = make(map[string]any, len(v))
			for i, child := range v {
				if child != nil {
					m[strconv.Itoa(i)] = child
				}
			}
		case map[string]any:
			m = v
		default:
			return node
		}
		for k, child := range m {
			m[k] = conform(child, t.Elem())
		}
		return m

	case reflect.Slice, reflect.Array:
		var list []any
		switch v := node.(type) {
		case []any:
			list = v
		case map[string]any:
			var ok bool
			if list, ok = indexed(v); !ok {
				return node
			}
		default:
			return node
		}
		for i, child := range list {
			list[i] = conform(child, t.Elem())
		}
		return list

	case reflect.Struct:
		m, ok := node.(map[string]any)
		if !ok || reflect.PointerTo(t).Implements(textUnmarshalerType) {
			return node
		}
		fields := jsonFields(t)
		for k, child := range m {
			if ft, ok := lookupField(fields, k); ok {
				m[k] = conform(child, ft)
			}
		}
		return m

	default:
		return node
	}
}

// indexed orders a map whose keys are all non-negative integers. Gaps left
// by deleted entries are dropped.
func indexed(m map[string]any) ([]any, bool) {
	idx := make([]int, 0, len(m))
	for k := range m {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 {
			return nil, false
		}
		idx = append(idx, i)
	}
	sort.Ints(idx)

	list := make([]any, 0, len(idx))
	for _, i := range idx {
		list = append(list, m[strconv.Itoa(i)])
	}
	return list, true
}

// jsonFields maps the JSON names of t's exported fields to their types,
// following untagged embedded structs the way encoding/json does.
func jsonFields(t reflect.Type) map[string]reflect.Type {
	out := make(map[string]reflect.Type)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")

		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				for k, v := range jsonFields(ft) {
					if _, taken := out[k]; !taken {
						out[k] = v
					}
				}
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		out[name] = f.Type
	}
	return out
}

func lookupField(fields map[string]reflect.Type, key string) (reflect.Type, bool) {
	if ft, ok := fields[key]; ok {
		return ft, true
	}
	for name, ft := range fields {
		if strings.EqualFold(name, key) {
			return ft, true
		}
	}
	return nil, false
}
