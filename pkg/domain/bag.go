package domain

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/mohae/deepcopy"
)

// PropertyBag is the open, per-module configuration of a node.
//
// Values are restricted to a closed set of JSON-shaped variants: nil, string,
// float64, bool, []any and map[string]any (nested arbitrarily). Use
// NormalizeValue to coerce host values into that set.
type PropertyBag map[string]any

// Clone returns a deep copy of the bag. A nil bag stays nil.
func (b PropertyBag) Clone() PropertyBag {
	if b == nil {
		return nil
	}
	out, _ := deepcopy.Copy(map[string]any(b)).(map[string]any)
	return PropertyBag(out)
}

// String returns the value at key if it is a string.
func (b PropertyBag) String(key string) (string, bool) {
	s, ok := b[key].(string)
	return s, ok
}

// Normalize coerces every value of the bag into the closed variant set.
// It returns a new bag and leaves b untouched.
func (b PropertyBag) Normalize() (PropertyBag, error) {
	if b == nil {
		return nil, nil
	}
	out := make(PropertyBag, len(b))
	for k, v := range b {
		nv, err := NormalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

// NormalizeValue converts v into one of the supported property variants.
// Numbers become float64, typed slices become []any and string-keyed maps
// become map[string]any. Anything else yields ErrUnsupportedValue.
func NormalizeValue(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, float64:
		return x, nil
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case float32:
		return float64(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		return f, nil
	case PropertyBag:
		return NormalizeValue(map[string]any(x))
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			nv, err := NormalizeValue(item)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			nv, err := NormalizeValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			nv, err := NormalizeValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map key %s", ErrUnsupportedValue, rv.Type().Key())
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			nv, err := NormalizeValue(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = nv
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}
