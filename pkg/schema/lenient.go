package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
)

// ErrShape is returned by Catch when the input's top level does not have the
// JSON type of the destination (e.g. an array where an object is expected).
var ErrShape = errors.New("input does not match the document shape")

// ErrTrailingData is returned by Catch when more input follows the JSON value.
var ErrTrailingData = errors.New("unexpected data after the JSON value")

// Defaulter is implemented by element types that need non-zero defaults
// before lenient decoding fills them (slice and map elements start from it).
type Defaulter interface {
	SetDefaults()
}

// Catch decodes raw JSON into dst, which must point at a value that already
// holds defaults. A leaf that is missing, null or of the wrong JSON type keeps
// its default; a slice or map element that cannot be decoded is dropped.
// Only malformed JSON or a mismatched top-level shape is an error.
func Catch(raw []byte, dst any) error {
	var src any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&src); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := dec.Decode(new(any)); err != io.EOF {
		return fmt.Errorf("invalid JSON: %w", ErrTrailingData)
	}
	return CatchValue(src, dst)
}

// CatchValue is Catch for an already decoded JSON value.
func CatchValue(src any, dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("catch destination must be a non-nil pointer, got %T", dst)
	}
	if !fill(v.Elem(), src) {
		return ErrShape
	}
	return nil
}

var unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()

// fill assigns src to v when the JSON type fits and reports whether it did.
func fill(v reflect.Value, src any) bool {
	if v.Kind() != reflect.Ptr && v.CanAddr() && v.Addr().Type().Implements(unmarshalerType) {
		return fillUnmarshaler(v, src)
	}

	switch v.Kind() {
	case reflect.Ptr:
		if src == nil {
			v.Set(reflect.Zero(v.Type()))
			return true
		}
		elem := reflect.New(v.Type().Elem())
		if !v.IsNil() {
			elem.Elem().Set(v.Elem())
		}
		if !fill(elem.Elem(), src) {
			return false
		}
		v.Set(elem)
		return true

	case reflect.Struct:
		obj, ok := src.(map[string]any)
		if !ok {
			return false
		}
		fillStruct(v, obj)
		return true

	case reflect.String:
		s, ok := src.(string)
		if !ok {
			return false
		}
		v.SetString(s)
		return true

	case reflect.Bool:
		b, ok := src.(bool)
		if !ok {
			return false
		}
		v.SetBool(b)
		return true

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, ok := number(src)
		if !ok || f != math.Trunc(f) || v.OverflowInt(int64(f)) {
			return false
		}
		v.SetInt(int64(f))
		return true

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f, ok := number(src)
		if !ok || f < 0 || f != math.Trunc(f) || v.OverflowUint(uint64(f)) {
			return false
		}
		v.SetUint(uint64(f))
		return true

	case reflect.Float32, reflect.Float64:
		f, ok := number(src)
		if !ok || v.OverflowFloat(f) {
			return false
		}
		v.SetFloat(f)
		return true

	case reflect.Slice:
		arr, ok := src.([]any)
		if !ok {
			return false
		}
		out := reflect.MakeSlice(v.Type(), 0, len(arr))
		for _, item := range arr {
			elem := newElem(v.Type().Elem())
			if fill(elem, item) {
				out = reflect.Append(out, elem)
			}
		}
		v.Set(out)
		return true

	case reflect.Map:
		obj, ok := src.(map[string]any)
		if !ok || v.Type().Key().Kind() != reflect.String {
			return false
		}
		out := reflect.MakeMapWithSize(v.Type(), len(obj))
		for key, item := range obj {
			elem := newElem(v.Type().Elem())
			if fill(elem, item) {
				out.SetMapIndex(reflect.ValueOf(key).Convert(v.Type().Key()), elem)
			}
		}
		v.Set(out)
		return true

	case reflect.Interface:
		if src == nil {
			return true
		}
		rv := reflect.ValueOf(plain(src))
		if !rv.Type().AssignableTo(v.Type()) {
			return false
		}
		v.Set(rv)
		return true
	}

	return false
}

func fillStruct(v reflect.Value, obj map[string]any) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if isInlined(sf) {
			if sf.IsExported() {
				fillStruct(v.Field(i), obj)
			}
			continue
		}
		if sf.Tag.Get("json") == "-" {
			continue
		}
		if !sf.IsExported() {
			continue
		}
		val, ok := obj[getJSONName(sf)]
		if !ok {
			continue
		}
		field := v.Field(i)
		prev := reflect.New(field.Type()).Elem()
		prev.Set(field)
		if fill(field, val) && !leafValid(field, sf.Tag.Get("validate")) {
			field.Set(prev)
		}
	}
}

// leafValid applies a scalar field's own validate rules, so that an
// out-of-range value falls back to the default like a wrong type does.
func leafValid(v reflect.Value, tag string) bool {
	if tag == "" {
		return true
	}
	switch v.Kind() {
	case reflect.Struct, reflect.Slice, reflect.Map, reflect.Ptr, reflect.Interface:
		return true
	}
	return structValidator().Var(v.Interface(), tag) == nil
}

func fillUnmarshaler(v reflect.Value, src any) bool {
	raw, err := json.Marshal(src)
	if err != nil {
		return false
	}
	tmp := reflect.New(v.Type())
	tmp.Elem().Set(v)
	if err := tmp.Interface().(json.Unmarshaler).UnmarshalJSON(raw); err != nil {
		return false
	}
	v.Set(tmp.Elem())
	return true
}

func newElem(t reflect.Type) reflect.Value {
	elem := reflect.New(t)
	if d, ok := elem.Interface().(Defaulter); ok {
		d.SetDefaults()
	}
	return elem.Elem()
}

func number(src any) (float64, bool) {
	switch n := src.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	}
	return 0, false
}

// plain converts json.Number leaves back to float64 for interface fields.
func plain(src any) any {
	switch s := src.(type) {
	case json.Number:
		f, _ := s.Float64()
		return f
	case []any:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = plain(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(s))
		for k, item := range s {
			out[k] = plain(item)
		}
		return out
	}
	return src
}
