// Package field holds the values written into Base records and used by the
// update and query builders. A Value is classified once, when it is built, so
// the builders can check what they are given without inspecting Go types again.
package field

import (
	"encoding/json"
	"reflect"
	"sort"

	"github.com/bytedance/sonic"
)

type Kind uint8

const (
	Invalid Kind = iota
	Null
	Number
	String
	Bool
	Array
	Object
)

var kindNames = [...]string{
	Invalid: "invalid",
	Null:    "null",
	Number:  "number",
	String:  "string",
	Bool:    "bool",
	Array:   "array",
	Object:  "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is a JSON-compatible value tagged with its Kind.
type Value struct {
	kind Kind
	v    any
}

// ValueOf classifies v. Values that cannot be represented in JSON get the
// Invalid kind; they are rejected by whichever builder or record uses them.
func ValueOf(v any) Value {
	return Value{kind: kindOf(v), v: v}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) Interface() any {
	return v.v
}

func (v Value) IsNumber() bool {
	return v.kind == Number
}

func (v Value) IsArray() bool {
	return v.kind == Array
}

func (v Value) Valid() bool {
	return v.kind != Invalid
}

func (v Value) MarshalJSON() ([]byte, error) {
	return sonic.ConfigStd.Marshal(v.v)
}

func kindOf(v any) Kind {
	if v == nil {
		return Null
	}

	switch x := v.(type) {
	case json.Number:
		return Number
	case []byte:
		return String
	case Value:
		return x.kind
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Null
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Number
	case reflect.String:
		return String
	case reflect.Bool:
		return Bool
	case reflect.Slice:
		if rv.IsNil() {
			return Null
		}
		return Array
	case reflect.Array:
		return Array
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Invalid
		}
		if rv.IsNil() {
			return Null
		}
		return Object
	case reflect.Struct:
		return Object
	default:
		return Invalid
	}
}

// Field is a named value.
type Field struct {
	Name  string
	Value Value
}

func New(name string, value any) Field {
	if v, ok := value.(Value); ok {
		return Field{Name: name, Value: v}
	}
	return Field{Name: name, Value: ValueOf(value)}
}

// FromMap converts a map into fields ordered by name.
func FromMap(m map[string]any) []Field {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, New(name, m[name]))
	}
	return fields
}

// ToMap converts fields into a map, later fields overwrite earlier ones with
// the same name.
func ToMap(fields ...Field) map[string]any {
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		m[f.Name] = f.Value.Interface()
	}
	return m
}
