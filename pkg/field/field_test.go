package field_test

import (
	"encoding/json"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanbocchi/deta/pkg/field"
)

func TestValueKind(t *testing.T) {
	n := 5
	var nilPtr *int
	var nilMap map[string]any

	tests := []struct {
		name  string
		value any
		want  field.Kind
	}{
		{"nil", nil, field.Null},
		{"int", 1, field.Number},
		{"uint8", uint8(1), field.Number},
		{"float", 1.5, field.Number},
		{"json number", json.Number("12"), field.Number},
		{"pointer to int", &n, field.Number},
		{"nil pointer", nilPtr, field.Null},
		{"string", "x", field.String},
		{"bytes", []byte("x"), field.String},
		{"bool", true, field.Bool},
		{"slice", []string{"a"}, field.Array},
		{"array", [2]int{1, 2}, field.Array},
		{"map", map[string]any{"a": 1}, field.Object},
		{"nil map", nilMap, field.Null},
		{"struct", struct{ A int }{1}, field.Object},
		{"int keyed map", map[int]string{1: "a"}, field.Invalid},
		{"func", func() {}, field.Invalid},
		{"channel", make(chan int), field.Invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, field.ValueOf(tt.value).Kind())
		})
	}
}

func TestNewKeepsValue(t *testing.T) {
	v := field.ValueOf([]int{1})
	f := field.New("likes", v)

	assert.Equal(t, "likes", f.Name)
	assert.True(t, f.Value.IsArray())
	assert.Equal(t, []int{1}, f.Value.Interface())
}

func TestValueMarshalJSON(t *testing.T) {
	b, err := sonic.ConfigStd.Marshal(map[string]field.Value{
		"age":  field.ValueOf(31),
		"tags": field.ValueOf([]string{"a", "b"}),
		"none": field.ValueOf(nil),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"age":31,"tags":["a","b"],"none":null}`, string(b))
}

func TestFromMapSortsByName(t *testing.T) {
	fields := field.FromMap(map[string]any{"b": 2, "a": 1, "c": "x"})
	require.Len(t, fields, 3)
	assert.Equal(t, "a", fields[0].Name)
	assert.Equal(t, "b", fields[1].Name)
	assert.Equal(t, "c", fields[2].Name)

	m := field.ToMap(append(fields, field.New("a", 10))...)
	assert.Equal(t, map[string]any{"a": 10, "b": 2, "c": "x"}, m)
}
