package update_test

import (
	"errors"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanbocchi/deta/pkg/field"
	"github.com/beanbocchi/deta/pkg/model"
	"github.com/beanbocchi/deta/pkg/update"
)

func TestMergeWireShape(t *testing.T) {
	payload, err := update.Merge(
		update.Set(field.New("profile.age", 33), field.New("profile.active", true)),
		update.Increment(field.New("purchases", 2)),
		update.Append(field.New("likes", []string{"ramen"})),
		update.Prepend(field.New("history", []int{1})),
		update.Delete("profile.hometown", "on_mobile"),
	)
	require.NoError(t, err)

	b, err := sonic.ConfigStd.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"set": {"profile.age": 33, "profile.active": true},
		"increment": {"purchases": 2},
		"append": {"likes": ["ramen"]},
		"prepend": {"history": [1]},
		"delete": ["profile.hometown", "on_mobile"]
	}`, string(b))
}

func TestMergeSameOperator(t *testing.T) {
	payload, err := update.Merge(
		update.Set(field.New("a", 1), field.New("b", 2)),
		update.Set(field.New("a", 3)),
		update.Delete("x"),
		update.Delete("y"),
	)
	require.NoError(t, err)

	b, err := sonic.ConfigStd.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"set":{"a":3,"b":2},"delete":["x","y"]}`, string(b))
}

func TestIncrementRequiresNumber(t *testing.T) {
	op := update.Increment(field.New("age", "x"))
	require.Error(t, op.Err())
	assert.True(t, errors.Is(op.Err(), model.ErrValidation))

	_, err := update.Merge(update.Set(field.New("ok", 1)), op)
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), `"age"`)
}

func TestAppendPrependRequireArray(t *testing.T) {
	assert.ErrorIs(t, update.Append(field.New("likes", "ramen")).Err(), model.ErrValidation)
	assert.ErrorIs(t, update.Prepend(field.New("likes", 1)).Err(), model.ErrValidation)
	assert.NoError(t, update.Append(field.New("likes", []any{"ramen", 1})).Err())
}

func TestBuilderArguments(t *testing.T) {
	tests := []struct {
		name string
		op   update.Op
	}{
		{"set without fields", update.Set()},
		{"set with empty name", update.Set(field.New("", 1))},
		{"set with invalid value", update.Set(field.New("f", func() {}))},
		{"delete without names", update.Delete()},
		{"delete with empty name", update.Delete("a", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.op.Err(), model.ErrValidation)
		})
	}
}

func TestMergeWithoutOps(t *testing.T) {
	_, err := update.Merge()
	assert.ErrorIs(t, err, model.ErrValidation)
}
