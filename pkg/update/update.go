// Package update builds the payload of a Base item update.
//
//	payload, err := update.Merge(
//		update.Set(field.New("profile.age", 33)),
//		update.Increment(field.New("purchases", 2)),
//		update.Delete("hometown"),
//	)
package update

import (
	"fmt"

	"github.com/beanbocchi/deta/pkg/field"
	"github.com/beanbocchi/deta/pkg/model"
)

type Operator string

const (
	OpSet       Operator = "set"
	OpIncrement Operator = "increment"
	OpAppend    Operator = "append"
	OpPrepend   Operator = "prepend"
	OpDelete    Operator = "delete"
)

// Op is a single update operation. Builders check their arguments eagerly and
// keep the first problem in the Op, so it surfaces from Merge before any
// request is made.
type Op struct {
	operator Operator
	fields   []field.Field
	names    []string
	err      error
}

func (o Op) Operator() Operator {
	return o.operator
}

func (o Op) Err() error {
	return o.err
}

// Set sets the given fields, creating them when missing.
func Set(fields ...field.Field) Op {
	return build(OpSet, fields, nil)
}

// Increment adds the numeric values to the given fields. Negative values decrement.
func Increment(fields ...field.Field) Op {
	return build(OpIncrement, fields, func(f field.Field) error {
		if !f.Value.IsNumber() {
			return model.ErrValidation.Fmt(fmt.Sprintf("increment of %q requires a number, got %s", f.Name, f.Value.Kind()))
		}
		return nil
	})
}

// Append appends the array values to the given list fields.
func Append(fields ...field.Field) Op {
	return build(OpAppend, fields, requireArray(OpAppend))
}

// Prepend prepends the array values to the given list fields.
func Prepend(fields ...field.Field) Op {
	return build(OpPrepend, fields, requireArray(OpPrepend))
}

// Delete removes the named fields.
func Delete(names ...string) Op {
	op := Op{operator: OpDelete, names: names}
	if len(names) == 0 {
		op.err = model.ErrValidation.Fmt("delete requires at least one field name")
		return op
	}
	for _, name := range names {
		if name == "" {
			op.err = model.ErrValidation.Fmt("delete requires non-empty field names")
			return op
		}
	}
	return op
}

func requireArray(operator Operator) func(field.Field) error {
	return func(f field.Field) error {
		if !f.Value.IsArray() {
			return model.ErrValidation.Fmt(fmt.Sprintf("%s to %q requires an array, got %s", operator, f.Name, f.Value.Kind()))
		}
		return nil
	}
}

func build(operator Operator, fields []field.Field, check func(field.Field) error) Op {
	op := Op{operator: operator, fields: fields}
	if len(fields) == 0 {
		op.err = model.ErrValidation.Fmt(fmt.Sprintf("%s requires at least one field", operator))
		return op
	}

	for _, f := range fields {
		if f.Name == "" {
			op.err = model.ErrValidation.Fmt(fmt.Sprintf("%s requires non-empty field names", operator))
			return op
		}
		if !f.Value.Valid() {
			op.err = model.ErrValidation.Fmt(fmt.Sprintf("value of %q cannot be encoded as JSON", f.Name))
			return op
		}
		if check != nil {
			if err := check(f); err != nil {
				op.err = err
				return op
			}
		}
	}
	return op
}

// Merge combines ops into the update payload sent to the service. Ops sharing
// an operator are merged, later fields overwriting earlier ones and deleted
// names accumulating.
func Merge(ops ...Op) (map[string]any, error) {
	if len(ops) == 0 {
		return nil, model.ErrValidation.Fmt("update requires at least one operation")
	}

	payload := make(map[string]any, len(ops))
	for _, op := range ops {
		if op.err != nil {
			return nil, op.err
		}

		switch op.operator {
		case OpDelete:
			names, _ := payload[string(OpDelete)].([]string)
			payload[string(OpDelete)] = append(names, op.names...)
		case OpSet, OpIncrement, OpAppend, OpPrepend:
			values, ok := payload[string(op.operator)].(map[string]any)
			if !ok {
				values = make(map[string]any, len(op.fields))
				payload[string(op.operator)] = values
			}
			for _, f := range op.fields {
				values[f.Name] = f.Value
			}
		default:
			return nil, model.ErrValidation.Fmt(fmt.Sprintf("unknown update operator %q", op.operator))
		}
	}
	return payload, nil
}
