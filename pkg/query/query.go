// Package query builds Base query predicates.
//
// A Predicate is a map of conditions that must all hold. A Query is a list of
// predicates of which at least one must hold:
//
//	q := query.Or(
//		query.And(query.Equals("status", "active"), query.GreaterThan("age", 18)),
//		query.KeyPrefix("admin_"),
//	)
package query

import (
	"fmt"
	"maps"

	"github.com/bytedance/sonic"

	"github.com/beanbocchi/deta/pkg/field"
	"github.com/beanbocchi/deta/pkg/model"
)

// Operator suffixes understood by the service. Equality has no suffix.
const (
	OpNotEquals     = "ne"
	OpGreaterThan   = "gt"
	OpGreaterEquals = "gte"
	OpLessThan      = "lt"
	OpLessEquals    = "lte"
	OpRange         = "r"
	OpContains      = "contains"
	OpNotContains   = "not_contains"
	OpPrefix        = "pfx"
)

// Predicate is a conjunction of conditions on item fields.
type Predicate struct {
	terms map[string]any
	err   error
}

func newPredicate(name, op string, value any) Predicate {
	p := Predicate{}
	if name == "" {
		p.err = model.ErrValidation.Fmt("query field name must not be empty")
		return p
	}

	v := field.ValueOf(value)
	if !v.Valid() {
		p.err = model.ErrValidation.Fmt(fmt.Sprintf("value of %q cannot be encoded as JSON", name))
		return p
	}

	if op != "" {
		name += "?" + op
	}
	p.terms = map[string]any{name: v}
	return p
}

// Equals matches items whose field equals value.
func Equals(name string, value any) Predicate {
	return newPredicate(name, "", value)
}

func NotEquals(name string, value any) Predicate {
	return newPredicate(name, OpNotEquals, value)
}

func GreaterThan(name string, value any) Predicate {
	return newPredicate(name, OpGreaterThan, value)
}

func GreaterEquals(name string, value any) Predicate {
	return newPredicate(name, OpGreaterEquals, value)
}

func LessThan(name string, value any) Predicate {
	return newPredicate(name, OpLessThan, value)
}

func LessEquals(name string, value any) Predicate {
	return newPredicate(name, OpLessEquals, value)
}

// InRange matches items whose field lies in [lo, hi].
func InRange(name string, lo, hi any) Predicate {
	return newPredicate(name, OpRange, []any{lo, hi})
}

// Contains matches a substring of a string field or an element of a list field.
func Contains(name string, value any) Predicate {
	return newPredicate(name, OpContains, value)
}

func NotContains(name string, value any) Predicate {
	return newPredicate(name, OpNotContains, value)
}

func StartsWith(name, prefix string) Predicate {
	return newPredicate(name, OpPrefix, prefix)
}

// Key matches the item with the given key.
func Key(key string) Predicate {
	return newPredicate("key", "", key)
}

func KeyPrefix(prefix string) Predicate {
	return newPredicate("key", OpPrefix, prefix)
}

// And merges predicates into one. A term repeated across predicates keeps the
// value of the last one.
func And(ps ...Predicate) Predicate {
	out := Predicate{terms: make(map[string]any)}
	for _, p := range ps {
		if p.err != nil {
			return Predicate{err: p.err}
		}
		maps.Copy(out.terms, p.terms)
	}
	return out
}

func (p Predicate) Err() error {
	return p.err
}

// Terms returns a copy of the predicate's conditions.
func (p Predicate) Terms() map[string]any {
	return maps.Clone(p.terms)
}

func (p Predicate) MarshalJSON() ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.terms == nil {
		return []byte("{}"), nil
	}
	return sonic.ConfigStd.Marshal(p.terms)
}

// Query is a disjunction of predicates. The zero Query matches every item.
type Query struct {
	predicates []Predicate
}

// Or returns a query matching items that satisfy any of the predicates.
func Or(ps ...Predicate) Query {
	return Query{predicates: ps}
}

// New is an alias of Or, reading better for a single predicate.
func New(ps ...Predicate) Query {
	return Or(ps...)
}

// All matches every item.
func All() Query {
	return Query{}
}

func (q Query) Predicates() []Predicate {
	return q.predicates
}

// Err returns the first construction error among the predicates.
func (q Query) Err() error {
	for _, p := range q.predicates {
		if p.err != nil {
			return p.err
		}
	}
	return nil
}

// MarshalJSON renders the query body, {"query":[...]}.
func (q Query) MarshalJSON() ([]byte, error) {
	if err := q.Err(); err != nil {
		return nil, err
	}
	predicates := q.predicates
	if predicates == nil {
		predicates = []Predicate{}
	}
	return sonic.ConfigStd.Marshal(struct {
		Query []Predicate `json:"query"`
	}{predicates})
}
