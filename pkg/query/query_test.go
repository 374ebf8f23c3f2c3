package query_test

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanbocchi/deta/pkg/model"
	"github.com/beanbocchi/deta/pkg/query"
)

func marshal(t *testing.T, v any) string {
	t.Helper()
	b, err := sonic.ConfigStd.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestAndMergesTerms(t *testing.T) {
	p := query.And(query.Equals("status", "1"), query.Equals("region", "857"))
	assert.JSONEq(t, `{"status":"1","region":"857"}`, marshal(t, p))
}

func TestAndLastWriteWins(t *testing.T) {
	p := query.And(query.Equals("status", "1"), query.Equals("status", "2"))
	assert.JSONEq(t, `{"status":"2"}`, marshal(t, p))
}

func TestOrWrapsPredicates(t *testing.T) {
	a := query.Equals("status", "1")
	b := query.And(query.GreaterThan("age", 18), query.KeyPrefix("user_"))

	q := query.Or(a, b)
	assert.JSONEq(t, `{"query":[{"status":"1"},{"age?gt":18,"key?pfx":"user_"}]}`, marshal(t, q))
	assert.Len(t, q.Predicates(), 2)
}

func TestOperatorSuffixes(t *testing.T) {
	tests := []struct {
		name string
		p    query.Predicate
		want string
	}{
		{"equals", query.Equals("a", 1), `{"a":1}`},
		{"not equals", query.NotEquals("a", 1), `{"a?ne":1}`},
		{"greater than", query.GreaterThan("a", 1), `{"a?gt":1}`},
		{"greater equals", query.GreaterEquals("a", 1), `{"a?gte":1}`},
		{"less than", query.LessThan("a", 1), `{"a?lt":1}`},
		{"less equals", query.LessEquals("a", 1), `{"a?lte":1}`},
		{"range", query.InRange("a", 1, 5), `{"a?r":[1,5]}`},
		{"contains", query.Contains("a", "x"), `{"a?contains":"x"}`},
		{"not contains", query.NotContains("a", "x"), `{"a?not_contains":"x"}`},
		{"prefix", query.StartsWith("a", "x"), `{"a?pfx":"x"}`},
		{"key", query.Key("k1"), `{"key":"k1"}`},
		{"key prefix", query.KeyPrefix("k"), `{"key?pfx":"k"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, marshal(t, tt.p))
		})
	}
}

func TestEmptyQuery(t *testing.T) {
	assert.JSONEq(t, `{"query":[]}`, marshal(t, query.All()))
}

func TestInvalidPredicate(t *testing.T) {
	p := query.And(query.Equals("a", 1), query.Equals("", 2))
	assert.ErrorIs(t, p.Err(), model.ErrValidation)

	q := query.Or(query.Equals("b", make(chan int)))
	assert.ErrorIs(t, q.Err(), model.ErrValidation)

	_, err := sonic.ConfigStd.Marshal(q)
	assert.Error(t, err)
}

func TestTermsIsCopy(t *testing.T) {
	p := query.Equals("a", 1)
	terms := p.Terms()
	terms["b"] = 2

	assert.JSONEq(t, `{"a":1}`, marshal(t, p))
}
