package detatest

import (
	"reflect"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
)

// matchAny reports whether item satisfies at least one predicate. No
// predicates match everything.
func matchAny(item map[string]any, predicates []map[string]any) bool {
	if len(predicates) == 0 {
		return true
	}

	doc, err := sonic.ConfigStd.Marshal(item)
	if err != nil {
		return false
	}
	for _, p := range predicates {
		if matchAll(doc, p) {
			return true
		}
	}
	return false
}

func matchAll(doc []byte, predicate map[string]any) bool {
	for term, want := range predicate {
		path, op, _ := strings.Cut(term, "?")
		if !matchTerm(gjson.GetBytes(doc, path), op, want) {
			return false
		}
	}
	return true
}

func matchTerm(got gjson.Result, op string, want any) bool {
	switch op {
	case "":
		return got.Exists() && equal(got, want)
	case "ne":
		return !got.Exists() || !equal(got, want)
	case "gt":
		c, ok := compare(got, want)
		return ok && c > 0
	case "gte":
		c, ok := compare(got, want)
		return ok && c >= 0
	case "lt":
		c, ok := compare(got, want)
		return ok && c < 0
	case "lte":
		c, ok := compare(got, want)
		return ok && c <= 0
	case "r":
		bounds, ok := want.([]any)
		if !ok || len(bounds) != 2 {
			return false
		}
		lo, okLo := compare(got, bounds[0])
		hi, okHi := compare(got, bounds[1])
		return okLo && okHi && lo >= 0 && hi <= 0
	case "contains":
		return contains(got, want)
	case "not_contains":
		return got.Exists() && !contains(got, want)
	case "pfx":
		s, ok := want.(string)
		return ok && got.Type == gjson.String && strings.HasPrefix(got.Str, s)
	default:
		return false
	}
}

func equal(got gjson.Result, want any) bool {
	return reflect.DeepEqual(got.Value(), want)
}

func compare(got gjson.Result, want any) (int, bool) {
	switch w := want.(type) {
	case float64:
		if got.Type != gjson.Number {
			return 0, false
		}
		switch {
		case got.Num < w:
			return -1, true
		case got.Num > w:
			return 1, true
		}
		return 0, true
	case string:
		if got.Type != gjson.String {
			return 0, false
		}
		return strings.Compare(got.Str, w), true
	}
	return 0, false
}

func contains(got gjson.Result, want any) bool {
	if got.Type == gjson.String {
		s, ok := want.(string)
		return ok && strings.Contains(got.Str, s)
	}
	if got.IsArray() {
		for _, el := range got.Array() {
			if equal(el, want) {
				return true
			}
		}
	}
	return false
}
