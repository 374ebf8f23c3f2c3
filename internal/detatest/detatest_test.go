package detatest

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanbocchi/deta/pkg/response"
)

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("X-API-Key", ProjectKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestQueryMatching(t *testing.T) {
	s := NewServer(t)
	s.SetItem("users", map[string]any{"key": "a", "age": float64(20), "name": "alex", "tags": []any{"x"}})
	s.SetItem("users", map[string]any{"key": "b", "age": float64(30), "name": "bob", "profile": map[string]any{"city": "Hanoi"}})
	s.SetItem("users", map[string]any{"key": "c", "age": float64(40), "name": "carla"})

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all", `[]`, []string{"a", "b", "c"}},
		{"equals", `[{"name":"bob"}]`, []string{"b"}},
		{"and", `[{"age?gt":15,"name?pfx":"c"}]`, []string{"c"}},
		{"or", `[{"name":"alex"},{"age?gte":40}]`, []string{"a", "c"}},
		{"range", `[{"age?r":[25,40]}]`, []string{"b", "c"}},
		{"nested", `[{"profile.city":"Hanoi"}]`, []string{"b"}},
		{"contains", `[{"tags?contains":"x"}]`, []string{"a"}},
		{"not equals", `[{"name?ne":"alex"}]`, []string{"b", "c"}},
		{"key prefix", `[{"key?pfx":"b"}]`, []string{"b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, s.BaseURL()+"/"+ProjectID+"/users/query", `{"query":`+tt.query+`}`)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var page response.QueryPage
			body, _ := io.ReadAll(resp.Body)
			require.NoError(t, sonic.ConfigStd.Unmarshal(body, &page))

			var keys []string
			for _, item := range page.Items {
				keys = append(keys, item.Key())
			}
			assert.Equal(t, tt.want, keys)
		})
	}
}

func TestQueryPaging(t *testing.T) {
	s := NewServer(t, WithPageSize(2))
	for _, k := range []string{"a", "b", "c"} {
		s.SetItem("users", map[string]any{"key": k})
	}

	resp := post(t, s.BaseURL()+"/"+ProjectID+"/users/query", `{}`)
	var page response.QueryPage
	body, _ := io.ReadAll(resp.Body)
	require.NoError(t, sonic.ConfigStd.Unmarshal(body, &page))
	assert.Len(t, page.Items, 2)
	assert.Equal(t, "b", page.Paging.Cursor())

	resp = post(t, s.BaseURL()+"/"+ProjectID+"/users/query", `{"last":"b"}`)
	body, _ = io.ReadAll(resp.Body)
	page = response.QueryPage{}
	require.NoError(t, sonic.ConfigStd.Unmarshal(body, &page))
	assert.Len(t, page.Items, 1)
	assert.False(t, page.Paging.HasMore())

	assert.Equal(t, 2, s.Count(http.MethodPost, "/query"))
}

func TestUnauthorized(t *testing.T) {
	s := NewServer(t)

	req, err := http.NewRequest(http.MethodGet, s.BaseURL()+"/"+ProjectID+"/users/items/a", nil)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", "wrong")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, s.Requests())
}
