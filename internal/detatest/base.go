package detatest

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/beanbocchi/deta/pkg/response"
)

func (h *Handler) GetItem(c echo.Context) error {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	item, ok := h.s.items[c.Param("base")][c.Param("key")]
	if !ok {
		return fail(c, http.StatusNotFound, "Key not found")
	}
	return c.JSON(http.StatusOK, item)
}

type PutItemsRequest struct {
	Items []map[string]any `json:"items" validate:"required,min=1,max=25"`
}

func (h *Handler) PutItems(c echo.Context) error {
	var req PutItemsRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	for _, item := range req.Items {
		if key, _ := item["key"].(string); h.s.failPutKeys[key] {
			return fail(c, http.StatusInternalServerError, fmt.Sprintf("cannot store %q", key))
		}
	}

	var result response.PutResult
	result.Processed.Items = []response.Item{}
	for _, item := range req.Items {
		ensureKey(item)
		if h.s.rejectKeys[item["key"].(string)] {
			result.Failed.Items = append(result.Failed.Items, item)
			continue
		}
		h.s.putItem(c.Param("base"), item)
		result.Processed.Items = append(result.Processed.Items, item)
	}

	if len(result.Failed.Items) > 0 {
		return c.JSON(http.StatusMultiStatus, result)
	}
	return c.JSON(http.StatusOK, result)
}

type InsertItemRequest struct {
	Item map[string]any `json:"item" validate:"required"`
}

func (h *Handler) InsertItem(c echo.Context) error {
	var req InsertItemRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	ensureKey(req.Item)
	if _, ok := h.s.items[c.Param("base")][req.Item["key"].(string)]; ok {
		return fail(c, http.StatusConflict, "Key already exists")
	}
	h.s.putItem(c.Param("base"), req.Item)
	return c.JSON(http.StatusCreated, req.Item)
}

type UpdateItemRequest struct {
	Set       map[string]any `json:"set"`
	Increment map[string]any `json:"increment"`
	Append    map[string]any `json:"append"`
	Prepend   map[string]any `json:"prepend"`
	Delete    []string       `json:"delete"`
}

func (h *Handler) UpdateItem(c echo.Context) error {
	var req UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	item, ok := h.s.items[c.Param("base")][c.Param("key")]
	if !ok {
		return fail(c, http.StatusNotFound, "Key not found")
	}

	for path, v := range req.Set {
		setPath(item, path, v)
	}
	for path, v := range req.Increment {
		cur, _ := getPath(item, path).(float64)
		n, ok := v.(float64)
		if !ok {
			return fail(c, http.StatusBadRequest, fmt.Sprintf("increment of %q requires a number", path))
		}
		setPath(item, path, cur+n)
	}
	for path, v := range req.Append {
		cur, _ := getPath(item, path).([]any)
		setPath(item, path, append(cur, asList(v)...))
	}
	for path, v := range req.Prepend {
		cur, _ := getPath(item, path).([]any)
		setPath(item, path, append(asList(v), cur...))
	}
	for _, path := range req.Delete {
		deletePath(item, path)
	}

	return c.JSON(http.StatusOK, map[string]any{"key": c.Param("key")})
}

func (h *Handler) DeleteItem(c echo.Context) error {
	h.s.mu.Lock()
	delete(h.s.items[c.Param("base")], c.Param("key"))
	h.s.mu.Unlock()

	return c.JSON(http.StatusOK, map[string]any{"key": c.Param("key")})
}

type QueryRequest struct {
	Query []map[string]any `json:"query"`
	Limit int              `json:"limit" validate:"gte=0,lte=1000"`
	Last  string           `json:"last"`
}

func (h *Handler) Query(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	stored := h.s.items[c.Param("base")]
	keys := make([]string, 0, len(stored))
	for k := range stored {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	limit := h.s.limit(req.Limit)
	page := response.QueryPage{Items: []response.Item{}}
	for _, k := range keys {
		if req.Last != "" && k <= req.Last {
			continue
		}
		if !matchAny(stored[k], req.Query) {
			continue
		}
		if len(page.Items) == limit {
			last := page.Items[len(page.Items)-1].Key()
			page.Paging.Last = &last
			break
		}
		page.Items = append(page.Items, stored[k])
	}
	page.Paging.Size = len(page.Items)

	return c.JSON(http.StatusOK, page)
}

func ensureKey(item map[string]any) {
	if key, ok := item["key"].(string); !ok || key == "" {
		item["key"] = strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	}
}

func asList(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	return []any{v}
}

func getPath(item map[string]any, path string) any {
	var cur any = item
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

func setPath(item map[string]any, path string, v any) {
	parts := strings.Split(path, ".")
	m := item
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[part] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = v
}

func deletePath(item map[string]any, path string) {
	parts := strings.Split(path, ".")
	m := item
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			return
		}
		m = next
	}
	delete(m, parts[len(parts)-1])
}
