package route

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/aws/smithy-go/ptr"

	"github.com/beanbocchi/deta/pkg/model"
	"github.com/beanbocchi/deta/pkg/query"
	"github.com/beanbocchi/deta/pkg/response"
)

// GetItem returns the item stored under key, or nil when there is none.
func (r *Router) GetItem(ctx context.Context, base, key string) (response.Item, error) {
	var item response.Item
	err := r.doJSON(ctx, http.MethodGet, r.baseRoot(base)+"/items/"+url.PathEscape(key), nil, &item, statusSuccess...)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// PutItems stores up to 25 items, overwriting existing keys. A 207 response
// lists the rejected items in Failed.
func (r *Router) PutItems(ctx context.Context, base string, items []map[string]any) (*response.PutResult, error) {
	var result response.PutResult
	err := r.doJSON(ctx, http.MethodPut, r.baseRoot(base)+"/items",
		response.PutRequest{Items: items}, &result,
		http.StatusOK, http.StatusCreated, http.StatusMultiStatus)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// InsertItem stores an item only if its key is not taken yet.
func (r *Router) InsertItem(ctx context.Context, base string, item map[string]any) (response.Item, error) {
	var created response.Item
	err := r.doJSON(ctx, http.MethodPost, r.baseRoot(base)+"/items",
		response.InsertRequest{Item: item}, &created,
		statusSuccess...)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateItem applies an update payload to an existing item. Any 2xx counts
// as success since nothing is read back.
func (r *Router) UpdateItem(ctx context.Context, base, key string, payload map[string]any) error {
	return r.doJSON(ctx, http.MethodPatch, r.baseRoot(base)+"/items/"+url.PathEscape(key), payload, nil)
}

// DeleteItem removes the item stored under key. Deleting a missing key
// succeeds.
func (r *Router) DeleteItem(ctx context.Context, base, key string) error {
	return r.doJSON(ctx, http.MethodDelete, r.baseRoot(base)+"/items/"+url.PathEscape(key), nil, nil)
}

// QueryItems fetches one page of items matching q. A zero limit lets the
// service pick the page size; an empty last starts from the beginning.
func (r *Router) QueryItems(ctx context.Context, base string, q query.Query, limit int, last string) (*response.QueryPage, error) {
	if err := q.Err(); err != nil {
		return nil, err
	}

	req := response.QueryRequest{
		Query: q.Predicates(),
		Limit: limit,
	}
	if last != "" {
		req.Last = ptr.String(last)
	}

	var page response.QueryPage
	if err := r.doJSON(ctx, http.MethodPost, r.baseRoot(base)+"/query", req, &page, statusSuccess...); err != nil {
		return nil, err
	}
	return &page, nil
}
