package base

import (
	"context"
	"fmt"

	"github.com/beanbocchi/deta/pkg/model"
	"github.com/beanbocchi/deta/pkg/query"
	"github.com/beanbocchi/deta/pkg/response"
	"github.com/beanbocchi/deta/pkg/validator"
)

// QueryParams selects between fetching every page (no Limit) and fetching a
// single page of at most Limit items starting after Last.
type QueryParams = model.PaginationParams

// Query returns the items matching q. Pages are requested one after the
// other, each continuing from the cursor of the previous one.
func (b *Base) Query(ctx context.Context, q query.Query, params QueryParams) (*model.PaginateResult[response.Item], error) {
	if err := validator.Validate(params); err != nil {
		return nil, err
	}
	if err := q.Err(); err != nil {
		return nil, err
	}

	result := &model.PaginateResult[response.Item]{Data: []response.Item{}}
	last := params.GetLast()
	for pages := 1; ; pages++ {
		page, err := b.router.QueryItems(ctx, b.name, q, params.GetLimit(), last)
		if err != nil {
			return nil, fmt.Errorf("query page %d: %w", pages, err)
		}
		result.Data = append(result.Data, page.Items...)
		last = page.Paging.Cursor()

		b.logger.DebugContext(ctx, "query page", "page", pages, "items", len(page.Items), "more", last != "")

		if !params.AutoPaginate() || last == "" {
			break
		}
	}
	result.Last = last
	return result, nil
}

// FetchAll returns every item of the base.
func (b *Base) FetchAll(ctx context.Context) ([]response.Item, error) {
	res, err := b.Query(ctx, query.All(), QueryParams{})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}
