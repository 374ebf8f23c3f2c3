package model

import (
	"github.com/guregu/null/v6"
)

// MaxPageLimit is the largest page size either service accepts.
const MaxPageLimit = 1000

// PaginationParams represents the pagination parameters of a query or a file
// listing. Without a Limit the caller receives every page; with a Limit exactly
// one page is requested and the cursor for the next one is returned.
type PaginationParams struct {
	Limit null.Int32  `query:"limit" validate:"omitnil,gt=0,lte=1000"`
	Last  null.String `query:"last" validate:"omitnil,min=1"`
}

// AutoPaginate reports whether every page should be fetched.
func (p PaginationParams) AutoPaginate() bool {
	return !p.Limit.Valid
}

func (p PaginationParams) GetLimit() int {
	if !p.Limit.Valid {
		return 0
	}
	return int(p.Limit.Int32)
}

func (p PaginationParams) GetLast() string {
	return p.Last.ValueOrZero()
}

// PaginateResult represents a paginated result set
type PaginateResult[T any] struct {
	Data []T
	Last string // Cursor of the next page, empty once the final page has been read
}

func (p PaginateResult[T]) HasMore() bool {
	return p.Last != ""
}
