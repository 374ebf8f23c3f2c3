package response

import (
	"github.com/aws/smithy-go/ptr"

	"github.com/beanbocchi/deta/pkg/query"
)

// Paging is the cursor block of a paginated response. A nil or empty Last
// means there is no further page.
type Paging struct {
	Size int     `json:"size"`
	Last *string `json:"last,omitempty"`
}

func (p Paging) Cursor() string {
	return ptr.ToString(p.Last)
}

func (p Paging) HasMore() bool {
	return p.Cursor() != ""
}

// QueryRequest is the body of a Base query.
type QueryRequest struct {
	Query []query.Predicate `json:"query,omitempty"`
	Limit int               `json:"limit,omitempty"`
	Last  *string           `json:"last,omitempty"`
}

type QueryPage struct {
	Paging Paging `json:"paging"`
	Items  []Item `json:"items"`
}

type FilePage struct {
	Paging Paging   `json:"paging"`
	Names  []string `json:"names"`
}
