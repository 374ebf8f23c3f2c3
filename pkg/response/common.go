package response

import (
	"github.com/go-viper/mapstructure/v2"
)

// ErrorResponse is the body both services send with a 4xx status.
type ErrorResponse struct {
	Errors []string `json:"errors"`
}

// Item is a Base record as returned by the service. It always contains "key".
type Item map[string]any

func (i Item) Key() string {
	key, _ := i["key"].(string)
	return key
}

// Decode copies the item into out, a pointer to a struct using json tags.
func (i Item) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(i))
}

type ItemList struct {
	Items []Item `json:"items"`
}

// PutResult is the outcome of a bulk put. Items rejected by the service are
// listed in Failed; when a whole chunk could not be sent, its items are listed
// in Failed as well and the transport error is kept in ChunkErrors.
type PutResult struct {
	Processed   ItemList `json:"processed"`
	Failed      ItemList `json:"failed"`
	ChunkErrors []error  `json:"-"`
}

// Merge appends other to r, keeping chunk order.
func (r *PutResult) Merge(other PutResult) {
	r.Processed.Items = append(r.Processed.Items, other.Processed.Items...)
	r.Failed.Items = append(r.Failed.Items, other.Failed.Items...)
	r.ChunkErrors = append(r.ChunkErrors, other.ChunkErrors...)
}

type InsertRequest struct {
	Item map[string]any `json:"item"`
}

type PutRequest struct {
	Items []map[string]any `json:"items"`
}
