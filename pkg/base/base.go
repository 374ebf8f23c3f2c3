// Package base is the client of a single Deta Base, a document store keyed by
// string keys.
package base

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/beanbocchi/deta/internal/route"
	"github.com/beanbocchi/deta/pkg/field"
	"github.com/beanbocchi/deta/pkg/model"
	"github.com/beanbocchi/deta/pkg/response"
	"github.com/beanbocchi/deta/pkg/update"
	"github.com/beanbocchi/deta/pkg/validator"
)

// MaxItemsPerPut is the number of items the service accepts in one put.
const MaxItemsPerPut = 25

type Config struct {
	Name        string `validate:"required"`
	Router      *route.Router
	Logger      *slog.Logger
	Concurrency int `validate:"gte=0"` // parallel requests per call, 0 for no limit
}

type Base struct {
	name        string
	router      *route.Router
	logger      *slog.Logger
	concurrency int
}

func New(cfg Config) (*Base, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}
	if cfg.Router == nil {
		return nil, model.ErrValidation.Fmt("base requires a router")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = cfg.Router.Logger()
	}

	return &Base{
		name:        cfg.Name,
		router:      cfg.Router,
		logger:      logger.With("base", cfg.Name),
		concurrency: cfg.Concurrency,
	}, nil
}

func (b *Base) Name() string {
	return b.name
}

func (b *Base) group() *errgroup.Group {
	g := &errgroup.Group{}
	if b.concurrency > 0 {
		g.SetLimit(b.concurrency)
	}
	return g
}

// Put stores records, overwriting existing keys. Up to MaxItemsPerPut records
// are sent in one request whose error is returned as is. Larger sets are split
// into chunks sent concurrently; a chunk that fails entirely has its records
// reported in Failed and its error in ChunkErrors, and Put returns no error.
func (b *Base) Put(ctx context.Context, records ...Record) (*response.PutResult, error) {
	if len(records) == 0 {
		return nil, model.ErrValidation.Fmt("put requires at least one record")
	}

	items := make([]map[string]any, len(records))
	for i, r := range records {
		item, err := r.payload()
		if err != nil {
			return nil, err
		}
		items[i] = item
	}

	if len(items) <= MaxItemsPerPut {
		res, err := b.router.PutItems(ctx, b.name, items)
		if err != nil {
			return nil, fmt.Errorf("put items: %w", err)
		}
		return res, nil
	}

	chunks := chunk(items, MaxItemsPerPut)
	results := make([]response.PutResult, len(chunks))

	g := b.group()
	for i, c := range chunks {
		g.Go(func() error {
			res, err := b.router.PutItems(ctx, b.name, c)
			if err != nil {
				b.logger.WarnContext(ctx, "put chunk failed", "chunk", i+1, "items", len(c), "error", err)
				failed := make([]response.Item, len(c))
				for j, item := range c {
					failed[j] = item
				}
				results[i] = response.PutResult{
					Failed:      response.ItemList{Items: failed},
					ChunkErrors: []error{fmt.Errorf("put chunk %d: %w", i+1, err)},
				}
				return nil
			}
			results[i] = *res
			return nil
		})
	}
	_ = g.Wait()

	merged := &response.PutResult{}
	for _, res := range results {
		merged.Merge(res)
	}
	return merged, nil
}

// Insert stores a record only if its key is free; otherwise it fails with
// model.ErrKeyConflict.
func (b *Base) Insert(ctx context.Context, record Record) (response.Item, error) {
	item, err := record.payload()
	if err != nil {
		return nil, err
	}

	created, err := b.router.InsertItem(ctx, b.name, item)
	if err != nil {
		return nil, fmt.Errorf("insert %q: %w", record.Key, err)
	}
	return created, nil
}

// Get returns the item stored under key, or nil if there is none.
func (b *Base) Get(ctx context.Context, key string) (response.Item, error) {
	if key == "" {
		return nil, model.ErrValidation.Fmt("key must not be empty")
	}

	item, err := b.router.GetItem(ctx, b.name, key)
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return item, nil
}

// GetMany fetches keys concurrently. The result follows the order of keys
// with nil for missing items.
func (b *Base) GetMany(ctx context.Context, keys ...string) ([]response.Item, error) {
	if err := checkKeys(keys); err != nil {
		return nil, err
	}

	items := make([]response.Item, len(keys))
	g := b.group()
	for i, key := range keys {
		g.Go(func() error {
			item, err := b.Get(ctx, key)
			items[i] = item
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update applies ops to the item stored under key. Invalid ops are reported
// before anything is sent.
func (b *Base) Update(ctx context.Context, key string, ops ...update.Op) error {
	if key == "" {
		return model.ErrValidation.Fmt("key must not be empty")
	}
	payload, err := update.Merge(ops...)
	if err != nil {
		return err
	}

	if err := b.router.UpdateItem(ctx, b.name, key, payload); err != nil {
		return fmt.Errorf("update %q: %w", key, err)
	}
	return nil
}

// AddField sets fields on an existing item.
func (b *Base) AddField(ctx context.Context, key string, fields ...field.Field) error {
	return b.Update(ctx, key, update.Set(fields...))
}

// DeleteField removes fields from an existing item.
func (b *Base) DeleteField(ctx context.Context, key string, names ...string) error {
	return b.Update(ctx, key, update.Delete(names...))
}

// Delete removes the items stored under keys, one request per key. Deleting
// a missing key is not an error. Every request runs to completion; the first
// failure is returned.
func (b *Base) Delete(ctx context.Context, keys ...string) ([]string, error) {
	if err := checkKeys(keys); err != nil {
		return nil, err
	}

	if len(keys) == 1 {
		if err := b.router.DeleteItem(ctx, b.name, keys[0]); err != nil {
			return nil, fmt.Errorf("delete %q: %w", keys[0], err)
		}
		return []string{keys[0]}, nil
	}

	g := b.group()
	for _, key := range keys {
		g.Go(func() error {
			if err := b.router.DeleteItem(ctx, b.name, key); err != nil {
				return fmt.Errorf("delete %q: %w", key, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return append([]string(nil), keys...), nil
}

func checkKeys(keys []string) error {
	if len(keys) == 0 {
		return model.ErrValidation.Fmt("at least one key is required")
	}
	for _, key := range keys {
		if key == "" {
			return model.ErrValidation.Fmt("key must not be empty")
		}
	}
	return nil
}

func chunk[T any](s []T, size int) [][]T {
	chunks := make([][]T, 0, (len(s)+size-1)/size)
	for size < len(s) {
		s, chunks = s[size:], append(chunks, s[:size:size])
	}
	return append(chunks, s)
}
