// Package drive is the client of a single Deta Drive, a store of named files.
package drive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/guregu/null/v6"
	"golang.org/x/sync/errgroup"

	"github.com/beanbocchi/deta/internal/route"
	"github.com/beanbocchi/deta/internal/utils/blake3"
	"github.com/beanbocchi/deta/internal/utils/progressr"
	"github.com/beanbocchi/deta/pkg/model"
	"github.com/beanbocchi/deta/pkg/response"
	"github.com/beanbocchi/deta/pkg/validator"
)

const (
	// MaxChunkSize is the largest body sent in one request. Bigger files are
	// uploaded in parts of this size.
	MaxChunkSize = 10 << 20

	// MaxDeleteNames is the number of files one delete request may name.
	MaxDeleteNames = 1000
)

type Config struct {
	Name        string `validate:"required"`
	Router      *route.Router
	Logger      *slog.Logger
	Concurrency int `validate:"gte=0"` // parallel part uploads, 0 for no limit
}

type Drive struct {
	name        string
	router      *route.Router
	logger      *slog.Logger
	concurrency int
}

func New(cfg Config) (*Drive, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}
	if cfg.Router == nil {
		return nil, model.ErrValidation.Fmt("drive requires a router")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = cfg.Router.Logger()
	}

	return &Drive{
		name:        cfg.Name,
		router:      cfg.Router,
		logger:      logger.With("drive", cfg.Name),
		concurrency: cfg.Concurrency,
	}, nil
}

func (d *Drive) Name() string {
	return d.name
}

func (d *Drive) group() *errgroup.Group {
	g := &errgroup.Group{}
	if d.concurrency > 0 {
		g.SetLimit(d.concurrency)
	}
	return g
}

// Upload stores the content of r under name, replacing any existing file.
// Content up to MaxChunkSize is sent in one request; anything bigger goes
// through an upload session that is either completed or aborted before
// Upload returns.
func (d *Drive) Upload(ctx context.Context, name string, r io.Reader) (*response.Upload, error) {
	if name == "" {
		return nil, model.ErrValidation.Fmt("file name must not be empty")
	}

	data, hash, err := blake3.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read content of %q: %w", name, err)
	}

	u := &uploader{
		drive:  d,
		name:   name,
		data:   data,
		logger: d.logger.With("file", name, "size", humanize.IBytes(uint64(len(data)))),
	}
	upload, err := u.run(ctx)
	if err != nil {
		return nil, err
	}

	upload.Name = name
	upload.Size = int64(len(data))
	upload.Hash = hash
	return upload, nil
}

// UploadFile uploads a local file. An empty name uses the file's base name.
func (d *Drive) UploadFile(ctx context.Context, name, path string) (*response.Upload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if name == "" {
		name = filepath.Base(path)
	}
	return d.Upload(ctx, name, f)
}

// File is a download in progress. It must be closed.
type File struct {
	*progressr.Reader
	Name string
	Size int64 // -1 when unknown

	digest *blake3.Reader
}

// Hash returns the BLAKE3 digest of the content read so far; once the file
// is read to the end it matches the Hash reported by Upload.
func (f *File) Hash() string {
	return f.digest.Sum()
}

// Download opens the named file for reading. A missing file yields
// model.ErrNotFound.
func (d *Drive) Download(ctx context.Context, name string) (*File, error) {
	if name == "" {
		return nil, model.ErrValidation.Fmt("file name must not be empty")
	}

	body, size, err := d.router.DownloadFile(ctx, d.name, name)
	if err != nil {
		return nil, fmt.Errorf("download %q: %w", name, err)
	}
	digest := blake3.NewReader(body)
	return &File{
		Reader: progressr.NewReader(digest, size),
		Name:   name,
		Size:   size,
		digest: digest,
	}, nil
}

// ListParams filters and pages a file listing. Prefix applies to every page.
type ListParams struct {
	model.PaginationParams
	Prefix null.String `validate:"omitnil,min=1"`
}

// List returns file names in lexical order. Without a Limit every page is
// fetched; with one, a single page is returned along with its cursor.
func (d *Drive) List(ctx context.Context, params ListParams) (*model.PaginateResult[string], error) {
	if err := validator.Validate(params); err != nil {
		return nil, err
	}

	result := &model.PaginateResult[string]{Data: []string{}}
	last := params.GetLast()
	for pages := 1; ; pages++ {
		page, err := d.router.ListFiles(ctx, d.name, params.GetLimit(), params.Prefix.ValueOrZero(), last)
		if err != nil {
			return nil, fmt.Errorf("list page %d: %w", pages, err)
		}
		result.Data = append(result.Data, page.Names...)
		last = page.Paging.Cursor()

		if !params.AutoPaginate() || last == "" {
			break
		}
	}
	result.Last = last
	return result, nil
}

// Files returns the name of every file in the drive.
func (d *Drive) Files(ctx context.Context) ([]string, error) {
	res, err := d.List(ctx, ListParams{})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// Delete removes up to MaxDeleteNames files in one request. Names the service
// could not delete are reported in the result's Failed map.
func (d *Drive) Delete(ctx context.Context, names ...string) (*response.DeleteFilesResult, error) {
	if err := validator.ValidateVar("names", names, fmt.Sprintf("min=1,max=%d,dive,required", MaxDeleteNames)); err != nil {
		return nil, err
	}

	res, err := d.router.DeleteFiles(ctx, d.name, names)
	if err != nil {
		return nil, fmt.Errorf("delete files: %w", err)
	}
	return res, nil
}
