package route

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/beanbocchi/deta/pkg/response"
)

// ListFiles fetches one page of file names. Zero or empty arguments are left
// out of the request.
func (r *Router) ListFiles(ctx context.Context, drive string, limit int, prefix, last string) (*response.FilePage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if prefix != "" {
		q.Set("prefix", prefix)
	}
	if last != "" {
		q.Set("last", last)
	}

	rawURL := r.driveRoot(drive) + "/files"
	if len(q) > 0 {
		rawURL += "?" + q.Encode()
	}

	var page response.FilePage
	if err := r.doJSON(ctx, http.MethodGet, rawURL, nil, &page, statusSuccess...); err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *Router) DeleteFiles(ctx context.Context, drive string, names []string) (*response.DeleteFilesResult, error) {
	var result response.DeleteFilesResult
	err := r.doJSON(ctx, http.MethodDelete, r.driveRoot(drive)+"/files",
		response.DeleteFilesRequest{Names: names}, &result,
		statusSuccess...)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// PutFile stores a file in a single request.
func (r *Router) PutFile(ctx context.Context, drive, name string, data []byte) (*response.Upload, error) {
	var upload response.Upload
	if err := r.doBinary(ctx, http.MethodPost, r.driveRoot(drive)+"/files?"+nameQuery(name), data, &upload, statusSuccess...); err != nil {
		return nil, err
	}
	return &upload, nil
}

// InitiateUpload opens a chunked upload session. Only 202 counts as success.
func (r *Router) InitiateUpload(ctx context.Context, drive, name string) (*response.UploadSession, error) {
	var session response.UploadSession
	err := r.doJSON(ctx, http.MethodPost, r.driveRoot(drive)+"/uploads?"+nameQuery(name), nil, &session, http.StatusAccepted)
	if err != nil {
		return nil, err
	}
	if session.Name == "" {
		session.Name = name
	}
	return &session, nil
}

// UploadPart sends one chunk of an open session. Parts are numbered from 1
// and any 2xx counts as accepted.
func (r *Router) UploadPart(ctx context.Context, drive string, session *response.UploadSession, part int, data []byte) error {
	q := url.Values{}
	q.Set("name", session.Name)
	q.Set("part", strconv.Itoa(part))

	rawURL := r.uploadURL(drive, session) + "/parts?" + q.Encode()
	return r.doBinary(ctx, http.MethodPost, rawURL, data, nil)
}

// CompleteUpload sends the final chunk and closes the session.
func (r *Router) CompleteUpload(ctx context.Context, drive string, session *response.UploadSession, data []byte) (*response.Upload, error) {
	var upload response.Upload
	rawURL := r.uploadURL(drive, session) + "?" + nameQuery(session.Name)
	if err := r.doBinary(ctx, http.MethodPatch, rawURL, data, &upload); err != nil {
		return nil, err
	}
	return &upload, nil
}

// AbortUpload discards an open session and the parts sent so far.
func (r *Router) AbortUpload(ctx context.Context, drive string, session *response.UploadSession) error {
	rawURL := r.uploadURL(drive, session) + "?" + nameQuery(session.Name)
	return r.doJSON(ctx, http.MethodDelete, rawURL, nil, nil)
}

// DownloadFile streams a file. The caller must close the returned body.
// The size is -1 when the service does not report it.
func (r *Router) DownloadFile(ctx context.Context, drive, name string) (io.ReadCloser, int64, error) {
	resp, err := r.doRequest(ctx, http.MethodGet, r.driveRoot(drive)+"/files/download?"+nameQuery(name), nil, "", http.StatusOK)
	if err != nil {
		return nil, 0, err
	}
	return resp.Body, resp.ContentLength, nil
}

func (r *Router) uploadURL(drive string, session *response.UploadSession) string {
	return r.driveRoot(drive) + "/uploads/" + url.PathEscape(session.UploadID)
}

func (r *Router) doBinary(ctx context.Context, method, rawURL string, data []byte, out any, expected ...int) error {
	r.logger.DebugContext(ctx, "deta upload body", slog.String("size", humanize.IBytes(uint64(len(data)))))

	resp, err := r.doRequest(ctx, method, rawURL, bytes.NewReader(data), contentTypeBinary, expected...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return decodeOptional(resp.Body, out)
}

func nameQuery(name string) string {
	return url.Values{"name": {name}}.Encode()
}
