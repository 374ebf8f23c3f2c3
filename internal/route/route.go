// Package route maps every Base and Drive endpoint to exactly one HTTP call
// and turns the response status into either a decoded body or a model.Error.
package route

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/beanbocchi/deta/pkg/model"
)

const (
	DefaultBaseURL  = "https://database.deta.sh/v1"
	DefaultDriveURL = "https://drive.deta.sh/v1"

	headerAPIKey      = "X-API-Key"
	contentTypeJSON   = "application/json"
	contentTypeBinary = "application/octet-stream"

	// error bodies are small; anything past this is not worth reading
	maxErrorBody = 64 << 10
)

// statusSuccess is what the JSON endpoints answer on success.
var statusSuccess = []int{http.StatusOK, http.StatusCreated}

// Config holds the credentials and endpoints of a Router. Zero values fall
// back to the defaults.
type Config struct {
	ProjectKey string
	ProjectID  string
	BaseURL    string // defaults to DefaultBaseURL
	DriveURL   string // defaults to DefaultDriveURL
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Router is safe for concurrent use; it holds no state besides its
// configuration.
type Router struct {
	projectKey string
	projectID  string
	baseURL    string
	driveURL   string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(cfg Config) *Router {
	r := &Router{
		projectKey: cfg.ProjectKey,
		projectID:  cfg.ProjectID,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		driveURL:   strings.TrimRight(cfg.DriveURL, "/"),
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
	if r.baseURL == "" {
		r.baseURL = DefaultBaseURL
	}
	if r.driveURL == "" {
		r.driveURL = DefaultDriveURL
	}
	if r.httpClient == nil {
		r.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// ProjectID is the id part of the project key.
func (r *Router) ProjectID() string {
	return r.projectID
}

// HTTPClient returns the client every request is sent with.
func (r *Router) HTTPClient() *http.Client {
	return r.httpClient
}

// Logger returns the logger request logs are written to.
func (r *Router) Logger() *slog.Logger {
	return r.logger
}

func (r *Router) baseRoot(base string) string {
	return fmt.Sprintf("%s/%s/%s", r.baseURL, r.projectID, url.PathEscape(base))
}

func (r *Router) driveRoot(drive string) string {
	return fmt.Sprintf("%s/%s/%s", r.driveURL, r.projectID, url.PathEscape(drive))
}

// doRequest sends a request and returns the response once its status is one
// of expected, or any 2xx when expected is empty. On any other status the
// body is consumed and closed and the matching model.Error is returned.
func (r *Router) doRequest(ctx context.Context, method, rawURL string, body io.Reader, contentType string, expected ...int) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(headerAPIKey, r.projectKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	requestID := uuid.NewString()
	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.DebugContext(ctx, "deta request failed",
			"request_id", requestID,
			"method", method,
			"path", req.URL.Path,
			"error", err,
		)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	r.logger.DebugContext(ctx, "deta request",
		"request_id", requestID,
		"method", method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if accepted(resp.StatusCode, expected) {
		return resp, nil
	}

	defer resp.Body.Close()
	errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, statusError(resp.StatusCode, errBody)
}

// doJSON sends in (if not nil) as JSON and decodes the response into out (if
// not nil).
func (r *Router) doJSON(ctx context.Context, method, rawURL string, in, out any, expected ...int) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := sonic.ConfigStd.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
		contentType = contentTypeJSON
	}

	resp, err := r.doRequest(ctx, method, rawURL, body, contentType, expected...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := sonic.ConfigStd.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func accepted(status int, expected []int) bool {
	if len(expected) == 0 {
		return status >= 200 && status < 300
	}
	return slices.Contains(expected, status)
}

// statusError maps a failed response to the error taxonomy.
func statusError(status int, body []byte) error {
	msg := errorMessage(status, body)
	switch status {
	case http.StatusBadRequest:
		return model.ErrBadRequest.Fmt(msg)
	case http.StatusNotFound:
		return model.ErrNotFound.Fmt(msg)
	case http.StatusConflict:
		return model.ErrKeyConflict.Fmt(msg)
	case http.StatusRequestEntityTooLarge:
		return model.ErrPayloadTooLarge.Fmt(msg)
	default:
		return model.ErrUnexpectedStatus.Fmt(status, msg).WithStatus(status)
	}
}

// errorMessage joins the "errors" array of a service error body. Bodies that
// are not JSON are used verbatim.
func errorMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		if errs := gjson.GetBytes(body, "errors"); errs.IsArray() {
			var msgs []string
			for _, e := range errs.Array() {
				if s := e.String(); s != "" {
					msgs = append(msgs, s)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	} else if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return http.StatusText(status)
}

// decodeOptional decodes a response body that the service may leave empty.
func decodeOptional(body io.Reader, out any) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := sonic.ConfigStd.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
