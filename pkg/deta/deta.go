// Package deta is the entry point of the client. A Client holds the project
// credentials and hands out Base and Drive clients that share one HTTP client.
//
//	client, err := deta.NewFromEnv()
//	users, err := client.Base("users")
//	photos, err := client.Drive("photos")
package deta

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/beanbocchi/deta/config"
	"github.com/beanbocchi/deta/internal/route"
	"github.com/beanbocchi/deta/pkg/base"
	"github.com/beanbocchi/deta/pkg/drive"
	"github.com/beanbocchi/deta/pkg/model"
)

// EnvProjectKey is the environment variable read by NewFromEnv.
const EnvProjectKey = "DETA_PROJECT_KEY"

const defaultTimeout = 30 * time.Second

type options struct {
	httpClient  *http.Client
	logger      *slog.Logger
	baseURL     string
	driveURL    string
	concurrency int
	tracing     bool
	timeout     time.Duration
}

type Option func(*options)

// WithHTTPClient replaces the default HTTP client. Timeout and tracing
// options do not apply to it.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithEndpoints points the client at other Base and Drive hosts. Empty values
// keep the defaults.
func WithEndpoints(baseURL, driveURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
		o.driveURL = driveURL
	}
}

// WithConcurrency bounds the requests a single call sends in parallel.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithTracing wraps the default transport with OpenTelemetry instrumentation.
func WithTracing() Option {
	return func(o *options) {
		o.tracing = true
	}
}

type Client struct {
	projectID   string
	router      *route.Router
	logger      *slog.Logger
	concurrency int
}

// New creates a client for a project key of the form "<project id>_<secret>".
func New(projectKey string, opts ...Option) (*Client, error) {
	projectID, err := parseProjectKey(projectKey)
	if err != nil {
		return nil, err
	}

	o := options{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.concurrency < 0 {
		return nil, model.ErrValidation.Fmt("concurrency must not be negative")
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	httpClient := o.httpClient
	if httpClient == nil {
		var transport http.RoundTripper = http.DefaultTransport.(*http.Transport).Clone()
		if o.tracing {
			transport = otelhttp.NewTransport(transport)
		}
		httpClient = &http.Client{
			Timeout:   o.timeout,
			Transport: transport,
		}
	}

	return &Client{
		projectID: projectID,
		router: route.New(route.Config{
			ProjectKey: projectKey,
			ProjectID:  projectID,
			BaseURL:    o.baseURL,
			DriveURL:   o.driveURL,
			HTTPClient: httpClient,
			Logger:     o.logger,
		}),
		logger:      o.logger,
		concurrency: o.concurrency,
	}, nil
}

// NewFromConfig creates a client from loaded configuration. opts are applied
// after the configured values.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	configured := []Option{
		WithEndpoints(cfg.BaseURL, cfg.DriveURL),
		WithConcurrency(cfg.Concurrency),
		WithLogger(cfg.Log.NewLogger(os.Stderr)),
	}
	if cfg.Timeout > 0 {
		configured = append(configured, WithTimeout(cfg.Timeout))
	}
	if cfg.Tracing {
		configured = append(configured, WithTracing())
	}
	return New(cfg.ProjectKey, append(configured, opts...)...)
}

// NewFromEnv creates a client from the DETA_PROJECT_KEY environment variable.
func NewFromEnv(opts ...Option) (*Client, error) {
	key := os.Getenv(EnvProjectKey)
	if key == "" {
		return nil, model.ErrValidation.Fmt(EnvProjectKey + " is not set")
	}
	return New(key, opts...)
}

func parseProjectKey(key string) (string, error) {
	parts := strings.Split(key, "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", model.ErrValidation.Fmt("project key must have the form <project id>_<secret>")
	}
	return parts[0], nil
}

func (c *Client) ProjectID() string {
	return c.projectID
}

// Base returns the client of the named base.
func (c *Client) Base(name string) (*base.Base, error) {
	b, err := base.New(base.Config{
		Name:        name,
		Router:      c.router,
		Logger:      c.logger,
		Concurrency: c.concurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("base %q: %w", name, err)
	}
	return b, nil
}

// Drive returns the client of the named drive.
func (c *Client) Drive(name string) (*drive.Drive, error) {
	d, err := drive.New(drive.Config{
		Name:        name,
		Router:      c.router,
		Logger:      c.logger,
		Concurrency: c.concurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("drive %q: %w", name, err)
	}
	return d, nil
}

// Close releases idle connections. Bases and drives created from c must not
// be used afterwards.
func (c *Client) Close() error {
	c.router.HTTPClient().CloseIdleConnections()
	return nil
}
