// Package detatest runs an in-memory fake of the Base and Drive HTTP APIs for
// tests. It keeps every request it receives and can be told to fail parts of
// the upload protocol or individual items of a bulk put.
package detatest

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

const (
	ProjectID  = "a0abcyxz"
	ProjectKey = ProjectID + "_secret"
)

// Request is a request received by the fake.
type Request struct {
	Method string
	Path   string // path below the base or drive root, e.g. /items/k1
	Query  url.Values
}

type Option func(*Server)

// WithPageSize caps every query and listing page, regardless of the limit
// sent by the client.
func WithPageSize(n int) Option {
	return func(s *Server) {
		s.pageSize = n
	}
}

// WithFailingPart makes the given upload part number fail with a 500.
func WithFailingPart(part int) Option {
	return func(s *Server) {
		s.failParts[part] = true
	}
}

// WithFailingCompletion makes every upload completion fail with a 500.
func WithFailingCompletion() Option {
	return func(s *Server) {
		s.failComplete = true
	}
}

// WithRejectedKeys makes bulk puts report items with these keys as failed.
func WithRejectedKeys(keys ...string) Option {
	return func(s *Server) {
		for _, k := range keys {
			s.rejectKeys[k] = true
		}
	}
}

// WithFailingPuts makes every bulk put containing one of these keys fail
// outright with a 500.
func WithFailingPuts(keys ...string) Option {
	return func(s *Server) {
		for _, k := range keys {
			s.failPutKeys[k] = true
		}
	}
}

type upload struct {
	name  string
	drive string
	parts map[int][]byte
}

// Server is the fake. Its state is safe for concurrent use by handlers and
// the test goroutine.
type Server struct {
	srv *httptest.Server

	mu       sync.Mutex
	items    map[string]map[string]map[string]any // base -> key -> item
	files    map[string]map[string][]byte         // drive -> name -> content
	uploads  map[string]*upload
	aborted  []string
	requests []Request

	pageSize     int
	failParts    map[int]bool
	failComplete bool
	rejectKeys   map[string]bool
	failPutKeys  map[string]bool
}

// NewServer starts a fake and stops it when the test ends.
func NewServer(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		items:       make(map[string]map[string]map[string]any),
		files:       make(map[string]map[string][]byte),
		uploads:     make(map[string]*upload),
		failParts:   make(map[int]bool),
		rejectKeys:  make(map[string]bool),
		failPutKeys: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.srv = httptest.NewServer(NewEcho(s))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *Server) BaseURL() string {
	return s.srv.URL + "/base/v1"
}

func (s *Server) DriveURL() string {
	return s.srv.URL + "/drive/v1"
}

// Requests returns a copy of the request log.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many requests matched method and a path with the given
// prefix.
func (s *Server) Count(method, pathPrefix string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && strings.HasPrefix(r.Path, pathPrefix) {
			n++
		}
	}
	return n
}

func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// Item returns a stored item, or nil.
func (s *Server) Item(base, key string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[base][key]
}

// SetItem stores an item directly, bypassing the API.
func (s *Server) SetItem(base string, item map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putItem(base, item)
}

// File returns stored content and whether the file exists.
func (s *Server) File(drive, name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[drive][name]
	return data, ok
}

func (s *Server) SetFile(drive, name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putFile(drive, name, data)
}

// OpenUploads is the number of upload sessions neither completed nor aborted.
func (s *Server) OpenUploads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads)
}

// Aborted lists the ids of aborted upload sessions.
func (s *Server) Aborted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.aborted...)
}

func (s *Server) record(r Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r)
}

func (s *Server) putItem(base string, item map[string]any) {
	if s.items[base] == nil {
		s.items[base] = make(map[string]map[string]any)
	}
	key, _ := item["key"].(string)
	s.items[base][key] = item
}

func (s *Server) putFile(drive, name string, data []byte) {
	if s.files[drive] == nil {
		s.files[drive] = make(map[string][]byte)
	}
	s.files[drive][name] = data
}

func (s *Server) limit(requested int) int {
	n := requested
	if n <= 0 || n > 1000 {
		n = 1000
	}
	if s.pageSize > 0 && s.pageSize < n {
		n = s.pageSize
	}
	return n
}
