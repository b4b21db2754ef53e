// Package basecamptest provides an in-process fake of the Basecamp JSON API
// for tests.
package basecamptest

// file: internal/basecamp/basecamptest/server.go

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dkoosis/camptools/internal/basecamp"
	"golang.org/x/oauth2"
)

// AccountID is the account every fake server answers for.
const AccountID = "999"

// Token is the bearer token clients created by Client send.
const Token = "test-token"

type route struct {
	status int
	body   []byte
	delay  time.Duration
	next   string
}

// Server is a fake Basecamp API. Routes are keyed by the path below the
// account prefix, including any query string, e.g. "projects/1.json" or
// "projects.json?page=2". Unregistered routes answer 404.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]route
	requests []string
	auth     []string
	t        *testing.T
}

// NewServer starts a fake server and registers its shutdown with t.Cleanup.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{routes: make(map[string]route), t: t}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// JSON registers a 200 response with v encoded as JSON.
func (s *Server) JSON(path string, v any) {
	s.set(path, route{status: http.StatusOK, body: s.encode(v)})
}

// Raw registers a response with the given status and literal body.
func (s *Server) Raw(path string, status int, body string) {
	s.set(path, route{status: status, body: []byte(body)})
}

// Fail registers an error status for path.
func (s *Server) Fail(path string, status int) {
	s.set(path, route{status: status, body: []byte(`{"error":"` + http.StatusText(status) + `"}`)})
}

// Delay makes an already registered path sleep before answering.
func (s *Server) Delay(path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.routes[path]
	r.delay = d
	if r.status == 0 {
		r.status = http.StatusOK
		r.body = []byte("[]")
	}
	s.routes[path] = r
}

// Pages registers path as a paginated collection. The first page answers at
// path itself, later pages at path?page=N (or &page=N), each linking to the next.
func (s *Server) Pages(path string, pages ...any) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	key := func(i int) string {
		if i == 0 {
			return path
		}
		return fmt.Sprintf("%s%spage=%d", path, sep, i+1)
	}
	for i, page := range pages {
		r := route{status: http.StatusOK, body: s.encode(page)}
		if i+1 < len(pages) {
			r.next = s.URL + "/" + AccountID + "/" + key(i+1)
		}
		s.set(key(i), r)
	}
}

// Requests returns the paths requested so far, in arrival order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Count returns how many times path was requested.
func (s *Server) Count(path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r == path {
			n++
		}
	}
	return n
}

// AuthHeaders returns the Authorization headers received, in arrival order.
func (s *Server) AuthHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.auth...)
}

// Client returns a client pointed at the fake with a generous rate limit.
func (s *Server) Client(opts ...basecamp.Option) *basecamp.Client {
	s.t.Helper()
	base := []basecamp.Option{
		basecamp.WithRateLimit(1000, 1000),
		basecamp.WithTimeout(2 * time.Second),
	}
	c, err := basecamp.NewClient(s.URL, AccountID,
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: Token, TokenType: "Bearer"}),
		append(base, opts...)...)
	if err != nil {
		s.t.Fatalf("basecamptest: creating client: %v", err)
	}
	return c
}

func (s *Server) set(path string, r route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[path] = r
}

func (s *Server) encode(v any) []byte {
	if raw, ok := v.(string); ok {
		return []byte(raw)
	}
	b, err := json.Marshal(v)
	if err != nil {
		s.t.Fatalf("basecamptest: encoding fixture: %v", err)
	}
	return b
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/"+AccountID+"/")
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}

	s.mu.Lock()
	s.requests = append(s.requests, key)
	s.auth = append(s.auth, r.Header.Get("Authorization"))
	rt, ok := s.routes[key]
	s.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not Found"}`))
		return
	}
	if rt.delay > 0 {
		select {
		case <-time.After(rt.delay):
		case <-r.Context().Done():
			return
		}
	}
	if rt.next != "" {
		w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, rt.next))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rt.status)
	_, _ = w.Write(rt.body)
}
