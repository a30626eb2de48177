// Package policytest provides a mock remote policy server for tests.
package policytest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Server is a mock HTTP server that publishes a validation policy
// document. It counts requests so tests can prove whether a fetch went
// to the network or was served from cache.
type Server struct {
	server       *httptest.Server
	mu           sync.Mutex
	body         string
	statusCode   int
	delay        time.Duration
	requestCount int
}

// NewServer creates a mock policy server that answers every request
// with the given YAML document.
func NewServer(body string) *Server {
	s := &Server{
		body:       body,
		statusCode: http.StatusOK,
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handler))
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.server.Close()
}

// SetBody replaces the published policy document.
func (s *Server) SetBody(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = body
}

// SetStatusCode makes the server answer with the given HTTP status.
func (s *Server) SetStatusCode(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusCode = code
}

// SetDelay makes the server sleep before answering, for timeout tests.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// RequestCount returns the number of requests received so far.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestCount
}

// ResetRequestCount resets the request counter.
func (s *Server) ResetRequestCount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestCount = 0
}

func (s *Server) handler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requestCount++
	body := s.body
	code := s.statusCode
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(code)
	if code >= 200 && code < 300 {
		_, _ = w.Write([]byte(body))
	}
}
