// Package fakeapi is an in-process task backend for tests. It issues real
// HS256 tokens, rotates refresh tokens and keeps tasks in memory.
package fakeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/common"
)

// Request is one request observed by the server.
type Request struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	RequestID     string
	Body          []byte
}

type user struct {
	id       string
	email    string
	password string
}

type failure struct {
	status int
	once   bool
}

// Server is the fake backend. All methods are safe for concurrent use.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	secret       []byte
	now          func() time.Time
	accessTTL    time.Duration
	refreshTTL   time.Duration
	autoRegister bool
	nextID       int

	users        map[string]*user
	tasks        map[string][]models.Task
	access       map[string]bool
	refresh      map[string]bool
	failures     map[string]failure
	requests     []Request
	refreshCalls int
	refreshGate  chan struct{}
}

type Option func(*Server)

// WithClock sets the time used for token claims and task timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithAutoRegister makes logins with an unknown email create the user.
func WithAutoRegister() Option {
	return func(s *Server) { s.autoRegister = true }
}

// New starts a server that is closed when t finishes.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		secret:     []byte("fakeapi-secret"),
		now:        time.Now,
		accessTTL:  15 * time.Minute,
		refreshTTL: 24 * time.Hour,
		users:      map[string]*user{},
		tasks:      map[string][]models.Task{},
		access:     map[string]bool{},
		refresh:    map[string]bool{},
		failures:   map[string]failure{},
	}
	for _, o := range opts {
		o(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/{user}/{$}", s.authorized(s.handleList))
	mux.HandleFunc("POST /api/{user}/{$}", s.authorized(s.handleCreate))
	mux.HandleFunc("GET /api/{user}/{id}", s.authorized(s.handleGet))
	mux.HandleFunc("PUT /api/{user}/{id}", s.authorized(s.handleUpdate))
	mux.HandleFunc("DELETE /api/{user}/{id}", s.authorized(s.handleDelete))
	mux.HandleFunc("PATCH /api/{user}/{id}/complete", s.authorized(s.handleToggle))

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// AddUser registers a user that can log in.
func (s *Server) AddUser(id, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = &user{id: id, email: email, password: password}
}

// AddTask seeds a task for userID and returns it with its assigned id.
func (s *Server) AddTask(userID string, task models.Task) models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.ID == "" {
		task.ID = s.newID()
	}
	task.UserID = userID
	task.Priority = task.Priority.OrDefault()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = models.Timestamp{Time: s.now().UTC()}
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = task.CreatedAt
	}
	s.tasks[userID] = append(s.tasks[userID], task)
	return task
}

// Tasks returns the stored tasks of userID in insertion order.
func (s *Server) Tasks(userID string) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Task(nil), s.tasks[userID]...)
}

// IssuePair mints a valid token pair for a known user.
func (s *Server) IssuePair(t testing.TB, email string) models.TokenPair {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[email]
	if !ok {
		t.Fatalf("fakeapi: unknown user %q", email)
	}
	pair, err := s.issue(u)
	if err != nil {
		t.Fatalf("fakeapi: issue tokens: %v", err)
	}
	return pair
}

// ExpireAccessTokens makes every access token issued so far answer 401.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.access)
}

// RevokeRefreshTokens makes every refresh token issued so far unusable.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.refresh)
}

// FailNext makes the next request to method and path answer status.
func (s *Server) FailNext(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, once: true}
}

// FailAlways makes every request to method and path answer status.
func (s *Server) FailAlways(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status}
}

// HoldRefresh blocks refresh requests until release is called.
func (s *Server) HoldRefresh() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.refreshGate = gate
	s.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// RefreshCalls reports how many refresh requests were received.
func (s *Server) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo returns the requests whose method and path match.
func (s *Server) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		key := r.Method + " " + r.URL.Path

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			RawQuery:      r.URL.RawQuery,
			Authorization: r.Header.Get(common.AuthorizationHeader),
			RequestID:     r.Header.Get(common.RequestIDHeader),
			Body:          body,
		})
		f, failing := s.failures[key]
		if failing && f.once {
			delete(s.failures, key)
		}
		s.mu.Unlock()

		if failing {
			writeError(w, f.status, http.StatusText(f.status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) newID() models.TaskID {
	s.nextID++
	return models.TaskID(strconv.Itoa(s.nextID))
}

// issue must be called with s.mu held.
func (s *Server) issue(u *user) (models.TokenPair, error) {
	now := s.now()
	at, err := GenerateToken(u.id, u.email, kindAccess, s.secret, now, s.accessTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	rt, err := GenerateToken(u.id, u.email, kindRefresh, s.secret, now, s.refreshTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	s.access[at] = true
	s.refresh[rt] = true
	return models.TokenPair{AccessToken: at, RefreshToken: rt, TokenType: "bearer"}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(common.ContentTypeHeader, common.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, models.APIError{Detail: detail})
}
