package testdata

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jask/agentwallet/internal/backend"
)

// Backend is an in-memory stand-in for the payments API. It serves the demo mode and tests.
type Backend struct {
	mu       sync.Mutex
	token    string
	fixture  Fixture
	rejected []map[string]any
	calls    map[string]int
	failures map[string][]failure
	delay    time.Duration
}

type failure struct {
	status int
	msg    string
}

// NewBackend returns a backend serving f. A non-empty token is required as a bearer token.
func NewBackend(f Fixture, token string) *Backend {
	return &Backend{
		token:    token,
		fixture:  f,
		calls:    map[string]int{},
		failures: map[string][]failure{},
	}
}

// Handler returns the chi router for the backend routes.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(b.count)
	r.Use(b.authorize)
	r.Use(b.injectFailures)

	r.Get("/agentswallet/", b.listPayments)
	r.Post("/agentswallet/reject/", b.reject)
	r.Get("/clients/", b.listClients)
	r.Get("/markets/", b.listMarkets)
	return r
}

// FailNext makes the next request to path answer with status and a {msg} body.
func (b *Backend) FailNext(path string, status int, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[path] = append(b.failures[path], failure{status: status, msg: msg})
}

// SetDelay slows every response down, which lets tests overlap requests.
func (b *Backend) SetDelay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delay = d
}

// Calls returns how many requests hit path.
func (b *Backend) Calls(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

// Rejected returns the decoded bodies of accepted rejections.
func (b *Backend) Rejected() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]map[string]any, len(b.rejected))
	copy(out, b.rejected)
	return out
}

// Pending returns the payments still awaiting review.
func (b *Backend) Pending() []backend.Payment {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]backend.Payment, len(b.fixture.Payments))
	copy(out, b.fixture.Payments)
	return out
}

func (b *Backend) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[r.URL.Path]++
		delay := b.delay
		b.mu.Unlock()
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.token != "" && r.Header.Get("Authorization") != "Bearer "+b.token {
			writeMsg(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		queue := b.failures[r.URL.Path]
		var f *failure
		if len(queue) > 0 {
			f = &queue[0]
			b.failures[r.URL.Path] = queue[1:]
		}
		b.mu.Unlock()
		if f != nil {
			writeMsg(w, f.status, f.msg)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) listPayments(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	out := make([]backend.Payment, len(b.fixture.Payments))
	copy(out, b.fixture.Payments)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) listClients(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.fixture.Clients)
}

func (b *Backend) listMarkets(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.fixture.Markets)
}

func (b *Backend) reject(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	reason, _ := body["reason"].(string)
	if strings.TrimSpace(reason) == "" {
		writeMsg(w, http.StatusBadRequest, "Rejection reason is required")
		return
	}
	id, ok := body["id"].(float64)
	if !ok {
		writeMsg(w, http.StatusBadRequest, "Payment id is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	idx := -1
	for i, p := range b.fixture.Payments {
		if p.ID == int64(id) {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeMsg(w, http.StatusNotFound, "Payment not found")
		return
	}
	b.fixture.Payments = append(b.fixture.Payments[:idx:idx], b.fixture.Payments[idx+1:]...)
	b.rejected = append(b.rejected, body)
	writeMsg(w, http.StatusOK, "Payment rejected successfully")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, backend.MessageResponse{Msg: msg})
}
