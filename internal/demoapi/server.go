// Package demoapi is a small in-memory backend speaking the same REST
// contract as the real server. It backs `tally serve-demo` and client tests.
package demoapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"tally/internal/debug"
	"tally/internal/records"
)

// Server holds items and users in memory. The zero value is not usable;
// call NewServer.
type Server struct {
	token string

	mu    sync.Mutex
	items []records.Item
	users []records.User
	newID func() string
}

// NewServer builds a server that requires "Bearer <token>" on every request.
// An empty token disables the check.
func NewServer(token string, users []records.User) *Server {
	return &Server{
		token: token,
		users: append([]records.User(nil), users...),
		newID: func() string { return uuid.New().String() },
	}
}

// Seed adds items with fresh identifiers and returns them.
func (s *Server) Seed(drafts ...records.ItemDraft) []records.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]records.Item, 0, len(drafts))
	for _, d := range drafts {
		it := s.itemFrom(s.newID(), d)
		s.items = append(s.items, it)
		out = append(out, it)
	}
	return out
}

// Items returns a copy of the stored items.
func (s *Server) Items() []records.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]records.Item, len(s.items))
	copy(out, s.items)
	return out
}

// Router returns the HTTP handler.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests, s.requireToken)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.HandleFunc("/items", s.listItems).Methods(http.MethodGet)
	r.HandleFunc("/items", s.createItem).Methods(http.MethodPost)
	r.HandleFunc("/items/{id}", s.updateItem).Methods(http.MethodPut)
	r.HandleFunc("/items/{id}", s.deleteItem).Methods(http.MethodDelete)
	r.HandleFunc("/users", s.listUsers).Methods(http.MethodGet)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		debug.Logf("demoapi: %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.URL.Path != "/health" {
			got := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
			if got != s.token {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listItems(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Items())
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	d, ok := decodeDraft(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	it := s.itemFrom(s.newID(), d)
	s.items = append(s.items, it)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, it)
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	d, ok := decodeDraft(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = s.itemFrom(id, d)
			writeJSON(w, http.StatusOK, s.items[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "item not found")
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "item not found")
}

func (s *Server) listUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	users := make([]records.User, len(s.users))
	copy(users, s.users)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) itemFrom(id string, d records.ItemDraft) records.Item {
	return records.Item{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
	}
}

func decodeDraft(w http.ResponseWriter, r *http.Request) (records.ItemDraft, bool) {
	var d records.ItemDraft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return d, false
	}
	if err := d.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return d, false
	}
	return d, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
