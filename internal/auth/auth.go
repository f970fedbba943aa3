// Package auth supplies the request headers the dashboards attach to every
// call and the logout action they invoke on explicit user request.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const credFileName = "credentials.json"

// Provider is the capability injected into every view. Headers must return
// a fresh map on each call; callers only read it.
type Provider interface {
	Headers() map[string]string
	Logout() error
}

// TokenInfo is the on-disk credential record.
type TokenInfo struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`     // "config" | "file"
	CreatedAt time.Time  `json:"created_at"` // when we saved to file
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the token carries an expiry that has passed.
func (ti *TokenInfo) Expired(now time.Time) bool {
	return ti != nil && ti.ExpiresAt != nil && !now.Before(*ti.ExpiresAt)
}

// Store reads and writes the credential file inside dir (0700 dir, 0600 file).
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir, typically ~/.tally.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path() string {
	return filepath.Join(s.dir, credFileName)
}

// Load returns the stored token, or nil when no one is logged in.
func (s *Store) Load() (*TokenInfo, error) {
	b, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ti TokenInfo
	if err := json.Unmarshal(b, &ti); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ti.Token = stripBearer(ti.Token)
	return &ti, nil
}

// Save persists token, recording the JWT expiry when one can be read.
func (s *Store) Save(token string) (*TokenInfo, error) {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	ti := TokenInfo{
		Token:     token,
		Source:    "file",
		CreatedAt: time.Now(),
		ExpiresAt: tokenExpiry(token),
	}
	b, err := json.MarshalIndent(ti, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(s.path(), b, 0o600); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	return &ti, nil
}

// Delete removes the credential file; a missing file is not an error.
func (s *Store) Delete() error {
	if err := os.Remove(s.path()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// Session is the production Provider: a configured token wins over the
// credential file, and Logout forgets both the in-memory and stored token.
type Session struct {
	store *Store

	mu    sync.RWMutex
	token string
}

// NewSession resolves the active token from configToken, then the store.
func NewSession(store *Store, configToken string) (*Session, error) {
	s := &Session{store: store}
	if tok := stripBearer(strings.TrimSpace(configToken)); tok != "" {
		s.token = tok
		return s, nil
	}
	if store == nil {
		return s, nil
	}
	ti, err := store.Load()
	if err != nil {
		return nil, err
	}
	if ti != nil {
		s.token = ti.Token
	}
	return s, nil
}

// Token returns the active token, empty when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Headers implements Provider.
func (s *Session) Headers() map[string]string {
	return headersFor(s.Token())
}

// Logout implements Provider.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	return s.store.Delete()
}

// Static is a fixed-token Provider that counts logouts.
type Static struct {
	Token string

	mu      sync.Mutex
	logouts int
}

// Headers implements Provider.
func (s *Static) Headers() map[string]string {
	return headersFor(s.Token)
}

// Logout implements Provider.
func (s *Static) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logouts++
	return nil
}

// Logouts returns how many times Logout was invoked.
func (s *Static) Logouts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logouts
}

func headersFor(token string) map[string]string {
	h := map[string]string{"Content-Type": "application/json"}
	if token != "" {
		h["Authorization"] = "Bearer " + token
	}
	return h
}

// tokenExpiry reads the exp claim of a JWT without verifying it; the
// backend remains the authority on validity.
func tokenExpiry(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil
	}
	t := time.Unix(int64(exp), 0).UTC()
	return &t
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
