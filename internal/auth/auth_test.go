package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTripAndPermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".tally")
	store := NewStore(dir)

	ti, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, ti, "no credentials yet")

	saved, err := store.Save("Bearer abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", saved.Token)
	assert.Nil(t, saved.ExpiresAt, "opaque tokens carry no expiry")

	info, err := os.Stat(filepath.Join(dir, credFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "abc123", loaded.Token)
	assert.Equal(t, "file", loaded.Source)

	require.NoError(t, store.Delete())
	require.NoError(t, store.Delete(), "deleting twice is fine")
}

func TestStoreRejectsEmptyToken(t *testing.T) {
	_, err := NewStore(t.TempDir()).Save("  bearer  ")
	require.Error(t, err)
}

func TestSaveReadsJWTExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second).UTC()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	ti, err := NewStore(t.TempDir()).Save(token)
	require.NoError(t, err)
	require.NotNil(t, ti.ExpiresAt)
	assert.True(t, exp.Equal(*ti.ExpiresAt))
	assert.False(t, ti.Expired(time.Now()))
	assert.True(t, ti.Expired(exp.Add(time.Second)))
}

func TestSessionPrefersConfigToken(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.Save("from-file")
	require.NoError(t, err)

	s, err := NewSession(store, "from-config")
	require.NoError(t, err)
	assert.Equal(t, "Bearer from-config", s.Headers()["Authorization"])

	s, err = NewSession(store, "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer from-file", s.Headers()["Authorization"])
	assert.Equal(t, "application/json", s.Headers()["Content-Type"])
}

func TestSessionLogoutForgetsToken(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.Save("tok")
	require.NoError(t, err)

	s, err := NewSession(store, "")
	require.NoError(t, err)
	require.NoError(t, s.Logout())

	assert.Empty(t, s.Token())
	_, hasAuth := s.Headers()["Authorization"]
	assert.False(t, hasAuth)

	ti, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, ti)
}

func TestHeadersReturnsFreshMap(t *testing.T) {
	p := &Static{Token: "t"}
	h := p.Headers()
	h["Authorization"] = "tampered"
	assert.Equal(t, "Bearer t", p.Headers()["Authorization"])

	require.NoError(t, p.Logout())
	assert.Equal(t, 1, p.Logouts())
}
