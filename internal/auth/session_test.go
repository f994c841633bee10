package auth

import (
	"crypto/ed25519"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpiry(t *testing.T) {
	for _, s := range []string{"", "0", "never"} {
		d, err := ParseExpiry(s)
		require.NoError(t, err)
		assert.Zero(t, d)
	}
	d, err := ParseExpiry("72h")
	require.NoError(t, err)
	assert.Equal(t, 72*time.Hour, d)

	_, err = ParseExpiry("soon")
	assert.Error(t, err)
}

func TestIssueAndAuthenticate(t *testing.T) {
	s, err := NewSessions(0)
	require.NoError(t, err)
	player, game := uuid.New(), uuid.New()

	token, err := s.Issue(player, game)
	require.NoError(t, err)

	sess, err := s.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, player, sess.PlayerID)
	assert.Equal(t, game, sess.GameID)
}

func TestTokenFromOtherKeyIsRejected(t *testing.T) {
	a, err := NewSessions(0)
	require.NoError(t, err)
	b, err := NewSessions(0)
	require.NoError(t, err)

	token, err := a.Issue(uuid.New(), uuid.New())
	require.NoError(t, err)
	_, err = b.Authenticate(token)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	s, err := NewSessions(time.Hour)
	require.NoError(t, err)
	now := time.Now()
	s.now = func() time.Time { return now }

	token, err := s.Issue(uuid.New(), uuid.New())
	require.NoError(t, err)
	_, err = s.Authenticate(token)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = s.Authenticate(token)
	assert.ErrorContains(t, err, "expired")
}

func TestFromRequest(t *testing.T) {
	s, err := NewSessions(0)
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/games/x/ws", nil)
	_, err = s.FromRequest(r)
	assert.ErrorIs(t, err, ErrNoSession)

	player, game := uuid.New(), uuid.New()
	token, err := s.Issue(player, game)
	require.NoError(t, err)
	r.AddCookie(s.Cookie(token))

	sess, err := s.FromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, player, sess.PlayerID)
}

func TestNewSessionsFromPath(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	dir := t.TempDir()
	privPath, pubPath := filepath.Join(dir, "key"), filepath.Join(dir, "key.pub")
	require.NoError(t, os.WriteFile(privPath, priv, 0o600))
	require.NoError(t, os.WriteFile(pubPath, pub, 0o600))

	s, err := NewSessionsFromPath(privPath, pubPath, 0)
	require.NoError(t, err)
	token, err := s.Issue(uuid.New(), uuid.New())
	require.NoError(t, err)
	_, err = s.Authenticate(token)
	assert.NoError(t, err)

	_, err = NewSessionsFromPath(filepath.Join(dir, "missing"), pubPath, 0)
	assert.Error(t, err)
}
