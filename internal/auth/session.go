// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName carries the session token between reconnects.
const CookieName = "monopoly_session"

// ErrNoSession is returned when a request carries no session cookie.
var ErrNoSession = errors.New("no session")

// Session identifies a seated player.
type Session struct {
	PlayerID uuid.UUID
	GameID   uuid.UUID
}

// Sessions signs and verifies EdDSA session tokens.
type Sessions struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	expiry     time.Duration // 0 => never
	now        func() time.Time
}

// ParseExpiry reads a TOKEN_EXPIRE_TIME value. "never", "0" and "" mean no expiry.
func ParseExpiry(s string) (time.Duration, error) {
	if s == "never" || s == "0" || s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse token expire time: %w", err)
	}
	return d, nil
}

// NewSessions generates a fresh ed25519 key pair. Tokens do not survive a restart.
func NewSessions(expiry time.Duration) (*Sessions, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	return &Sessions{privateKey: privateKey, publicKey: publicKey, expiry: expiry, now: time.Now}, nil
}

// NewSessionsFromPath reads raw ed25519 private and public keys from file.
func NewSessionsFromPath(privatePath, publicPath string, expiry time.Duration) (*Sessions, error) {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}
	if len(privateKeyData) != ed25519.PrivateKeySize || len(publicKeyData) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("malformed ed25519 key files")
	}
	return &Sessions{
		privateKey: ed25519.PrivateKey(privateKeyData),
		publicKey:  ed25519.PublicKey(publicKeyData),
		expiry:     expiry,
		now:        time.Now,
	}, nil
}

// Issue creates a signed token with "sub" = playerID and "game" = gameID.
func (s *Sessions) Issue(playerID, gameID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"sub":  playerID.String(),
		"game": gameID.String(),
	}
	if s.expiry > 0 {
		claims["exp"] = s.now().Add(s.expiry).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(s.privateKey)
}

// Authenticate verifies a token and returns the session it names.
func (s *Sessions) Authenticate(tokenString string) (Session, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.publicKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return Session{}, fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return Session{}, fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, fmt.Errorf("invalid jwt claims")
	}
	playerID, err := uuidClaim(claims, "sub")
	if err != nil {
		return Session{}, err
	}
	gameID, err := uuidClaim(claims, "game")
	if err != nil {
		return Session{}, err
	}
	return Session{PlayerID: playerID, GameID: gameID}, nil
}

func uuidClaim(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, ok := claims[key].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing %s in jwt", key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s in jwt: %w", key, err)
	}
	return id, nil
}

// Cookie wraps a token for Set-Cookie.
func (s *Sessions) Cookie(token string) *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if s.expiry > 0 {
		c.Expires = s.now().Add(s.expiry)
	}
	return c
}

// FromRequest authenticates the session cookie on r.
func (s *Sessions) FromRequest(r *http.Request) (Session, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return Session{}, ErrNoSession
	}
	return s.Authenticate(c.Value)
}
