// package auth signs sessions, hashes secrets and bootstraps the administrative account
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/midias/internal/models"
)

// ErrInvalidSession is returned by [SessionCodec.Verify] for every rejected token.
var ErrInvalidSession = errors.New("invalid session")

// CookieName is the name of the cookie carrying the session token.
const CookieName = "session"

var encoding = base64.RawURLEncoding.Strict()

// Claims identify the user a session was issued to.
type Claims struct {
	UserID int64       `json:"uid"`
	Role   models.Role `json:"role"`
}

// envelope is the signed payload. Field order is fixed so encoding is deterministic.
type envelope struct {
	Data    Claims `json:"d"`
	Expires int64  `json:"exp"`
}

// SessionCodec signs and verifies stateless session tokens.
//
// A token is the URL-safe base64 encoding of payload + "." + HMAC-SHA256(payload).
// Tokens cannot be revoked; each stays valid until it expires.
type SessionCodec struct {
	secret []byte
	now    func() time.Time
}

// NewSessionCodec creates a [SessionCodec] keyed with secret.
func NewSessionCodec(secret string) *SessionCodec {
	return &SessionCodec{secret: []byte(secret), now: time.Now}
}

// WithClock replaces the time source, for tests.
func (c *SessionCodec) WithClock(now func() time.Time) *SessionCodec {
	c.now = now
	return c
}

// Sign issues a token carrying claims that expires after ttl.
func (c *SessionCodec) Sign(claims Claims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("session ttl must be positive, got %s", ttl)
	}

	payload, err := json.Marshal(envelope{Data: claims, Expires: c.now().Add(ttl).Unix()})
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}

	raw := make([]byte, 0, len(payload)+1+sha256.Size)
	raw = append(raw, payload...)
	raw = append(raw, '.')
	raw = append(raw, c.mac(payload)...)
	return encoding.EncodeToString(raw), nil
}

// Verify returns the claims of a token that is authentic and not yet expired.
//
// The MAC is binary and may contain a '.', so the token is split at the fixed MAC length.
func (c *SessionCodec) Verify(token string) (Claims, error) {
	raw, err := encoding.DecodeString(token)
	if err != nil {
		return Claims{}, ErrInvalidSession
	}

	split := len(raw) - sha256.Size - 1
	if split < 1 || raw[split] != '.' {
		return Claims{}, ErrInvalidSession
	}

	payload, sig := raw[:split], raw[split+1:]
	if !hmac.Equal(sig, c.mac(payload)) {
		return Claims{}, ErrInvalidSession
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Claims{}, ErrInvalidSession
	}

	if env.Expires <= c.now().Unix() {
		return Claims{}, ErrInvalidSession
	}
	return env.Data, nil
}

func (c *SessionCodec) mac(payload []byte) []byte {
	h := hmac.New(sha256.New, c.secret)
	h.Write(payload)
	return h.Sum(nil)
}
