// Package auth issues and verifies operator session tokens and hashes passwords.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
)

// ErrInvalidSession is returned for tokens that are malformed, tampered with or expired.
var ErrInvalidSession = errors.New("invalid or expired session")

// Session identifies the signed-in operator.
type Session struct {
	UserID   string    `json:"uid"`
	Email    string    `json:"email"`
	IssuedAt time.Time `json:"iat"`
}

// SessionManager issues fernet session tokens and verifies them against a TTL.
type SessionManager struct {
	keys []*fernet.Key
	ttl  time.Duration
}

// NewSessionManager creates a manager from base64 fernet keys. The first key signs new
// tokens, every key is accepted when verifying, which allows key rotation.
func NewSessionManager(ttl time.Duration, encodedKeys ...string) (*SessionManager, error) {
	if len(encodedKeys) == 0 {
		return nil, errors.New("at least one session key is required")
	}
	keys, err := fernet.DecodeKeys(encodedKeys...)
	if err != nil {
		return nil, fmt.Errorf("invalid session key: %w", err)
	}
	return &SessionManager{keys: keys, ttl: ttl}, nil
}

// GenerateKey returns a new random base64 fernet key.
func GenerateKey() (string, error) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return "", fmt.Errorf("failed to generate session key: %w", err)
	}
	return k.Encode(), nil
}

// TTL returns how long issued tokens stay valid.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a token for the given session.
func (m *SessionManager) Issue(s Session) (string, error) {
	if s.IssuedAt.IsZero() {
		s.IssuedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}
	tok, err := fernet.EncryptAndSign(payload, m.keys[0])
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return string(tok), nil
}

// Verify decodes a token issued by Issue.
func (m *SessionManager) Verify(token string) (Session, error) {
	payload := fernet.VerifyAndDecrypt([]byte(token), m.ttl, m.keys)
	if payload == nil {
		return Session{}, ErrInvalidSession
	}
	var s Session
	if err := json.Unmarshal(payload, &s); err != nil || s.UserID == "" {
		return Session{}, ErrInvalidSession
	}
	return s, nil
}
