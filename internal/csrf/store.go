package csrf

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// tokenBytes is the amount of entropy in a session token.
const tokenBytes = 32

// Session is the key/value capability the CSRF layer needs from a browser session.
type Session interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// TokenStore keeps one secret per session under a fixed session key.
type TokenStore struct {
	Key    string
	Random io.Reader
}

// GetOrCreate returns the session token, generating and persisting one on first use.
func (s TokenStore) GetOrCreate(sess Session) (string, error) {
	if sess == nil {
		return "", ErrSessionUnavailable
	}
	key := s.key()
	if token, ok := sess.Get(key); ok && token != "" {
		return token, nil
	}
	token, err := s.generate()
	if err != nil {
		return "", err
	}
	sess.Set(key, token)
	return token, nil
}

// Lookup returns the stored token without creating one.
func (s TokenStore) Lookup(sess Session) string {
	if sess == nil {
		return ""
	}
	token, _ := sess.Get(s.key())
	return token
}

func (s TokenStore) key() string {
	if s.Key == "" {
		return "csrf_token"
	}
	return s.Key
}

func (s TokenStore) generate() (string, error) {
	src := s.Random
	if src == nil {
		src = rand.Reader
	}
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(src, buf); err != nil {
		return "", fmt.Errorf("csrf: generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
