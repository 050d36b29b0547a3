package session

import (
	"errors"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Signer turns a session id into a tamper-evident cookie value (HS256 JWT with the id as subject).
type Signer struct {
	secret    []byte
	issuer    string
	ttl       time.Duration
	clockSkew time.Duration
	now       func() time.Time
}

// NewSigner returns a signer. The secret must not be empty.
func NewSigner(secret, issuer string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("session: signing secret is required")
	}
	return &Signer{
		secret:    []byte(secret),
		issuer:    issuer,
		ttl:       ttl,
		clockSkew: 30 * time.Second,
		now:       time.Now,
	}, nil
}

// Sign issues a cookie value valid for the signer TTL.
func (s *Signer) Sign(id string) (string, error) {
	now := s.now()
	builder := jwt.NewBuilder().
		Subject(id).
		IssuedAt(now)
	if s.issuer != "" {
		builder = builder.Issuer(s.issuer)
	}
	if s.ttl > 0 {
		builder = builder.Expiration(now.Add(s.ttl))
	}
	token, err := builder.Build()
	if err != nil {
		return "", err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return "", err
	}
	return string(signed), nil
}

// Verify returns the session id carried by value.
func (s *Signer) Verify(value string) (string, error) {
	if value == "" {
		return "", errors.New("session: empty cookie")
	}
	parsed, err := jwt.ParseString(value, jwt.WithKey(jwa.HS256, s.secret), jwt.WithValidate(false))
	if err != nil {
		return "", err
	}
	now := s.now()
	options := []jwt.ValidateOption{
		jwt.WithClock(jwt.ClockFunc(func() time.Time { return now })),
		jwt.WithAcceptableSkew(s.clockSkew),
	}
	if s.issuer != "" {
		options = append(options, jwt.WithIssuer(s.issuer))
	}
	if err := jwt.Validate(parsed, options...); err != nil {
		return "", err
	}
	if parsed.Subject() == "" {
		return "", errors.New("session: token missing subject")
	}
	return parsed.Subject(), nil
}
