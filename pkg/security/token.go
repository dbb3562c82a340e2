package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenInvalid = errors.New("token invalid")

// ScopeReset marks tokens mailed for a password reset
const ScopeReset = "reset"

// Claims is what a bearer token carries. Reset tokens only carry a username
// and ScopeReset.
type Claims struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Scope    string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies HS256 tokens
type TokenCodec struct {
	secret []byte
	expiry time.Duration
}

func NewTokenCodec(secret string, expiry time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Sign issues a token for the given subject. Issued-at and expiry are filled in.
func (t *TokenCodec) Sign(c Claims) (string, error) {
	return t.SignFor(c, t.expiry)
}

// SignFor is Sign with a custom lifetime. Zero means the token never expires.
func (t *TokenCodec) SignFor(c Claims, expiry time.Duration) (string, error) {
	now := time.Now()

	c.IssuedAt = jwt.NewNumericDate(now)
	if expiry != 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(expiry))
	}

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token, %w", err)
	}

	return s, nil
}

// Verify checks the signature and expiry of raw and returns its claims
func (t *TokenCodec) Verify(raw string) (*Claims, error) {
	var c Claims

	token, err := jwt.ParseWithClaims(raw, &c, func(tk *jwt.Token) (any, error) {
		if tk.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", tk.Method.Alg())
		}

		return t.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w, %w", ErrTokenInvalid, err)
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return &c, nil
}
