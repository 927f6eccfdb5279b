package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	tokenIssuer   = "orgscope"
	usernameClaim = "username"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is what an issued token says about its bearer
type Claims struct {
	Subject   string    `json:"sub"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"exp"`
}

// TokenIssuer signs and verifies HS256 JWTs
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a token issuer
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a signed token for subject
func (i *TokenIssuer) Issue(subject, username string) (string, error) {
	now := i.now()
	token, err := jwt.NewBuilder().
		Issuer(tokenIssuer).
		Subject(subject).
		IssuedAt(now).
		Expiration(now.Add(i.ttl)).
		Claim(usernameClaim, username).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, i.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

// Verify checks the signature, issuer and expiry of raw
func (i *TokenIssuer) Verify(raw string) (*Claims, error) {
	token, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, i.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithClock(jwt.ClockFunc(i.now)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims := &Claims{
		Subject:   token.Subject(),
		ExpiresAt: token.Expiration(),
	}
	if v, ok := token.Get(usernameClaim); ok {
		if username, ok := v.(string); ok {
			claims.Username = username
		}
	}
	return claims, nil
}
