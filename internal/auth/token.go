package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nara997/taskman/internal/apperror"
)

// Claims is the payload embedded in a session token. Subject carries the
// user ID; Email rides along so /auth/me-style handlers can respond without
// a lookup. Everything else a handler needs comes from the database, keyed
// by the subject.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID returns the authenticated user's ID (the token subject).
func (c *Claims) UserID() string {
	return c.Subject
}

// Tokens issues and verifies signed session tokens. The signing secret is
// injected once at construction and never changes for the life of the
// process, so Tokens is safe for concurrent use without locking.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens creates a token issuer/verifier with the given signing secret
// and token lifetime. The secret must already be validated by config.Load;
// an empty secret here is a programming error, not a runtime condition.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL returns the configured token lifetime. The session cookie's MaxAge is
// aligned with this so cookie and token expire together.
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue creates a signed session token for a verified user. Callers must
// only pass identities that have already been authenticated (fresh
// registration or a successful password check).
func (t *Tokens) Issue(user *User) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Verify validates a session token and returns its claims. This is pure
// computation against the in-memory secret -- no storage round-trip.
//
// Outcomes map onto the error taxonomy: an expired (but correctly signed)
// token returns ExpiredCredential; anything malformed, unsigned, or signed
// with the wrong key returns InvalidCredential.
func (t *Tokens) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims,
		func(token *jwt.Token) (any, error) {
			return t.secret, nil
		},
		// Pin the algorithm: never accept "none" or an attacker-chosen
		// method just because the header says so.
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.NewExpiredCredential("session expired")
		}
		return nil, apperror.NewInvalidCredential("invalid session token")
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, apperror.NewInvalidCredential("invalid session token")
	}

	return claims, nil
}
