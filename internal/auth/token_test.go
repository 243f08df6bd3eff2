package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nara997/taskman/internal/apperror"
)

const testSecret = "test-secret-key-0123456789abcdef-0123"

func testUser() *User {
	return &User{
		ID:       "user-123",
		Username: "alice",
		Email:    "alice@example.com",
	}
}

// assertAuthError checks that err is an *apperror.AppError with the
// expected type string.
func assertAuthError(t *testing.T, err error, expectedType string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", expectedType)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Type != expectedType {
		t.Errorf("expected error type %s, got %s (message: %s)", expectedType, appErr.Type, appErr.Message)
	}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	tokens := NewTokens(testSecret, time.Hour)

	signed, err := tokens.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if signed == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := tokens.Verify(signed)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.UserID() != "user-123" {
		t.Errorf("expected subject user-123, got %s", claims.UserID())
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("expected email alice@example.com, got %s", claims.Email)
	}
}

func TestVerify_Expired(t *testing.T) {
	tokens := NewTokens(testSecret, -time.Minute)

	signed, err := tokens.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = tokens.Verify(signed)
	assertAuthError(t, err, "expired_credential")
}

// TestVerify_Tampering flips every byte of a valid token in turn and
// checks that no mutation verifies. Mutations that only touch base64
// padding of the payload still break the signature, so every position
// must reject.
func TestVerify_Tampering(t *testing.T) {
	tokens := NewTokens(testSecret, time.Hour)

	signed, err := tokens.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	for i := 0; i < len(signed); i++ {
		mutated := []byte(signed)
		mutated[i] ^= 0x01
		if string(mutated) == signed {
			continue
		}

		claims, err := tokens.Verify(string(mutated))
		if err == nil {
			t.Fatalf("tampered token at byte %d verified; claims=%+v", i, claims)
		}
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			t.Fatalf("byte %d: expected *apperror.AppError, got %T", i, err)
		}
		// A flipped byte in the expiry field can surface as expired, but
		// only if the signature were still valid -- which it can't be.
		if appErr.Type != "invalid_credential" {
			t.Errorf("byte %d: expected invalid_credential, got %s", i, appErr.Type)
		}
	}
}

func TestVerify_WrongKey(t *testing.T) {
	issuer := NewTokens(testSecret, time.Hour)
	verifier := NewTokens("another-secret-key-0123456789abcdef", time.Hour)

	signed, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = verifier.Verify(signed)
	assertAuthError(t, err, "invalid_credential")
}

func TestVerify_Garbage(t *testing.T) {
	tokens := NewTokens(testSecret, time.Hour)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not a jwt", "hello world"},
		{"two segments", "aaaa.bbbb"},
		{"four segments", "aaaa.bbbb.cccc.dddd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Verify(tt.raw)
			assertAuthError(t, err, "invalid_credential")
		})
	}
}

// TestVerify_AlgorithmConfusion checks that a token claiming the "none"
// algorithm is rejected even though its payload is well-formed.
func TestVerify_AlgorithmConfusion(t *testing.T) {
	tokens := NewTokens(testSecret, time.Hour)

	claims := &Claims{
		Email: "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("building none-alg token: %v", err)
	}

	_, err = tokens.Verify(unsigned)
	assertAuthError(t, err, "invalid_credential")
}

func TestVerify_MissingSubject(t *testing.T) {
	tokens := NewTokens(testSecret, time.Hour)

	signed, err := tokens.Issue(&User{ID: "", Email: "noone@example.com"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = tokens.Verify(signed)
	assertAuthError(t, err, "invalid_credential")
}
