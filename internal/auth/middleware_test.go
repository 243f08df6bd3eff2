package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nara997/taskman/internal/apperror"
)

// doAuthed runs a request through RequireAuth into a probe handler that
// records what the middleware attached to the context.
func doAuthed(t *testing.T, tokens *Tokens, cookie *http.Cookie) (gotClaims *Claims, gotUserID string, rec *httptest.ResponseRecorder, err error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireAuth(tokens)(func(c echo.Context) error {
		gotClaims = GetClaims(c)
		gotUserID = GetUserID(c)
		return c.NoContent(http.StatusOK)
	})

	err = handler(c)
	return gotClaims, gotUserID, rec, err
}

func TestRequireAuth_MissingCookie(t *testing.T) {
	tokens := NewTokens(testSecret, time.Hour)

	claims, _, _, err := doAuthed(t, tokens, nil)
	assertAuthError(t, err, "unauthenticated")
	if claims != nil {
		t.Error("handler must not run without a credential")
	}
}

func TestRequireAuth_EmptyCookie(t *testing.T) {
	tokens := NewTokens(testSecret, time.Hour)

	_, _, _, err := doAuthed(t, tokens, &http.Cookie{Name: sessionCookieName, Value: ""})
	assertAuthError(t, err, "unauthenticated")
}

func TestRequireAuth_ValidToken(t *testing.T) {
	tokens := NewTokens(testSecret, time.Hour)
	signed, err := tokens.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, userID, _, handlerErr := doAuthed(t, tokens,
		&http.Cookie{Name: sessionCookieName, Value: signed})
	if handlerErr != nil {
		t.Fatalf("unexpected error: %v", handlerErr)
	}
	if claims == nil {
		t.Fatal("expected claims in context")
	}
	if userID != "user-123" {
		t.Errorf("expected user-123 in context, got %q", userID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("expected alice@example.com, got %s", claims.Email)
	}
}

func TestRequireAuth_TamperedToken(t *testing.T) {
	tokens := NewTokens(testSecret, time.Hour)
	signed, err := tokens.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	tampered := signed[:len(signed)-2] + "xx"

	claims, _, rec, handlerErr := doAuthed(t, tokens,
		&http.Cookie{Name: sessionCookieName, Value: tampered})
	assertAuthError(t, handlerErr, "invalid_credential")
	if claims != nil {
		t.Error("handler must not run with a tampered credential")
	}
	assertClearedSessionCookie(t, rec)
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	issuer := NewTokens(testSecret, -time.Minute)
	verifier := NewTokens(testSecret, time.Hour)
	signed, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, _, rec, handlerErr := doAuthed(t, verifier,
		&http.Cookie{Name: sessionCookieName, Value: signed})
	assertAuthError(t, handlerErr, "expired_credential")
	assertClearedSessionCookie(t, rec)
}

// assertClearedSessionCookie verifies the middleware told the client to
// drop its dead session cookie.
func assertClearedSessionCookie(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			if cookie.MaxAge >= 0 {
				t.Errorf("expected session cookie MaxAge < 0, got %d", cookie.MaxAge)
			}
			return
		}
	}
	t.Error("expected a Set-Cookie clearing the session cookie")
}

func TestGetters_Unauthenticated(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	if GetClaims(c) != nil {
		t.Error("expected nil claims on unauthenticated context")
	}
	if GetUserID(c) != "" {
		t.Error("expected empty user ID on unauthenticated context")
	}
}

// TestRequireAuth_ErrorsAreAppErrors guards the error-handler contract:
// everything the middleware returns must be translatable to a client
// status, never a bare infrastructure error.
func TestRequireAuth_ErrorsAreAppErrors(t *testing.T) {
	tokens := NewTokens(testSecret, time.Hour)

	cookies := []*http.Cookie{
		nil,
		{Name: sessionCookieName, Value: "garbage"},
		{Name: sessionCookieName, Value: "aaaa.bbbb.cccc"},
	}
	for _, cookie := range cookies {
		_, _, _, err := doAuthed(t, tokens, cookie)
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			t.Errorf("cookie %v: expected AppError, got %T", cookie, err)
		}
	}
}
