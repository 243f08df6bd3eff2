package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/nara997/taskman/internal/apperror"
)

// Context keys for storing session data in Echo context. Other packages
// use these keys (via the exported getter functions below) to access the
// authenticated user's identity.
const (
	contextKeyClaims = "auth_claims"
	contextKeyUserID = "auth_user_id"
)

// RequireAuth returns middleware that verifies the session cookie and
// injects the token claims into the request context. Verification is pure
// computation against the signing secret; it never consults storage.
//
// The raw token stops here: downstream handlers see only the extracted
// claims, never the credential itself.
func RequireAuth(tokens *Tokens) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := getSessionToken(c)
			if raw == "" {
				return apperror.NewUnauthenticated("authentication required")
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				// Invalid or expired session -- clear the stale cookie so
				// the client doesn't keep resending a dead credential.
				clearSessionCookie(c)
				return err
			}

			// Store the identity in context for downstream handlers.
			c.Set(contextKeyClaims, claims)
			c.Set(contextKeyUserID, claims.UserID())

			return next(c)
		}
	}
}

// --- Exported getters for other packages ---

// GetClaims retrieves the authenticated session claims from the Echo context.
// Returns nil if the request is not authenticated (middleware not applied).
func GetClaims(c echo.Context) *Claims {
	claims, ok := c.Get(contextKeyClaims).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetUserID retrieves the authenticated user's ID from the Echo context.
// Returns empty string if the request is not authenticated.
func GetUserID(c echo.Context) string {
	id, ok := c.Get(contextKeyUserID).(string)
	if !ok {
		return ""
	}
	return id
}
