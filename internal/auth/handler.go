package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nara997/taskman/internal/apperror"
)

// sessionCookieName is the HTTP cookie used to carry the session token.
const sessionCookieName = "token"

// Handler handles HTTP requests for authentication (signup, login, logout,
// me). Handlers are thin: they bind the request, call the service, and
// render the response. No business logic lives here.
type Handler struct {
	service AuthService
	tokens  *Tokens

	// cookieSecure marks the session cookie Secure. Enabled in the
	// production profile where TLS is guaranteed.
	cookieSecure bool
}

// NewHandler creates a new auth handler with the given service and token
// issuer.
func NewHandler(service AuthService, tokens *Tokens, cookieSecure bool) *Handler {
	return &Handler{
		service:      service,
		tokens:       tokens,
		cookieSecure: cookieSecure,
	}
}

// userResponse is the JSON body returned for the authenticated user.
// The full User struct already hides the password hash, but responses
// also have no business echoing timestamps a login client never uses.
type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toUserResponse(u *User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

// Signup registers a new account and issues a session (POST /auth/signup).
func (h *Handler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("invalid JSON body")
	}

	user, err := h.service.Register(c.Request().Context(), RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		return apperror.NewInternal(err)
	}
	h.setSessionCookie(c, token)

	return c.JSON(http.StatusCreated, map[string]userResponse{
		"user": toUserResponse(user),
	})
}

// Login authenticates an existing account and issues a session
// (POST /auth/login).
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("invalid JSON body")
	}

	user, err := h.service.Login(c.Request().Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		return apperror.NewInternal(err)
	}
	h.setSessionCookie(c, token)

	return c.JSON(http.StatusOK, map[string]userResponse{
		"user": toUserResponse(user),
	})
}

// Logout clears the session cookie (POST /auth/logout). Tokens are
// stateless, so there is nothing to destroy server-side; the token simply
// ages out of validity.
func (h *Handler) Logout(c echo.Context) error {
	clearSessionCookie(c)
	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// Me returns the current authenticated user (GET /auth/me). The user row is
// re-read so a deleted account stops resolving even while its token is
// still within its lifetime.
func (h *Handler) Me(c echo.Context) error {
	claims := GetClaims(c)
	if claims == nil {
		return apperror.NewUnauthenticated("authentication required")
	}

	user, err := h.service.GetUser(c.Request().Context(), claims.UserID())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]userResponse{
		"user": toUserResponse(user),
	})
}

// --- Cookie helpers ---

// getSessionToken reads the session token from the cookie.
func getSessionToken(c echo.Context) string {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}

// setSessionCookie sets the session cookie on the response. The cookie is
// HttpOnly (JS can't read it) and SameSite=Strict (never sent cross-site),
// with a lifetime aligned to the token's expiry.
func (h *Handler) setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.tokens.TTL().Seconds()),
	})
}

// clearSessionCookie removes the session cookie by setting MaxAge to -1.
func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}
