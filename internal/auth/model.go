// Package auth handles user authentication for taskman: registration, login,
// logout, and per-request session verification. Sessions are stateless,
// signed JWTs carried in an HttpOnly cookie -- nothing is stored server-side,
// so verifying a request never touches the database.
//
// Every other package trusts the identity this package attaches to the
// request context; the auth middleware is the single trust boundary.
package auth

import "time"

// User represents a registered taskman user. This is the domain model used
// throughout the application. Database scanning and JSON marshaling use this
// struct directly.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON responses.
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// --- Request DTOs (bound from HTTP requests) ---

// SignupRequest holds the data submitted to POST /auth/signup.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest holds the data submitted to POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// --- Service Input DTOs (passed from handler to service) ---

// RegisterInput is the validated input for creating a new user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput is the input for authenticating a user.
type LoginInput struct {
	Email    string
	Password string
}
