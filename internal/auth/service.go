package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"github.com/nara997/taskman/internal/apperror"
)

// argon2id parameters tuned for a self-hosted application running on
// modest hardware (2-4 CPU cores, 2-4 GB RAM). These follow OWASP
// recommendations for argon2id: memory=64MB, iterations=3, parallelism=4.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024 // 64 MB in KiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// Password length bounds. The upper bound caps argon2 work per attempt.
const (
	passwordMinLen = 8
	passwordMaxLen = 128
)

// AuthService defines the business logic contract for authentication.
// Handlers call these methods -- they never touch the repository directly.
// Token issuance is the handler's job: the service only establishes that an
// identity is verified.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, input LoginInput) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
}

// authService implements AuthService with argon2id password hashing.
type authService struct {
	repo UserRepository
}

// NewAuthService creates a new auth service backed by the given repository.
func NewAuthService(repo UserRepository) AuthService {
	return &authService{repo: repo}
}

// Register creates a new user account. It validates the input, checks email
// uniqueness, hashes the password with argon2id, and persists the user.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*User, error) {
	if err := validateRegisterInput(&input); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	// Check if email is already taken before doing expensive hashing.
	// The unique index on users.email backstops this check under races.
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking email: %w", err))
	}
	if exists {
		return nil, apperror.NewConflict("an account with this email already exists")
	}

	// Hash the password with argon2id (memory-hard, GPU-resistant).
	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(input.Username),
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login authenticates a user by email and password. A missing account and a
// wrong password produce the same error so probing for registered emails
// through the login endpoint is fruitless.
func (s *authService) Login(ctx context.Context, input LoginInput) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, apperror.NewValidation("email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Type == "not_found" {
			return nil, apperror.NewInvalidCredential("invalid email or password")
		}
		return nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	// Verify the password against the stored argon2id hash.
	if !verifyPassword(input.Password, user.PasswordHash) {
		return nil, apperror.NewInvalidCredential("invalid email or password")
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// GetUser retrieves a user by ID. Used by /auth/me to confirm the claimed
// identity still exists.
func (s *authService) GetUser(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}
	return user, nil
}

// --- Validation ---

// validateRegisterInput performs server-side validation on registration
// input. Returns a ValidationError describing the first problem found.
func validateRegisterInput(input *RegisterInput) error {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return apperror.NewValidation("username is required")
	}
	if len(username) < 2 {
		return apperror.NewValidation("username must be at least 2 characters")
	}
	if len(username) > 100 {
		return apperror.NewValidation("username must be at most 100 characters")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return apperror.NewValidation("email is required")
	}
	if !looksLikeEmail(email) {
		return apperror.NewValidation("email is not a valid address")
	}
	if len(email) > 255 {
		return apperror.NewValidation("email must be at most 255 characters")
	}

	return validatePassword(input.Password)
}

// validatePassword enforces the registration password policy: at least 8
// characters including one uppercase letter and one special character.
func validatePassword(password string) error {
	if password == "" {
		return apperror.NewValidation("password is required")
	}
	if len(password) < passwordMinLen {
		return apperror.NewValidation("password must be at least 8 characters")
	}
	if len(password) > passwordMaxLen {
		return apperror.NewValidation("password must be at most 128 characters")
	}

	var hasUpper, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			hasSpecial = true
		}
	}
	if !hasUpper {
		return apperror.NewValidation("password must contain an uppercase letter")
	}
	if !hasSpecial {
		return apperror.NewValidation("password must contain a special character")
	}

	return nil
}

// looksLikeEmail is a cheap structural check: exactly one "@" with a
// non-empty local part and a domain containing a dot. The real guarantee
// of deliverability is not our problem; the unique index is what matters.
func looksLikeEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at != strings.LastIndexByte(email, '@') {
		return false
	}
	domain := email[at+1:]
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

// --- Password Hashing (argon2id) ---

// hashPassword creates an argon2id hash of the given password. The output
// format is: $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
// This format is compatible with most argon2 libraries and allows self-
// contained verification without separate salt storage.
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	// Encode to the standard PHC string format.
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads, b64Salt, b64Hash)

	return encoded, nil
}

// verifyPassword checks a plaintext password against an argon2id hash string.
// Returns true if the password matches.
func verifyPassword(password, encodedHash string) bool {
	// Parse the encoded hash to extract parameters, salt, and hash.
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false
	}

	var memory uint32
	var iterations uint32
	var parallelism uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	// Compute the hash of the provided password with the same parameters.
	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Constant-time comparison to prevent timing attacks.
	return subtle.ConstantTimeCompare(expectedHash, computedHash) == 1
}
