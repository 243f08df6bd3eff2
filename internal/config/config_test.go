package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef" // 32 chars

// clearConfigEnv unsets every variable Load reads so tests see defaults
// regardless of the host environment.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"ENV", "PORT", "CLIENT_ORIGIN", "LOG_LEVEL",
		"DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME", "DATABASE_URL",
		"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME",
		"MIGRATIONS_PATH", "JWT_SECRET", "JWT_TTL",
	}
	for _, k := range keys {
		// t.Setenv registers the restore; Unsetenv then removes the
		// variable so getEnv falls back to its default.
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_RequiresSecret(t *testing.T) {
	clearConfigEnv(t)

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error when JWT_SECRET is missing")
	}
	if !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("error should name the missing variable, got: %v", err)
	}
}

func TestLoad_RejectsShortSecret(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JWT_SECRET", "too-short")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error for a secret under 32 characters")
	}
}

func TestLoad_RejectsNonPositiveTTL(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("JWT_TTL", "-1h")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error for a negative token TTL")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if !cfg.IsDevelopment() {
		t.Errorf("expected development default, got env %q", cfg.Env)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h token TTL, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Database.MigrationsPath != "db/migrations" {
		t.Errorf("unexpected migrations path: %s", cfg.Database.MigrationsPath)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("DB_HOST", "db.internal:3307")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("expected production mode")
	}
	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("expected 1h TTL, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Database.Host != "db.internal:3307" {
		t.Errorf("unexpected db host: %s", cfg.Database.Host)
	}
}

func TestDSN_FromFields(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		User:     "taskman",
		Password: "p@ss/word:tricky",
		Name:     "taskman",
	}

	dsn := d.DSN()
	if !strings.Contains(dsn, "tcp(localhost:3306)") {
		t.Errorf("expected default port appended, got: %s", dsn)
	}
	if !strings.Contains(dsn, "/taskman") {
		t.Errorf("expected database name in DSN, got: %s", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("expected parseTime=true, got: %s", dsn)
	}
}

func TestDSN_OverrideWins(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DATABASE_URL", "taskman:secret@tcp(db:3306)/taskman?parseTime=true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.Database.DSN(); got != "taskman:secret@tcp(db:3306)/taskman?parseTime=true" {
		t.Errorf("expected DATABASE_URL to be used verbatim, got: %s", got)
	}
}

func TestEnsurePort(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"localhost", "localhost:3306"},
		{"localhost:3307", "localhost:3307"},
		{"db.internal", "db.internal:3306"},
		{"10.0.0.5:3306", "10.0.0.5:3306"},
	}

	for _, tt := range tests {
		if got := ensurePort(tt.host, "3306"); got != tt.want {
			t.Errorf("ensurePort(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}
