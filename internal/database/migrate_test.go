// Package database provides connection setup for MariaDB.
// This file validates migration SQL files to catch schema mismatches early.
package database

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// migrationsDir returns the absolute path to db/migrations/ from the project root.
func migrationsDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	// thisFile is internal/database/migrate_test.go, project root is two dirs up.
	projectRoot := filepath.Join(filepath.Dir(thisFile), "..", "..")
	dir := filepath.Join(projectRoot, "db", "migrations")
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("migrations directory not found at %s: %v", dir, err)
	}
	return dir
}

// readMigration loads one migration file by name.
func readMigration(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(migrationsDir(t), name))
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	return string(data)
}

// TestMigrations_UpDownPairs ensures every .up.sql has a matching .down.sql.
func TestMigrations_UpDownPairs(t *testing.T) {
	dir := migrationsDir(t)
	upFiles, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		t.Fatalf("globbing up files: %v", err)
	}
	if len(upFiles) == 0 {
		t.Fatal("no migration files found")
	}

	for _, up := range upFiles {
		down := strings.Replace(up, ".up.sql", ".down.sql", 1)
		if _, err := os.Stat(down); err != nil {
			t.Errorf("missing down migration for %s", filepath.Base(up))
		}
	}
}

// TestMigrations_UsersEmailUnique verifies the users table enforces email
// uniqueness at the database level. Registration relies on this constraint
// to close the check-then-insert race; losing it would allow duplicate
// accounts under concurrent signups.
func TestMigrations_UsersEmailUnique(t *testing.T) {
	content := readMigration(t, "000001_create_users.up.sql")

	if !strings.Contains(content, "UNIQUE") {
		t.Error("users migration must declare a UNIQUE constraint on email")
	}
	if !strings.Contains(content, "email") {
		t.Error("users migration must define an email column")
	}
}

// TestMigrations_TasksOwnerColumn verifies the tasks table carries the
// ownership column every query scopes by, with a foreign key back to users
// so orphaned tasks cannot exist.
func TestMigrations_TasksOwnerColumn(t *testing.T) {
	content := readMigration(t, "000002_create_tasks.up.sql")

	if !strings.Contains(content, "user_id") {
		t.Error("tasks migration must define a user_id column")
	}
	if !strings.Contains(content, "FOREIGN KEY") {
		t.Error("tasks migration must declare a foreign key to users")
	}
	if !strings.Contains(content, "ON DELETE CASCADE") {
		t.Error("deleting a user must cascade to their tasks")
	}
}

// TestMigrations_TasksOwnerIndex verifies the composite index backing the
// owner-scoped, newest-first list query.
func TestMigrations_TasksOwnerIndex(t *testing.T) {
	content := readMigration(t, "000002_create_tasks.up.sql")

	if !strings.Contains(content, "idx_tasks_owner_created") {
		t.Error("tasks migration must index (user_id, created_at) for list queries")
	}
}
