package migration

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sqlFiles(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

func TestApplyMigrations(t *testing.T) {
	db := openTestDB(t)
	fsys := sqlFiles(map[string]string{
		"001_init.sql":      "CREATE TABLE templates (id INTEGER PRIMARY KEY);",
		"002_schedules.sql": "CREATE TABLE schedules (id TEXT PRIMARY KEY);",
		"README.md":         "ignored",
	})
	runner := NewRunner(db, fsys, SQLite)

	var logs []string
	applied, err := runner.ApplyMigrations(func(msg string) { logs = append(logs, msg) })
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if applied != 2 {
		t.Errorf("applied = %d, want 2", applied)
	}
	if version, _ := runner.GetCurrentVersion(); version != 2 {
		t.Errorf("version = %d, want 2", version)
	}
	if len(logs) == 0 {
		t.Error("no progress messages logged")
	}

	applied, err = runner.ApplyMigrations(nil)
	if err != nil || applied != 0 {
		t.Errorf("second run = %d, %v, want 0, nil", applied, err)
	}
}

func TestApplyMigrations_FailureRollsBack(t *testing.T) {
	db := openTestDB(t)
	runner := NewRunner(db, sqlFiles(map[string]string{
		"001_init.sql":   "CREATE TABLE templates (id INTEGER PRIMARY KEY);",
		"002_broken.sql": "CREATE TABLE oops (;",
	}), SQLite)

	applied, err := runner.ApplyMigrations(nil)
	if err == nil {
		t.Fatal("expected an error from the broken migration")
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}
	if version, _ := runner.GetCurrentVersion(); version != 1 {
		t.Errorf("version = %d, want 1", version)
	}
}

func TestReadMigrationFiles_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{"no underscore", map[string]string{"001.sql": ""}, "invalid migration filename"},
		{"bad number", map[string]string{"abc_init.sql": ""}, "invalid version number"},
		{"zero", map[string]string{"000_init.sql": ""}, "at least 1"},
		{"duplicate", map[string]string{"001_a.sql": "", "1_b.sql": ""}, "duplicate migration version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(nil, sqlFiles(tt.files), SQLite)
			_, err := runner.ReadMigrationFiles()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestValidateVersion_NewerDatabase(t *testing.T) {
	db := openTestDB(t)
	runner := NewRunner(db, sqlFiles(map[string]string{"001_init.sql": "SELECT 1;"}), SQLite)
	if err := runner.EnsureSchemaVersionTable(); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (5)"); err != nil {
		t.Fatal(err)
	}

	if err := runner.ValidateVersion(); err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("ValidateVersion() = %v", err)
	}
	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Error("ApplyMigrations on a newer database should fail")
	}
}

func TestRebind(t *testing.T) {
	query := "INSERT INTO events (schedule_id, name, position) VALUES (?, ?, ?)"
	if got := SQLite.Rebind(query); got != query {
		t.Errorf("SQLite.Rebind changed the query: %q", got)
	}
	want := "INSERT INTO events (schedule_id, name, position) VALUES ($1, $2, $3)"
	if got := Postgres.Rebind(query); got != want {
		t.Errorf("Postgres.Rebind = %q, want %q", got, want)
	}
}
