package sqliteutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

func TestIsSQLiteFilePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"memory database", ":memory:", false},
		{"libsql URL", "libsql://mydb.turso.io", false},
		{"postgres URL", "postgres://localhost:5432/db", false},
		{"sqlite URL", "sqlite:///path/to/db.sqlite", true},
		{"file URL", "file:/path/to/db.db", true},
		{"db file", "myapp.db", true},
		{"sqlite file", "data.sqlite", true},
		{"sqlite3 file", "database.sqlite3", true},
		{"regular path", "/var/data/app.db", true},
		{"relative path", "./local.db", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsSQLiteFilePath(tt.input)
			if result != tt.expected {
				t.Errorf("IsSQLiteFilePath(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestExtractSQLiteFilePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"sqlite URL", "sqlite:///path/to/db.sqlite", "/path/to/db.sqlite"},
		{"sqlite URL with query", "sqlite:///path/to/db.sqlite?mode=ro", "/path/to/db.sqlite"},
		{"file URL", "file:/path/to/db.db", "/path/to/db.db"},
		{"file URL with query", "file:/path/to/db.db?mode=rw", "/path/to/db.db"},
		{"plain path", "/var/data/app.db", "/var/data/app.db"},
		{"relative path", "./local.db", "./local.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractSQLiteFilePath(tt.input)
			if result != tt.expected {
				t.Errorf("ExtractSQLiteFilePath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCheckSQLiteDatabase(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("non-existent file", func(t *testing.T) {
		path := filepath.Join(tmpDir, "nonexistent.db")
		exists, isEmpty, err := CheckSQLiteDatabase(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if exists {
			t.Error("expected exists=false for non-existent file")
		}
		if isEmpty {
			t.Error("expected isEmpty=false for non-existent file")
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(tmpDir, "empty.db")
		if err := os.WriteFile(path, []byte{}, 0o644); err != nil {
			t.Fatalf("failed to create empty file: %v", err)
		}

		exists, isEmpty, err := CheckSQLiteDatabase(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !exists {
			t.Error("expected exists=true for empty file")
		}
		if !isEmpty {
			t.Error("expected isEmpty=true for empty file")
		}
	})

	t.Run("valid database", func(t *testing.T) {
		path := filepath.Join(tmpDir, "valid.db")
		db, err := sql.Open("sqlite", path)
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		if _, err := db.Exec("CREATE TABLE wp_options (option_name TEXT)"); err != nil {
			t.Fatalf("failed to create table: %v", err)
		}
		_ = db.Close()

		exists, isEmpty, err := CheckSQLiteDatabase("sqlite://" + path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !exists {
			t.Error("expected exists=true for valid database")
		}
		if isEmpty {
			t.Error("expected isEmpty=false for populated database")
		}
	})

	t.Run("not a database", func(t *testing.T) {
		path := filepath.Join(tmpDir, "garbage.db")
		if err := os.WriteFile(path, []byte("this is definitely not a sqlite header, just some text"), 0o644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		exists, _, err := CheckSQLiteDatabase(path)
		if err == nil {
			t.Fatal("expected error for non-database file")
		}
		if !exists {
			t.Error("expected exists=true for non-database file")
		}
	})

	t.Run("directory", func(t *testing.T) {
		_, _, err := CheckSQLiteDatabase(tmpDir)
		if err == nil {
			t.Fatal("expected error for directory path")
		}
	})
}
