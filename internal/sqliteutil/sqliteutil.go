package sqliteutil

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

// IsSQLiteFilePath checks if a string looks like a SQLite file path
func IsSQLiteFilePath(s string) bool {
	s = strings.ToLower(s)

	if s == ":memory:" || strings.HasPrefix(s, "libsql://") {
		return false
	}

	if strings.HasPrefix(s, "sqlite://") || strings.HasPrefix(s, "file:") {
		return true
	}

	return strings.HasSuffix(s, ".db") ||
		strings.HasSuffix(s, ".sqlite") ||
		strings.HasSuffix(s, ".sqlite3")
}

// ExtractSQLiteFilePath extracts the file path from a SQLite connection string
func ExtractSQLiteFilePath(connStr string) string {
	for _, prefix := range []string{"sqlite://", "file:"} {
		if strings.HasPrefix(connStr, prefix) {
			path := strings.TrimPrefix(connStr, prefix)
			if idx := strings.Index(path, "?"); idx >= 0 {
				path = path[:idx]
			}
			return path
		}
	}

	return connStr
}

// CheckSQLiteDatabase checks if a SQLite database file exists and is valid.
// Returns (exists, isEmpty, error).
func CheckSQLiteDatabase(connStr string) (exists bool, isEmpty bool, err error) {
	filePath := ExtractSQLiteFilePath(connStr)

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("failed to stat file: %w", err)
	}

	if info.IsDir() {
		return false, false, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if info.Size() == 0 {
		return true, true, nil
	}

	db, err := sql.Open("sqlite", filePath)
	if err != nil {
		return true, false, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	// Ping alone does not read the header; a schema query does.
	var n int
	if err := db.QueryRow("SELECT count(*) FROM sqlite_master").Scan(&n); err != nil {
		return true, false, fmt.Errorf("file exists but is not a valid SQLite database: %w", err)
	}

	return true, false, nil
}
