package maintenance

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dbsweep/dbsweep/internal/driver/sqlite"
	"github.com/dbsweep/dbsweep/internal/store"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

var contentSchema = []string{
	`CREATE TABLE wp_options (
		option_id INTEGER PRIMARY KEY AUTOINCREMENT,
		option_name TEXT NOT NULL UNIQUE,
		option_value TEXT,
		autoload TEXT NOT NULL DEFAULT 'yes'
	)`,
	`CREATE TABLE wp_posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_type TEXT NOT NULL DEFAULT 'post',
		post_status TEXT NOT NULL DEFAULT 'publish',
		post_title TEXT,
		post_modified TEXT NOT NULL
	)`,
	`CREATE INDEX wp_posts_type_modified ON wp_posts (post_type, post_modified)`,
	`CREATE TABLE wp_postmeta (
		meta_id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id INTEGER NOT NULL,
		meta_key TEXT,
		meta_value TEXT
	)`,
	`CREATE TABLE wp_comments (
		comment_id INTEGER PRIMARY KEY AUTOINCREMENT,
		comment_post_id INTEGER,
		comment_content TEXT,
		comment_approved TEXT NOT NULL DEFAULT '1'
	)`,
	`CREATE TABLE wp_commentmeta (
		meta_id INTEGER PRIMARY KEY AUTOINCREMENT,
		comment_id INTEGER NOT NULL,
		meta_key TEXT,
		meta_value TEXT
	)`,
}

type fixture struct {
	t     *testing.T
	db    *sql.DB
	store *store.Store
}

// newFixture opens an in-memory SQLite content store. With createSchema
// false the database is empty.
func newFixture(t *testing.T, createSchema bool) *fixture {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Every pooled connection would get its own in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if createSchema {
		for _, stmt := range contentSchema {
			_, err := db.Exec(stmt)
			require.NoError(t, err)
		}
	}

	return &fixture{t: t, db: db, store: store.New(db, sqlite.NewDriver(), "", "wp_")}
}

func (f *fixture) engine(opts ...Option) *Engine {
	return New(f.store, append([]Option{WithClock(fixedClock)}, opts...)...)
}

func (f *fixture) exec(query string, args ...any) sql.Result {
	f.t.Helper()
	res, err := f.db.Exec(query, args...)
	require.NoError(f.t, err)
	return res
}

func (f *fixture) addOption(name, value string) {
	f.exec(`INSERT INTO wp_options (option_name, option_value) VALUES (?, ?)`, name, value)
}

func (f *fixture) addTransient(key string, expires time.Time, value string) {
	f.addOption("_transient_timeout_"+key, fmt.Sprint(expires.Unix()))
	f.addOption("_transient_"+key, value)
}

func (f *fixture) addSiteTransient(key string, expires time.Time, value string) {
	f.addOption("_site_transient_timeout_"+key, fmt.Sprint(expires.Unix()))
	f.addOption("_site_transient_"+key, value)
}

func (f *fixture) addPost(postType, status string, modified time.Time) int64 {
	res := f.exec(`INSERT INTO wp_posts (post_type, post_status, post_title, post_modified) VALUES (?, ?, ?, ?)`,
		postType, status, postType+" "+status, modified.UTC().Format(postTimeLayout))
	id, err := res.LastInsertId()
	require.NoError(f.t, err)
	return id
}

func (f *fixture) addPostmeta(postID int64, key string) {
	f.exec(`INSERT INTO wp_postmeta (post_id, meta_key, meta_value) VALUES (?, ?, 'v')`, postID, key)
}

func (f *fixture) addComment(approved string) int64 {
	res := f.exec(`INSERT INTO wp_comments (comment_post_id, comment_content, comment_approved) VALUES (1, 'hi', ?)`, approved)
	id, err := res.LastInsertId()
	require.NoError(f.t, err)
	f.exec(`INSERT INTO wp_commentmeta (comment_id, meta_key, meta_value) VALUES (?, 'k', 'v')`, id)
	return id
}

func (f *fixture) count(query string, args ...any) int {
	f.t.Helper()
	var n int
	require.NoError(f.t, f.db.QueryRow(query, args...).Scan(&n))
	return n
}

// snapshot captures row counts of every content table plus whether SQLite
// statistics exist, to prove a run changed nothing.
func (f *fixture) snapshot() map[string]int {
	f.t.Helper()
	snap := map[string]int{
		"sqlite_stat1": f.count(`SELECT COUNT(*) FROM sqlite_master WHERE name = 'sqlite_stat1'`),
	}
	for _, table := range []string{"wp_options", "wp_posts", "wp_postmeta", "wp_comments", "wp_commentmeta"} {
		snap[table] = f.count(`SELECT COUNT(*) FROM ` + table)
	}
	return snap
}

// seedEverything gives every built-in operation something to do.
func (f *fixture) seedEverything() {
	f.addOption("siteurl", "https://example.com")
	f.addTransient("expired", fixedNow.Add(-time.Hour), "hello")
	f.addSiteTransient("expired", fixedNow.Add(-time.Minute), "world!")
	f.addTransient("fresh", fixedNow.Add(time.Hour), "still good")

	published := f.addPost("post", "publish", fixedNow.AddDate(0, -6, 0))
	f.addPostmeta(published, "_edit_lock")
	for i := 1; i <= 3; i++ {
		rev := f.addPost("revision", "inherit", fixedNow.AddDate(0, 0, -20-i))
		f.addPostmeta(rev, "_revision_meta")
	}
	f.addPost("revision", "inherit", fixedNow.Add(-time.Hour))
	f.addPost("post", "auto-draft", fixedNow.AddDate(0, 0, -10))
	f.addPostmeta(9999, "_orphan")
	f.addComment("spam")
	f.addComment("1")
}

func background() context.Context {
	return context.Background()
}
