// Package index provides SQLite-backed post indexing with optional FTS5
// full-text search, used by the preview/report server.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS posts (
	path           TEXT PRIMARY KEY,
	url            TEXT NOT NULL DEFAULT '',
	title          TEXT NOT NULL DEFAULT '',
	checksum       TEXT NOT NULL DEFAULT '',
	categories     TEXT NOT NULL DEFAULT '[]',
	tags           TEXT NOT NULL DEFAULT '[]',
	description    TEXT NOT NULL DEFAULT '',
	body           TEXT NOT NULL DEFAULT '',
	seo_score      INTEGER NOT NULL DEFAULT 0,
	links_inserted INTEGER NOT NULL DEFAULT 0,
	updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS internal_links (
	source_url TEXT NOT NULL,
	target_url TEXT NOT NULL,
	keyword    TEXT NOT NULL DEFAULT '',
	UNIQUE(source_url, target_url, keyword)
);

CREATE INDEX IF NOT EXISTS idx_internal_links_source ON internal_links(source_url);
CREATE INDEX IF NOT EXISTS idx_internal_links_target ON internal_links(target_url);
`

// PostIndex defines the interface for post indexing operations. Consumers
// should depend on this interface rather than the concrete *DB type to
// facilitate testing with mocks.
type PostIndex interface {
	UpsertPost(row PostRow, body string) error
	DeletePost(path string) error
	GetPost(path string) (*PostRow, error)
	ListPosts(limit, offset int, category, sort string) ([]PostRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	ReplaceInsertedLinks(sourceURL string, links []LinkRow) error
	Backlinks(targetURL string) ([]LinkRow, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies PostIndex at compile time.
var _ PostIndex = (*DB)(nil)

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
