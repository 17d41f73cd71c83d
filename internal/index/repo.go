package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// PostRow represents a row in the posts table.
type PostRow struct {
	Path          string
	URL           string
	Title         string
	Checksum      string
	Categories    []string
	Tags          []string
	Description   string
	SeoScore      int
	LinksInserted int
	UpdatedAt     time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// LinkRow is one recorded internal link.
type LinkRow struct {
	SourceURL string
	TargetURL string
	Keyword   string
}

// UpsertPost inserts or replaces a post and its FTS entry within a transaction.
func (db *DB) UpsertPost(row PostRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	categoriesJSON, _ := json.Marshal(row.Categories)
	tagsJSON, _ := json.Marshal(row.Tags)

	// Upsert posts table (includes body for fallback search). links_inserted
	// is deliberately absent from the conflict clause: the count is owned by
	// ReplaceInsertedLinks and must survive watcher re-indexing.
	_, err = tx.Exec(`
		INSERT INTO posts (path, url, title, checksum, categories, tags, description, body, seo_score, links_inserted, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			url         = excluded.url,
			title       = excluded.title,
			checksum    = excluded.checksum,
			categories  = excluded.categories,
			tags        = excluded.tags,
			description = excluded.description,
			body        = excluded.body,
			seo_score   = excluded.seo_score,
			updated_at  = excluded.updated_at
	`, row.Path, row.URL, row.Title, row.Checksum, string(categoriesJSON), string(tagsJSON),
		row.Description, body, row.SeoScore, row.LinksInserted, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert post: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, row.Path, row.Title, body, row.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// DeletePost removes a post, its FTS entry, and its recorded links.
func (db *DB) DeletePost(path string) error {
	var url string
	_ = db.conn.QueryRow(`SELECT url FROM posts WHERE path = ?`, path).Scan(&url)

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	if url != "" {
		_, _ = tx.Exec(`DELETE FROM internal_links WHERE source_url = ?`, url)
	}
	_, _ = tx.Exec(`DELETE FROM posts WHERE path = ?`, path)

	return tx.Commit()
}

// GetPost returns a single post row, or nil when not indexed.
func (db *DB) GetPost(path string) (*PostRow, error) {
	row := db.conn.QueryRow(`
		SELECT path, url, title, checksum, categories, tags, description, seo_score, links_inserted, updated_at
		FROM posts WHERE path = ?
	`, path)
	p, err := scanPostRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get post: %w", err)
	}
	return p, nil
}

// ListPosts returns paginated posts with an optional category filter.
// sort may be "updated_at" (default), "title", "path", or "seo_score".
func (db *DB) ListPosts(limit, offset int, category, sort string) ([]PostRow, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	orderBy := "updated_at DESC"
	switch sort {
	case "title":
		orderBy = "title ASC"
	case "path":
		orderBy = "path ASC"
	case "seo_score":
		orderBy = "seo_score ASC"
	}

	where := ""
	args := []any{}
	if category != "" {
		// Categories are stored as a JSON string array.
		where = `WHERE categories LIKE ?`
		args = append(args, `%"`+category+`"%`)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM posts `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count posts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT path, url, title, checksum, categories, tags, description, seo_score, links_inserted, updated_at
		FROM posts %s ORDER BY %s LIMIT ? OFFSET ?
	`, where, orderBy)
	rows, err := db.conn.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list posts: %w", err)
	}
	defer rows.Close()

	var out []PostRow
	for rows.Next() {
		p, err := scanPostRow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

// ReplaceInsertedLinks replaces the recorded internal links originating from
// sourceURL and updates the source post's inserted-link count.
func (db *DB) ReplaceInsertedLinks(sourceURL string, links []LinkRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM internal_links WHERE source_url = ?`, sourceURL)
	if len(links) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO internal_links (source_url, target_url, keyword) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, l := range links {
			if _, err := stmt.Exec(sourceURL, l.TargetURL, l.Keyword); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}
	_, _ = tx.Exec(`UPDATE posts SET links_inserted = ? WHERE url = ?`, len(links), sourceURL)

	return tx.Commit()
}

// Backlinks returns the recorded internal links pointing at targetURL.
func (db *DB) Backlinks(targetURL string) ([]LinkRow, error) {
	rows, err := db.conn.Query(`
		SELECT source_url, target_url, keyword FROM internal_links WHERE target_url = ?
	`, targetURL)
	if err != nil {
		return nil, fmt.Errorf("index: backlinks: %w", err)
	}
	defer rows.Close()

	var out []LinkRow
	for rows.Next() {
		var l LinkRow
		if err := rows.Scan(&l.SourceURL, &l.TargetURL, &l.Keyword); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// AllChecksums returns path -> checksum for every indexed post.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM posts`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostRow(s rowScanner) (*PostRow, error) {
	var p PostRow
	var categoriesJSON, tagsJSON string
	if err := s.Scan(&p.Path, &p.URL, &p.Title, &p.Checksum, &categoriesJSON, &tagsJSON,
		&p.Description, &p.SeoScore, &p.LinksInserted, &p.UpdatedAt); err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(categoriesJSON), &p.Categories)
	_ = json.Unmarshal([]byte(tagsJSON), &p.Tags)
	return &p, nil
}

// quoteLike is a helper for LIKE patterns in fallback search.
func quoteLike(q string) string {
	return "%" + strings.ReplaceAll(q, "%", "") + "%"
}
