package index

import (
	"database/sql"
	"fmt"
	"strings"
)

// SearchResult represents a single search hit.
type SearchResult struct {
	ID        int64
	Path      string
	Title     string
	Date      string
	Permalink string
	Rank      float64
}

// Search performs a full-text search across cached articles.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 50
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	rows, err := db.conn.Query(`
		SELECT a.id, a.path, a.title, a.date, a.permalink, rank
		FROM articles_fts
		JOIN articles a ON a.id = articles_fts.rowid
		WHERE articles_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return scanResults(rows)
}

// SearchTitles matches a substring against titles and paths.
func (db *DB) SearchTitles(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 50
	}

	pattern := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT id, path, title, date, permalink, 0 as rank
		FROM articles
		WHERE path LIKE ? OR title LIKE ?
		ORDER BY date DESC, path
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	return scanResults(rows)
}

// ListArticles returns cached articles, newest first.
func (db *DB) ListArticles(limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 200
	}

	rows, err := db.conn.Query(`
		SELECT id, path, title, date, permalink, 0 as rank
		FROM articles
		ORDER BY date DESC, path
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	return scanResults(rows)
}

func scanResults(rows *sql.Rows) ([]SearchResult, error) {
	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Path, &r.Title, &r.Date, &r.Permalink, &r.Rank); err != nil {
			_ = rows.Close()
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return results, nil
}
