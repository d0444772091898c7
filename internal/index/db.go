package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/pfassina/folio/internal/article"
	"github.com/pfassina/folio/internal/markdown"
)

const schema = `
CREATE TABLE IF NOT EXISTS articles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    hash TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    slug TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    categories TEXT NOT NULL DEFAULT '[]',
    excerpt TEXT NOT NULL DEFAULT '',
    permalink TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_articles_date ON articles(date);

CREATE VIRTUAL TABLE IF NOT EXISTS articles_fts USING fts5(
    title, excerpt, tags, headings, body,
    tokenize='porter unicode61 remove_diacritics 2'
);
`

// passthroughColumns were added after the first schema version.
var passthroughColumns = []string{"author", "cover_img", "thumbnail_img"}

// DB wraps the SQLite record cache.
type DB struct {
	conn   *sql.DB
	parser *markdown.Parser
}

// Open opens or creates the cache database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return open(path + "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
}

// OpenMemory opens an in-memory database (for testing).
func OpenMemory() (*DB, error) {
	return open(":memory:")
}

func open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection keeps :memory: databases shared across calls.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			return nil, fmt.Errorf("init schema: %w (close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("init schema: %w", err)
	}

	db := &DB{conn: conn, parser: markdown.NewParser()}
	if err := db.migrate(); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			return nil, fmt.Errorf("migrate db: %w (close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB for advanced queries.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Lookup returns the cached record for path if its hash matches.
func (db *DB) Lookup(path, hash string) (article.Record, bool, error) {
	var (
		stored     string
		rec        article.Record
		tags, cats string
	)
	err := db.conn.QueryRow(`
		SELECT hash, title, slug, date, tags, categories, excerpt, permalink,
		       author, cover_img, thumbnail_img
		FROM articles WHERE path = ?
	`, path).Scan(&stored, &rec.Title, &rec.Slug, &rec.Date, &tags, &cats, &rec.Excerpt, &rec.Permalink,
		&rec.Author, &rec.CoverImg, &rec.ThumbnailImg)
	if err == sql.ErrNoRows {
		return article.Record{}, false, nil
	}
	if err != nil {
		return article.Record{}, false, err
	}
	if stored != hash {
		return article.Record{}, false, nil
	}

	if rec.Tags, err = decodeList(tags); err != nil {
		return article.Record{}, false, fmt.Errorf("decode tags for %s: %w", path, err)
	}
	if rec.Categories, err = decodeList(cats); err != nil {
		return article.Record{}, false, fmt.Errorf("decode categories for %s: %w", path, err)
	}
	return rec, true, nil
}

// Put stores a record and refreshes its full-text entry.
func (db *DB) Put(path, hash string, rec article.Record, body string) error {
	tags, err := json.Marshal(nonNil(rec.Tags))
	if err != nil {
		return err
	}
	cats, err := json.Marshal(nonNil(rec.Categories))
	if err != nil {
		return err
	}

	_, err = db.conn.Exec(`
		INSERT INTO articles (path, hash, title, slug, date, tags, categories, excerpt, permalink,
		                      author, cover_img, thumbnail_img)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			hash = excluded.hash,
			title = excluded.title,
			slug = excluded.slug,
			date = excluded.date,
			tags = excluded.tags,
			categories = excluded.categories,
			excerpt = excluded.excerpt,
			permalink = excluded.permalink,
			author = excluded.author,
			cover_img = excluded.cover_img,
			thumbnail_img = excluded.thumbnail_img
	`, path, hash, rec.Title, rec.Slug, rec.Date, string(tags), string(cats), rec.Excerpt, rec.Permalink,
		rec.Author, rec.CoverImg, rec.ThumbnailImg)
	if err != nil {
		return fmt.Errorf("upsert article: %w", err)
	}

	var id int64
	if err := db.conn.QueryRow("SELECT id FROM articles WHERE path = ?", path).Scan(&id); err != nil {
		return err
	}

	parsed := db.parser.Parse([]byte(body))
	headings := make([]string, len(parsed.Headings))
	for i, h := range parsed.Headings {
		headings[i] = h.Text
	}
	terms := make([]string, 0, len(rec.Tags)+len(rec.Categories))
	terms = append(append(terms, rec.Tags...), rec.Categories...)
	return db.updateFTS(id, rec.Title, rec.Excerpt,
		strings.Join(terms, " "),
		strings.Join(headings, " "),
		article.Clean(body))
}

func (db *DB) updateFTS(id int64, title, excerpt, tags, headings, body string) error {
	if _, err := db.conn.Exec("DELETE FROM articles_fts WHERE rowid = ?", id); err != nil {
		return fmt.Errorf("clear FTS: %w", err)
	}
	_, err := db.conn.Exec("INSERT INTO articles_fts(rowid, title, excerpt, tags, headings, body) VALUES(?, ?, ?, ?, ?, ?)",
		id, title, excerpt, tags, headings, body)
	if err != nil {
		return fmt.Errorf("update FTS: %w", err)
	}
	return nil
}

// Prune removes cached articles whose path is not in keep.
func (db *DB) Prune(keep []string) error {
	want := make(map[string]bool, len(keep))
	for _, p := range keep {
		want[p] = true
	}

	rows, err := db.conn.Query("SELECT id, path FROM articles")
	if err != nil {
		return fmt.Errorf("read article paths: %w", err)
	}
	var stale []int64
	for rows.Next() {
		var id int64
		var p string
		if err := rows.Scan(&id, &p); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan article path: %w", err)
		}
		if !want[p] {
			stale = append(stale, id)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("read article paths: %w", err)
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("close article paths: %w", err)
	}

	for _, id := range stale {
		if _, err := db.conn.Exec("DELETE FROM articles_fts WHERE rowid = ?", id); err != nil {
			return fmt.Errorf("prune FTS %d: %w", id, err)
		}
		if _, err := db.conn.Exec("DELETE FROM articles WHERE id = ?", id); err != nil {
			return fmt.Errorf("prune article %d: %w", id, err)
		}
	}
	return nil
}

// Count returns the number of cached articles.
func (db *DB) Count() (int, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM articles").Scan(&n)
	return n, err
}

func (db *DB) migrate() error {
	for _, col := range passthroughColumns {
		has, err := db.hasColumn("articles", col)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := db.conn.Exec("ALTER TABLE articles ADD COLUMN " + col + " TEXT NOT NULL DEFAULT ''"); err != nil {
			return fmt.Errorf("add articles.%s: %w", col, err)
		}
	}
	return nil
}

func (db *DB) hasColumn(table, col string) (bool, error) {
	rows, err := db.conn.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return false, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull int
		var dflt sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == col {
			return true, nil
		}
	}
	return false, rows.Err()
}

func decodeList(s string) ([]string, error) {
	out := []string{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
