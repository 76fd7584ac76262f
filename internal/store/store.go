// Package store is the single point of persistence for the crawl catalog:
// documents, the word dictionary, and the postings that join them. Every
// operation is a self-contained transaction; the Store never returns past
// its API — connection and driver failures surface as a sentinel error the
// caller can match against, not a panic or an opaque wrapped type.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/ogsearch/ogsearch/internal/errs"
)

// Config holds the connection parameters read from the crawler/server
// configuration file.
type Config struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

// Store wraps the catalog's single database/sql handle.
type Store struct {
	db *sql.DB
}

// SearchResult is the projection returned by SearchConjunctiveTopK:
// (documentId, url, title, relevance score). It is derived, never stored.
type SearchResult struct {
	DocumentID int64
	URL        string
	Title      string
	Score      int64
}

// Connect opens the Postgres connection described by cfg, forcing UTF-8
// client encoding, and verifies it with a ping. It fails with
// errs.ErrStorageUnavailable on any connection or handshake error.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s client_encoding=UTF8 sslmode=disable",
		cfg.Host, cfg.Port, cfg.Name, cfg.User, cfg.Password,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errs.NewStorageError("connect", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errs.NewStorageError("connect", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewForTesting wraps an already-open *sql.DB (typically a sqlmock handle)
// as a Store, bypassing Connect's DSN construction and ping.
func NewForTesting(db *sql.DB) *Store {
	return &Store{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id SERIAL PRIMARY KEY,
	url VARCHAR(2048) UNIQUE NOT NULL,
	title TEXT,
	content TEXT,
	created_at TIMESTAMP DEFAULT now()
);

CREATE TABLE IF NOT EXISTS words (
	id SERIAL PRIMARY KEY,
	surface VARCHAR(100) UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS postings (
	document INT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	word INT NOT NULL REFERENCES words(id) ON DELETE CASCADE,
	frequency INT NOT NULL DEFAULT 1,
	PRIMARY KEY (document, word)
);

CREATE INDEX IF NOT EXISTS idx_words_surface ON words(surface);
CREATE INDEX IF NOT EXISTS idx_postings_word ON postings(word);
CREATE INDEX IF NOT EXISTS idx_postings_document ON postings(document);
`

// EnsureSchema creates the documents/words/postings tables and their indexes
// if they do not already exist. Idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errs.NewStorageError("ensureSchema", err)
	}
	return nil
}

// InsertDocument upserts by url: if a row with this URL exists, its id is
// returned unchanged (title/content are not overwritten); otherwise a new
// row is inserted. Runs in a single transaction.
func (s *Store) InsertDocument(ctx context.Context, url, title, content string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errs.NewStorageError("insertDocument", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM documents WHERE url = $1`, url).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, errs.NewStorageError("insertDocument", err)
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO documents (url, title, content) VALUES ($1, $2, $3) RETURNING id`,
		url, title, content,
	).Scan(&id)
	if err != nil {
		return 0, errs.NewStorageError("insertDocument", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, errs.NewStorageError("insertDocument", err)
	}
	return id, nil
}

// GetOrCreateWord upserts by normalized surface form. The caller MUST have
// already normalized surface.
func (s *Store) GetOrCreateWord(ctx context.Context, surface string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errs.NewStorageError("getOrCreateWord", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM words WHERE surface = $1`, surface).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, errs.NewStorageError("getOrCreateWord", err)
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO words (surface) VALUES ($1) RETURNING id`, surface,
	).Scan(&id)
	if err != nil {
		return 0, errs.NewStorageError("getOrCreateWord", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, errs.NewStorageError("getOrCreateWord", err)
	}
	return id, nil
}

// AddPosting upserts by (documentId, wordId): on conflict, adds frequency to
// the stored value rather than replacing it, so repeated calls for the same
// pair accumulate.
func (s *Store) AddPosting(ctx context.Context, documentID, wordID int64, frequency int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO postings (document, word, frequency)
		VALUES ($1, $2, $3)
		ON CONFLICT (document, word) DO UPDATE SET frequency = postings.frequency + excluded.frequency
	`, documentID, wordID, frequency)
	if err != nil {
		return errs.NewStorageError("addPosting", err)
	}
	return nil
}

// SearchConjunctiveTopK returns up to k documents containing every token in
// tokens (already normalized, duplicates removed by the caller), ranked by
// the sum of per-token frequencies descending.
func (s *Store) SearchConjunctiveTopK(ctx context.Context, tokens []string, k int) ([]SearchResult, error) {
	if len(tokens) == 0 || k <= 0 {
		return nil, nil
	}

	placeholders := make([]string, len(tokens))
	args := make([]interface{}, 0, len(tokens)+1)
	for i, tok := range tokens {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args = append(args, tok)
	}
	args = append(args, k)

	query := fmt.Sprintf(`
		SELECT d.id, d.url, d.title, SUM(p.frequency) AS score
		FROM documents d
		JOIN postings p ON p.document = d.id
		JOIN words w ON p.word = w.id
		WHERE w.surface IN (%s)
		GROUP BY d.id, d.url, d.title
		HAVING COUNT(DISTINCT w.id) = %d
		ORDER BY score DESC
		LIMIT $%d
	`, joinPlaceholders(placeholders), len(tokens), len(tokens)+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.NewStorageError("searchConjunctiveTopK", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var title sql.NullString
		if err := rows.Scan(&r.DocumentID, &r.URL, &title, &r.Score); err != nil {
			return nil, errs.NewStorageError("searchConjunctiveTopK", err)
		}
		r.Title = title.String
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewStorageError("searchConjunctiveTopK", err)
	}
	return results, nil
}

func joinPlaceholders(ps []string) string {
	out := ps[0]
	for _, p := range ps[1:] {
		out += ", " + p
	}
	return out
}
