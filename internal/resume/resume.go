// Package resume persists the frontier's processed-set to a local sqlite
// database so a crawl can skip already-visited URLs on a subsequent run.
// This is off by default: a crawl run with no resume store configured
// behaves exactly as if this package did not exist. When enabled, a worker
// consults it for each dequeued URL before fetching it and records the URL
// after MarkProcessed, the same "check then record" shape as the teacher's
// indexer IndexDB.IsPageIndexed/MarkPageAsIndexed pair.
package resume

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS visited (
	url TEXT PRIMARY KEY,
	visited_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// Store persists a set of visited URLs across crawl runs.
type Store struct {
	db *sql.DB
}

// Open creates or reopens the sqlite database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("resume: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("resume: enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("resume: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Visited reports whether url was recorded by a prior crawl run.
func (s *Store) Visited(url string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM visited WHERE url = ?)`, url).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("resume: visited: %w", err)
	}
	return exists, nil
}

// MarkVisited records url, idempotently.
func (s *Store) MarkVisited(url string) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO visited (url) VALUES (?)`, url)
	if err != nil {
		return fmt.Errorf("resume: markVisited: %w", err)
	}
	return nil
}

// Count returns the number of URLs recorded so far.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM visited`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("resume: count: %w", err)
	}
	return n, nil
}
