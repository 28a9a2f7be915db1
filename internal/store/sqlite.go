// ABOUTME: SQLite-backed article store using modernc.org/sqlite (pure Go)
// ABOUTME: One payload row per user; the whole list is replaced on every save

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/harper/stash/internal/models"
)

// SQLiteStore implements Store on a local SQLite file.
//
// The schema is deliberately a key-value table, not an indexed article table:
// the engine's contract is a wholesale read-modify-write of one user's list,
// and a single-row payload keeps that write atomic.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the article database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	// WAL mode for better concurrency between foreground and background syncs
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS article_lists (
			key        TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);
	`)
	return err
}

// Load returns the persisted article list for userID.
func (s *SQLiteStore) Load(ctx context.Context, userID string) ([]*models.Article, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM article_lists WHERE key = ?`, articleKey(userID),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load articles: %w", err)
	}

	articles, ok := decodeArticles([]byte(payload))
	return articles, ok, nil
}

// Save replaces userID's entire list in one row write.
func (s *SQLiteStore) Save(ctx context.Context, userID string, articles []*models.Article) error {
	payload, err := encodeArticles(articles)
	if err != nil {
		return fmt.Errorf("encode articles: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO article_lists (key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, articleKey(userID), string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save articles: %w", err)
	}
	return nil
}

// Clear removes userID's persisted list.
func (s *SQLiteStore) Clear(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM article_lists WHERE key = ?`, articleKey(userID))
	if err != nil {
		return fmt.Errorf("clear articles: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func encodeArticles(articles []*models.Article) ([]byte, error) {
	if articles == nil {
		articles = []*models.Article{}
	}
	return json.Marshal(articles)
}

// decodeArticles parses a stored payload. A corrupt payload is reported as
// never-synced (ok=false): the next successful sync rewrites the key.
func decodeArticles(payload []byte) ([]*models.Article, bool) {
	var articles []*models.Article
	if err := json.Unmarshal(payload, &articles); err != nil {
		log.Warn("discarding corrupt article payload", "err", err)
		return nil, false
	}
	if articles == nil {
		articles = []*models.Article{}
	}
	return articles, true
}
