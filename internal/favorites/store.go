package favorites

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"moodify/internal/domain"
)

// storageKey matches the name the web version of the app used for its
// browser-local favorites entry.
const storageKey = "moodify_favs"

var ErrIndexOutOfRange = errors.New("favorite index out of range")

// Store persists the ordered favorites list as a single JSON-encoded
// key-value row. Every mutation runs as one read-modify-write transaction,
// so a crash can never leave a partially written list behind. Concurrent
// writers from other processes are not coordinated beyond SQLite's own
// locking; the app assumes a single instance.
type Store struct {
	db *sql.DB
}

// Open creates or opens the favorites database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create favorites directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open favorites database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	schema := `CREATE TABLE IF NOT EXISTS kv (
		name  TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize favorites schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the backing database.
func (s *Store) Close() error {
	return s.db.Close()
}

// List returns the persisted favorites in insertion order. Missing or
// ill-formed stored data reads as an empty list.
func (s *Store) List() ([]domain.Vibe, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE name = ?`, storageKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return []domain.Vibe{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}
	return decode(value), nil
}

// Add appends a vibe to the end of the list. Callers are expected to keep
// prompts unique; the store does not deduplicate.
func (s *Store) Add(vibe domain.Vibe) error {
	return s.mutate(func(favs []domain.Vibe) ([]domain.Vibe, error) {
		return append(favs, vibe), nil
	})
}

// RemoveAt deletes the entry at index, preserving the order of the rest,
// and returns the removed vibe.
func (s *Store) RemoveAt(index int) (domain.Vibe, error) {
	var removed domain.Vibe
	err := s.mutate(func(favs []domain.Vibe) ([]domain.Vibe, error) {
		if index < 0 || index >= len(favs) {
			return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(favs))
		}
		removed = favs[index]
		return append(favs[:index], favs[index+1:]...), nil
	})
	if err != nil {
		return domain.Vibe{}, err
	}
	return removed, nil
}

// RemoveByPrompt deletes the favorite with exactly this prompt within one
// transaction, reporting whether one existed.
func (s *Store) RemoveByPrompt(prompt string) (bool, error) {
	removed := false
	err := s.mutate(func(favs []domain.Vibe) ([]domain.Vibe, error) {
		for i, fav := range favs {
			if fav.Prompt == prompt {
				removed = true
				return append(favs[:i], favs[i+1:]...), nil
			}
		}
		return favs, nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// Contains reports whether a favorite with exactly this prompt exists.
func (s *Store) Contains(prompt string) (bool, error) {
	favs, err := s.List()
	if err != nil {
		return false, err
	}
	for _, fav := range favs {
		if fav.Prompt == prompt {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) mutate(apply func([]domain.Vibe) ([]domain.Vibe, error)) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin favorites transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var value string
	favs := []domain.Vibe{}
	err = tx.QueryRow(`SELECT value FROM kv WHERE name = ?`, storageKey).Scan(&value)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to read favorites: %w", err)
	}
	if err == nil {
		favs = decode(value)
	}

	next, err := apply(favs)
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO kv (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		storageKey, string(encoded),
	)
	if err != nil {
		return fmt.Errorf("failed to write favorites: %w", err)
	}

	return tx.Commit()
}

func decode(value string) []domain.Vibe {
	var favs []domain.Vibe
	if err := json.Unmarshal([]byte(value), &favs); err != nil {
		return []domain.Vibe{}
	}
	if favs == nil {
		favs = []domain.Vibe{}
	}
	return favs
}
