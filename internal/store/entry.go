package store

import (
	"database/sql"
	"time"
)

// EntryKind is the kind of a history entry.
type EntryKind string

const (
	// EntryCommit records a committed character.
	EntryCommit EntryKind = "commit"
	// EntryDelete records a delete.
	EntryDelete EntryKind = "delete"
)

// Entry is one finalized input event.
type Entry struct {
	ID        int64
	Kind      EntryKind
	Char      string
	CreatedAt time.Time
}

// EntryRepository records the typed history.
type EntryRepository struct {
	db *sql.DB
}

// Entries returns the entry repository for this store.
func (s *Store) Entries() *EntryRepository {
	return &EntryRepository{db: s.db}
}

// Append inserts an entry and sets its ID.
func (r *EntryRepository) Append(e *Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	result, err := r.db.Exec(
		`INSERT INTO entries (kind, char, created_at) VALUES (?, ?, ?)`,
		string(e.Kind), e.Char, e.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// List returns the most recent entries in insertion order.
// A non-positive limit returns every entry.
func (r *EntryRepository) List(limit int) ([]*Entry, error) {
	query := `SELECT id, kind, char, created_at FROM entries ORDER BY id`
	args := []any{}
	if limit > 0 {
		query = `SELECT id, kind, char, created_at FROM
			(SELECT id, kind, char, created_at FROM entries ORDER BY id DESC LIMIT ?)
			ORDER BY id`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		var kind string
		if err := rows.Scan(&e.ID, &kind, &e.Char, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = EntryKind(kind)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Text replays the whole history into the text it produced.
func (r *EntryRepository) Text() (string, error) {
	entries, err := r.List(0)
	if err != nil {
		return "", err
	}

	var text []rune
	for _, e := range entries {
		switch e.Kind {
		case EntryCommit:
			text = append(text, []rune(e.Char)...)
		case EntryDelete:
			if len(text) > 0 {
				text = text[:len(text)-1]
			}
		}
	}
	return string(text), nil
}

// Clear removes every entry.
func (r *EntryRepository) Clear() error {
	_, err := r.db.Exec(`DELETE FROM entries`)
	return err
}
