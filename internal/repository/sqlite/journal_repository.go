package sqlite

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"sortrash/internal/model"
)

const journalTable = "journal_entries"

var journalColumns = []string{"id", "category", "confidence", "date", "timestamp"}

// JournalRepository implements repository.JournalStore for SQLite. The
// position column keeps append order independent of the entry ids.
type JournalRepository struct {
	db *DB
}

// NewJournalRepository creates a new SQLite journal repository.
func NewJournalRepository(db *DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// ReadAll returns every journal entry in stored order.
func (r *JournalRepository) ReadAll() ([]model.JournalEntry, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := sq.Select(journalColumns...).
		From(journalTable).
		OrderBy("position").
		RunWith(r.db.Conn()).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	entries := []model.JournalEntry{}
	for rows.Next() {
		var e model.JournalEntry
		if err := rows.Scan(&e.ID, &e.Category, &e.Confidence, &e.Date, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal: %w", err)
	}

	return entries, nil
}

// WriteAll replaces the table contents in a single transaction.
func (r *JournalRepository) WriteAll(entries []model.JournalEntry) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := sq.Delete(journalTable).RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("failed to clear journal: %w", err)
	}

	for i, e := range entries {
		_, err := sq.Insert(journalTable).
			Columns(append([]string{"position"}, journalColumns...)...).
			Values(i+1, e.ID, e.Category, e.Confidence, e.Date, e.Timestamp).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to insert journal entry %d: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit journal: %w", err)
	}
	return nil
}

// Count returns the number of stored entries.
func (r *JournalRepository) Count() (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var count int
	err := sq.Select("COUNT(*)").From(journalTable).RunWith(r.db.Conn()).QueryRow().Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count journal entries: %w", err)
	}
	return count, nil
}

// Close closes the underlying database.
func (r *JournalRepository) Close() error {
	return r.db.Close()
}
