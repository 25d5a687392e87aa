package repository

import (
	"sortrash/internal/model"
)

// JournalStore persists the whole classification journal as one document.
// Reads return the entries in stored order; writes replace everything.
type JournalStore interface {
	// ReadAll returns the stored journal. A store that was never written
	// returns an empty slice and no error. Unreadable or corrupt contents
	// return an error.
	ReadAll() ([]model.JournalEntry, error)

	// WriteAll atomically replaces the stored journal with entries.
	WriteAll(entries []model.JournalEntry) error

	Close() error
}
