// Package journal is the append-only record of classification events.
//
// All mutations run load-modify-persist under a single mutex, so concurrent
// requests never lose each other's entries. Reads go through the same
// mutex and therefore always observe a complete document.
package journal

import (
	"sync"
	"time"

	perr "sortrash/internal/errors"
	"sortrash/internal/logger"
	"sortrash/internal/model"
	"sortrash/internal/repository"
)

// Clock returns the current instant.
type Clock func() time.Time

// Journal guards a repository.JournalStore with single-writer semantics.
type Journal struct {
	store  repository.JournalStore
	now    Clock
	logger *logger.Logger
	mu     sync.Mutex
}

// New creates a Journal on top of store.
func New(store repository.JournalStore, logger *logger.Logger) *Journal {
	return &Journal{store: store, now: time.Now, logger: logger}
}

// WithClock replaces the time source. Intended for tests and tools.
func (j *Journal) WithClock(now Clock) *Journal {
	j.now = now
	return j
}

// Load returns the full history in append order. An unreadable or corrupt
// store is logged and reported as an empty history.
func (j *Journal) Load() []model.JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.loadLenient()
}

// Read returns the history or the StoreRead error that Load hides.
func (j *Journal) Read() ([]model.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.read()
}

// Append converts each result into an entry and persists the extended
// journal as one unit. Entries get id = current length + 1 and share the
// same creation instant. It returns the appended entries.
func (j *Journal) Append(results []model.ClassificationResult) ([]model.JournalEntry, error) {
	if len(results) == 0 {
		return nil, nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	history := j.loadLenient()
	date, timestamp := stamp(j.now())

	added := make([]model.JournalEntry, 0, len(results))
	for _, res := range results {
		entry := model.JournalEntry{
			ID:         len(history) + 1,
			Category:   res.Label,
			Confidence: res.Confidence,
			Date:       date,
			Timestamp:  timestamp,
		}
		history = append(history, entry)
		added = append(added, entry)
	}

	if err := j.store.WriteAll(history); err != nil {
		j.logger.Error("Failed to persist journal (%d new entries): %v", len(added), err)
		return nil, perr.Wrap(err, perr.KindStoreWrite, "failed to persist classification journal")
	}

	return added, nil
}

// Clear replaces the whole journal with an empty one.
func (j *Journal) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.store.WriteAll([]model.JournalEntry{}); err != nil {
		j.logger.Error("Failed to clear journal: %v", err)
		return perr.Wrap(err, perr.KindStoreWrite, "failed to clear classification journal")
	}
	j.logger.Info("Classification journal cleared")
	return nil
}

func (j *Journal) read() ([]model.JournalEntry, error) {
	entries, err := j.store.ReadAll()
	if err != nil {
		return nil, perr.Wrap(err, perr.KindStoreRead, "failed to read classification journal")
	}
	return entries, nil
}

// loadLenient maps a StoreRead error to an empty history.
func (j *Journal) loadLenient() []model.JournalEntry {
	entries, err := j.read()
	if err != nil {
		j.logger.Warning("Journal unreadable, treating as empty: %v", err)
		return []model.JournalEntry{}
	}
	return entries
}

// stamp renders one instant as an ISO-8601 string and epoch seconds.
// The instant is cut to microseconds so both forms describe exactly the
// same moment.
func stamp(now time.Time) (string, float64) {
	now = now.UTC().Truncate(time.Microsecond)
	return now.Format(time.RFC3339Nano), float64(now.UnixMicro()) / 1e6
}
