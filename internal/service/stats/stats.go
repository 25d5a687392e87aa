// Package stats derives aggregate views from the classification journal.
package stats

import (
	"sort"
	"time"

	"sortrash/internal/model"
)

const (
	// NoCategory is reported as the most common category of an empty journal.
	NoCategory = "N/A"
	// WeekSeconds is the trailing window used for the weekly count.
	WeekSeconds = 7 * 24 * 60 * 60
	// RecentLimit caps the recent classifications list.
	RecentLimit = 10
)

// HistoryLoader provides the current journal contents.
type HistoryLoader interface {
	Load() []model.JournalEntry
}

// Service computes snapshots from a journal on every call.
type Service struct {
	history HistoryLoader
	now     func() time.Time
}

// NewService creates a statistics service over history.
func NewService(history HistoryLoader) *Service {
	return &Service{history: history, now: time.Now}
}

// Snapshot loads the journal and computes a fresh snapshot.
func (s *Service) Snapshot() model.StatisticsSnapshot {
	return ComputeSnapshot(s.history.Load(), s.now())
}

// ComputeSnapshot aggregates entries as of now.
//
// The distribution lists categories by descending count; equal counts keep
// the order in which each category first appears in the journal. The most
// common category is the head of that list, so ties go to the category seen
// first. Recent entries are ordered by descending timestamp, equal
// timestamps keeping journal order.
func ComputeSnapshot(entries []model.JournalEntry, now time.Time) model.StatisticsSnapshot {
	snap := model.StatisticsSnapshot{
		TotalScans:            len(entries),
		MostCommon:            NoCategory,
		CategoryDistribution:  []model.CategoryCount{},
		RecentClassifications: []model.JournalEntry{},
	}
	if len(entries) == 0 {
		return snap
	}

	cutoff := float64(now.UnixNano())/1e9 - WeekSeconds

	index := make(map[string]int)
	for _, e := range entries {
		if e.Timestamp > cutoff {
			snap.ThisWeek++
		}
		i, seen := index[e.Category]
		if !seen {
			i = len(snap.CategoryDistribution)
			index[e.Category] = i
			snap.CategoryDistribution = append(snap.CategoryDistribution, model.CategoryCount{Category: e.Category})
		}
		snap.CategoryDistribution[i].Count++
	}

	sort.SliceStable(snap.CategoryDistribution, func(a, b int) bool {
		return snap.CategoryDistribution[a].Count > snap.CategoryDistribution[b].Count
	})
	snap.MostCommon = snap.CategoryDistribution[0].Category

	recent := make([]model.JournalEntry, len(entries))
	copy(recent, entries)
	sort.SliceStable(recent, func(a, b int) bool {
		return recent[a].Timestamp > recent[b].Timestamp
	})
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	snap.RecentClassifications = recent

	return snap
}
