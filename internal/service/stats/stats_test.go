package stats

import (
	"reflect"
	"testing"
	"time"

	"sortrash/internal/model"
)

var now = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

func epoch(t time.Time) float64 { return float64(t.UnixNano()) / 1e9 }

func entriesOf(categories ...string) []model.JournalEntry {
	out := make([]model.JournalEntry, len(categories))
	for i, c := range categories {
		ts := now.Add(-time.Duration(len(categories)-i) * time.Minute)
		out[i] = model.JournalEntry{ID: i + 1, Category: c, Confidence: 0.9, Date: ts.Format(time.RFC3339), Timestamp: epoch(ts)}
	}
	return out
}

type staticHistory []model.JournalEntry

func (h staticHistory) Load() []model.JournalEntry { return h }

func TestComputeSnapshot_Empty(t *testing.T) {
	snap := ComputeSnapshot(nil, now)

	if snap.TotalScans != 0 || snap.ThisWeek != 0 {
		t.Errorf("Expected zero counts, got %+v", snap)
	}
	if snap.MostCommon != "N/A" {
		t.Errorf("Expected N/A, got %s", snap.MostCommon)
	}
	if snap.CategoryDistribution == nil || len(snap.CategoryDistribution) != 0 {
		t.Errorf("Expected empty distribution, got %#v", snap.CategoryDistribution)
	}
	if snap.RecentClassifications == nil || len(snap.RecentClassifications) != 0 {
		t.Errorf("Expected empty recent list, got %#v", snap.RecentClassifications)
	}
}

func TestComputeSnapshot_Distribution(t *testing.T) {
	snap := ComputeSnapshot(entriesOf("plastic", "metal", "plastic", "paper", "plastic"), now)

	want := []model.CategoryCount{
		{Category: "plastic", Count: 3},
		{Category: "metal", Count: 1},
		{Category: "paper", Count: 1},
	}
	if !reflect.DeepEqual(snap.CategoryDistribution, want) {
		t.Errorf("Expected %+v, got %+v", want, snap.CategoryDistribution)
	}
	if snap.MostCommon != "plastic" {
		t.Errorf("Expected plastic, got %s", snap.MostCommon)
	}
	if snap.TotalScans != 5 {
		t.Errorf("Expected 5 scans, got %d", snap.TotalScans)
	}
}

func TestComputeSnapshot_MostCommonTieGoesToFirstSeen(t *testing.T) {
	tests := []struct {
		name       string
		categories []string
		want       string
	}{
		{"metal first", []string{"metal", "paper", "paper", "metal"}, "metal"},
		{"paper first", []string{"paper", "metal", "metal", "paper"}, "paper"},
		{"three way", []string{"glass", "metal", "paper"}, "glass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := ComputeSnapshot(entriesOf(tt.categories...), now)
			if snap.MostCommon != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, snap.MostCommon)
			}
			if snap.CategoryDistribution[0].Category != tt.want {
				t.Errorf("Distribution head should be %s, got %+v", tt.want, snap.CategoryDistribution)
			}
		})
	}
}

func TestComputeSnapshot_TrailingWeek(t *testing.T) {
	entries := []model.JournalEntry{
		{ID: 1, Category: "plastic", Timestamp: epoch(now.Add(-8 * 24 * time.Hour))},
		{ID: 2, Category: "metal", Timestamp: epoch(now.Add(-time.Second))},
	}

	snap := ComputeSnapshot(entries, now)
	if snap.ThisWeek != 1 {
		t.Errorf("Expected 1 entry this week, got %d", snap.ThisWeek)
	}
}

func TestComputeSnapshot_TrailingWeekBoundaryIsExclusive(t *testing.T) {
	entries := []model.JournalEntry{
		{ID: 1, Category: "plastic", Timestamp: epoch(now) - WeekSeconds},
		{ID: 2, Category: "plastic", Timestamp: epoch(now) - WeekSeconds + 1},
	}

	if got := ComputeSnapshot(entries, now).ThisWeek; got != 1 {
		t.Errorf("Entry exactly one week old must not count; got %d", got)
	}
}

func TestComputeSnapshot_RecentSortedAndCapped(t *testing.T) {
	var entries []model.JournalEntry
	for i := 0; i < 25; i++ {
		// interleave old and new so append order != time order
		offset := time.Duration((i*7)%25) * time.Hour
		entries = append(entries, model.JournalEntry{ID: i + 1, Category: "paper", Timestamp: epoch(now.Add(-offset))})
	}

	snap := ComputeSnapshot(entries, now)

	if len(snap.RecentClassifications) != 10 {
		t.Fatalf("Expected 10 recent entries, got %d", len(snap.RecentClassifications))
	}
	for i := 1; i < len(snap.RecentClassifications); i++ {
		if snap.RecentClassifications[i-1].Timestamp < snap.RecentClassifications[i].Timestamp {
			t.Fatalf("Recent list not descending at %d: %+v", i, snap.RecentClassifications)
		}
	}
	if snap.RecentClassifications[0].Timestamp != epoch(now) {
		t.Errorf("Newest entry should come first")
	}
}

func TestComputeSnapshot_RecentTiesKeepJournalOrder(t *testing.T) {
	ts := epoch(now)
	entries := []model.JournalEntry{
		{ID: 1, Category: "plastic", Timestamp: ts},
		{ID: 2, Category: "metal", Timestamp: ts},
		{ID: 3, Category: "paper", Timestamp: ts - 5},
	}

	snap := ComputeSnapshot(entries, now)

	var ids []int
	for _, e := range snap.RecentClassifications {
		ids = append(ids, e.ID)
	}
	if !reflect.DeepEqual(ids, []int{1, 2, 3}) {
		t.Errorf("Expected ids [1 2 3], got %v", ids)
	}
}

func TestComputeSnapshot_DoesNotReorderInput(t *testing.T) {
	entries := []model.JournalEntry{
		{ID: 1, Category: "plastic", Timestamp: 1},
		{ID: 2, Category: "metal", Timestamp: 2},
	}

	ComputeSnapshot(entries, now)

	if entries[0].ID != 1 || entries[1].ID != 2 {
		t.Errorf("Input slice was mutated: %+v", entries)
	}
}

func TestService_Snapshot(t *testing.T) {
	svc := NewService(staticHistory(entriesOf("glass", "glass")))
	svc.now = func() time.Time { return now }

	snap := svc.Snapshot()
	if snap.TotalScans != 2 || snap.MostCommon != "glass" || snap.ThisWeek != 2 {
		t.Errorf("Unexpected snapshot: %+v", snap)
	}
}
