package jsonfile

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"sortrash/internal/model"
)

func sampleEntries() []model.JournalEntry {
	return []model.JournalEntry{
		{ID: 1, Category: "plastic", Confidence: 0.92, Date: "2024-12-18T10:30:00Z", Timestamp: 1734517800},
		{ID: 2, Category: "metal", Confidence: 0.85, Date: "2024-12-18T11:00:00Z", Timestamp: 1734519600},
	}
}

func TestStore_ReadMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "classification_history.json"))

	entries, err := s.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll on missing file failed: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", entries)
	}
}

func TestStore_WriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	s := New(path)

	if err := s.WriteAll(sampleEntries()); err != nil {
		t.Fatalf("WriteAll failed: %v", err)
	}

	got, err := s.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !reflect.DeepEqual(got, sampleEntries()) {
		t.Errorf("Expected %+v, got %+v", sampleEntries(), got)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	for _, field := range []string{`"id"`, `"category"`, `"confidence"`, `"date"`, `"timestamp"`} {
		if !strings.Contains(string(raw), field) {
			t.Errorf("Expected field %s in document: %s", field, raw)
		}
	}

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("Temp files left behind: %v", leftovers)
	}
}

func TestStore_WriteEmptyReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s := New(path)

	if err := s.WriteAll(sampleEntries()); err != nil {
		t.Fatalf("WriteAll failed: %v", err)
	}
	if err := s.WriteAll(nil); err != nil {
		t.Fatalf("WriteAll(nil) failed: %v", err)
	}

	raw, _ := os.ReadFile(path)
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("Expected empty array document, got %q", raw)
	}
}

func TestStore_ReadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte(`[{"id": 1, "category": `), 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	if _, err := New(path).ReadAll(); err == nil {
		t.Error("Expected decode error for corrupt journal")
	}
}

func TestStore_ReadNullDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("null"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	entries, err := New(path).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("Expected empty slice for null document, got %#v", entries)
	}
}
