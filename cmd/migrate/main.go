package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"sortrash/internal/config"
	"sortrash/internal/logger"
	"sortrash/internal/repository"
	"sortrash/internal/repository/jsonfile"
	"sortrash/internal/repository/sqlite"
	"sortrash/internal/service/journal"
	"sortrash/internal/service/stats"
)

func main() {
	from := flag.String("from", config.JournalBackendFile, "Source backend (file or sqlite)")
	to := flag.String("to", config.JournalBackendSQLite, "Destination backend (file or sqlite)")
	jsonPath := flag.String("json", "classification_history.json", "Journal JSON file path")
	dbPath := flag.String("db", "data/journal.db", "Journal database path")
	force := flag.Bool("force", false, "Overwrite a non-empty destination")
	flag.Parse()

	if *from == *to {
		log.Fatalf("Source and destination are both %q", *from)
	}

	src, err := open(*from, *jsonPath, *dbPath)
	if err != nil {
		log.Fatalf("Failed to open source: %v", err)
	}
	defer src.Close()

	dst, err := open(*to, *jsonPath, *dbPath)
	if err != nil {
		log.Fatalf("Failed to open destination: %v", err)
	}
	defer dst.Close()

	fmt.Printf("Migrating journal from %s to %s\n", *from, *to)

	// strict read: a corrupt source must not be copied as an empty journal
	entries, err := journal.New(src, logger.NewNop()).Read()
	if err != nil {
		log.Fatalf("Failed to read source journal: %v", err)
	}

	existing, err := dst.ReadAll()
	if err == nil && len(existing) > 0 && !*force {
		log.Fatalf("Destination already holds %d entries; use -force to overwrite", len(existing))
	}

	if err := dst.WriteAll(entries); err != nil {
		log.Fatalf("Failed to write destination journal: %v", err)
	}
	fmt.Printf("✅ Successfully migrated %d entries\n", len(entries))

	snap := stats.ComputeSnapshot(entries, time.Now())
	fmt.Printf("\n📊 Journal Statistics:\n")
	fmt.Printf("   Total scans: %d\n", snap.TotalScans)
	fmt.Printf("   This week: %d\n", snap.ThisWeek)
	fmt.Printf("   Most common: %s\n", snap.MostCommon)
	if len(snap.CategoryDistribution) > 0 {
		fmt.Printf("   Per category:\n")
		for _, c := range snap.CategoryDistribution {
			fmt.Printf("      - %s: %d\n", c.Category, c.Count)
		}
	}
}

func open(backend, jsonPath, dbPath string) (repository.JournalStore, error) {
	switch backend {
	case config.JournalBackendFile:
		return jsonfile.New(jsonPath), nil
	case config.JournalBackendSQLite:
		db, err := sqlite.New(dbPath)
		if err != nil {
			return nil, err
		}
		return sqlite.NewJournalRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}
