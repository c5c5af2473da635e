package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Writes sample promo files for local development.
// base.gz holds the standing codes; seasonal.gz is loaded after it and overrides SUMMER2026.
func main() {
	dataDir := "data/promos"

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	promos := map[string][]string{
		"base.gz": {
			"# CODE[,PERCENT]; a bare code is 10%",
			"WELCOME",
			"LOYAL,15",
			"SUMMER2026,5",
			"STAFF,30",
		},
		"seasonal.gz": {
			"SUMMER2026,20",
			"HARMATTAN,12.5",
			"FREEBIE,100",
		},
	}

	for filename, lines := range promos {
		path := filepath.Join(dataDir, filename)

		if err := createPromoFile(path, lines); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d lines\n", path, len(lines))
	}

	fmt.Println("\nSet PROMO_FILES=data/promos/base.gz,data/promos/seasonal.gz to load them in order.")
}

func createPromoFile(path string, lines []string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintf(gzipWriter, "%s\n", line); err != nil {
			return fmt.Errorf("failed to write promo line: %w", err)
		}
	}

	return nil
}
