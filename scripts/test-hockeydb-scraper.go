package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/fortuna/hockeygame/internal/ingest/hockeydb"
)

// Simple test utility to verify the HockeyDB scraper works.
// Usage: go run scripts/test-hockeydb-scraper.go [pid]
func main() {
	log.Println("Testing HockeyDB Scraper")
	log.Println("========================")

	playerID := 54159 // Steven Stamkos
	if len(os.Args) > 1 {
		id, err := strconv.Atoi(os.Args[1])
		if err != nil {
			log.Fatalf("Invalid player id %q: %v", os.Args[1], err)
		}
		playerID = id
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := hockeydb.NewClient(hockeydb.ClientConfig{Headless: true})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	log.Printf("\n1. Fetching %s ...", client.PlayerURL(playerID))
	page, err := client.FetchPlayer(ctx, playerID)
	if err != nil {
		log.Fatalf("Failed to fetch player page: %v", err)
	}
	log.Printf("✓ Retrieved HTML (%d bytes) and text (%d bytes)", len(page.HTML), len(page.Text))

	log.Println("\n2. Extracting text from HTML...")
	extracted, err := hockeydb.ExtractText(page.HTML)
	if err != nil {
		log.Fatalf("Failed to extract text: %v", err)
	}
	log.Printf("✓ Extracted %d bytes", len(extracted))

	text := page.Text
	if text == "" {
		text = extracted
	}

	log.Println("\n3. Parsing player...")
	pd := hockeydb.ParsePlayerData(text)
	if pd.Name == hockeydb.UnknownName {
		log.Fatalf("No player found on page")
	}

	log.Printf("✓ %s (%s)", pd.Name, pd.Position)
	if pd.BirthDate != nil {
		log.Printf("  Born: %s", *pd.BirthDate)
	}
	if pd.IsGoalie() {
		log.Printf("  Goalie rows: %d", len(pd.GoalieStats))
		for _, gs := range pd.GoalieStats {
			log.Printf("    %s %-28s %-8s GP %3d GAA %.2f SV%% %.3f", gs.Season, gs.Team, gs.League, gs.GP, gs.GAA, gs.SavePct)
		}
	} else {
		log.Printf("  Season rows: %d", len(pd.Seasons))
		for _, s := range pd.Seasons {
			log.Printf("    %s %-28s %-8s GP %3d  G %3d  A %3d  Pts %3d", s.Season, s.Team, s.League, s.GP, s.G, s.A, s.Pts)
		}
	}

	log.Println("\n✓ Scraper test complete")
}
