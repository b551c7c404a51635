// scrapecheck runs the scrape adapter for a single competition against
// an in-memory store, printing what would be written. Useful for
// checking new page layouts without touching the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/soosb/aquafeed/internal/config"
	"github.com/soosb/aquafeed/internal/ingest/musz"
	"github.com/soosb/aquafeed/internal/logger"
	"github.com/soosb/aquafeed/internal/metrics"
	"github.com/soosb/aquafeed/internal/store/memstore"
)

func main() {
	eventID := flag.Int64("event", 0, "online event id to scrape")
	flag.Parse()

	if *eventID <= 0 {
		fmt.Fprintln(os.Stderr, "usage: scrapecheck -event <online event id>")
		os.Exit(2)
	}

	cfg := config.Load()
	zlog, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	gw := memstore.New()
	client := musz.NewClient(cfg.MuszBaseURL, cfg.FetchTimeout, metrics.NewDefault(), zlog)
	scraper := musz.NewScraper(client, gw, nil, zlog)

	if err := scraper.Run(context.Background(), *eventID); err != nil {
		log.Fatalf("scrape failed: %v", err)
	}

	fmt.Printf("competition %d\n", *eventID)
	for _, meet := range gw.Meets {
		fmt.Printf("  meet: %s (%s)\n", meet.Name, meet.Course)
	}
	fmt.Printf("  sessions: %d\n", len(gw.Sessions))
	fmt.Printf("  events:   %d\n", len(gw.Events))
	fmt.Printf("  results:  %d\n", len(gw.Results))
	fmt.Printf("  splits:   %d\n", len(gw.Splits))
	fmt.Printf("  athletes: %d\n", len(gw.Athletes))
	fmt.Printf("  clubs:    %d\n", len(gw.Clubs))
}
