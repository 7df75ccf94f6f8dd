package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// sampleDocuments seeds an empty store for demos and smoke tests.
var sampleDocuments = []string{
	"BadgerDB is an embeddable key-value store written in Go.",
	"SQLite keeps an entire relational database in a single file.",
	"Redis is an in-memory data store often used as a cache.",
	"A least recently used cache evicts the entry that was read longest ago.",
	"Token buckets refill at a fixed rate and allow short bursts.",
	"Vector embeddings map text to points in a high dimensional space.",
	"Nearest neighbour search finds the points closest to a query vector.",
	"Euclidean distance is the length of the straight line between two points.",
	"Prometheus scrapes metrics over HTTP and stores them as time series.",
	"Graceful shutdown lets in-flight requests finish before the process exits.",
	"A worker pool bounds how many goroutines run at the same time.",
	"Exponential backoff doubles the wait between consecutive retries.",
	"Structured logs attach key value pairs to every message.",
	"Environment variables override values read from the config file.",
	"Rate limiting protects a service from a single noisy client.",
	"Cached search results can be stale after new documents are added.",
	"The quick brown fox jumps over the lazy dog.",
	"Rain drummed on the rooftop, creating a soothing rhythm.",
	"The ancient library held stories that never faded.",
	"A bright comet streaked across the horizon at midnight.",
}

func seedCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	app, err := openApp(c, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	count, err := app.Documents().Count(c.Context)
	if err != nil {
		return err
	}
	if count > 0 && !c.Bool("force") {
		return fmt.Errorf("store already holds %d documents, use --force to seed anyway", count)
	}

	for _, content := range sampleDocuments {
		if _, err := app.Service().AddDocument(c.Context, content); err != nil {
			return err
		}
	}
	fmt.Fprintf(c.App.Writer, "seeded %d documents\n", len(sampleDocuments))
	return nil
}
