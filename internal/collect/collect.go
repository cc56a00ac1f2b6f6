// Package collect ingests articles from configured RSS/Atom feeds.
package collect

import (
	"log"

	"github.com/TobiSchelling/NewsEvents/internal/config"
	"github.com/TobiSchelling/NewsEvents/internal/database"
)

// Result holds the results of a collection run.
type Result struct {
	TotalFound  int
	NewArticles int
	Duplicates  int
	Sources     map[string]int
}

// Collector ingests articles from configured feeds. Deduplication happens
// at insert time on the article URL, before the clustering engine ever sees
// the article.
type Collector struct {
	db         *database.DB
	feedParser *FeedParser
	daysBack   int
}

// NewCollector creates a new article collector.
func NewCollector(cfg *config.Config, db *database.DB, daysBack int) *Collector {
	c := &Collector{db: db, daysBack: daysBack}

	if len(cfg.Sources.Feeds) > 0 {
		feeds := make([]FeedConfig, len(cfg.Sources.Feeds))
		for i, f := range cfg.Sources.Feeds {
			feeds[i] = FeedConfig{URL: f.URL, Name: f.Name}
		}
		c.feedParser = NewFeedParser(feeds)
	}

	return c
}

// Collect collects articles from all configured feeds.
func (c *Collector) Collect() *Result {
	r := &Result{Sources: make(map[string]int)}

	if c.feedParser == nil {
		log.Println("No feeds configured")
		return r
	}

	log.Println("Collecting from RSS feeds...")
	entries := c.feedParser.ParseAll(c.daysBack)
	r.TotalFound = len(entries)

	for _, entry := range entries {
		var source, summary *string
		if entry.Source != "" {
			source = &entry.Source
		}
		if entry.Summary != "" {
			summary = &entry.Summary
		}

		id, err := c.db.InsertArticle(entry.URL, entry.Title, source, entry.PublishedAt, summary)
		if err != nil {
			log.Printf("Failed to insert %s: %v", entry.URL, err)
			continue
		}
		if id > 0 {
			r.NewArticles++
			r.Sources[entry.Source]++
		} else {
			r.Duplicates++
		}
	}

	log.Printf("Collection complete: %d new, %d duplicates", r.NewArticles, r.Duplicates)
	return r
}
