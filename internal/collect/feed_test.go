package collect

import (
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

func TestParseItemBasics(t *testing.T) {
	published := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	item := &gofeed.Item{
		Link:            "https://example.com/story",
		Title:           "  Big Story  ",
		PublishedParsed: &published,
		Description:     "<p>Summary &amp; details</p>",
	}

	entry := parseItem(item, "Example")
	if entry == nil {
		t.Fatal("expected an entry")
	}
	if entry.Title != "Big Story" {
		t.Errorf("expected trimmed title, got %q", entry.Title)
	}
	if entry.PublishedAt == nil || !entry.PublishedAt.Equal(published) {
		t.Errorf("expected published %v, got %v", published, entry.PublishedAt)
	}
	if entry.Summary != "Summary & details" {
		t.Errorf("expected stripped summary, got %q", entry.Summary)
	}
}

func TestParseItemSkipsMissingURLOrTitle(t *testing.T) {
	if parseItem(&gofeed.Item{Title: "No URL"}, "X") != nil {
		t.Error("expected nil for item without URL")
	}
	if parseItem(&gofeed.Item{Link: "https://example.com"}, "X") != nil {
		t.Error("expected nil for item without title")
	}
}

func TestIsWithinWindow(t *testing.T) {
	cutoff := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	old := cutoff.AddDate(0, 0, -2)
	recent := cutoff.AddDate(0, 0, 1)

	if isWithinWindow(&old, cutoff) {
		t.Error("expected old entry to be outside window")
	}
	if !isWithinWindow(&recent, cutoff) {
		t.Error("expected recent entry to be inside window")
	}
	if !isWithinWindow(nil, cutoff) {
		t.Error("expected undated entry to pass")
	}
}

func TestStripHTML(t *testing.T) {
	got := stripHTML("<p>Hello <b>world</b> &nbsp; &lt;ok&gt;</p>")
	if got != "Hello world <ok>" {
		t.Errorf("unexpected result: %q", got)
	}
}

func TestExtractSourceName(t *testing.T) {
	cases := map[string]string{
		"http://feeds.bbci.co.uk/news/world/rss.xml": "Co",
		"https://www.theguardian.com/world/rss":      "Theguardian",
		"http://rss.cnn.com/rss/cnn_topstories.rss":  "Cnn",
	}
	for feedURL, want := range cases {
		if got := extractSourceName(feedURL); got != want {
			t.Errorf("%s: expected %q, got %q", feedURL, want, got)
		}
	}
}
