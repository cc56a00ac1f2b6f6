package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/TobiSchelling/NewsEvents/internal/database"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr(s string) *string { return &s }

// seedEvent inserts an embedded article and founds an event from it.
func seedEvent(t *testing.T, db *database.DB, url, title string) *database.Event {
	t.Helper()
	published := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	id, err := db.InsertArticle(url, title, ptr("TestWire"), &published, nil)
	if err != nil {
		t.Fatalf("failed to insert article: %v", err)
	}
	if err := db.UpdateArticleEmbedding(id, []float64{1, 0}); err != nil {
		t.Fatalf("failed to set embedding: %v", err)
	}
	article, err := db.GetArticleByID(id)
	if err != nil {
		t.Fatalf("failed to load article: %v", err)
	}
	event, err := db.CreateEventFromArticle(article)
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	return event
}

func TestIndexRoute(t *testing.T) {
	db := openTestDB(t)
	srv, err := New(db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Events") {
		t.Error("expected 'Events' in response body")
	}
}

func TestIndexListsEvents(t *testing.T) {
	db := openTestDB(t)
	seedEvent(t, db, "https://a.com/1", "Volcano Erupts in Iceland")

	srv, err := New(db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Volcano Erupts in Iceland") {
		t.Error("expected event title in response body")
	}
}

func TestEventRoute(t *testing.T) {
	db := openTestDB(t)
	event := seedEvent(t, db, "https://a.com/1", "Election Results Announced")

	srv, err := New(db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	req := httptest.NewRequest("GET", fmt.Sprintf("/event/%d", event.ID), nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Election Results Announced") {
		t.Error("expected event title in response")
	}
	if !strings.Contains(body, "https://a.com/1") {
		t.Error("expected member article link in response")
	}
	if !strings.Contains(body, "TestWire") {
		t.Error("expected article source in response")
	}
}

func TestEventRouteNotFound(t *testing.T) {
	db := openTestDB(t)
	srv, err := New(db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	req := httptest.NewRequest("GET", "/event/999", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestEventRouteBadID(t *testing.T) {
	db := openTestDB(t)
	srv, err := New(db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	req := httptest.NewRequest("GET", "/event/not-a-number", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Errorf("expected 302, got %d", rec.Code)
	}
}

func TestStaticRoute(t *testing.T) {
	db := openTestDB(t)
	srv, err := New(db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	req := httptest.NewRequest("GET", "/static/style.css", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "font-sans") {
		t.Error("expected CSS content")
	}
}
