package database

import (
	"database/sql"
	"fmt"
	"time"
)

const articleColumns = `id, url, title, source, published_at, full_text, embedding, event_id, fetch_attempted, collected_at`

// InsertArticle inserts an article. Returns the ID on success, 0 if an
// article with the same URL already exists.
func (db *DB) InsertArticle(url, title string, source *string, publishedAt *time.Time, fullText *string) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO articles (url, title, source, published_at, full_text)
		VALUES (?, ?, ?, ?, ?)`,
		url, title, source, formatTime(publishedAt), fullText,
	)
	if err != nil {
		// Duplicate URL constraint
		return 0, nil //nolint: nilerr
	}
	return result.LastInsertId()
}

// GetArticleByID returns a single article by ID, or nil if not found.
func (db *DB) GetArticleByID(articleID int64) (*Article, error) {
	row := db.conn.QueryRow(
		`SELECT `+articleColumns+` FROM articles WHERE id = ?`, articleID,
	)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetUnclusteredEmbeddedArticles returns articles that have an embedding but
// no event assignment yet, ordered by id so runs process them in insertion
// order.
func (db *DB) GetUnclusteredEmbeddedArticles() ([]Article, error) {
	rows, err := db.conn.Query(
		`SELECT ` + articleColumns + ` FROM articles
		WHERE event_id IS NULL AND embedding IS NOT NULL ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// GetArticlesWithoutEmbedding returns articles the embedding step still has
// to process.
func (db *DB) GetArticlesWithoutEmbedding() ([]Article, error) {
	rows, err := db.conn.Query(
		`SELECT ` + articleColumns + ` FROM articles WHERE embedding IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// UpdateArticleEmbedding stores the embedding vector for an article.
func (db *DB) UpdateArticleEmbedding(articleID int64, embedding []float64) error {
	encoded, err := marshalVector(embedding)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(
		"UPDATE articles SET embedding = ? WHERE id = ?", encoded, articleID,
	)
	return err
}

// GetArticlesNeedingFetch returns articles with empty full text that haven't
// had a fetch attempt yet.
func (db *DB) GetArticlesNeedingFetch() ([]Article, error) {
	rows, err := db.conn.Query(
		`SELECT ` + articleColumns + ` FROM articles
		WHERE (full_text IS NULL OR full_text = '') AND fetch_attempted = 0
		ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// UpdateArticleFullText stores fetched article text.
func (db *DB) UpdateArticleFullText(articleID int64, fullText *string) error {
	_, err := db.conn.Exec(
		"UPDATE articles SET full_text = ?, fetch_attempted = 1 WHERE id = ?",
		fullText, articleID,
	)
	return err
}

// MarkArticleFetchAttempted records that a content fetch was tried.
func (db *DB) MarkArticleFetchAttempted(articleID int64) error {
	_, err := db.conn.Exec(
		"UPDATE articles SET fetch_attempted = 1 WHERE id = ?", articleID,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticleInto(s rowScanner) (*Article, error) {
	var a Article
	var published, embedding *string
	var fetched int
	if err := s.Scan(&a.ID, &a.URL, &a.Title, &a.Source, &published,
		&a.FullText, &embedding, &a.EventID, &fetched, &a.CollectedAt); err != nil {
		return nil, err
	}
	a.FetchAttempted = fetched != 0

	var err error
	if a.PublishedAt, err = parseTime(published); err != nil {
		return nil, fmt.Errorf("article %d: %w", a.ID, err)
	}
	if a.Embedding, err = unmarshalVector(embedding); err != nil {
		return nil, fmt.Errorf("article %d: %w", a.ID, err)
	}
	return &a, nil
}

func scanArticles(rows *sql.Rows) ([]Article, error) {
	var articles []Article
	for rows.Next() {
		a, err := scanArticleInto(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

func scanArticle(row *sql.Row) (*Article, error) {
	return scanArticleInto(row)
}
