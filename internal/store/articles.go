package store

import (
	"context"
	"time"

	"taccd/internal/models"
)

// InsertProblematicArticle records a flagged article URL with its title.
func (s *Store) InsertProblematicArticle(ctx context.Context, url, title string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO problematic_articles (url, title, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET title = excluded.title, created_at = excluded.created_at
	`, url, title, formatTime(now))
	return err
}

// ListProblematicArticles returns flagged articles, newest first.
func (s *Store) ListProblematicArticles(ctx context.Context) ([]models.ProblematicArticle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT url, title, created_at
		FROM problematic_articles
		ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := make([]models.ProblematicArticle, 0)
	for rows.Next() {
		var article models.ProblematicArticle
		var createdAt string
		if err := rows.Scan(&article.URL, &article.Title, &createdAt); err != nil {
			return nil, err
		}
		article.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}
