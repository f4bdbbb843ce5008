package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hoanghai1803/newsbuddy/internal/models"
)

// ReplaceHeadlines swaps the stored listing for headlines, keeping their
// order.
func (s *Store) ReplaceHeadlines(ctx context.Context, headlines []models.Headline) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, "DELETE FROM headlines"); err != nil {
		return fmt.Errorf("clearing headlines: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO headlines
			(position, id, title, description, url, url_to_image, source, published_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing headline insert: %w", err)
	}
	defer stmt.Close()

	for i, h := range headlines {
		id := h.ID
		if id == "" {
			id = models.ArticleID(h.URL)
		}
		if _, err := stmt.ExecContext(ctx,
			i, id, h.Title, h.Description, h.URL, h.URLToImage, h.Source, formatTimePtr(h.PublishedAt),
		); err != nil {
			return fmt.Errorf("inserting headline %q: %w", h.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing headlines: %w", err)
	}
	return nil
}

// GetHeadlines returns the stored listing in its original order.
func (s *Store) GetHeadlines(ctx context.Context) ([]models.Headline, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, url, url_to_image, source, published_at
		 FROM headlines ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying headlines: %w", err)
	}
	defer rows.Close()

	headlines := []models.Headline{}
	for rows.Next() {
		h, err := scanHeadline(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning headline row: %w", err)
		}
		headlines = append(headlines, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating headline rows: %w", err)
	}
	return headlines, nil
}

// GetHeadlineByID returns the first listed headline with the given ID. It
// returns ErrNotFound if the current listing has none.
func (s *Store) GetHeadlineByID(ctx context.Context, id string) (*models.Headline, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, url, url_to_image, source, published_at
		 FROM headlines WHERE id = ? ORDER BY position LIMIT 1`, id)

	h, err := scanHeadline(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting headline %q: %w", id, err)
	}
	return &h, nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanHeadline(sc scanner) (models.Headline, error) {
	var (
		h           models.Headline
		publishedAt sql.NullString
	)
	if err := sc.Scan(&h.ID, &h.Title, &h.Description, &h.URL, &h.URLToImage, &h.Source, &publishedAt); err != nil {
		return models.Headline{}, err
	}
	h.PublishedAt = parseTimePtr(publishedAt)
	return h, nil
}
