package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hoanghai1803/newsbuddy/internal/models"
)

// CreateSession inserts a chat session and its initial messages. Message IDs
// and zero CreatedAt fields are filled in on session.
func (s *Store) CreateSession(ctx context.Context, session *models.ChatSession) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	h := session.Headline
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chat_sessions
			(id, headline_id, headline_title, headline_description, headline_url,
			 headline_image, headline_source, headline_published, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, h.ID, h.Title, h.Description, h.URL,
		h.URLToImage, h.Source, formatTimePtr(h.PublishedAt), session.CreatedAt.Format(timeLayout),
	); err != nil {
		return fmt.Errorf("creating chat session: %w", err)
	}

	if err := insertMessages(ctx, tx, session.ID, session.Messages); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chat session: %w", err)
	}
	return nil
}

// GetSession returns a chat session with all of its messages in order. It
// returns ErrNotFound if no session has the given ID.
func (s *Store) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	var (
		sess      models.ChatSession
		published sql.NullString
		createdAt string
	)
	h := &sess.Headline
	err := s.db.QueryRowContext(ctx,
		`SELECT id, headline_id, headline_title, headline_description, headline_url,
				headline_image, headline_source, headline_published, created_at
		 FROM chat_sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &h.ID, &h.Title, &h.Description, &h.URL,
		&h.URLToImage, &h.Source, &published, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting chat session %q: %w", id, err)
	}
	h.PublishedAt = parseTimePtr(published)
	sess.CreatedAt = parseTime(createdAt)

	sess.Messages, err = s.GetMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// DeleteSession removes a chat session and its messages. It returns
// ErrNotFound if no session has the given ID.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM chat_sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting chat session %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendMessages adds msgs to the end of a session's conversation, filling in
// their IDs and zero CreatedAt fields. It returns ErrNotFound if the session
// does not exist.
func (s *Store) AppendMessages(ctx context.Context, sessionID string, msgs []models.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM chat_sessions WHERE id = ?", sessionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking chat session %q: %w", sessionID, err)
	}

	if err := insertMessages(ctx, tx, sessionID, msgs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing messages: %w", err)
	}
	return nil
}

// GetMessages returns a session's messages oldest first.
func (s *Store) GetMessages(ctx context.Context, sessionID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, text, created_at FROM chat_messages
		 WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	msgs := []models.Message{}
	for rows.Next() {
		var (
			m         models.Message
			createdAt string
		)
		if err := rows.Scan(&m.ID, &m.Role, &m.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		m.CreatedAt = parseTime(createdAt)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message rows: %w", err)
	}
	return msgs, nil
}

func insertMessages(ctx context.Context, tx *sql.Tx, sessionID string, msgs []models.Message) error {
	now := time.Now().UTC()
	for i := range msgs {
		m := &msgs[i]
		if !m.Role.Valid() {
			return fmt.Errorf("invalid message role %q", m.Role)
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO chat_messages (session_id, role, text, created_at) VALUES (?, ?, ?, ?)",
			sessionID, string(m.Role), m.Text, m.CreatedAt.Format(timeLayout))
		if err != nil {
			return fmt.Errorf("inserting %s message: %w", m.Role, err)
		}
		if m.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("getting message id: %w", err)
		}
	}
	return nil
}
