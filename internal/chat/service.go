// Package chat runs conversations about a single headline: it opens
// sessions, relays questions to the language model, and records replies and
// follow-up suggestions.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hoanghai1803/newsbuddy/internal/ai"
	"github.com/hoanghai1803/newsbuddy/internal/models"
	"github.com/hoanghai1803/newsbuddy/internal/suggest"
)

var (
	// ErrEmptyMessage is returned when a message has no text.
	ErrEmptyMessage = errors.New("message text is empty")
	// ErrNotConfigured is returned by Send when no model provider is set up.
	ErrNotConfigured = errors.New("AI provider not configured")
)

// Store persists sessions and their messages.
type Store interface {
	CreateSession(ctx context.Context, session *models.ChatSession) error
	GetSession(ctx context.Context, id string) (*models.ChatSession, error)
	DeleteSession(ctx context.Context, id string) error
	AppendMessages(ctx context.Context, sessionID string, msgs []models.Message) error
}

// Asker answers a prompt in the context of a conversation.
type Asker interface {
	Ask(ctx context.Context, prompt string, recent []models.Message, topic *models.Headline) (string, error)
}

// Suggester proposes follow-up questions.
type Suggester interface {
	Suggest(ctx context.Context, recent []models.Message, topic *models.Headline) []string
}

// Service manages chat sessions.
type Service struct {
	store     Store
	asker     Asker
	suggester Suggester

	// mu serializes Send so that at most one model call is in flight.
	mu  sync.Mutex
	now func() time.Time
}

// NewService creates a Service. asker and suggester may be nil when no model
// provider is configured; sessions can still be opened and read, but Send
// returns ErrNotConfigured.
func NewService(store Store, asker Asker, suggester Suggester) *Service {
	return &Service{
		store:     store,
		asker:     asker,
		suggester: suggester,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Configured reports whether the service can answer messages.
func (s *Service) Configured() bool {
	return s.asker != nil && s.suggester != nil
}

// Open starts a session about headline. The conversation opens with a title
// banner (the description, or the title when there is none) followed by the
// default suggestions.
func (s *Service) Open(ctx context.Context, headline models.Headline) (*models.ChatSession, error) {
	if headline.ID == "" && headline.URL != "" {
		headline.ID = models.ArticleID(headline.URL)
	}

	now := s.now()
	banner := strings.TrimSpace(headline.Description)
	if banner == "" {
		banner = headline.Title
	}

	msgs := []models.Message{{Role: models.RoleTitle, Text: banner, CreatedAt: now}}
	for _, q := range suggest.Defaults() {
		msgs = append(msgs, models.Message{Role: models.RoleSuggestion, Text: q, CreatedAt: now})
	}

	session := &models.ChatSession{
		ID:        uuid.NewString(),
		Headline:  headline,
		Messages:  msgs,
		CreatedAt: now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("opening chat: %w", err)
	}

	slog.Info("opened chat session", "session", session.ID, "headline", headline.ID)
	return session, nil
}

// Get returns a session with its full conversation.
func (s *Service) Get(ctx context.Context, id string) (*models.ChatSession, error) {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting chat %s: %w", id, err)
	}
	return session, nil
}

// Close discards a session and its conversation.
func (s *Service) Close(ctx context.Context, id string) error {
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("closing chat %s: %w", id, err)
	}
	slog.Info("closed chat session", "session", id)
	return nil
}

// Send adds the user's message to a session and answers it. The appended
// messages are returned in order: the user message, then the bot reply (or
// an error banner when the model could not answer), then the follow-up
// suggestions. If ctx is cancelled before the answer arrives nothing is
// recorded.
func (s *Service) Send(ctx context.Context, sessionID, text string) ([]models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("sending to chat %s: %w", sessionID, err)
	}
	topic := &session.Headline
	history := turns(session.Messages)

	userMsg := models.Message{Role: models.RoleUser, Text: text, CreatedAt: s.now()}

	reply, askErr := s.asker.Ask(ctx, text, history, topic)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var replyMsg models.Message
	if askErr != nil {
		slog.Error("answering chat message failed", "session", sessionID, "error", askErr)
		replyMsg = models.Message{Role: models.RoleError, Text: ai.FallbackReply, CreatedAt: s.now()}
	} else {
		replyMsg = models.Message{Role: models.RoleBot, Text: reply, CreatedAt: s.now()}
	}

	var questions []string
	if errors.Is(askErr, ai.ErrRateLimited) {
		// Retry budget already spent on this send.
		questions = suggest.Fallback()
	} else {
		recent := append(history, userMsg)
		if askErr == nil {
			recent = append(recent, replyMsg)
		}
		questions = s.suggester.Suggest(ctx, recent, topic)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	appended := []models.Message{userMsg, replyMsg}
	for _, q := range questions {
		appended = append(appended, models.Message{Role: models.RoleSuggestion, Text: q, CreatedAt: s.now()})
	}

	if err := s.store.AppendMessages(ctx, sessionID, appended); err != nil {
		return nil, fmt.Errorf("recording chat messages: %w", err)
	}

	slog.Info("answered chat message",
		"session", sessionID,
		"failed", askErr != nil,
		"suggestions", len(questions),
	)
	return appended, nil
}

// turns returns the user and bot messages of a conversation, dropping
// banners and suggestions.
func turns(msgs []models.Message) []models.Message {
	out := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == models.RoleUser || m.Role == models.RoleBot {
			out = append(out, m)
		}
	}
	return out
}
