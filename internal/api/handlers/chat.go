package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hoanghai1803/newsbuddy/internal/chat"
	"github.com/hoanghai1803/newsbuddy/internal/models"
	"github.com/hoanghai1803/newsbuddy/internal/news"
	"github.com/hoanghai1803/newsbuddy/internal/storage"
)

type openChatRequest struct {
	ArticleID string           `json:"article_id"`
	Headline  *models.Headline `json:"headline"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sendMessageResponse struct {
	Messages []models.Message `json:"messages"`
}

// OpenChat handles POST /api/chat. The body names the article either by
// article_id, resolved against the current listing, or by carrying the
// headline itself, which skips the lookup.
func OpenChat(store *storage.Store, source news.Source, chats *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req openChatRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var headline models.Headline
		switch {
		case req.Headline != nil:
			headline = *req.Headline
			if strings.TrimSpace(headline.Title) == "" || strings.TrimSpace(headline.URL) == "" {
				writeError(w, http.StatusBadRequest, "headline title and url are required")
				return
			}
			headline.ID = models.ArticleID(headline.URL)

		case req.ArticleID != "":
			h, err := resolveHeadline(r.Context(), store, source, req.ArticleID)
			if err != nil {
				writeLookupError(w, err)
				return
			}
			headline = *h

		default:
			writeError(w, http.StatusBadRequest, "article_id or headline is required")
			return
		}

		session, err := chats.Open(r.Context(), headline)
		if err != nil {
			slog.Error("opening chat failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to open chat")
			return
		}

		writeJSON(w, http.StatusCreated, session)
	}
}

// GetChat handles GET /api/chat/{id}.
func GetChat(chats *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseSessionID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid chat id")
			return
		}

		session, err := chats.Get(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "chat not found")
			return
		}
		if err != nil {
			slog.Error("getting chat failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load chat")
			return
		}

		writeJSON(w, http.StatusOK, session)
	}
}

// SendMessage handles POST /api/chat/{id}/messages. It responds with the
// messages appended to the conversation: the user's message, the reply or an
// error banner, and new suggestions.
func SendMessage(chats *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseSessionID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid chat id")
			return
		}

		var req sendMessageRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		msgs, err := chats.Send(r.Context(), id, req.Text)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, sendMessageResponse{Messages: msgs})
		case errors.Is(err, chat.ErrEmptyMessage):
			writeError(w, http.StatusBadRequest, "text is required")
		case errors.Is(err, chat.ErrNotConfigured):
			writeError(w, http.StatusServiceUnavailable, "AI provider not configured")
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "chat not found")
		case r.Context().Err() != nil:
			slog.Debug("client went away before the reply", "id", id)
		default:
			slog.Error("sending chat message failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to send message")
		}
	}
}

// CloseChat handles DELETE /api/chat/{id}.
func CloseChat(chats *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseSessionID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid chat id")
			return
		}

		err = chats.Close(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "chat not found")
			return
		}
		if err != nil {
			slog.Error("closing chat failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to close chat")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
