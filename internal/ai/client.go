package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hoanghai1803/newsbuddy/internal/models"
)

// Context window and generation parameters for chat answers.
const (
	MaxContextMessages = 4
	MaxContextChars    = 200
	MaxPromptChars     = 300

	temperature      = 0.7
	maxTokens        = 150
	topP             = 0.9
	frequencyPenalty = 0.5
	presencePenalty  = 0.3
)

// Literal replies for the two non-answer outcomes.
const (
	NoResponseText = "No response generated."
	FallbackReply  = "I'm having trouble responding right now. Please try again in a moment."
)

// ErrRateLimited is returned when the provider kept answering 429 until the
// retry budget ran out.
var ErrRateLimited = errors.New("rate limit exceeded")

// Client answers questions about a headline through a Provider, pacing calls
// with a Limiter and retrying rate-limited calls.
type Client struct {
	provider   Provider
	limiter    *Limiter
	maxRetries int
}

// NewClient creates a Client. maxRetries is the number of extra attempts made
// after a 429, so a call makes at most maxRetries+1 requests.
func NewClient(provider Provider, limiter *Limiter, maxRetries int) *Client {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{
		provider:   provider,
		limiter:    limiter,
		maxRetries: maxRetries,
	}
}

// Limiter returns the limiter pacing this client's calls.
func (c *Client) Limiter() *Limiter {
	return c.limiter
}

// Answer returns the model's reply to prompt. It never fails: every error is
// logged and replaced with FallbackReply.
func (c *Client) Answer(ctx context.Context, prompt string, recent []models.Message, topic *models.Headline) string {
	text, err := c.Ask(ctx, prompt, recent, topic)
	if err != nil {
		slog.Error("model API call failed", "error", err)
		return FallbackReply
	}
	return text
}

// Ask is Answer with the failure reported. Only HTTP 429 responses are
// retried; each retry first waits out the limiter's (now doubled) delay.
func (c *Client) Ask(ctx context.Context, prompt string, recent []models.Message, topic *models.Headline) (string, error) {
	req := BuildRequest(prompt, recent, topic)
	attempts := c.maxRetries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for rate limiter: %w", err)
		}

		text, err := c.provider.Complete(ctx, req)
		if err == nil {
			c.limiter.Succeeded()
			text = strings.TrimSpace(text)
			if text == "" {
				return NoResponseText, nil
			}
			return text, nil
		}

		if !IsRateLimited(err) {
			c.limiter.Failed()
			return "", fmt.Errorf("completing chat: %w", err)
		}

		consecutive := c.limiter.Throttled()
		lastErr = err
		slog.Warn("model API rate limited",
			"attempt", attempt,
			"max_attempts", attempts,
			"consecutive", consecutive,
			"next_delay", c.limiter.State().Delay.String(),
		)
	}

	return "", fmt.Errorf("%w after %d attempts: %w", ErrRateLimited, attempts, lastErr)
}

// BuildRequest assembles the completion request for prompt: the system prompt
// for topic, the last MaxContextMessages of recent (each cut to
// MaxContextChars), and the prompt cut to MaxPromptChars.
func BuildRequest(prompt string, recent []models.Message, topic *models.Headline) CompletionRequest {
	var title string
	if topic != nil {
		title = topic.Title
	}

	if len(recent) > MaxContextMessages {
		recent = recent[len(recent)-MaxContextMessages:]
	}

	messages := make([]ChatMessage, 0, len(recent)+1)
	for _, m := range recent {
		role := roleAssistant
		if m.Role == models.RoleUser {
			role = roleUser
		}
		messages = append(messages, ChatMessage{
			Role:    role,
			Content: truncateChars(m.Text, MaxContextChars),
		})
	}
	messages = append(messages, ChatMessage{
		Role:    roleUser,
		Content: truncateChars(prompt, MaxPromptChars),
	})

	return CompletionRequest{
		System:           ChatSystemPrompt(title),
		Messages:         messages,
		Temperature:      temperature,
		MaxTokens:        maxTokens,
		TopP:             topP,
		FrequencyPenalty: frequencyPenalty,
		PresencePenalty:  presencePenalty,
	}
}

// truncateChars returns the first n characters (runes) of s.
func truncateChars(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
