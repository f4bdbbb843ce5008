// Package suggest turns free-text model output into short follow-up
// questions shown as tappable suggestions under a chat.
package suggest

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hoanghai1803/newsbuddy/internal/ai"
	"github.com/hoanghai1803/newsbuddy/internal/models"
)

// MaxSuggestions is the most suggestions Extract returns.
const MaxSuggestions = 4

// maxLen is the exclusive upper bound on a suggestion's length in characters.
const maxLen = 50

var ordinalPrefix = regexp.MustCompile(`^\d+\.\s`)

// Fallback returns the generic questions used when no suggestion survives
// extraction or the model call fails.
func Fallback() []string {
	return []string{"Key features?", "Release date?", "Price range?", "Technical specs?"}
}

// Defaults returns the suggestions offered when a chat is first opened.
func Defaults() []string {
	return []string{"Why did this happen?", "Who is affected?", "What are the implications?"}
}

// Extract parses raw model output into at most MaxSuggestions questions.
// Only lines containing "?" are kept, a leading "- " bullet or "<n>. "
// ordinal is stripped, and lines of 50 characters or more are dropped.
// When nothing survives it returns Fallback().
func Extract(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "?") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "- "):
			line = strings.TrimSpace(line[2:])
		case ordinalPrefix.MatchString(line):
			line = strings.TrimSpace(ordinalPrefix.ReplaceAllString(line, ""))
		}

		if n := utf8.RuneCountInString(line); n == 0 || n >= maxLen {
			continue
		}
		out = append(out, line)
		if len(out) == MaxSuggestions {
			break
		}
	}

	if len(out) == 0 {
		return Fallback()
	}
	return out
}

// Asker is the part of the answer client the generator needs.
type Asker interface {
	Ask(ctx context.Context, prompt string, recent []models.Message, topic *models.Headline) (string, error)
}

// Generator asks the model for follow-up questions about a headline.
type Generator struct {
	asker Asker
}

// NewGenerator creates a Generator backed by asker.
func NewGenerator(asker Asker) *Generator {
	return &Generator{asker: asker}
}

// Suggest returns follow-up questions for the conversation so far. It never
// fails: an upstream error yields Fallback().
func (g *Generator) Suggest(ctx context.Context, recent []models.Message, topic *models.Headline) []string {
	var title string
	if topic != nil {
		title = topic.Title
	}

	raw, err := g.asker.Ask(ctx, ai.SuggestionPrompt(title), recent, topic)
	if err != nil {
		slog.Warn("generating suggestions failed, using fallback", "error", err)
		return Fallback()
	}

	suggestions := Extract(raw)
	slog.Debug("generated suggestions", "count", len(suggestions))
	return suggestions
}
