package ai

import (
	"strings"
	"testing"
)

func TestChatSystemPrompt(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "uses headline title", title: "Storm closes ports", want: `"Storm closes ports"`},
		{name: "falls back to current news", title: "", want: `"current news"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChatSystemPrompt(tt.title)
			if !strings.Contains(got, tt.want) {
				t.Errorf("ChatSystemPrompt(%q) should contain %s, got %q", tt.title, tt.want, got)
			}
			if !strings.Contains(got, "NewsBuddy") {
				t.Error("system prompt should name the assistant")
			}
		})
	}
}

func TestSuggestionPrompt(t *testing.T) {
	got := SuggestionPrompt("Storm closes ports")

	if !strings.Contains(got, `"Storm closes ports"`) {
		t.Errorf("prompt should contain the title, got %q", got)
	}
	if !strings.Contains(got, `"-"`) {
		t.Error("prompt should ask for dash bullets")
	}
	if len([]rune(got)) > MaxPromptChars {
		t.Errorf("prompt is %d characters, longer than the %d sent to the model", len([]rune(got)), MaxPromptChars)
	}

	if fallback := SuggestionPrompt(""); !strings.Contains(fallback, `"the news"`) {
		t.Errorf("empty title should fall back to \"the news\", got %q", fallback)
	}
}
