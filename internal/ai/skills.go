package ai

import "fmt"

const chatSystemPromptTmpl = `You are NewsBuddy, a helpful news assistant. Provide concise 1-2 sentence answers about "%s". Give all the details you know when the user asks a question. Do not leave sentences incomplete. Do not repeat things already said, until specifically asked to.`

const suggestionPromptTmpl = `Suggest 3-4 very short follow-up questions (2-5 words each) about "%s". Return ONLY bullet points starting with "-", one question per line, each ending with "?". Focus on specific factual questions.`

// ChatSystemPrompt builds the system prompt for answering questions about
// the given headline title. An empty title falls back to "current news".
func ChatSystemPrompt(title string) string {
	if title == "" {
		title = "current news"
	}
	return fmt.Sprintf(chatSystemPromptTmpl, title)
}

// SuggestionPrompt builds the user prompt asking the model for follow-up
// questions about the given headline title.
func SuggestionPrompt(title string) string {
	if title == "" {
		title = "the news"
	}
	return fmt.Sprintf(suggestionPromptTmpl, title)
}
