package ai

// ProviderConfig holds the configuration needed to create an AI provider.
type ProviderConfig struct {
	Provider string // "openai" | "anthropic"
	APIKey   string
	Model    string
	BaseURL  string // empty uses the provider's public endpoint
}

// Chat roles understood by the providers.
const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

// ChatMessage is one turn of the conversation sent to a provider.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is a provider-neutral chat-completion request.
type CompletionRequest struct {
	System           string
	Messages         []ChatMessage
	Temperature      float64
	MaxTokens        int
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
}
