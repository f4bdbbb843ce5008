package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Compile-time interface check.
var _ Provider = (*OpenAIProvider)(nil)

const openaiRequestTimeout = 60 * time.Second

// OpenAIProvider implements Provider using the OpenAI Chat Completions API.
type OpenAIProvider struct {
	model  openai.ChatModel
	client *openai.Client
}

// NewOpenAIProvider creates an OpenAIProvider. The SDK's own retries are
// disabled: retry and backoff belong to the answer client's limiter.
func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(openaiRequestTimeout),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	cli := openai.NewClient(opts...)
	return &OpenAIProvider{
		model:  openai.ChatModel(model),
		client: &cli,
	}
}

// Complete sends req to the Chat Completions endpoint.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		if m.Role == roleUser {
			messages = append(messages, openai.UserMessage(m.Content))
		} else {
			messages = append(messages, openai.AssistantMessage(m.Content))
		}
	}

	slog.Debug("calling OpenAI API", "model", p.model, "messages", len(messages))

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:            p.model,
		Messages:         messages,
		Temperature:      openai.Float(req.Temperature),
		MaxTokens:        openai.Int(int64(req.MaxTokens)),
		TopP:             openai.Float(req.TopP),
		FrequencyPenalty: openai.Float(req.FrequencyPenalty),
		PresencePenalty:  openai.Float(req.PresencePenalty),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &StatusError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
		}
		return "", fmt.Errorf("sending request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
