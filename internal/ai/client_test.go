package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoanghai1803/newsbuddy/internal/models"
)

func conversation(n int, textLen int) []models.Message {
	msgs := make([]models.Message, n)
	for i := range n {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleBot
		}
		msgs[i] = models.Message{
			Role: role,
			Text: strings.Repeat(string(rune('a'+i)), textLen),
		}
	}
	return msgs
}

func TestBuildRequest_ContextWindow(t *testing.T) {
	recent := conversation(7, 250)
	prompt := strings.Repeat("p", 400)

	req := BuildRequest(prompt, recent, &models.Headline{Title: "Rates held steady"})

	require.Len(t, req.Messages, MaxContextMessages+1)
	for i, m := range req.Messages[:MaxContextMessages] {
		src := recent[len(recent)-MaxContextMessages+i]
		assert.Len(t, m.Content, MaxContextChars)
		assert.Equal(t, src.Text[:MaxContextChars], m.Content)
	}

	last := req.Messages[len(req.Messages)-1]
	assert.Equal(t, roleUser, last.Role)
	assert.Len(t, last.Content, MaxPromptChars)
}

func TestBuildRequest_ShortInputsUntouched(t *testing.T) {
	recent := []models.Message{
		{Role: models.RoleUser, Text: "What happened?"},
		{Role: models.RoleBot, Text: "The central bank held rates."},
	}

	req := BuildRequest("Why?", recent, nil)

	require.Len(t, req.Messages, 3)
	assert.Equal(t, ChatMessage{Role: roleUser, Content: "What happened?"}, req.Messages[0])
	assert.Equal(t, ChatMessage{Role: roleAssistant, Content: "The central bank held rates."}, req.Messages[1])
	assert.Equal(t, ChatMessage{Role: roleUser, Content: "Why?"}, req.Messages[2])
	assert.Contains(t, req.System, "current news")
}

func TestBuildRequest_RoleMapping(t *testing.T) {
	recent := []models.Message{
		{Role: models.RoleTitle, Text: "banner"},
		{Role: models.RoleSuggestion, Text: "Who?"},
		{Role: models.RoleError, Text: "oops"},
		{Role: models.RoleUser, Text: "hi"},
	}

	req := BuildRequest("q", recent, nil)

	roles := make([]string, 0, len(req.Messages))
	for _, m := range req.Messages {
		roles = append(roles, m.Role)
	}
	assert.Equal(t, []string{roleAssistant, roleAssistant, roleAssistant, roleUser, roleUser}, roles)
}

func TestBuildRequest_Parameters(t *testing.T) {
	req := BuildRequest("q", nil, &models.Headline{Title: "Chip exports curbed"})

	assert.Contains(t, req.System, `"Chip exports curbed"`)
	assert.Equal(t, 0.7, req.Temperature)
	assert.Equal(t, 150, req.MaxTokens)
	assert.Equal(t, 0.9, req.TopP)
	assert.Equal(t, 0.5, req.FrequencyPenalty)
	assert.Equal(t, 0.3, req.PresencePenalty)
}

func TestTruncateChars_Runes(t *testing.T) {
	s := strings.Repeat("é", 10)
	assert.Equal(t, strings.Repeat("é", 4), truncateChars(s, 4))
	assert.Equal(t, s, truncateChars(s, 10))
	assert.Equal(t, "", truncateChars("", 3))
}

func TestClientAsk_Success(t *testing.T) {
	p := &scriptedProvider{replies: []providerReply{{text: "  Rates stay at 5%.\n"}}}
	l, _ := newTestLimiter(DefaultBaseDelay, DefaultMaxDelay)
	c := NewClient(p, l, DefaultMaxRetries)

	got, err := c.Ask(context.Background(), "What now?", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "Rates stay at 5%.", got)
	assert.Equal(t, 1, p.Calls())
	assert.Equal(t, DefaultBaseDelay, l.State().Delay)
}

func TestClientAsk_EmptyContent(t *testing.T) {
	p := &scriptedProvider{replies: []providerReply{{text: "   "}}}
	l, _ := newTestLimiter(DefaultBaseDelay, DefaultMaxDelay)
	c := NewClient(p, l, DefaultMaxRetries)

	got, err := c.Ask(context.Background(), "q", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, NoResponseText, got)
}

func TestClientAsk_RetriesAfter429ThenResets(t *testing.T) {
	p := &scriptedProvider{replies: []providerReply{
		{err: tooManyRequests()},
		{text: "Answer."},
	}}
	l, clk := newTestLimiter(DefaultBaseDelay, DefaultMaxDelay)
	c := NewClient(p, l, DefaultMaxRetries)

	got, err := c.Ask(context.Background(), "q", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "Answer.", got)
	assert.Equal(t, 2, p.Calls())
	// The retry waited the doubled delay: min(1500*2, 10000).
	assert.Equal(t, []time.Duration{3 * time.Second}, clk.Slept())

	st := l.State()
	assert.Equal(t, DefaultBaseDelay, st.Delay)
	assert.Equal(t, 0, st.Retries)
}

func TestClientAsk_DelayAfterOneRetry(t *testing.T) {
	var observed time.Duration
	l, _ := newTestLimiter(DefaultBaseDelay, DefaultMaxDelay)
	p := &observingProvider{
		replies: []providerReply{{err: tooManyRequests()}, {text: "ok"}},
		onCall: func(call int) {
			if call == 2 {
				observed = l.State().Delay
			}
		},
	}
	c := NewClient(p, l, DefaultMaxRetries)

	_, err := c.Ask(context.Background(), "q", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, min(DefaultBaseDelay*2, DefaultMaxDelay), observed)
}

func TestClientAsk_ExhaustsRetries(t *testing.T) {
	p := &scriptedProvider{replies: []providerReply{{err: tooManyRequests()}}}
	l, clk := newTestLimiter(DefaultBaseDelay, DefaultMaxDelay)
	c := NewClient(p, l, DefaultMaxRetries)

	_, err := c.Ask(context.Background(), "q", nil, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.True(t, IsRateLimited(err))
	assert.Equal(t, DefaultMaxRetries+1, p.Calls())
	assert.Equal(t, []time.Duration{3 * time.Second, 6 * time.Second, 10 * time.Second}, clk.Slept())

	st := l.State()
	assert.Equal(t, DefaultMaxDelay, st.Delay)
	assert.Equal(t, DefaultMaxRetries+1, st.Retries)
}

func TestClientAsk_ZeroRetries(t *testing.T) {
	p := &scriptedProvider{replies: []providerReply{{err: tooManyRequests()}}}
	l, _ := newTestLimiter(DefaultBaseDelay, DefaultMaxDelay)
	c := NewClient(p, l, 0)

	_, err := c.Ask(context.Background(), "q", nil, nil)

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 1, p.Calls())
}

func TestClientAsk_OtherStatusNotRetried(t *testing.T) {
	p := &scriptedProvider{replies: []providerReply{{err: &StatusError{StatusCode: 500}}}}
	l, clk := newTestLimiter(DefaultBaseDelay, DefaultMaxDelay)
	c := NewClient(p, l, DefaultMaxRetries)

	_, err := c.Ask(context.Background(), "q", nil, nil)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRateLimited)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 500, se.StatusCode)
	assert.Equal(t, 1, p.Calls())
	assert.Empty(t, clk.Slept())
	assert.Equal(t, DefaultBaseDelay, l.State().Delay)
}

func TestClientAsk_CancelledWhileWaiting(t *testing.T) {
	p := &scriptedProvider{replies: []providerReply{{text: "ok"}}}
	l, _ := newTestLimiter(DefaultBaseDelay, DefaultMaxDelay)
	l.Succeeded()
	c := NewClient(p, l, DefaultMaxRetries)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Ask(ctx, "q", nil, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, p.Calls())
}

func TestClientAnswer_NeverFails(t *testing.T) {
	tests := []struct {
		name    string
		replies []providerReply
		want    string
	}{
		{
			name:    "server error",
			replies: []providerReply{{err: &StatusError{StatusCode: 503}}},
			want:    FallbackReply,
		},
		{
			name:    "transport error",
			replies: []providerReply{{err: errors.New("connection refused")}},
			want:    FallbackReply,
		},
		{
			name:    "rate limited",
			replies: []providerReply{{err: tooManyRequests()}},
			want:    FallbackReply,
		},
		{
			name:    "success",
			replies: []providerReply{{text: "Fine."}},
			want:    "Fine.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLimiter(DefaultBaseDelay, DefaultMaxDelay)
			c := NewClient(&scriptedProvider{replies: tt.replies}, l, DefaultMaxRetries)

			got := c.Answer(context.Background(), "q", nil, nil)
			assert.Equal(t, tt.want, got)
		})
	}
}

// observingProvider calls onCall with the 1-based call number before
// replying from its script.
type observingProvider struct {
	replies []providerReply
	onCall  func(call int)
	calls   int
}

func (p *observingProvider) Complete(_ context.Context, _ CompletionRequest) (string, error) {
	p.calls++
	if p.onCall != nil {
		p.onCall(p.calls)
	}
	r := p.replies[min(p.calls, len(p.replies))-1]
	return r.text, r.err
}
