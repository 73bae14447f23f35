package agent

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, content string, body *string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		b, _ := io.ReadAll(r.Body)
		if body != nil {
			*body = string(b)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "test-model",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": ` + content + `}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16}
		}`))
	}))
}

func TestOpenAIQuerier_Ask(t *testing.T) {
	var body string
	srv := chatServer(t, `"  Pack an umbrella. "`, &body)
	defer srv.Close()

	q, err := NewOpenAIQuerier("test-key", srv.URL, "test-model")
	require.NoError(t, err)

	answer, err := q.Ask(context.Background(), "what should I pack for london")
	require.NoError(t, err)
	assert.Equal(t, "Pack an umbrella.", answer.Text)
	assert.Contains(t, body, "what should I pack for london")
	assert.Contains(t, body, "friendly travel assistant")
	assert.Contains(t, body, "test-model")
}

func TestOpenAIQuerier_SystemPromptOption(t *testing.T) {
	var body string
	srv := chatServer(t, `"Bonjour."`, &body)
	defer srv.Close()

	q, err := NewOpenAIQuerier("test-key", srv.URL, "test-model",
		WithSystemPrompt("Answer only in French."),
		WithMaxTokens(50),
	)
	require.NoError(t, err)
	assert.Equal(t, 50, q.maxTokens)

	_, err = q.Ask(context.Background(), "how do I say hello")
	require.NoError(t, err)
	assert.Contains(t, body, "Answer only in French.")
	assert.NotContains(t, body, "friendly travel assistant")
}

func TestOpenAIQuerier_OptionsIgnoreZeroValues(t *testing.T) {
	q, err := NewOpenAIQuerier("test-key", "http://127.0.0.1:1", "test-model",
		WithSystemPrompt("  "),
		WithMaxTokens(0),
	)
	require.NoError(t, err)
	assert.Equal(t, DefaultSystemPrompt, q.systemPrompt)
	assert.Equal(t, defaultMaxTokens, q.maxTokens)
}

func TestOpenAIQuerier_EmptyAnswer(t *testing.T) {
	srv := chatServer(t, `"   "`, nil)
	defer srv.Close()

	q, err := NewOpenAIQuerier("test-key", srv.URL, "test-model")
	require.NoError(t, err)

	_, err = q.Ask(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrEmptyAnswer)
}

func TestOpenAIQuerier_EmptyQuestion(t *testing.T) {
	q, err := NewOpenAIQuerier("test-key", "http://127.0.0.1:1", "test-model")
	require.NoError(t, err)

	_, err = q.Ask(context.Background(), "   ")
	assert.Error(t, err)
}

func TestOpenAIQuerier_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	q, err := NewOpenAIQuerier("test-key", srv.URL, "test-model")
	require.NoError(t, err)

	_, err = q.Ask(context.Background(), "hi")
	assert.Error(t, err)
}

func TestTokenCount(t *testing.T) {
	assert.Equal(t, 7, tokenCount(7))
	assert.Equal(t, 7, tokenCount(float64(7)))
	assert.Equal(t, 0, tokenCount(nil))
	assert.Equal(t, 0, tokenCount("7"))
}
