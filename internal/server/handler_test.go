package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j0lvera/tripbot/internal/agent"
	"github.com/j0lvera/tripbot/internal/intent"
	"github.com/j0lvera/tripbot/internal/session"
)

// stubChat is a test double for agent.Service.
type stubChat struct {
	reply    agent.Reply
	err      error
	resetErr error
	panics   bool

	gotSession string
	gotMessage string
	resetIDs   []string
}

func (s *stubChat) Handle(_ context.Context, sessionID, message string) (agent.Reply, error) {
	if s.panics {
		panic("boom")
	}
	s.gotSession = sessionID
	s.gotMessage = message
	if s.err != nil {
		return agent.Reply{}, s.err
	}
	r := s.reply
	r.SessionID = sessionID
	return r, nil
}

func (s *stubChat) Reset(_ context.Context, sessionID string) error {
	s.resetIDs = append(s.resetIDs, sessionID)
	return s.resetErr
}

func buildTestRouter(chat ChatService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(NewHandler(chat, zerolog.Nop()), zerolog.Nop())
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestChat_Answered(t *testing.T) {
	chat := &stubChat{reply: agent.Reply{
		Text:     "Weather in Tokyo: Clear sky, 18.0°C, wind 7.5 km/h.",
		Needs:    session.PendingNone,
		Category: intent.CategoryWeather,
	}}
	r := buildTestRouter(chat)

	w := doRequest(r, http.MethodPost, "/api/chat", map[string]string{
		"session_id": "abc",
		"message":    "  weather in Tokyo ",
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "abc", body["session_id"])
	assert.Equal(t, "Weather in Tokyo: Clear sky, 18.0°C, wind 7.5 km/h.", body["reply"])
	assert.Equal(t, "none", body["needs"])
	assert.Equal(t, "weather", body["category"])
	assert.Equal(t, "weather in Tokyo", chat.gotMessage)
}

func TestChat_NeedsSlot(t *testing.T) {
	chat := &stubChat{reply: agent.Reply{
		Text:     "Which city would you like the weather for?",
		Needs:    session.PendingLocation,
		Category: intent.CategoryWeather,
	}}
	r := buildTestRouter(chat)

	w := doRequest(r, http.MethodPost, "/api/chat", map[string]string{"session_id": "abc", "message": "what's the weather"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "location", decode(t, w)["needs"])
}

func TestChat_NewSession(t *testing.T) {
	chat := &stubChat{}
	r := buildTestRouter(chat)

	w := doRequest(r, http.MethodPost, "/api/chat", map[string]string{"message": "hello"})

	require.Equal(t, http.StatusOK, w.Code)
	id := decode(t, w)["session_id"]
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, chat.gotSession)
}

func TestChat_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"invalid json", "{"},
		{"missing message", map[string]string{"session_id": "abc"}},
		{"blank message", map[string]string{"message": "   "}},
		{"long message", map[string]string{"message": strings.Repeat("a", maxMessageLen+1)}},
		{"long session id", map[string]string{"session_id": strings.Repeat("s", maxSessionIDLen+1), "message": "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &stubChat{}
			r := buildTestRouter(chat)

			w := doRequest(r, http.MethodPost, "/api/chat", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decode(t, w)["error"])
			assert.Empty(t, chat.gotMessage)
		})
	}
}

func TestChat_ServiceError(t *testing.T) {
	r := buildTestRouter(&stubChat{err: errors.New("store down")})

	w := doRequest(r, http.MethodPost, "/api/chat", map[string]string{"message": "hello"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apologyMessage, decode(t, w)["error"])
}

func TestChat_PanicIsRecovered(t *testing.T) {
	r := buildTestRouter(&stubChat{panics: true})

	w := doRequest(r, http.MethodPost, "/api/chat", map[string]string{"message": "hello"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apologyMessage, decode(t, w)["error"])
}

func TestReset(t *testing.T) {
	chat := &stubChat{}
	r := buildTestRouter(chat)

	w := doRequest(r, http.MethodDelete, "/api/chat/abc", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"abc"}, chat.resetIDs)

	r = buildTestRouter(&stubChat{resetErr: errors.New("store down")})
	w = doRequest(r, http.MethodDelete, "/api/chat/abc", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	r := buildTestRouter(&stubChat{})

	w := doRequest(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	w = doRequest(r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
