package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/j0lvera/tripbot/internal/agent"
)

const (
	maxSessionIDLen = 128
	maxMessageLen   = 2000
	apologyMessage  = "Sorry, I encountered an error. Please try again."
)

// ChatService is what the handlers need from agent.Service.
type ChatService interface {
	Handle(ctx context.Context, sessionID, message string) (agent.Reply, error)
	Reset(ctx context.Context, sessionID string) error
}

type Handler struct {
	chat   ChatService
	logger zerolog.Logger
}

func NewHandler(chat ChatService, logger zerolog.Logger) *Handler {
	return &Handler{chat: chat, logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	Needs     string `json:"needs"`
	Category  string `json:"category"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// Chat handles POST /api/chat. A missing session id starts a new session.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(c, http.StatusBadRequest, "message is required")
		return
	}
	if len(req.Message) > maxMessageLen {
		writeError(c, http.StatusBadRequest, "message is too long")
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if len(sessionID) > maxSessionIDLen {
		writeError(c, http.StatusBadRequest, "session_id is too long")
		return
	}

	reply, err := h.chat.Handle(c.Request.Context(), sessionID, req.Message)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("unable to handle chat message")
		writeError(c, http.StatusInternalServerError, apologyMessage)
		return
	}

	writeJSON(c, http.StatusOK, chatResponse{
		SessionID: reply.SessionID,
		Reply:     reply.Text,
		Needs:     string(reply.Needs),
		Category:  string(reply.Category),
	})
}

// Reset handles DELETE /api/chat/:session_id.
func (h *Handler) Reset(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" || len(sessionID) > maxSessionIDLen {
		writeError(c, http.StatusBadRequest, "invalid session_id")
		return
	}

	if err := h.chat.Reset(c.Request.Context(), sessionID); err != nil {
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("unable to reset session")
		writeError(c, http.StatusInternalServerError, apologyMessage)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Health(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}
