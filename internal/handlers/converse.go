package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smaro-ai/agent-backend/internal/logger"
	"github.com/smaro-ai/agent-backend/internal/services"
	"github.com/smaro-ai/agent-backend/internal/types"
)

// DegradedResponse is what the caller sees when the turn fails anywhere in
// the pipeline. The endpoint never exposes internal errors to end users.
const DegradedResponse = "Sorry, I'm having technical issues. I can help you by answering frequently asked question, and assist with talking to human agent"

// ConversePromptDTO is the converse request body. Upstream clients send
// ids as either strings or numbers, so the id fields stay loosely typed.
type ConversePromptDTO struct {
	MessageID      any    `json:"message_id"`
	ConversationID any    `json:"conversation_id"`
	ConsumerID     any    `json:"consumer_id"`
	Prompt         string `json:"prompt"`
}

// ConverseResponseDTO is always returned with HTTP 200; Success and Error
// carry the outcome instead of the status code.
type ConverseResponseDTO struct {
	Response  string             `json:"response"`
	Success   bool               `json:"success"`
	Error     string             `json:"error"`
	Type      []types.ToolAction `json:"type"`
	Functions []types.ToolDetail `json:"functions"`
}

type ConverseHandler struct {
	log         *logger.Logger
	converseSvc services.ConverseService
}

func NewConverseHandler(log *logger.Logger, converseSvc services.ConverseService) *ConverseHandler {
	return &ConverseHandler{
		log:         log.With("handler", "ConverseHandler"),
		converseSvc: converseSvc,
	}
}

// POST /taskproof/converse_faq
// Run one conversational turn. Failures still return 200 with a degraded
// body so chat widgets keep rendering.
func (h *ConverseHandler) ConverseFAQ(c *gin.Context) {
	started := time.Now()
	requestID := uuid.NewString()
	log := h.log.With("request_id", requestID)

	var dto ConversePromptDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		log.Warn("malformed converse request", "error", err)
		c.JSON(http.StatusOK, degraded("invalid request body"))
		return
	}

	conversationID := stringify(dto.ConversationID)
	log.Info("converse turn started",
		"conversation_id", conversationID,
		"message_id", stringify(dto.MessageID),
	)

	response, actions, details, err := h.converseSvc.HandleMessage(c.Request.Context(), conversationID, dto.Prompt)
	elapsed := time.Since(started)
	if err != nil {
		log.Error("converse turn failed", "error", err, "elapsed", elapsed.String())
		c.JSON(http.StatusOK, degraded(err.Error()))
		return
	}

	log.Info("converse turn completed", "elapsed", elapsed.String(), "tool_calls", len(details))
	c.JSON(http.StatusOK, ConverseResponseDTO{
		Response:  response,
		Success:   true,
		Error:     "",
		Type:      actions,
		Functions: details,
	})
}

func degraded(errMsg string) ConverseResponseDTO {
	return ConverseResponseDTO{
		Response:  DegradedResponse,
		Success:   false,
		Error:     errMsg,
		Type:      []types.ToolAction{},
		Functions: []types.ToolDetail{},
	}
}

// stringify renders loosely typed ids. JSON numbers arrive as float64;
// integral values must not pick up a decimal point.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
