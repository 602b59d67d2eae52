package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
	statex "github.com/tanpawarit/ai-support-router/agent/state"
)

type sendMessageRequest struct {
	ConversationID string `json:"conversationId" binding:"required,uuid"`
	UserID         string `json:"userId" binding:"required"`
	Message        string `json:"message" binding:"required,min=1,max=2000"`
}

type sendMessageResponse struct {
	UserMessage   *statex.Message     `json:"userMessage"`
	AgentMessage  *statex.Message     `json:"agentMessage"`
	AgentType     contractx.AgentType `json:"agentType"`
	RoutingReason string              `json:"routingReason"`
}

// Event payloads of the message stream.
type (
	textEvent struct {
		Type    string `json:"type"`
		Content string `json:"content"`
	}
	toolCallEvent struct {
		Type string `json:"type"`
		Tool string `json:"tool"`
	}
	doneEvent struct {
		Type      string              `json:"type"`
		MessageID string              `json:"messageId"`
		AgentType contractx.AgentType `json:"agentType"`
	}
	errorEvent struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
)

func bindSendMessage(c *gin.Context) (sendMessageRequest, bool) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return req, false
	}
	if strings.TrimSpace(req.UserID) == "" {
		_ = c.Error(validationError("User ID required"))
		return req, false
	}
	if strings.TrimSpace(req.Message) == "" {
		_ = c.Error(validationError("Message cannot be empty"))
		return req, false
	}
	return req, true
}

func (h *Handler) sendMessage(c *gin.Context) {
	req, ok := bindSendMessage(c)
	if !ok {
		return
	}

	out, err := h.chat.SendMessage(c.Request.Context(), req.ConversationID, req.UserID, req.Message)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, success(sendMessageResponse{
		UserMessage:   out.UserMessage,
		AgentMessage:  out.AgentMessage,
		AgentType:     out.AgentType,
		RoutingReason: out.RoutingReason,
	}))
}

// streamMessage relays the reply as server-sent events. Failures before the
// first byte are rendered as JSON errors; later ones end the stream with an
// error event.
func (h *Handler) streamMessage(c *gin.Context) {
	req, ok := bindSendMessage(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	stream, err := h.chat.StreamMessage(ctx, req.ConversationID, req.UserID, req.Message)
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer stream.Close()

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	header.Set("X-Agent-Type", string(stream.AgentType))
	header.Set("X-Routing-Reason", headerSafe(stream.RoutingReason))
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	logger := log.With().
		Str("conversation_id", req.ConversationID).
		Str("agent_type", string(stream.AgentType)).
		Logger()

	fail := func(err error) {
		logger.Error().Err(err).Msg("stream interrupted")
		if werr := writeEvent(c.Writer, errorEvent{Type: "error", Message: "Stream interrupted"}); werr != nil {
			logger.Debug().Err(werr).Msg("write error event")
		}
	}

	for {
		ev, err := stream.Events.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fail(err)
			return
		}

		var payload any
		switch ev.Type {
		case contractx.AgentEventText:
			payload = textEvent{Type: "text", Content: ev.Content}
		case contractx.AgentEventToolCall:
			payload = toolCallEvent{Type: "tool_call", Tool: ev.Tool}
		default:
			continue
		}
		if err := writeEvent(c.Writer, payload); err != nil {
			// The client is gone; the reply is left unsaved.
			logger.Warn().Err(err).Msg("client disconnected mid-stream")
			return
		}
	}

	if err := ctx.Err(); err != nil {
		logger.Warn().Err(err).Msg("request cancelled before finalize")
		return
	}

	msg, err := stream.Finalize(ctx)
	if err != nil {
		fail(err)
		return
	}
	if err := writeEvent(c.Writer, doneEvent{Type: "done", MessageID: msg.ID, AgentType: stream.AgentType}); err != nil {
		logger.Warn().Err(err).Msg("write done event")
	}
}

func writeEvent(w gin.ResponseWriter, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
		return err
	}
	w.Flush()
	return nil
}

func headerSafe(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
