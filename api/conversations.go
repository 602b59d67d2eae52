package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	statex "github.com/tanpawarit/ai-support-router/agent/state"
)

type createConversationRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type conversationDetail struct {
	Conversation *statex.Conversation `json:"conversation"`
	Messages     []*statex.Message    `json:"messages"`
}

func (h *Handler) createConversation(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	conv, err := h.chat.CreateConversation(c.Request.Context(), req.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, success(conv))
}

func (h *Handler) listConversations(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("userId"))
	if userID == "" {
		_ = c.Error(validationError("userId query parameter is required"))
		return
	}

	convs, err := h.chat.ListConversations(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, success(convs))
}

func (h *Handler) getConversation(c *gin.Context) {
	conv, err := h.chat.GetConversation(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	messages := conv.Messages
	if messages == nil {
		messages = []*statex.Message{}
	}
	c.JSON(http.StatusOK, success(conversationDetail{Conversation: conv, Messages: messages}))
}

func (h *Handler) deleteConversation(c *gin.Context) {
	if err := h.chat.DeleteConversation(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Conversation deleted"})
}
