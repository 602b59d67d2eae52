// Package api serves the chat and agent endpoints over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tanpawarit/ai-support-router/agent/agents/orchestrator"
	statex "github.com/tanpawarit/ai-support-router/agent/state"
	"github.com/tanpawarit/ai-support-router/pkg/ratelimit"
)

// ChatService is the orchestrator surface the handlers need.
type ChatService interface {
	CreateConversation(ctx context.Context, userID string) (*statex.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]*statex.Conversation, error)
	GetConversation(ctx context.Context, id string) (*statex.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	SendMessage(ctx context.Context, conversationID, userID, text string) (*orchestrator.SendResult, error)
	StreamMessage(ctx context.Context, conversationID, userID, text string) (*orchestrator.MessageStream, error)
}

var _ ChatService = (*orchestrator.Orchestrator)(nil)

type Config struct {
	Env         string
	FrontendURL string
}

func (c Config) Development() bool {
	return c.Env == "development"
}

// Deps are the collaborators of the router. Ping reports database
// reachability and AIReady whether the reasoning provider is configured.
type Deps struct {
	Chat    ChatService
	Limiter ratelimit.Limiter
	Ping    func(ctx context.Context) error
	AIReady func() error
	Now     func() time.Time
}

type Handler struct {
	chat    ChatService
	ping    func(ctx context.Context) error
	aiReady func() error
	now     func() time.Time
}

type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func success(data any) envelope {
	return envelope{Success: true, Data: data}
}

func NewRouter(cfg Config, deps Deps) (*gin.Engine, error) {
	if deps.Chat == nil {
		return nil, errors.New("chat service is required")
	}
	if deps.Limiter == nil {
		return nil, errors.New("rate limiter is required")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	h := &Handler{
		chat:    deps.Chat,
		ping:    deps.Ping,
		aiReady: deps.AIReady,
		now:     now,
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		RequestLogger(),
		CORS([]string{"http://localhost:5173", "http://localhost:3000", cfg.FrontendURL}),
		ErrorHandler(cfg.Development()),
	)

	limit := RateLimit(deps.Limiter, now)

	api := r.Group("/api")
	chat := api.Group("/chat")
	chat.POST("/conversations", h.createConversation)
	chat.GET("/conversations", h.listConversations)
	chat.GET("/conversations/:id", h.getConversation)
	chat.DELETE("/conversations/:id", h.deleteConversation)
	chat.POST("/messages", limit, h.sendMessage)
	chat.POST("/messages/stream", limit, h.streamMessage)

	agents := api.Group("/agents")
	agents.GET("", h.listAgents)
	agents.GET("/:type/capabilities", h.agentCapabilities)

	api.GET("/health", h.health)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{
			Success: false,
			Error:   fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.Path),
		})
	})

	return r, nil
}
