package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	Version = "1.0.0"

	healthCheckTimeout = 3 * time.Second
)

type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Version   string         `json:"version"`
	Services  healthServices `json:"services"`
}

type healthServices struct {
	Database string `json:"database"`
	AI       string `json:"ai"`
}

func (h *Handler) health(c *gin.Context) {
	database := "disconnected"
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		err := h.ping(ctx)
		cancel()
		if err == nil {
			database = "connected"
		} else {
			log.Warn().Err(err).Msg("database health check failed")
		}
	}

	ai := "unavailable"
	if h.aiReady != nil && h.aiReady() == nil {
		ai = "available"
	}

	status := "degraded"
	if database == "connected" && ai == "available" {
		status = "ok"
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:    status,
		Timestamp: h.now().UTC().Format(time.RFC3339Nano),
		Version:   Version,
		Services:  healthServices{Database: database, AI: ai},
	})
}
