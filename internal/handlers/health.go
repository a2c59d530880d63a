package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string `json:"status"`
	Identity    string `json:"identity"`
	Environment string `json:"environment"`
}

func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	identityStatus := "ok"
	if err := h.auth.Health(ctx); err != nil {
		identityStatus = "error"
		h.log.Error().Err(err).Msg("identity health check failed")
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:      "ok",
		Identity:    identityStatus,
		Environment: h.cfg.Environment,
	})
}
