// Package handlers implements the HTTP endpoints of the reconciliation API.
package handlers

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkeren/finsight-backend/internal/api/dto"
	"github.com/mkeren/finsight-backend/internal/application/service"
)

// Handler carries the dependencies shared by all endpoints.
type Handler struct {
	svc    *service.Service
	logger *slog.Logger
}

// New creates a handler set around the service.
func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// respondError maps a domain error to its HTTP shape and logs server-side
// failures.
func (h *Handler) respondError(c *gin.Context, err error) {
	status, apiErr := dto.FromError(err)
	if status >= 500 {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, apiErr)
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter. The ok result
// is false when the parameter was present but malformed.
func parseDateQuery(c *gin.Context, name string) (time.Time, bool) {
	val := c.Query(name)
	if val == "" {
		return time.Time{}, true
	}
	t, err := time.Parse("2006-01-02", val)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
