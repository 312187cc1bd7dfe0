package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
