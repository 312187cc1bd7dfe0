package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mkeren/finsight-backend/internal/api/dto"
)

// ListLinks returns confirmed links, narrowed with ?account_id=.
func (h *Handler) ListLinks(c *gin.Context) {
	var accountID *int64
	if raw := c.Query("account_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid account_id"))
			return
		}
		accountID = &id
	}

	links, err := h.svc.Store().ListLinks(accountID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, links)
}

// CreateLink links a transaction to an account manually.
func (h *Handler) CreateLink(c *gin.Context) {
	var req dto.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	link, err := h.svc.ManualLink(req.Identifier, req.Vendor, req.AccountID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, link)
}

// DeleteLink removes a transaction's link.
func (h *Handler) DeleteLink(c *gin.Context) {
	if err := h.svc.Unlink(c.Param("identifier"), c.Param("vendor")); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
