package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mkeren/finsight-backend/internal/api/dto"
	"github.com/mkeren/finsight-backend/internal/domain/pattern"
)

// ListPatterns returns all patterns, or one account's when reached through
// /accounts/:id/patterns or with ?account_id=.
func (h *Handler) ListPatterns(c *gin.Context) {
	var accountID *int64
	raw := c.Param("id")
	if raw == "" {
		raw = c.Query("account_id")
	}
	if raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid account_id"))
			return
		}
		accountID = &id
	}

	patterns, err := h.svc.Store().ListPatterns(accountID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, patterns)
}

// CreatePattern adds a matching rule to the account in the path.
func (h *Handler) CreatePattern(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid account id"))
		return
	}

	var req dto.CreatePatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	kind := pattern.Kind(req.Kind)
	if req.Kind == "" {
		kind = pattern.KindSubstring
	}

	// The account must exist; the patterns table does not enforce it for
	// rows inserted before foreign keys were enabled.
	if _, err := h.svc.Store().GetAccount(accountID); err != nil {
		h.respondError(c, err)
		return
	}

	p, err := h.svc.Store().CreatePattern(accountID, req.Pattern, kind)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

// DeletePattern removes a rule by id.
func (h *Handler) DeletePattern(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid pattern id"))
		return
	}

	if err := h.svc.Store().DeletePattern(id); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
