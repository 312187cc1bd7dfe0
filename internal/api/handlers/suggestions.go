package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkeren/finsight-backend/internal/api/dto"
	"github.com/mkeren/finsight-backend/internal/application/service"
)

// Analyze scores one transaction and possibly writes a pending suggestion.
func (h *Handler) Analyze(c *gin.Context) {
	var req dto.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	outcome, err := h.svc.SuggestAccountsFor(service.SuggestRequest{
		Identifier:    req.Identifier,
		Vendor:        req.Vendor,
		ClearResolved: req.ClearResolved,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// AnalyzeBatch runs suggestion analysis over a vendor's unmatched repayments.
func (h *Handler) AnalyzeBatch(c *gin.Context) {
	var req dto.AnalyzeBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	summary, err := h.svc.AnalyzeUnmatched(req.Vendor, req.ClearResolved)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListSuggestions returns suggestions, filtered by ?status=.
func (h *Handler) ListSuggestions(c *gin.Context) {
	suggestions, err := h.svc.ListSuggestions(c.Query("status"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, suggestions)
}

// ResolveSuggestion applies an approve/reject/ignore action to a suggestion.
func (h *Handler) ResolveSuggestion(c *gin.Context) {
	var req dto.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	sg, err := h.svc.ApplyAction(c.Param("id"), req.Action)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sg)
}
