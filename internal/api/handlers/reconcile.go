package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkeren/finsight-backend/internal/api/dto"
	"github.com/mkeren/finsight-backend/internal/application/service"
)

// FindCombinations runs the subset search for a repayment.
func (h *Handler) FindCombinations(c *gin.Context) {
	var req dto.CombinationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	processedDate, err := parseDateField(req.ProcessedDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid processed_date, expected YYYY-MM-DD"))
		return
	}
	from, err := parseDateField(req.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid from date, expected YYYY-MM-DD"))
		return
	}
	to, err := parseDateField(req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid to date, expected YYYY-MM-DD"))
		return
	}

	result, err := h.svc.FindMatchingCombinations(service.CombinationRequest{
		Identifier:     req.Identifier,
		Vendor:         req.Vendor,
		Tolerance:      req.Tolerance,
		MaxSize:        req.MaxSize,
		IncludeMatched: req.IncludeMatched,
		ProcessedDate:  processedDate,
		From:           from,
		To:             to,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// parseDateField parses an optional YYYY-MM-DD request body field.
func parseDateField(val string) (time.Time, error) {
	if val == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", val)
}

// ListAvailableExpenses returns a vendor's expense candidates inside the
// resolved date window.
func (h *Handler) ListAvailableExpenses(c *gin.Context) {
	repaymentDate, ok := parseDateQuery(c, "repayment_date")
	if !ok {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid repayment_date, expected YYYY-MM-DD"))
		return
	}
	processedDate, ok := parseDateQuery(c, "processed_date")
	if !ok {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid processed_date, expected YYYY-MM-DD"))
		return
	}
	from, ok := parseDateQuery(c, "from")
	if !ok {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid from date, expected YYYY-MM-DD"))
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid to date, expected YYYY-MM-DD"))
		return
	}

	expenses, err := h.svc.AvailableExpenses(service.ExpenseQuery{
		Vendor:        c.Query("vendor"),
		RepaymentDate: repaymentDate,
		ProcessedDate: processedDate,
		From:          from,
		To:            to,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, expenses)
}

// ListUnmatchedRepayments returns a vendor's unlinked positive transactions.
func (h *Handler) ListUnmatchedRepayments(c *gin.Context) {
	from, ok := parseDateQuery(c, "from")
	if !ok {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid from date, expected YYYY-MM-DD"))
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid to date, expected YYYY-MM-DD"))
		return
	}

	repayments, err := h.svc.UnmatchedRepayments(c.Query("vendor"), from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, repayments)
}

// MatchingStats reports linked vs unlinked totals for ?vendor=.
func (h *Handler) MatchingStats(c *gin.Context) {
	stats, err := h.svc.MatchingStats(c.Query("vendor"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// WeeklyMatchingStats buckets a vendor's link counts by week.
func (h *Handler) WeeklyMatchingStats(c *gin.Context) {
	from, ok := parseDateQuery(c, "from")
	if !ok {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid from date, expected YYYY-MM-DD"))
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid to date, expected YYYY-MM-DD"))
		return
	}

	weekly, err := h.svc.WeeklyMatchingStats(c.Query("vendor"), from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, weekly)
}
