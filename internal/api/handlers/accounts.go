package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mkeren/finsight-backend/internal/api/dto"
)

// CreateAccount creates an investment account.
func (h *Handler) CreateAccount(c *gin.Context) {
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	acct, err := h.svc.Store().CreateAccount(req.Name, req.Type)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, acct)
}

// ListAccounts returns accounts, active ones only when ?active=true.
func (h *Handler) ListAccounts(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	accounts, err := h.svc.Store().ListAccounts(activeOnly)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, accounts)
}

// GetAccount returns one account by id.
func (h *Handler) GetAccount(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid account id"))
		return
	}

	acct, err := h.svc.Store().GetAccount(id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, acct)
}
