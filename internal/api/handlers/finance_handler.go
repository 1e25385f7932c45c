// internal/api/handlers/finance_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EAS-COD-System/eas-tracker/internal/domain"
	"github.com/EAS-COD-System/eas-tracker/internal/service"
)

type FinanceHandler struct {
	finance *service.FinanceService
}

func NewFinanceHandler(finance *service.FinanceService) *FinanceHandler {
	return &FinanceHandler{finance: finance}
}

func (h *FinanceHandler) List(c *gin.Context) {
	entries, balance, err := h.finance.List(c.Request.Context(), c.Query("period"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "balance": balance})
}

func (h *FinanceHandler) Add(c *gin.Context) {
	var entry domain.FinanceEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.finance.Add(c.Request.Context(), &entry); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "entry": entry})
}

func (h *FinanceHandler) Delete(c *gin.Context) {
	if err := h.finance.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
