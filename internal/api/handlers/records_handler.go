// internal/api/handlers/records_handler.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/EAS-COD-System/eas-tracker/internal/domain"
	"github.com/EAS-COD-System/eas-tracker/internal/service"
)

// RecordsHandler serves the daily bookkeeping records: ad spend,
// remittances and influencer spend.
type RecordsHandler struct {
	adSpend     *service.AdSpendService
	remittances *service.RemittanceService
	influencers *service.InfluencerService
}

func NewRecordsHandler(adSpend *service.AdSpendService, remittances *service.RemittanceService, influencers *service.InfluencerService) *RecordsHandler {
	return &RecordsHandler{adSpend: adSpend, remittances: remittances, influencers: influencers}
}

// parseFilter reads the shared query parameters for record listings.
func parseFilter(c *gin.Context) domain.AnalyticsFilter {
	return domain.AnalyticsFilter{
		StartDate: strings.TrimSpace(c.Query("start")),
		EndDate:   strings.TrimSpace(c.Query("end")),
		Country:   strings.TrimSpace(c.Query("country")),
		ProductID: strings.TrimSpace(c.Query("product_id")),
	}
}

func (h *RecordsHandler) UpsertAdSpend(c *gin.Context) {
	var spend domain.AdSpend
	if err := c.ShouldBindJSON(&spend); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.adSpend.Upsert(c.Request.Context(), &spend); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "record": spend})
}

func (h *RecordsHandler) ListAdSpend(c *gin.Context) {
	records, err := h.adSpend.List(c.Request.Context(), parseFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (h *RecordsHandler) DeleteAdSpend(c *gin.Context) {
	if err := h.adSpend.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *RecordsHandler) UpsertRemittance(c *gin.Context) {
	var r domain.Remittance
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.remittances.Upsert(c.Request.Context(), &r); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "record": r})
}

func (h *RecordsHandler) ListRemittances(c *gin.Context) {
	records, err := h.remittances.List(c.Request.Context(), parseFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (h *RecordsHandler) DeleteRemittance(c *gin.Context) {
	if err := h.remittances.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *RecordsHandler) AddInfluencerSpend(c *gin.Context) {
	var spend domain.InfluencerSpend
	if err := c.ShouldBindJSON(&spend); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.influencers.Add(c.Request.Context(), &spend); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "record": spend})
}

func (h *RecordsHandler) ListInfluencerSpend(c *gin.Context) {
	records, err := h.influencers.List(c.Request.Context(), parseFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (h *RecordsHandler) DeleteInfluencerSpend(c *gin.Context) {
	if err := h.influencers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
