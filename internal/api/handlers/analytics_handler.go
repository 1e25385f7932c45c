// internal/api/handlers/analytics_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/EAS-COD-System/eas-tracker/internal/domain"
	"github.com/EAS-COD-System/eas-tracker/internal/service"
)

type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	filter := domain.AnalyticsFilter{
		StartDate: c.Query("start"),
		EndDate:   c.Query("end"),
		Country:   c.Query("country"),
		ProductID: c.Query("product_id"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		GroupBy:   c.Query("groupBy"),
	}
	if raw := c.Query("extraPerPiece"); raw != "" {
		extra, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "extraPerPiece must be a number"})
			return
		}
		filter.ExtraPerPiece = extra
	}

	rows, err := h.analytics.GetAnalytics(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analytics": rows})
}
