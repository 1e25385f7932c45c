// internal/api/handlers/shipment_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EAS-COD-System/eas-tracker/internal/domain"
	"github.com/EAS-COD-System/eas-tracker/internal/service"
)

type ShipmentHandler struct {
	shipments *service.ShipmentService
	stock     *service.StockService
}

func NewShipmentHandler(shipments *service.ShipmentService, stock *service.StockService) *ShipmentHandler {
	return &ShipmentHandler{shipments: shipments, stock: stock}
}

func (h *ShipmentHandler) List(c *gin.Context) {
	shipments, err := h.shipments.List(c.Request.Context(), c.Query("product_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	type shipmentView struct {
		domain.Shipment
		Status string `json:"status"`
	}
	views := make([]shipmentView, 0, len(shipments))
	for _, sh := range shipments {
		views = append(views, shipmentView{Shipment: *sh, Status: sh.Status()})
	}
	c.JSON(http.StatusOK, gin.H{"shipments": views})
}

func (h *ShipmentHandler) Create(c *gin.Context) {
	var sh domain.Shipment
	if err := c.ShouldBindJSON(&sh); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.shipments.Create(c.Request.Context(), &sh); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "shipment": sh})
}

func (h *ShipmentHandler) MarkArrived(c *gin.Context) {
	var req struct {
		ArrivedAt string `json:"arrived_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.shipments.MarkArrived(c.Request.Context(), c.Param("id"), req.ArrivedAt); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *ShipmentHandler) FinalizeCost(c *gin.Context) {
	var req struct {
		ShippingCost float64 `json:"shipping_cost"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.shipments.FinalizeCost(c.Request.Context(), c.Param("id"), req.ShippingCost); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *ShipmentHandler) Delete(c *gin.Context) {
	if err := h.shipments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// StockLevels returns the derived per (product, country) quantities.
func (h *ShipmentHandler) StockLevels(c *gin.Context) {
	levels, err := h.stock.Levels(c.Request.Context(), c.Query("product_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stock": levels})
}
