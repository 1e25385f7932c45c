// internal/api/handlers/snapshot_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EAS-COD-System/eas-tracker/internal/domain"
	"github.com/EAS-COD-System/eas-tracker/internal/service"
)

type SnapshotHandler struct {
	snapshots *service.SnapshotService
}

func NewSnapshotHandler(snapshots *service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{snapshots: snapshots}
}

func (h *SnapshotHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"snapshots": h.snapshots.List(c.Request.Context())})
}

type createSnapshotRequest struct {
	Label string `json:"label"`
}

func (h *SnapshotHandler) Create(c *gin.Context) {
	var req createSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	snap, err := h.snapshots.Create(c.Request.Context(), req.Label)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "snapshotId": snap.ID})
}

type restoreSnapshotRequest struct {
	SnapshotID string `json:"snapshotId"`
	Window     string `json:"window"`
}

// Restore accepts either an explicit snapshot id or a trailing window such as
// "1h", in which case the newest snapshot inside the window is used.
func (h *SnapshotHandler) Restore(c *gin.Context) {
	var req restoreSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var (
		snap *domain.Snapshot
		err  error
	)
	if req.Window != "" && req.SnapshotID == "" {
		snap, err = h.snapshots.RestoreWithin(c.Request.Context(), req.Window)
	} else {
		snap, err = h.snapshots.Restore(c.Request.Context(), req.SnapshotID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "restoredFrom": snap.ID})
}

func (h *SnapshotHandler) Delete(c *gin.Context) {
	if err := h.snapshots.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *SnapshotHandler) Prune(c *gin.Context) {
	removed, err := h.snapshots.Prune(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "removed": removed})
}
