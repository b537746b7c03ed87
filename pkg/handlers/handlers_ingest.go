package handlers

import (
	"net/http"

	"github.com/arnavshah/labour-scheduler/pkg/labour"
	"github.com/gin-gonic/gin"
)

// IngestAnalytics stores a daily utilization snapshot for the key's user
func (h *Handler) IngestAnalytics(c *gin.Context) {
	var req labour.SnapshotInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	snap, err := h.Svc.RecordSnapshot(c.Request.Context(), userID(c), req)
	if err != nil {
		h.fail(c, err, "Failed to record snapshot")
		return
	}
	c.JSON(http.StatusOK, snap)
}
