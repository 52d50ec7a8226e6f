package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SnapshotController struct {
	resyncer SnapshotResyncer
	status   SnapshotStatusReporter
}

func NewSnapshotController(resyncer SnapshotResyncer, status SnapshotStatusReporter) *SnapshotController {
	return &SnapshotController{
		resyncer: resyncer,
		status:   status,
	}
}

// Resync rewrites the snapshot from the current store state.
// POST /api/snapshot/resync
func (controller *SnapshotController) Resync(c *gin.Context) {
	if err := controller.resyncer.ResyncSnapshot(c.Request.Context()); err != nil {
		respondInternalError(c, err, "resync snapshot")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Snapshot resynced successfully",
		Data:    controller.status.Status(),
	})
}

// Status reports the last snapshot run.
// GET /api/snapshot/status
func (controller *SnapshotController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, controller.status.Status())
}
