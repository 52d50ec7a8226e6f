package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	store    Pinger
	snapshot SnapshotStatusReporter
	version  string
}

func NewHealthController(store Pinger, snapshot SnapshotStatusReporter, version string) *HealthController {
	return &HealthController{
		store:    store,
		snapshot: snapshot,
		version:  version,
	}
}

// Status reports store connectivity and snapshot freshness. Only an
// unreachable store makes the service unhealthy.
func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	if h.snapshot != nil {
		switch st := h.snapshot.Status(); {
		case st.LastRunID == "":
			checks["snapshot"] = "not exported yet"
		case st.InSync:
			checks["snapshot"] = "ok"
		default:
			checks["snapshot"] = "stale: " + st.LastError
		}
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
