package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/catalog"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is a standard success response with optional data.
// Warning is set when the change was applied but the snapshot is stale.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondCatalogError maps a catalog error to its status code. notFound is
// the resource name used in the 404 message.
func respondCatalogError(c *gin.Context, err error, notFound string, context string) {
	var verr *catalog.ValidationError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		respondNotFound(c, notFound)
	case errors.As(err, &verr):
		respondBadRequest(c, verr.Error())
	default:
		respondInternalError(c, err, context)
	}
}

const (
	staleSnapshotWarning      = "change saved but snapshot export failed; run a snapshot resync"
	staleSnapshotRepairQueued = "change saved but snapshot export failed; a resync has been scheduled"
)

// respondMutation answers a catalog mutation. A stale snapshot still counts
// as success; any other error is mapped by respondCatalogError.
func respondMutation(c *gin.Context, err error, message string, data any, notFound string) {
	if err != nil && !catalog.IsAppliedWithStaleSnapshot(err) {
		respondCatalogError(c, err, notFound, message)
		return
	}

	resp := SuccessResponse{Message: message, Data: data}
	if err != nil {
		log.Printf("Warning (%s): %v", message, err)
		resp.Warning = staleSnapshotWarning
		if catalog.RepairScheduled(err) {
			resp.Warning = staleSnapshotRepairQueued
		}
	}
	c.JSON(http.StatusOK, resp)
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parseQueryID extracts and validates an unsigned integer ID from query parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseQueryID(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Query(paramName)
	if idStr == "" {
		respondBadRequest(c, paramName+" is required")
		return 0, false
	}
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parseLimit reads an optional positive "limit" query parameter.
func parseLimit(c *gin.Context, fallback int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		respondBadRequest(c, "invalid limit")
		return 0, false
	}
	return limit, true
}
