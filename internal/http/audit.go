package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const defaultAuditLimit = 50

type AuditController struct {
	reader AuditReader
}

func NewAuditController(reader AuditReader) *AuditController {
	return &AuditController{
		reader: reader,
	}
}

// GetEvents lists recent catalog events, or the history of one entity
// when entity_type and entity_id are given.
// GET /api/audit
func (ac *AuditController) GetEvents(c *gin.Context) {
	entityType := c.Query("entity_type")
	if entityType != "" {
		entityID, ok := parseQueryID(c, "entity_id")
		if !ok {
			return
		}
		events, err := ac.reader.EntityHistory(entityType, entityID)
		if err != nil {
			respondInternalError(c, err, "audit history")
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
		return
	}

	limit, ok := parseLimit(c, defaultAuditLimit)
	if !ok {
		return
	}
	events, err := ac.reader.RecentEvents(limit)
	if err != nil {
		respondInternalError(c, err, "audit events")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}
