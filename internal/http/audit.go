package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/paasops/authgate/internal/database/audit"
	"github.com/paasops/authgate/internal/entities"
)

// AuditController serves the recorded authentication events to
// authenticated callers.
type AuditController struct {
	repo *audit.Repository
}

func NewAuditController(repo *audit.Repository) *AuditController {
	return &AuditController{repo: repo}
}

// List returns paginated auth events, most recent first. Accepts optional
// status, limit and offset query parameters.
func (ac *AuditController) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	status := entities.AuthEventStatus(c.Query("status"))

	events, total, err := ac.repo.GetEvents(status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load audit events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
