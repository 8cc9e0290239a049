package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smsrates/pricefeed/internal/repository"
	"github.com/smsrates/pricefeed/internal/service"
)

type IngestHandler struct {
	ingest       *service.IngestService
	events       *repository.EventRepository
	defaultLimit int
}

func NewIngestHandler(ingest *service.IngestService, events *repository.EventRepository, defaultLimit int) *IngestHandler {
	return &IngestHandler{ingest: ingest, events: events, defaultLimit: defaultLimit}
}

// Run triggers one ingestion cycle. With dry_run=true the cycle parses and
// counts but writes nothing, whatever else happens.
func (h *IngestHandler) Run(c *gin.Context) {
	dryRun := c.Query("dry_run") == "true"
	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	stats, err := h.ingest.RunCycle(c.Request.Context(), limit, dryRun)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "stats": stats})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *IngestHandler) Events(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	events, err := h.events.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": events})
}
