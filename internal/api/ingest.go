package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/openlibraryenvironment/dcb-clustering/internal/domain"
	"github.com/openlibraryenvironment/dcb-clustering/internal/models"
)

// maxBatchSize caps the number of records in one batch ingest request.
const maxBatchSize = 1000

// IngestHandler serves record ingest endpoints.
type IngestHandler struct {
	ingest domain.Ingestor
	log    *logrus.Logger
}

// NewIngestHandler creates an IngestHandler with the given worker and logger.
func NewIngestHandler(ingest domain.Ingestor, log *logrus.Logger) *IngestHandler {
	return &IngestHandler{ingest: ingest, log: log}
}

// Ingest handles POST /api/v1/ingest. Records are validated, assigned their
// deterministic bib id, and queued for asynchronous clustering.
func (h *IngestHandler) Ingest(c *gin.Context) {
	var rec models.IngestRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := rec.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	if !h.ingest.Enqueue(&rec) {
		respondError(c, http.StatusServiceUnavailable, ErrCodeQueueFull, "ingest queue full, retry later")

		return
	}

	c.JSON(http.StatusAccepted, gin.H{"bib_id": rec.BibID(), "status": "queued"})
}

// IngestBatch handles POST /api/v1/ingest/batch. The whole batch is validated
// before any record is queued, so a bad record rejects the request without
// partial acceptance.
func (h *IngestHandler) IngestBatch(c *gin.Context) {
	var records []models.IngestRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if len(records) == 0 {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "batch must not be empty")

		return
	}
	if len(records) > maxBatchSize {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "batch exceeds maximum size")

		return
	}

	for i := range records {
		if err := records[i].Validate(); err != nil {
			respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

			return
		}
	}

	queued := 0
	for i := range records {
		if h.ingest.Enqueue(&records[i]) {
			queued++
		}
	}

	if queued < len(records) {
		h.log.WithFields(logrus.Fields{
			"queued":  queued,
			"dropped": len(records) - queued,
		}).Warn("batch partially queued, ingest queue full")
	}

	c.JSON(http.StatusAccepted, gin.H{"queued": queued, "dropped": len(records) - queued})
}
