package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/openlibraryenvironment/dcb-clustering/internal/domain"
	"github.com/openlibraryenvironment/dcb-clustering/internal/models"
)

// ClusterHandler serves cluster and bib read endpoints.
type ClusterHandler struct {
	clusters domain.ClusterReader
	bibs     domain.BibReader
	log      *logrus.Logger
}

// NewClusterHandler creates a ClusterHandler with the given services and logger.
func NewClusterHandler(clusters domain.ClusterReader, bibs domain.BibReader, log *logrus.Logger) *ClusterHandler {
	return &ClusterHandler{clusters: clusters, bibs: bibs, log: log}
}

// parseUUIDParam extracts and validates a UUID path parameter.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, name+" must be a valid uuid")

		return uuid.Nil, false
	}

	return id, true
}

// Get handles GET /api/v1/clusters/:id.
func (h *ClusterHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	cluster, err := h.clusters.GetCluster(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrClusterNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "cluster not found")

			return
		}

		h.log.WithError(err).Error("getting cluster")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, cluster)
}

// Bibs handles GET /api/v1/clusters/:id/bibs.
func (h *ClusterHandler) Bibs(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	bibs, err := h.clusters.GetClusterBibs(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrClusterNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "cluster not found")

			return
		}

		h.log.WithError(err).Error("listing cluster bibs")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, gin.H{"cluster_id": id, "bibs": bibs})
}

// ClusterForBib handles GET /api/v1/bibs/:id/cluster.
func (h *ClusterHandler) ClusterForBib(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	cluster, err := h.clusters.GetClusterForBib(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrClusterNotFound) || errors.Is(err, models.ErrBibNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "cluster not found for bib")

			return
		}

		h.log.WithError(err).Error("getting cluster for bib")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, cluster)
}

// GetBib handles GET /api/v1/bibs/:id.
func (h *ClusterHandler) GetBib(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	bib, err := h.bibs.GetBib(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrBibNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "bib not found")

			return
		}

		h.log.WithError(err).Error("getting bib")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, bib)
}

// Identifiers handles GET /api/v1/bibs/:id/identifiers.
func (h *ClusterHandler) Identifiers(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	identifiers, err := h.bibs.GetBibIdentifiers(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrBibNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "bib not found")

			return
		}

		h.log.WithError(err).Error("listing bib identifiers")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, gin.H{"bib_id": id, "identifiers": identifiers})
}
