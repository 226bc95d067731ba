// Package domain defines the canonical service interfaces shared across API
// layers (REST, websocket, client). Consumers should depend on these
// interfaces rather than re-declaring equivalent ones.
package domain

import (
	"context"

	"github.com/google/uuid"

	"github.com/openlibraryenvironment/dcb-clustering/internal/models"
)

// ClusterReader defines read operations over clusters and their member bibs.
type ClusterReader interface {
	GetCluster(ctx context.Context, id uuid.UUID) (*models.ClusterRecord, error)
	GetClusterBibs(ctx context.Context, clusterID uuid.UUID) ([]models.BibRecord, error)
	GetClusterForBib(ctx context.Context, bibID uuid.UUID) (*models.ClusterRecord, error)
}

// BibReader defines read operations over individual bib records.
type BibReader interface {
	GetBib(ctx context.Context, id uuid.UUID) (*models.BibRecord, error)
	GetBibIdentifiers(ctx context.Context, bibID uuid.UUID) ([]models.BibIdentifier, error)
}

// Ingestor accepts source records for asynchronous clustering.
type Ingestor interface {
	Enqueue(rec *models.IngestRecord) bool
	QueueDepth() int
}
