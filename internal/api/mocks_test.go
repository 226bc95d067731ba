package api_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/openlibraryenvironment/dcb-clustering/internal/models"
)

// mockCatalog implements domain.ClusterReader and domain.BibReader for testing.
type mockCatalog struct {
	getClusterFn        func(ctx context.Context, id uuid.UUID) (*models.ClusterRecord, error)
	getClusterBibsFn    func(ctx context.Context, clusterID uuid.UUID) ([]models.BibRecord, error)
	getClusterForBibFn  func(ctx context.Context, bibID uuid.UUID) (*models.ClusterRecord, error)
	getBibFn            func(ctx context.Context, id uuid.UUID) (*models.BibRecord, error)
	getBibIdentifiersFn func(ctx context.Context, bibID uuid.UUID) ([]models.BibIdentifier, error)
}

func (m *mockCatalog) GetCluster(ctx context.Context, id uuid.UUID) (*models.ClusterRecord, error) {
	return m.getClusterFn(ctx, id)
}

func (m *mockCatalog) GetClusterBibs(ctx context.Context, clusterID uuid.UUID) ([]models.BibRecord, error) {
	return m.getClusterBibsFn(ctx, clusterID)
}

func (m *mockCatalog) GetClusterForBib(ctx context.Context, bibID uuid.UUID) (*models.ClusterRecord, error) {
	return m.getClusterForBibFn(ctx, bibID)
}

func (m *mockCatalog) GetBib(ctx context.Context, id uuid.UUID) (*models.BibRecord, error) {
	return m.getBibFn(ctx, id)
}

func (m *mockCatalog) GetBibIdentifiers(ctx context.Context, bibID uuid.UUID) ([]models.BibIdentifier, error) {
	return m.getBibIdentifiersFn(ctx, bibID)
}

// mockIngestor implements domain.Ingestor for testing.
type mockIngestor struct {
	enqueued []models.IngestRecord
	full     bool
}

func (m *mockIngestor) Enqueue(rec *models.IngestRecord) bool {
	if m.full {
		return false
	}

	m.enqueued = append(m.enqueued, *rec)

	return true
}

func (m *mockIngestor) QueueDepth() int {
	return len(m.enqueued)
}
