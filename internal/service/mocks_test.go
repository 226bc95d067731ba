package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/openlibraryenvironment/dcb-clustering/internal/models"
)

// mockClusterDataStore records calls and returns configured responses.
type mockClusterDataStore struct {
	mu    sync.Mutex
	calls []string

	findClusterForBib    func(ctx context.Context, bibID uuid.UUID) (*models.ClusterRecord, error)
	matchClusters        func(ctx context.Context, derivedType models.DerivedType, values []uuid.UUID, excludeBib uuid.UUID) ([]models.ClusterRecord, error)
	applyClusterDecision func(ctx context.Context, d models.ClusterDecision) (*models.BibRecord, *models.ClusterRecord, error)
}

func (m *mockClusterDataStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockClusterDataStore) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (m *mockClusterDataStore) FindClusterForBib(ctx context.Context, bibID uuid.UUID) (*models.ClusterRecord, error) {
	m.record("FindClusterForBib")
	if m.findClusterForBib == nil {
		return nil, models.ErrClusterNotFound
	}
	return m.findClusterForBib(ctx, bibID)
}

func (m *mockClusterDataStore) MatchClusters(ctx context.Context, derivedType models.DerivedType, values []uuid.UUID, excludeBib uuid.UUID) ([]models.ClusterRecord, error) {
	m.record("MatchClusters")
	if m.matchClusters == nil {
		return nil, nil
	}
	return m.matchClusters(ctx, derivedType, values, excludeBib)
}

func (m *mockClusterDataStore) ApplyClusterDecision(ctx context.Context, d models.ClusterDecision) (*models.BibRecord, *models.ClusterRecord, error) {
	m.record("ApplyClusterDecision")
	return m.applyClusterDecision(ctx, d)
}

// mockClusterer stubs the clustering pass for ingest tests.
type mockClusterer struct {
	mu    sync.Mutex
	calls int

	clusterBib func(ctx context.Context, bib *models.BibRecord, identifiers []models.BibIdentifier) (*models.BibRecord, error)
}

func (m *mockClusterer) ClusterBib(ctx context.Context, bib *models.BibRecord, identifiers []models.BibIdentifier) (*models.BibRecord, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.clusterBib == nil {
		return bib, nil
	}
	return m.clusterBib(ctx, bib, identifiers)
}

func (m *mockClusterer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockRetireStore stubs suppression/deletion propagation.
type mockRetireStore struct {
	mu    sync.Mutex
	calls int

	retireBib func(ctx context.Context, bibID uuid.UUID, suppressed, deleted bool) (models.RetireOutcome, error)
}

func (m *mockRetireStore) RetireBib(ctx context.Context, bibID uuid.UUID, suppressed, deleted bool) (models.RetireOutcome, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.retireBib == nil {
		return models.RetireOutcomeNone, nil
	}
	return m.retireBib(ctx, bibID, suppressed, deleted)
}

func (m *mockRetireStore) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
