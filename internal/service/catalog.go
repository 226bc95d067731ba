package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/openlibraryenvironment/dcb-clustering/internal/models"
)

// ClusterReadStore is the cluster read surface of the persistence layer
// used by the catalog service.
type ClusterReadStore interface {
	FindClusterByID(ctx context.Context, id uuid.UUID) (*models.ClusterRecord, error)
	FindClusterForBib(ctx context.Context, bibID uuid.UUID) (*models.ClusterRecord, error)
}

// BibReadStore is the bib read surface of the persistence layer used by the
// catalog service.
type BibReadStore interface {
	GetBib(ctx context.Context, id uuid.UUID) (*models.BibRecord, error)
	FindAllByContributesTo(ctx context.Context, clusterID uuid.UUID) ([]models.BibRecord, error)
	GetIdentifiers(ctx context.Context, bibID uuid.UUID) ([]models.BibIdentifier, error)
}

// CatalogService exposes read access to clusters and bibs.
type CatalogService struct {
	clusters ClusterReadStore
	bibs     BibReadStore
	log      *logrus.Logger
}

func NewCatalogService(clusters ClusterReadStore, bibs BibReadStore, log *logrus.Logger) *CatalogService {
	return &CatalogService{clusters: clusters, bibs: bibs, log: log}
}

// GetCluster returns the live cluster with the given id.
func (s *CatalogService) GetCluster(ctx context.Context, id uuid.UUID) (*models.ClusterRecord, error) {
	return s.clusters.FindClusterByID(ctx, id)
}

// GetClusterBibs returns the member bibs of a cluster, best metadata first.
func (s *CatalogService) GetClusterBibs(ctx context.Context, clusterID uuid.UUID) ([]models.BibRecord, error) {
	if _, err := s.clusters.FindClusterByID(ctx, clusterID); err != nil {
		return nil, err
	}
	return s.bibs.FindAllByContributesTo(ctx, clusterID)
}

// GetClusterForBib returns the cluster the given bib contributes to.
func (s *CatalogService) GetClusterForBib(ctx context.Context, bibID uuid.UUID) (*models.ClusterRecord, error) {
	return s.clusters.FindClusterForBib(ctx, bibID)
}

// GetBib returns a single bib record.
func (s *CatalogService) GetBib(ctx context.Context, id uuid.UUID) (*models.BibRecord, error) {
	return s.bibs.GetBib(ctx, id)
}

// GetBibIdentifiers returns the identifiers attached to a bib.
func (s *CatalogService) GetBibIdentifiers(ctx context.Context, bibID uuid.UUID) ([]models.BibIdentifier, error) {
	if _, err := s.bibs.GetBib(ctx, bibID); err != nil {
		return nil, err
	}
	return s.bibs.GetIdentifiers(ctx, bibID)
}
