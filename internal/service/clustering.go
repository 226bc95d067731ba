// Package service provides business logic between API handlers and data stores.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"

	"github.com/openlibraryenvironment/dcb-clustering/internal/metrics"
	"github.com/openlibraryenvironment/dcb-clustering/internal/models"
)

// ClusterDataStore is the data-access interface ClusteringService depends on.
type ClusterDataStore interface {
	FindClusterForBib(ctx context.Context, bibID uuid.UUID) (*models.ClusterRecord, error)
	MatchClusters(ctx context.Context, derivedType models.DerivedType, values []uuid.UUID, excludeBib uuid.UUID) ([]models.ClusterRecord, error)
	ApplyClusterDecision(ctx context.Context, d models.ClusterDecision) (*models.BibRecord, *models.ClusterRecord, error)
}

// Retry policy for a clustering pass that hits a write conflict.
const (
	maxClusterAttempts = 5
	clusterRetryBase   = 50 * time.Millisecond
)

// ClusteringService resolves bibs into "same work" clusters. It is stateless;
// the relational store is the only shared mutable resource.
type ClusteringService struct {
	store ClusterDataStore
	log   *logrus.Logger
}

// NewClusteringService creates a ClusteringService.
func NewClusteringService(store ClusterDataStore, log *logrus.Logger) *ClusteringService {
	return &ClusteringService{store: store, log: log}
}

// ClusterBib runs the full clustering pass for a bib: generate match points,
// look up candidate clusters, reduce to a single winner (merging losers),
// persist bib + match points + cluster, and re-elect the selected bib. All
// persistence is upsert-based on deterministic ids, so the whole pass is
// idempotent and retried as a unit on write conflicts.
func (s *ClusteringService) ClusterBib(
	ctx context.Context,
	bib *models.BibRecord,
	identifiers []models.BibIdentifier,
) (*models.BibRecord, error) {
	matchPoints := GenerateMatchPoints(bib, identifiers)

	backoff := retry.WithMaxRetries(maxClusterAttempts-1, retry.NewExponential(clusterRetryBase))

	var clustered *models.BibRecord

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		saved, err := s.clusterOnce(ctx, bib, identifiers, matchPoints)
		if err != nil {
			if isRetryableConflict(err) {
				metrics.ClusterRetries.Inc()
				s.log.WithError(err).WithField("bib_id", bib.ID).Warn("clustering pass conflicted, retrying")

				return retry.RetryableError(err)
			}

			return err
		}

		clustered = saved

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("clustering bib %s: %w", bib.ID, err)
	}

	return clustered, nil
}

// clusterOnce is a single attempt of the pass; everything it writes goes
// through one transaction in ApplyClusterDecision.
func (s *ClusteringService) clusterOnce(
	ctx context.Context,
	bib *models.BibRecord,
	identifiers []models.BibIdentifier,
	matchPoints []models.MatchPoint,
) (*models.BibRecord, error) {
	current, err := s.store.FindClusterForBib(ctx, bib.ID)
	if err != nil && !errors.Is(err, models.ErrClusterNotFound) {
		return nil, err
	}

	matched, err := s.store.MatchClusters(ctx, bib.DerivedType, matchPointValues(matchPoints), bib.ID)
	if err != nil {
		return nil, err
	}

	winner, losers := reduceClusterRecords(matched, current)
	if winner == nil {
		winner = models.NewCluster(bib)
		metrics.ClustersCreated.Inc()
		s.log.WithFields(logrus.Fields{
			"bib_id":     bib.ID,
			"cluster_id": winner.ID,
		}).Debug("no candidate clusters, creating new cluster")
	}

	if len(losers) > 0 {
		metrics.ClustersMerged.Add(float64(len(losers)))
		s.log.WithFields(logrus.Fields{
			"bib_id":     bib.ID,
			"winner_id":  winner.ID,
			"absorbed":   len(losers),
			"candidates": len(matched),
		}).Info("merging clusters")
	}

	saved, _, err := s.store.ApplyClusterDecision(ctx, models.ClusterDecision{
		Bib:         bib,
		Identifiers: identifiers,
		MatchPoints: matchPoints,
		Cluster:     winner,
		Losers:      losers,
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// isRetryableConflict reports whether the error is a write conflict the whole
// pass should be retried on: serialization failure, deadlock, a unique-key
// race on deterministic ids, or the voted winner vanishing under a
// concurrent merge.
func isRetryableConflict(err error) bool {
	if errors.Is(err, models.ErrClusterGone) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "23505":
			return true
		}
	}

	return false
}
