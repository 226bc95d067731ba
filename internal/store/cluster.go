package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/openlibraryenvironment/dcb-clustering/internal/models"
)

// ClusterStore handles cluster lookups and the transactional mutations of
// the clustering core (decision apply, election, retirement).
type ClusterStore struct {
	Base
}

// NewClusterStore creates a new ClusterStore.
func NewClusterStore(base Base) *ClusterStore {
	return &ClusterStore{Base: base}
}

// FindClusterByID returns a non-deleted cluster by ID.
func (s *ClusterStore) FindClusterByID(ctx context.Context, id uuid.UUID) (*models.ClusterRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		"SELECT "+clusterColumns+" FROM cluster_records WHERE id = $1 AND is_deleted = false", id)

	c, err := scanCluster(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrClusterNotFound
		}

		return nil, fmt.Errorf("finding cluster: %w", err)
	}

	return c, nil
}

// FindClusterAny returns a cluster by ID including soft-deleted ones.
// Callers that need audit access to merged-away clusters use this; normal
// lookups go through FindClusterByID.
func (s *ClusterStore) FindClusterAny(ctx context.Context, id uuid.UUID) (*models.ClusterRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		"SELECT "+clusterColumns+" FROM cluster_records WHERE id = $1", id)

	c, err := scanCluster(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrClusterNotFound
		}

		return nil, fmt.Errorf("finding cluster: %w", err)
	}

	return c, nil
}

// FindClusterForBib returns the non-deleted cluster the given bib currently
// contributes to, or models.ErrClusterNotFound if the bib is unclustered.
func (s *ClusterStore) FindClusterForBib(ctx context.Context, bibID uuid.UUID) (*models.ClusterRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + qualifiedClusterColumns("c") + `
		FROM cluster_records c
		JOIN bib_records b ON b.contributes_to = c.id
		WHERE b.id = $1 AND c.is_deleted = false`

	row := s.Pool.QueryRow(ctx, query, bibID)

	c, err := scanCluster(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrClusterNotFound
		}

		return nil, fmt.Errorf("finding cluster for bib: %w", err)
	}

	return c, nil
}

// MatchClusters returns every non-deleted cluster of the given derived type
// with at least one active member bib carrying one of the supplied match-point
// values. The result is deliberately NOT deduplicated: a cluster appears once
// per matching bib/match-point pair, which is the raw vote signal the
// reduction step counts. The bib being clustered is excluded so it cannot
// vote for itself.
func (s *ClusterStore) MatchClusters(
	ctx context.Context,
	derivedType models.DerivedType,
	values []uuid.UUID,
	excludeBib uuid.UUID,
) ([]models.ClusterRecord, error) {
	if len(values) == 0 {
		return nil, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + qualifiedClusterColumns("c") + `
		FROM cluster_records c
		JOIN bib_records b ON b.contributes_to = c.id
		JOIN match_points mp ON mp.bib_id = b.id
		WHERE c.is_deleted = false
		  AND c.derived_type = $1
		  AND mp.value = ANY($2)
		  AND b.id <> $3
		  AND NOT b.deleted
		  AND NOT b.suppressed`

	rows, err := s.Pool.Query(ctx, query, derivedType, values, excludeBib)
	if err != nil {
		return nil, fmt.Errorf("matching clusters: %w", err)
	}
	defer rows.Close()

	var matched []models.ClusterRecord

	for rows.Next() {
		c, err := scanCluster(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning matched cluster: %w", err)
		}

		matched = append(matched, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading matched clusters: %w", err)
	}

	return matched, nil
}

// qualifiedClusterColumns qualifies the cluster column list with a table alias.
func qualifiedClusterColumns(alias string) string {
	return alias + ".id, " + alias + ".date_created, " + alias + ".date_updated, " +
		alias + ".title, " + alias + ".selected_bib, " + alias + ".is_deleted, " +
		alias + ".derived_type"
}
