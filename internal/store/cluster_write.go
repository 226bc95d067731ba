package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/openlibraryenvironment/dcb-clustering/internal/models"
)

// ApplyClusterDecision commits the outcome of a clustering pass in one
// transaction: the target cluster is upserted, loser clusters are absorbed
// (members re-pointed, losers soft-deleted), the bib and its identifiers and
// match points are reconciled against the bib's latest content, and the
// cluster's selected bib is re-elected. An observer never sees a partial
// state; on conflict the whole transaction fails and the caller retries.
func (s *ClusterStore) ApplyClusterDecision(
	ctx context.Context,
	d models.ClusterDecision,
) (*models.BibRecord, *models.ClusterRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("applying cluster decision: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	if err := upsertCluster(ctx, tx, d.Cluster); err != nil {
		return nil, nil, err
	}

	if len(d.Losers) > 0 {
		if err := absorbClusters(ctx, tx, d.Cluster.ID, d.Losers); err != nil {
			return nil, nil, err
		}
	}

	bib, err := upsertBib(ctx, tx, d.Bib, d.Cluster.ID)
	if err != nil {
		return nil, nil, err
	}

	if err := reconcileIdentifiers(ctx, tx, bib.ID, d.Identifiers); err != nil {
		return nil, nil, err
	}

	if err := reconcileMatchPoints(ctx, tx, bib.ID, d.MatchPoints); err != nil {
		return nil, nil, err
	}

	cluster, err := electSelectedBib(ctx, tx, d.Cluster.ID, nil)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("committing cluster decision: %w", err)
	}

	s.notify("cluster_records", "upsert", cluster.ID.String())

	return bib, cluster, nil
}

// ElectSelectedBib re-elects the canonical bib of a cluster, optionally
// ignoring one member (used while that member is being retired). The cluster
// row is always touched so date_updated reflects the reconsideration.
func (s *ClusterStore) ElectSelectedBib(
	ctx context.Context,
	clusterID uuid.UUID,
	ignoreBib *uuid.UUID,
) (*models.ClusterRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("electing selected bib: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	cluster, err := electSelectedBib(ctx, tx, clusterID, ignoreBib)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing election: %w", err)
	}

	s.notify("cluster_records", "update", cluster.ID.String())

	return cluster, nil
}

// upsertCluster inserts the cluster if new, otherwise bumps date_updated.
// selected_bib is left to the election step, which runs in the same
// transaction wherever membership may have changed.
func upsertCluster(ctx context.Context, tx pgx.Tx, c *models.ClusterRecord) error {
	var isDeleted bool

	err := tx.QueryRow(ctx,
		`INSERT INTO cluster_records (id, title, is_deleted, derived_type)
		 VALUES ($1, $2, false, $3)
		 ON CONFLICT (id) DO UPDATE SET date_updated = now()
		 RETURNING is_deleted`,
		c.ID, c.Title, c.DerivedType).Scan(&isDeleted)
	if err != nil {
		return fmt.Errorf("upserting cluster: %w", err)
	}

	// A concurrent merge can soft-delete the voted winner between candidate
	// lookup and apply. Fail the pass; the retry re-resolves.
	if isDeleted {
		return models.ErrClusterGone
	}

	return nil
}

// absorbClusters merges the losers into the winner: every member bib of a
// loser is re-pointed at the winner in one bulk update, then the losers are
// soft-deleted in place, keeping their ids and creation timestamps for audit.
func absorbClusters(ctx context.Context, tx pgx.Tx, winnerID uuid.UUID, losers []models.ClusterRecord) error {
	loserIDs := make([]uuid.UUID, len(losers))
	for i, l := range losers {
		loserIDs[i] = l.ID
	}

	_, err := tx.Exec(ctx,
		`UPDATE bib_records SET contributes_to = $1, date_updated = now()
		 WHERE contributes_to = ANY($2)`,
		winnerID, loserIDs)
	if err != nil {
		return fmt.Errorf("re-pointing absorbed bibs: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE cluster_records SET is_deleted = true, selected_bib = NULL, date_updated = now()
		 WHERE id = ANY($1)`,
		loserIDs)
	if err != nil {
		return fmt.Errorf("soft-deleting absorbed clusters: %w", err)
	}

	return nil
}

// upsertBib writes the bib pointed at its resolved cluster, preserving
// date_created on re-ingest.
func upsertBib(ctx context.Context, tx pgx.Tx, b *models.BibRecord, clusterID uuid.UUID) (*models.BibRecord, error) {
	query := `INSERT INTO bib_records
		(id, title, blocking_title, derived_type, metadata_score, process_version,
		 source_system_id, source_record_id, suppressed, deleted, contributes_to,
		 canonical_metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			blocking_title = EXCLUDED.blocking_title,
			derived_type = EXCLUDED.derived_type,
			metadata_score = EXCLUDED.metadata_score,
			process_version = EXCLUDED.process_version,
			suppressed = EXCLUDED.suppressed,
			deleted = EXCLUDED.deleted,
			contributes_to = EXCLUDED.contributes_to,
			canonical_metadata = EXCLUDED.canonical_metadata,
			date_updated = now()
		RETURNING ` + bibColumns

	row := tx.QueryRow(ctx, query,
		b.ID, b.Title, nullableString(b.BlockingTitle), b.DerivedType, b.MetadataScore,
		nullableString(b.ProcessVersion), b.SourceSystemID, b.SourceRecordID,
		b.Suppressed, b.Deleted, clusterID, b.CanonicalMetadata)

	saved, err := scanBib(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("upserting bib: %w", err)
	}

	return saved, nil
}

// reconcileIdentifiers replaces the bib's persisted identifiers with the
// current set: stale rows are deleted, current ones upserted by their
// deterministic ids.
func reconcileIdentifiers(ctx context.Context, tx pgx.Tx, bibID uuid.UUID, identifiers []models.BibIdentifier) error {
	keep := make([]uuid.UUID, len(identifiers))
	for i, ident := range identifiers {
		keep[i] = ident.ID
	}

	_, err := tx.Exec(ctx,
		"DELETE FROM bib_identifiers WHERE owner_id = $1 AND NOT (id = ANY($2))",
		bibID, keep)
	if err != nil {
		return fmt.Errorf("deleting stale identifiers: %w", err)
	}

	for _, ident := range identifiers {
		_, err := tx.Exec(ctx,
			`INSERT INTO bib_identifiers (id, owner_id, namespace, value)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO NOTHING`,
			ident.ID, ident.OwnerID, ident.Namespace, ident.Value)
		if err != nil {
			return fmt.Errorf("upserting identifier %s:%s: %w", ident.Namespace, ident.Value, err)
		}
	}

	return nil
}

// reconcileMatchPoints mirrors reconcileIdentifiers for match points, so a
// match point's presence always reflects the bib's latest content.
func reconcileMatchPoints(ctx context.Context, tx pgx.Tx, bibID uuid.UUID, matchPoints []models.MatchPoint) error {
	keep := make([]uuid.UUID, len(matchPoints))
	for i, mp := range matchPoints {
		keep[i] = mp.Value
	}

	_, err := tx.Exec(ctx,
		"DELETE FROM match_points WHERE bib_id = $1 AND NOT (value = ANY($2))",
		bibID, keep)
	if err != nil {
		return fmt.Errorf("deleting stale match points: %w", err)
	}

	for _, mp := range matchPoints {
		_, err := tx.Exec(ctx,
			`INSERT INTO match_points (id, bib_id, value)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (bib_id, value) DO NOTHING`,
			mp.ID, mp.BibID, mp.Value)
		if err != nil {
			return fmt.Errorf("upserting match point: %w", err)
		}
	}

	return nil
}

// electSelectedBib picks the top-scoring active member of the cluster
// (excluding ignoreBib if given) as the selected bib and copies its title
// onto the cluster. When no eligible member exists the previous selection is
// left untouched; either way the cluster row is updated.
func electSelectedBib(ctx context.Context, tx pgx.Tx, clusterID uuid.UUID, ignoreBib *uuid.UUID) (*models.ClusterRecord, error) {
	var bibID uuid.UUID
	var title string

	err := tx.QueryRow(ctx,
		`SELECT id, title FROM bib_records
		 WHERE contributes_to = $1
		   AND NOT deleted AND NOT suppressed
		   AND ($2::uuid IS NULL OR id <> $2)
		 ORDER BY metadata_score DESC, id
		 LIMIT 1`,
		clusterID, ignoreBib).Scan(&bibID, &title)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		row := tx.QueryRow(ctx,
			`UPDATE cluster_records SET date_updated = now()
			 WHERE id = $1 RETURNING `+clusterColumns,
			clusterID)

		c, err := scanCluster(row.Scan)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, models.ErrClusterNotFound
			}

			return nil, fmt.Errorf("touching cluster without eligible members: %w", err)
		}

		return c, nil
	case err != nil:
		return nil, fmt.Errorf("querying top-scoring contributor: %w", err)
	}

	row := tx.QueryRow(ctx,
		`UPDATE cluster_records SET selected_bib = $2, title = $3, date_updated = now()
		 WHERE id = $1 RETURNING `+clusterColumns,
		clusterID, bibID, title)

	c, err := scanCluster(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrClusterNotFound
		}

		return nil, fmt.Errorf("recording elected bib: %w", err)
	}

	return c, nil
}

// nullableString maps "" to NULL.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
