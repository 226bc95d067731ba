package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/openlibraryenvironment/dcb-clustering/internal/models"
)

// RetireBib propagates a source-side suppression/deletion into the cluster
// model. Sole contributor: the cluster is soft-deleted and the bib (plus its
// identifiers and match points) hard-deleted. Otherwise the bib row survives
// flagged, excluded from election, and the cluster re-elects. All of it in
// one transaction.
func (s *ClusterStore) RetireBib(
	ctx context.Context,
	bibID uuid.UUID,
	suppressed, deleted bool,
) (models.RetireOutcome, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return models.RetireOutcomeNone, fmt.Errorf("retiring bib: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var clusterID *uuid.UUID

	err = tx.QueryRow(ctx,
		"SELECT contributes_to FROM bib_records WHERE id = $1 FOR UPDATE", bibID).Scan(&clusterID)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.RetireOutcomeNone, nil
	}

	if err != nil {
		return models.RetireOutcomeNone, fmt.Errorf("locking bib for retirement: %w", err)
	}

	if clusterID == nil {
		// Transient state: a bib without a cluster has nothing to re-elect.
		if _, err := tx.Exec(ctx, "DELETE FROM bib_records WHERE id = $1", bibID); err != nil {
			return models.RetireOutcomeNone, fmt.Errorf("deleting unclustered bib: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return models.RetireOutcomeNone, fmt.Errorf("committing retirement: %w", err)
		}

		return models.RetireOutcomeNone, nil
	}

	var members int

	err = tx.QueryRow(ctx,
		"SELECT count(*) FROM bib_records WHERE contributes_to = $1", *clusterID).Scan(&members)
	if err != nil {
		return models.RetireOutcomeNone, fmt.Errorf("counting cluster members: %w", err)
	}

	if members <= 1 {
		outcome, err := s.retireSoleContributor(ctx, tx, bibID, *clusterID)
		if err != nil {
			return outcome, err
		}

		s.notify("cluster_records", "delete", clusterID.String())

		return outcome, nil
	}

	_, err = tx.Exec(ctx,
		`UPDATE bib_records SET suppressed = $2, deleted = $3, date_updated = now()
		 WHERE id = $1`,
		bibID, suppressed, deleted)
	if err != nil {
		return models.RetireOutcomeNone, fmt.Errorf("flagging retired bib: %w", err)
	}

	if _, err := electSelectedBib(ctx, tx, *clusterID, &bibID); err != nil {
		return models.RetireOutcomeNone, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.RetireOutcomeNone, fmt.Errorf("committing retirement: %w", err)
	}

	s.notify("cluster_records", "update", clusterID.String())

	return models.RetireOutcomeExcluded, nil
}

// retireSoleContributor soft-deletes the cluster and hard-deletes the bib;
// identifiers and match points go with it via ON DELETE CASCADE.
func (s *ClusterStore) retireSoleContributor(
	ctx context.Context,
	tx pgx.Tx,
	bibID, clusterID uuid.UUID,
) (models.RetireOutcome, error) {
	_, err := tx.Exec(ctx,
		`UPDATE cluster_records SET is_deleted = true, selected_bib = NULL, date_updated = now()
		 WHERE id = $1`,
		clusterID)
	if err != nil {
		return models.RetireOutcomeNone, fmt.Errorf("soft-deleting cluster: %w", err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM bib_records WHERE id = $1", bibID); err != nil {
		return models.RetireOutcomeNone, fmt.Errorf("deleting sole contributor: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.RetireOutcomeNone, fmt.Errorf("committing retirement: %w", err)
	}

	return models.RetireOutcomeClusterDeleted, nil
}
