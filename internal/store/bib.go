package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/openlibraryenvironment/dcb-clustering/internal/models"
)

// BibStore handles bib record reads for the consumer-facing surface.
// All bib mutation goes through ClusterStore so it stays transactional with
// cluster state.
type BibStore struct {
	Base
}

// NewBibStore creates a new BibStore.
func NewBibStore(base Base) *BibStore {
	return &BibStore{Base: base}
}

// GetBib returns a bib record by ID.
func (s *BibStore) GetBib(ctx context.Context, id uuid.UUID) (*models.BibRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		"SELECT "+bibColumns+" FROM bib_records WHERE id = $1", id)

	b, err := scanBib(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrBibNotFound
		}

		return nil, fmt.Errorf("getting bib: %w", err)
	}

	return b, nil
}

// FindAllByContributesTo returns the member bibs of a cluster, best metadata
// first.
func (s *BibStore) FindAllByContributesTo(ctx context.Context, clusterID uuid.UUID) ([]models.BibRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`SELECT `+bibColumns+` FROM bib_records
		 WHERE contributes_to = $1
		 ORDER BY metadata_score DESC, id`,
		clusterID)
	if err != nil {
		return nil, fmt.Errorf("listing cluster members: %w", err)
	}
	defer rows.Close()

	var members []models.BibRecord

	for rows.Next() {
		b, err := scanBib(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning cluster member: %w", err)
		}

		members = append(members, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading cluster members: %w", err)
	}

	return members, nil
}

// GetIdentifiers returns the identifiers owned by a bib.
func (s *BibStore) GetIdentifiers(ctx context.Context, bibID uuid.UUID) ([]models.BibIdentifier, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`SELECT id, owner_id, namespace, value FROM bib_identifiers
		 WHERE owner_id = $1 ORDER BY namespace, value`,
		bibID)
	if err != nil {
		return nil, fmt.Errorf("listing bib identifiers: %w", err)
	}
	defer rows.Close()

	var identifiers []models.BibIdentifier

	for rows.Next() {
		var ident models.BibIdentifier
		if err := rows.Scan(&ident.ID, &ident.OwnerID, &ident.Namespace, &ident.Value); err != nil {
			return nil, fmt.Errorf("scanning bib identifier: %w", err)
		}

		identifiers = append(identifiers, ident)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading bib identifiers: %w", err)
	}

	return identifiers, nil
}
