package store

import (
	"github.com/openlibraryenvironment/dcb-clustering/internal/models"
)

// clusterColumns lists the columns selected for cluster queries.
const clusterColumns = `id, date_created, date_updated, title,
	selected_bib, is_deleted, derived_type`

// bibColumns lists the columns selected for bib queries.
const bibColumns = `id, date_created, date_updated, title, blocking_title,
	derived_type, metadata_score, process_version, source_system_id,
	source_record_id, suppressed, deleted, contributes_to, canonical_metadata`

// scanCluster scans a single row into a models.ClusterRecord.
func scanCluster(scan func(dest ...any) error) (*models.ClusterRecord, error) {
	var c models.ClusterRecord

	err := scan(
		&c.ID,
		&c.DateCreated,
		&c.DateUpdated,
		&c.Title,
		&c.SelectedBib,
		&c.IsDeleted,
		&c.DerivedType,
	)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// scanBib scans a single row into a models.BibRecord.
func scanBib(scan func(dest ...any) error) (*models.BibRecord, error) {
	var b models.BibRecord
	var blockingTitle *string
	var processVersion *string

	err := scan(
		&b.ID,
		&b.DateCreated,
		&b.DateUpdated,
		&b.Title,
		&blockingTitle,
		&b.DerivedType,
		&b.MetadataScore,
		&processVersion,
		&b.SourceSystemID,
		&b.SourceRecordID,
		&b.Suppressed,
		&b.Deleted,
		&b.ContributesTo,
		&b.CanonicalMetadata,
	)
	if err != nil {
		return nil, err
	}

	if blockingTitle != nil {
		b.BlockingTitle = *blockingTitle
	}

	if processVersion != nil {
		b.ProcessVersion = *processVersion
	}

	return &b, nil
}
