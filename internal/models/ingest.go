package models

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// IngestIdentifier is a raw (namespace, value) pair on an ingested record.
type IngestIdentifier struct {
	Namespace string `json:"namespace"`
	Value     string `json:"value"`
}

// IngestRecord is the front-door payload handed to the clustering core by
// the (external) bib-data producers.
type IngestRecord struct {
	SourceSystemID    uuid.UUID          `json:"source_system_id"`
	SourceRecordID    string             `json:"source_record_id"`
	Title             string             `json:"title"`
	Suppressed        bool               `json:"suppressed"`
	Deleted           bool               `json:"deleted"`
	Identifiers       []IngestIdentifier `json:"identifiers,omitempty"`
	DerivedType       string             `json:"derived_type,omitempty"`
	CanonicalMetadata json.RawMessage    `json:"canonical_metadata,omitempty"`
	MetadataScore     int                `json:"metadata_score"`
	ProcessVersion    string             `json:"process_version,omitempty"`
}

// Validate checks that the record can be mapped to a stable bib identity.
// A blank title is NOT a validation error: blank-title records are dropped
// further in, as a statistics event rather than a failure.
func (r *IngestRecord) Validate() error {
	if r.SourceSystemID == uuid.Nil {
		return ErrMissingSourceSystem
	}

	if strings.TrimSpace(r.SourceRecordID) == "" {
		return ErrMissingSourceRecord
	}

	return nil
}

// BibID returns the deterministic bib identity for this record.
func (r *IngestRecord) BibID() uuid.UUID {
	return BibID(r.SourceSystemID, r.SourceRecordID)
}

// Bib maps the ingest record to a bib seed ready for clustering. Identifiers
// missing either namespace or value after trimming are excluded.
func (r *IngestRecord) Bib() (*BibRecord, []BibIdentifier) {
	id := r.BibID()

	bib := &BibRecord{
		ID:                id,
		Title:             r.Title,
		BlockingTitle:     BlockingTitle(r.Title),
		DerivedType:       ParseDerivedType(r.DerivedType),
		MetadataScore:     r.MetadataScore,
		ProcessVersion:    r.ProcessVersion,
		SourceSystemID:    r.SourceSystemID,
		SourceRecordID:    r.SourceRecordID,
		Suppressed:        r.Suppressed,
		Deleted:           r.Deleted,
		CanonicalMetadata: r.CanonicalMetadata,
	}

	identifiers := make([]BibIdentifier, 0, len(r.Identifiers))

	for _, raw := range r.Identifiers {
		ident := NewBibIdentifier(id, raw.Namespace, raw.Value)
		if ident.Complete() {
			identifiers = append(identifiers, ident)
		}
	}

	return bib, identifiers
}
