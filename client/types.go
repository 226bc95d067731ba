package client

import (
	"encoding/json"
	"time"
)

// Cluster is a group of bib records describing the same work.
type Cluster struct {
	ID          string    `json:"id"`
	DateCreated time.Time `json:"date_created"`
	DateUpdated time.Time `json:"date_updated"`
	Title       string    `json:"title"`
	SelectedBib *string   `json:"selected_bib,omitempty"`
	IsDeleted   bool      `json:"is_deleted"`
	DerivedType string    `json:"derived_type"`
}

// Bib is a single source bibliographic record.
type Bib struct {
	ID                string          `json:"id"`
	DateCreated       time.Time       `json:"date_created"`
	DateUpdated       time.Time       `json:"date_updated"`
	Title             string          `json:"title"`
	BlockingTitle     string          `json:"blocking_title,omitempty"`
	DerivedType       string          `json:"derived_type"`
	MetadataScore     int             `json:"metadata_score"`
	ProcessVersion    string          `json:"process_version,omitempty"`
	SourceSystemID    string          `json:"source_system_id"`
	SourceRecordID    string          `json:"source_record_id"`
	Suppressed        bool            `json:"suppressed"`
	Deleted           bool            `json:"deleted"`
	ContributesTo     *string         `json:"contributes_to,omitempty"`
	CanonicalMetadata json.RawMessage `json:"canonical_metadata,omitempty"`
}

// Identifier is a namespaced identifier attached to a bib.
type Identifier struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Namespace string `json:"namespace"`
	Value     string `json:"value"`
}

// IngestIdentifier is a namespaced identifier on an ingest record.
type IngestIdentifier struct {
	Namespace string `json:"namespace"`
	Value     string `json:"value"`
}

// IngestRecord is a source record submitted for clustering.
type IngestRecord struct {
	SourceSystemID    string             `json:"source_system_id"`
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

// IngestResponse is returned when a record is queued.
type IngestResponse struct {
	BibID  string `json:"bib_id"`
	Status string `json:"status"`
}

// BatchResponse is returned for batch ingest requests.
type BatchResponse struct {
	Queued  int `json:"queued"`
	Dropped int `json:"dropped"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	SchemaVersion int     `json:"schema_version"`
	QueueDepth    int     `json:"ingest_queue_depth"`
	WSClients     int     `json:"ws_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// ReadinessResponse is the readiness payload.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
