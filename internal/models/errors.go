package models

import "errors"

// Sentinel errors for ingest validation.
var (
	ErrMissingSourceSystem = errors.New("source system id is required")
	ErrMissingSourceRecord = errors.New("source record id is required")
)

// Sentinel errors for entity lookups.
var (
	ErrBibNotFound     = errors.New("bib record not found")
	ErrClusterNotFound = errors.New("cluster record not found")
)

// ErrClusterGone indicates the target cluster was soft-deleted by a
// concurrent merge between candidate lookup and decision apply. The whole
// clustering pass is retryable and resolves against the surviving winner.
var ErrClusterGone = errors.New("cluster soft-deleted concurrently")
