// Package models defines data types for the DCB bibliographic clustering core.
package models

import (
	"encoding/json"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxIdentifierLen caps identifier namespace and value lengths before storage.
const maxIdentifierLen = 254

// BibRecord is one ingested bibliographic description. Its identity is
// derived deterministically from (source system, source record), so repeated
// ingestion of the same source record always maps to the same row.
type BibRecord struct {
	ID                uuid.UUID       `json:"id"`
	DateCreated       time.Time       `json:"date_created"`
	DateUpdated       time.Time       `json:"date_updated"`
	Title             string          `json:"title"`
	BlockingTitle     string          `json:"blocking_title,omitempty"`
	DerivedType       DerivedType     `json:"derived_type"`
	MetadataScore     int             `json:"metadata_score"`
	ProcessVersion    string          `json:"process_version,omitempty"`
	SourceSystemID    uuid.UUID       `json:"source_system_id"`
	SourceRecordID    string          `json:"source_record_id"`
	Suppressed        bool            `json:"suppressed"`
	Deleted           bool            `json:"deleted"`
	ContributesTo     *uuid.UUID      `json:"contributes_to,omitempty"`
	CanonicalMetadata json.RawMessage `json:"canonical_metadata,omitempty"`
}

// BibIdentifier is one normalized (namespace, value) identifier owned by
// exactly one bib. Identifiers are never shared across bibs; they are fully
// reconciled on every clustering pass of the owner.
type BibIdentifier struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Namespace string    `json:"namespace"`
	Value     string    `json:"value"`
}

// NewBibIdentifier builds an identifier for the given owner, trimming and
// truncating namespace and value to the storage limit. The returned ID is
// deterministic, so re-ingestion is idempotent.
func NewBibIdentifier(ownerID uuid.UUID, namespace, value string) BibIdentifier {
	namespace = truncate(strings.TrimSpace(namespace), maxIdentifierLen)
	value = truncate(strings.TrimSpace(value), maxIdentifierLen)

	return BibIdentifier{
		ID:        IdentifierID(ownerID, namespace, value),
		OwnerID:   ownerID,
		Namespace: namespace,
		Value:     value,
	}
}

// Complete reports whether the identifier carries both a namespace and a
// value. Incomplete identifiers are excluded from matching.
func (i BibIdentifier) Complete() bool {
	return i.Namespace != "" && i.Value != ""
}

// truncate caps s at max characters. Counting runes rather than bytes keeps
// multibyte values intact and never splits a rune into invalid UTF-8, which
// the varchar columns would reject.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	runes := []rune(s)

	return string(runes[:max])
}

// blockingFold strips diacritics after NFD decomposition.
var blockingFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// BlockingTitle normalizes a title into its blocking-key form: diacritics
// stripped, lowercased, everything but letters and digits squashed out.
// Returns "" when nothing survives normalization.
func BlockingTitle(title string) string {
	folded, _, err := transform.String(blockingFold, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))

	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}

	return b.String()
}
