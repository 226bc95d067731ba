package models

import (
	"time"

	"github.com/google/uuid"
)

// ClusterRecord groups one-or-more bib records believed to describe the same
// work. A soft-deleted cluster keeps its row for audit history but is never
// returned by normal lookups and has no active members.
type ClusterRecord struct {
	ID          uuid.UUID   `json:"id"`
	DateCreated time.Time   `json:"date_created"`
	DateUpdated time.Time   `json:"date_updated"`
	Title       string      `json:"title"`
	SelectedBib *uuid.UUID  `json:"selected_bib,omitempty"`
	IsDeleted   bool        `json:"is_deleted"`
	DerivedType DerivedType `json:"derived_type"`
}

// NewCluster seeds a brand-new cluster around the given bib, which becomes
// the initial selected bib.
func NewCluster(bib *BibRecord) *ClusterRecord {
	selected := bib.ID

	return &ClusterRecord{
		ID:          uuid.New(),
		Title:       bib.Title,
		SelectedBib: &selected,
		DerivedType: bib.DerivedType,
	}
}

// RetireOutcome describes what retiring a suppressed/deleted bib did.
type RetireOutcome string

// Retirement outcomes.
const (
	// RetireOutcomeNone: the bib was never clustered; nothing to do.
	RetireOutcomeNone RetireOutcome = "none"
	// RetireOutcomeExcluded: other members remain; the bib was flagged and
	// the cluster re-elected its selected bib without it.
	RetireOutcomeExcluded RetireOutcome = "excluded"
	// RetireOutcomeClusterDeleted: the bib was the sole contributor; the
	// cluster was soft-deleted and the bib hard-deleted with its identifiers
	// and match points.
	RetireOutcomeClusterDeleted RetireOutcome = "cluster_deleted"
)

// ClusterDecision is the outcome of the reduction/voting step: the bib, its
// reconciled identifiers and match points, the cluster it lands in, and any
// losing clusters that must be absorbed into it. The whole decision is
// applied in a single transaction.
type ClusterDecision struct {
	Bib         *BibRecord
	Identifiers []BibIdentifier
	MatchPoints []MatchPoint
	Cluster     *ClusterRecord
	Losers      []ClusterRecord
}
