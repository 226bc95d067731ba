package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/openlibraryenvironment/dcb-clustering/internal/metrics"
	"github.com/openlibraryenvironment/dcb-clustering/internal/models"
)

// BibClusterer runs the clustering pass for a seeded bib.
type BibClusterer interface {
	ClusterBib(ctx context.Context, bib *models.BibRecord, identifiers []models.BibIdentifier) (*models.BibRecord, error)
}

// RetireStore propagates source-side suppressions/deletions.
type RetireStore interface {
	RetireBib(ctx context.Context, bibID uuid.UUID, suppressed, deleted bool) (models.RetireOutcome, error)
}

// IngestService is the front door of the clustering core: it applies the
// suppression/deletion/blank-title short-circuits and hands surviving
// records to the clustering pass.
type IngestService struct {
	clustering BibClusterer
	store      RetireStore
	log        *logrus.Logger
}

// NewIngestService creates an IngestService.
func NewIngestService(clustering BibClusterer, retire RetireStore, log *logrus.Logger) *IngestService {
	return &IngestService{clustering: clustering, store: retire, log: log}
}

// Process handles one ingested record. It returns (nil, nil) on the drop
// paths — blank title, or a suppression/deletion that removed or flagged the
// bib — and the clustered bib otherwise.
func (s *IngestService) Process(ctx context.Context, rec models.IngestRecord) (*models.BibRecord, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	sourceFields := logrus.Fields{
		"source_system_id": rec.SourceSystemID,
		"source_record_id": rec.SourceRecordID,
	}

	// Suppression/deletion notices are checked before the blank-title drop:
	// sources often strip the payload down to the flags on a delete, and the
	// existing bib must still be retired.
	if rec.Suppressed || rec.Deleted {
		outcome, err := s.store.RetireBib(ctx, rec.BibID(), rec.Suppressed, rec.Deleted)
		if err != nil {
			metrics.ErrorsTotal.WithLabelValues("retire").Inc()

			return nil, err
		}

		if outcome == models.RetireOutcomeNone {
			metrics.IngestOutcomes.WithLabelValues("noop").Inc()
		} else {
			metrics.IngestOutcomes.WithLabelValues("retired").Inc()
		}

		s.log.WithFields(sourceFields).WithField("outcome", outcome).Info("retired suppressed/deleted record")

		return nil, nil
	}

	// The one semantically load-bearing "ignore" path: blank titles never
	// reach the clustering core; they only count as a statistics event.
	if strings.TrimSpace(rec.Title) == "" {
		metrics.IngestOutcomes.WithLabelValues("dropped_title").Inc()
		s.log.WithFields(sourceFields).Info("dropping record with blank title")

		return nil, nil
	}

	bib, identifiers := rec.Bib()

	if skipped := len(rec.Identifiers) - len(identifiers); skipped > 0 {
		s.log.WithFields(sourceFields).WithField("skipped", skipped).
			Info("skipping identifiers missing namespace or value")
	}

	clustered, err := s.clustering.ClusterBib(ctx, bib, identifiers)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("cluster").Inc()

		return nil, err
	}

	metrics.IngestOutcomes.WithLabelValues("clustered").Inc()

	return clustered, nil
}
