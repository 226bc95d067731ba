package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/openlibraryenvironment/dcb-clustering/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func seedBib() (*models.BibRecord, []models.BibIdentifier) {
	source := uuid.MustParse("6736d4b8-9151-4131-a477-35e95cd5bb0a")
	id := models.BibID(source, "rec-1")

	bib := &models.BibRecord{
		ID:             id,
		Title:          "Wuthering Heights",
		BlockingTitle:  "wutheringheights",
		DerivedType:    models.DerivedTypeMonograph,
		SourceSystemID: source,
		SourceRecordID: "rec-1",
	}

	return bib, []models.BibIdentifier{models.NewBibIdentifier(id, "isbn", "9780140449136")}
}

func TestClusterBib_CreatesClusterWhenNoCandidates(t *testing.T) {
	bib, identifiers := seedBib()

	var applied models.ClusterDecision
	store := &mockClusterDataStore{
		applyClusterDecision: func(_ context.Context, d models.ClusterDecision) (*models.BibRecord, *models.ClusterRecord, error) {
			applied = d
			return d.Bib, d.Cluster, nil
		},
	}

	svc := NewClusteringService(store, testLogger())

	saved, err := svc.ClusterBib(context.Background(), bib, identifiers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil {
		t.Fatal("expected clustered bib")
	}

	if applied.Cluster == nil || applied.Cluster.ID == uuid.Nil {
		t.Fatal("expected a fresh cluster in the decision")
	}
	if applied.Cluster.SelectedBib == nil || *applied.Cluster.SelectedBib != bib.ID {
		t.Error("fresh cluster must seed the bib as selected")
	}
	if len(applied.Losers) != 0 {
		t.Errorf("expected no losers, got %d", len(applied.Losers))
	}
	if len(applied.MatchPoints) != 2 {
		t.Errorf("expected identifier + title match points, got %d", len(applied.MatchPoints))
	}
}

func TestClusterBib_MergesLosersIntoWinner(t *testing.T) {
	bib, identifiers := seedBib()

	winner := models.ClusterRecord{ID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), DerivedType: models.DerivedTypeMonograph}
	loser := models.ClusterRecord{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), DerivedType: models.DerivedTypeMonograph}

	var applied models.ClusterDecision
	store := &mockClusterDataStore{
		matchClusters: func(_ context.Context, _ models.DerivedType, _ []uuid.UUID, _ uuid.UUID) ([]models.ClusterRecord, error) {
			// winner gets two votes, loser one
			return []models.ClusterRecord{winner, loser, winner}, nil
		},
		applyClusterDecision: func(_ context.Context, d models.ClusterDecision) (*models.BibRecord, *models.ClusterRecord, error) {
			applied = d
			return d.Bib, d.Cluster, nil
		},
	}

	svc := NewClusteringService(store, testLogger())

	if _, err := svc.ClusterBib(context.Background(), bib, identifiers); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if applied.Cluster == nil || applied.Cluster.ID != winner.ID {
		t.Fatalf("expected winner %s, got %v", winner.ID, applied.Cluster)
	}
	if len(applied.Losers) != 1 || applied.Losers[0].ID != loser.ID {
		t.Fatalf("expected loser %s, got %v", loser.ID, applied.Losers)
	}
}

func TestClusterBib_RetriesOnConflict(t *testing.T) {
	bib, identifiers := seedBib()

	attempts := 0
	store := &mockClusterDataStore{
		applyClusterDecision: func(_ context.Context, d models.ClusterDecision) (*models.BibRecord, *models.ClusterRecord, error) {
			attempts++
			if attempts == 1 {
				return nil, nil, models.ErrClusterGone
			}
			return d.Bib, d.Cluster, nil
		},
	}

	svc := NewClusteringService(store, testLogger())

	saved, err := svc.ClusterBib(context.Background(), bib, identifiers)
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if saved == nil {
		t.Fatal("expected clustered bib after retry")
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	// Each attempt re-reads the cluster state from scratch.
	if got := store.callCount("MatchClusters"); got != 2 {
		t.Errorf("expected 2 MatchClusters calls, got %d", got)
	}
}

func TestClusterBib_NonRetryableErrorPropagates(t *testing.T) {
	bib, identifiers := seedBib()

	boom := errors.New("disk on fire")
	store := &mockClusterDataStore{
		applyClusterDecision: func(_ context.Context, _ models.ClusterDecision) (*models.BibRecord, *models.ClusterRecord, error) {
			return nil, nil, boom
		},
	}

	svc := NewClusteringService(store, testLogger())

	_, err := svc.ClusterBib(context.Background(), bib, identifiers)
	if !errors.Is(err, boom) {
		t.Fatalf("expected underlying error, got %v", err)
	}
	if got := store.callCount("ApplyClusterDecision"); got != 1 {
		t.Errorf("expected no retries on a plain failure, got %d attempts", got)
	}
}

func TestClusterBib_GivesUpAfterMaxAttempts(t *testing.T) {
	bib, identifiers := seedBib()

	store := &mockClusterDataStore{
		applyClusterDecision: func(_ context.Context, _ models.ClusterDecision) (*models.BibRecord, *models.ClusterRecord, error) {
			return nil, nil, models.ErrClusterGone
		},
	}

	svc := NewClusteringService(store, testLogger())

	_, err := svc.ClusterBib(context.Background(), bib, identifiers)
	if !errors.Is(err, models.ErrClusterGone) {
		t.Fatalf("expected conflict error after exhausting retries, got %v", err)
	}
	if got := store.callCount("ApplyClusterDecision"); got != maxClusterAttempts {
		t.Errorf("expected %d attempts, got %d", maxClusterAttempts, got)
	}
}
