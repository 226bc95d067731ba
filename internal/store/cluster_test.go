package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/openlibraryenvironment/dcb-clustering/internal/models"
	"github.com/openlibraryenvironment/dcb-clustering/internal/store"
)

func TestApplyClusterDecision_Idempotent(t *testing.T) {
	base, sourceSystem := setupTestBase(t)
	s := store.NewClusterStore(base)
	ctx := context.Background()

	bib, identifiers := seedBib(sourceSystem, "rec-1", "Wuthering Heights", "9780140449136", 10)

	saved1, cluster1 := mustApply(t, s, decisionFor(bib, identifiers, nil, nil))

	// Re-applying the same content must land on the same rows.
	bib2, identifiers2 := seedBib(sourceSystem, "rec-1", "Wuthering Heights", "9780140449136", 10)
	saved2, cluster2, err := s.ApplyClusterDecision(ctx, decisionFor(bib2, identifiers2, cluster1, nil))
	if err != nil {
		t.Fatalf("re-applying decision: %v", err)
	}

	if saved2.ID != saved1.ID {
		t.Errorf("bib id changed on re-ingest: %s vs %s", saved1.ID, saved2.ID)
	}
	if cluster2.ID != cluster1.ID {
		t.Errorf("cluster id changed on re-ingest: %s vs %s", cluster1.ID, cluster2.ID)
	}
	if !saved2.DateCreated.Equal(saved1.DateCreated) {
		t.Error("date_created not preserved across upsert")
	}

	bibs := store.NewBibStore(base)
	idents, err := bibs.GetIdentifiers(ctx, saved1.ID)
	if err != nil {
		t.Fatalf("listing identifiers: %v", err)
	}
	if len(idents) != 1 {
		t.Errorf("expected 1 identifier after re-ingest, got %d", len(idents))
	}
}

func TestApplyClusterDecision_SelectsSeedBib(t *testing.T) {
	base, sourceSystem := setupTestBase(t)
	s := store.NewClusterStore(base)

	bib, identifiers := seedBib(sourceSystem, "rec-1", "Moby Dick", "9781503280786", 5)
	saved, cluster := mustApply(t, s, decisionFor(bib, identifiers, nil, nil))

	if cluster.SelectedBib == nil || *cluster.SelectedBib != saved.ID {
		t.Error("sole contributor not elected as selected bib")
	}
	if cluster.Title != "Moby Dick" {
		t.Errorf("cluster title %q, want selected bib's title", cluster.Title)
	}
	if saved.ContributesTo == nil || *saved.ContributesTo != cluster.ID {
		t.Error("bib not pointed at its cluster")
	}
}

func TestMatchClusters_VoteRowsAndTypeScoping(t *testing.T) {
	base, sourceSystem := setupTestBase(t)
	s := store.NewClusterStore(base)
	ctx := context.Background()

	// A monograph whose identifier and title both produce match points.
	bib, identifiers := seedBib(sourceSystem, "rec-1", "Dracula", "9780141439846", 10)
	_, cluster := mustApply(t, s, decisionFor(bib, identifiers, nil, nil))

	// A new bib sharing both the identifier and the title: two hits, two rows.
	incoming, _ := seedBib(sourceSystem, "rec-2", "Dracula", "9780141439846", 8)
	values := []uuid.UUID{
		models.IdentifierMatchPoint(incoming.ID, "isbn", "9780141439846").Value,
		models.TitleMatchPoint(incoming.ID, incoming.BlockingTitle).Value,
	}

	matched, err := s.MatchClusters(ctx, models.DerivedTypeMonograph, values, incoming.ID)
	if err != nil {
		t.Fatalf("matching clusters: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("expected one row per match-point hit (2), got %d", len(matched))
	}
	for _, c := range matched {
		if c.ID != cluster.ID {
			t.Errorf("unexpected candidate %s", c.ID)
		}
	}

	// Same keys under a different derived type never match.
	matched, err = s.MatchClusters(ctx, models.DerivedTypeSerial, values, incoming.ID)
	if err != nil {
		t.Fatalf("matching clusters: %v", err)
	}
	if len(matched) != 0 {
		t.Errorf("serial lookup matched monograph cluster: %d rows", len(matched))
	}
}

func TestApplyClusterDecision_AbsorbsLosers(t *testing.T) {
	base, sourceSystem := setupTestBase(t)
	s := store.NewClusterStore(base)
	ctx := context.Background()

	bibA, identsA := seedBib(sourceSystem, "rec-a", "Frankenstein", "9780486282114", 10)
	_, clusterA := mustApply(t, s, decisionFor(bibA, identsA, nil, nil))

	bibB, identsB := seedBib(sourceSystem, "rec-b", "Frankenstein; or, The Modern Prometheus", "9780141439471", 20)
	savedB, clusterB := mustApply(t, s, decisionFor(bibB, identsB, nil, nil))

	// A third bib bridges both clusters; B wins and absorbs A.
	bibC, identsC := seedBib(sourceSystem, "rec-c", "Frankenstein", "9780141439471", 15)
	_, winner, err := s.ApplyClusterDecision(ctx,
		decisionFor(bibC, identsC, clusterB, []models.ClusterRecord{*clusterA}))
	if err != nil {
		t.Fatalf("applying merge decision: %v", err)
	}

	if winner.ID != clusterB.ID {
		t.Fatalf("expected winner %s, got %s", clusterB.ID, winner.ID)
	}

	// Loser is soft-deleted: gone from live lookups, present for audit.
	if _, err := s.FindClusterByID(ctx, clusterA.ID); !errors.Is(err, models.ErrClusterNotFound) {
		t.Errorf("absorbed cluster still visible: %v", err)
	}
	gone, err := s.FindClusterAny(ctx, clusterA.ID)
	if err != nil {
		t.Fatalf("reading absorbed cluster: %v", err)
	}
	if !gone.IsDeleted {
		t.Error("absorbed cluster not flagged deleted")
	}
	if gone.SelectedBib != nil {
		t.Error("absorbed cluster kept a selected bib")
	}

	// All three bibs now contribute to the winner.
	bibs := store.NewBibStore(base)
	members, err := bibs.FindAllByContributesTo(ctx, winner.ID)
	if err != nil {
		t.Fatalf("listing members: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("expected 3 members after merge, got %d", len(members))
	}

	// The highest-scoring member is elected.
	if winner.SelectedBib == nil || *winner.SelectedBib != savedB.ID {
		t.Errorf("expected %s elected, got %v", savedB.ID, winner.SelectedBib)
	}
}

func TestElectSelectedBib_PrefersHighestScore(t *testing.T) {
	base, sourceSystem := setupTestBase(t)
	s := store.NewClusterStore(base)
	ctx := context.Background()

	bib1, idents1 := seedBib(sourceSystem, "rec-1", "Dune", "9780441172719", 10)
	_, cluster := mustApply(t, s, decisionFor(bib1, idents1, nil, nil))

	bib2, idents2 := seedBib(sourceSystem, "rec-2", "Dune", "9780441172719", 30)
	saved2, _, err := s.ApplyClusterDecision(ctx, decisionFor(bib2, idents2, cluster, nil))
	if err != nil {
		t.Fatalf("adding second member: %v", err)
	}

	bib3, idents3 := seedBib(sourceSystem, "rec-3", "Dune", "9780441172719", 20)
	saved3, elected, err := s.ApplyClusterDecision(ctx, decisionFor(bib3, idents3, cluster, nil))
	if err != nil {
		t.Fatalf("adding third member: %v", err)
	}

	if elected.SelectedBib == nil || *elected.SelectedBib != saved2.ID {
		t.Fatalf("expected score-30 bib elected, got %v", elected.SelectedBib)
	}

	// Retiring the winner falls back to the next best score.
	outcome, err := s.RetireBib(ctx, saved2.ID, false, true)
	if err != nil {
		t.Fatalf("retiring elected bib: %v", err)
	}
	if outcome != models.RetireOutcomeExcluded {
		t.Fatalf("expected excluded outcome, got %s", outcome)
	}

	after, err := s.FindClusterByID(ctx, cluster.ID)
	if err != nil {
		t.Fatalf("reading cluster: %v", err)
	}
	if after.SelectedBib == nil || *after.SelectedBib != saved3.ID {
		t.Errorf("expected score-20 bib elected after retirement, got %v", after.SelectedBib)
	}
}

func TestElectSelectedBib_Standalone(t *testing.T) {
	base, sourceSystem := setupTestBase(t)
	s := store.NewClusterStore(base)
	ctx := context.Background()

	bib1, idents1 := seedBib(sourceSystem, "rec-1", "Roadside Picnic", "9781613743416", 30)
	saved1, cluster := mustApply(t, s, decisionFor(bib1, idents1, nil, nil))

	bib2, idents2 := seedBib(sourceSystem, "rec-2", "Roadside Picnic", "9781613743416", 20)
	saved2, _, err := s.ApplyClusterDecision(ctx, decisionFor(bib2, idents2, cluster, nil))
	if err != nil {
		t.Fatalf("adding second member: %v", err)
	}

	// Ignoring the current winner elects the runner-up.
	elected, err := s.ElectSelectedBib(ctx, cluster.ID, &saved1.ID)
	if err != nil {
		t.Fatalf("electing with ignored member: %v", err)
	}
	if elected.SelectedBib == nil || *elected.SelectedBib != saved2.ID {
		t.Fatalf("expected runner-up elected, got %v", elected.SelectedBib)
	}

	// A full re-election restores the highest score.
	elected, err = s.ElectSelectedBib(ctx, cluster.ID, nil)
	if err != nil {
		t.Fatalf("re-electing: %v", err)
	}
	if elected.SelectedBib == nil || *elected.SelectedBib != saved1.ID {
		t.Fatalf("expected highest-score bib elected, got %v", elected.SelectedBib)
	}
}

func TestRetireBib_SoleContributorDeletesCluster(t *testing.T) {
	base, sourceSystem := setupTestBase(t)
	s := store.NewClusterStore(base)
	ctx := context.Background()

	bib, idents := seedBib(sourceSystem, "rec-1", "Solaris", "9780156027601", 10)
	saved, cluster := mustApply(t, s, decisionFor(bib, idents, nil, nil))

	outcome, err := s.RetireBib(ctx, saved.ID, false, true)
	if err != nil {
		t.Fatalf("retiring sole contributor: %v", err)
	}
	if outcome != models.RetireOutcomeClusterDeleted {
		t.Fatalf("expected cluster_deleted outcome, got %s", outcome)
	}

	if _, err := s.FindClusterByID(ctx, cluster.ID); !errors.Is(err, models.ErrClusterNotFound) {
		t.Errorf("retired cluster still visible: %v", err)
	}

	bibs := store.NewBibStore(base)
	if _, err := bibs.GetBib(ctx, saved.ID); !errors.Is(err, models.ErrBibNotFound) {
		t.Errorf("sole contributor not hard-deleted: %v", err)
	}
}

func TestRetireBib_UnknownBibIsNoop(t *testing.T) {
	base, _ := setupTestBase(t)
	s := store.NewClusterStore(base)

	outcome, err := s.RetireBib(context.Background(), uuid.New(), true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != models.RetireOutcomeNone {
		t.Errorf("expected none outcome, got %s", outcome)
	}
}

func TestReconcileIdentifiers_DropsStaleRows(t *testing.T) {
	base, sourceSystem := setupTestBase(t)
	s := store.NewClusterStore(base)
	ctx := context.Background()

	rec := models.IngestRecord{
		SourceSystemID: sourceSystem,
		SourceRecordID: "rec-1",
		Title:          "Neuromancer",
		Identifiers: []models.IngestIdentifier{
			{Namespace: "isbn", Value: "9780441569595"},
			{Namespace: "oclc", Value: "10980207"},
		},
	}
	bib, idents := rec.Bib()
	saved, cluster := mustApply(t, s, decisionFor(bib, idents, nil, nil))

	// Re-ingest with the OCLC number gone.
	rec.Identifiers = rec.Identifiers[:1]
	bib2, idents2 := rec.Bib()
	if _, _, err := s.ApplyClusterDecision(ctx, decisionFor(bib2, idents2, cluster, nil)); err != nil {
		t.Fatalf("re-applying decision: %v", err)
	}

	bibs := store.NewBibStore(base)
	remaining, err := bibs.GetIdentifiers(ctx, saved.ID)
	if err != nil {
		t.Fatalf("listing identifiers: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Namespace != "isbn" {
		t.Errorf("stale identifier survived reconciliation: %v", remaining)
	}
}

func TestFindClusterForBib(t *testing.T) {
	base, sourceSystem := setupTestBase(t)
	s := store.NewClusterStore(base)
	ctx := context.Background()

	bib, idents := seedBib(sourceSystem, "rec-1", "Hyperion", "9780553283686", 10)
	saved, cluster := mustApply(t, s, decisionFor(bib, idents, nil, nil))

	found, err := s.FindClusterForBib(ctx, saved.ID)
	if err != nil {
		t.Fatalf("finding cluster for bib: %v", err)
	}
	if found.ID != cluster.ID {
		t.Errorf("expected cluster %s, got %s", cluster.ID, found.ID)
	}

	if _, err := s.FindClusterForBib(ctx, uuid.New()); !errors.Is(err, models.ErrClusterNotFound) {
		t.Errorf("expected ErrClusterNotFound for unknown bib, got %v", err)
	}
}
