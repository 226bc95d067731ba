package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/openlibraryenvironment/dcb-clustering/internal/db"
	"github.com/openlibraryenvironment/dcb-clustering/internal/db/migrations"
	"github.com/openlibraryenvironment/dcb-clustering/internal/dbpool"
	"github.com/openlibraryenvironment/dcb-clustering/internal/models"
	"github.com/openlibraryenvironment/dcb-clustering/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}

	sharedEnv = &testEnv{
		pool: pool,
		log:  log,
	}

	return sharedEnv
}

// setupTestBase creates a Base and a per-test source system whose rows are
// cleaned up after the test. Clusters created through the stores are removed
// by trackCluster.
func setupTestBase(t *testing.T) (store.Base, uuid.UUID) {
	t.Helper()

	env := getTestEnv(t)
	sourceSystem := uuid.New()

	t.Cleanup(func() {
		cleanCtx := context.Background()
		// bib_identifiers and match_points cascade from bib_records.
		env.pool.Exec(cleanCtx, "DELETE FROM bib_records WHERE source_system_id = $1", sourceSystem) //nolint:errcheck // best-effort cleanup
	})

	return store.Base{Pool: env.pool, Log: env.log}, sourceSystem
}

// trackCluster registers a cluster row for deletion after the test.
func trackCluster(t *testing.T, id uuid.UUID) {
	t.Helper()

	env := getTestEnv(t)
	t.Cleanup(func() {
		env.pool.Exec(context.Background(), "DELETE FROM cluster_records WHERE id = $1", id) //nolint:errcheck // best-effort cleanup
	})
}

// seedBib builds a bib for the given source system with an ISBN identifier.
func seedBib(sourceSystem uuid.UUID, recordID, title, isbn string, score int) (*models.BibRecord, []models.BibIdentifier) {
	rec := models.IngestRecord{
		SourceSystemID: sourceSystem,
		SourceRecordID: recordID,
		Title:          title,
		MetadataScore:  score,
	}
	if isbn != "" {
		rec.Identifiers = []models.IngestIdentifier{{Namespace: "isbn", Value: isbn}}
	}

	return rec.Bib()
}

// decisionFor builds a create-new-cluster decision for a bib.
func decisionFor(bib *models.BibRecord, identifiers []models.BibIdentifier, cluster *models.ClusterRecord, losers []models.ClusterRecord) models.ClusterDecision {
	matchPoints := make([]models.MatchPoint, 0, len(identifiers)+1)
	for _, ident := range identifiers {
		matchPoints = append(matchPoints, models.IdentifierMatchPoint(bib.ID, ident.Namespace, ident.Value))
	}
	if bib.BlockingTitle != "" {
		matchPoints = append(matchPoints, models.TitleMatchPoint(bib.ID, bib.BlockingTitle))
	}

	if cluster == nil {
		cluster = models.NewCluster(bib)
	}

	return models.ClusterDecision{
		Bib:         bib,
		Identifiers: identifiers,
		MatchPoints: matchPoints,
		Cluster:     cluster,
		Losers:      losers,
	}
}

// mustApply applies a decision and tracks the resulting cluster for cleanup.
func mustApply(t *testing.T, s *store.ClusterStore, d models.ClusterDecision) (*models.BibRecord, *models.ClusterRecord) {
	t.Helper()

	bib, cluster, err := s.ApplyClusterDecision(context.Background(), d)
	if err != nil {
		t.Fatalf("applying cluster decision: %v", err)
	}

	trackCluster(t, cluster.ID)

	return bib, cluster
}
