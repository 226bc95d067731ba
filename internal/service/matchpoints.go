package service

import (
	"github.com/google/uuid"

	"github.com/openlibraryenvironment/dcb-clustering/internal/models"
)

// GenerateMatchPoints derives the blocking keys for a bib: one per complete
// identifier (encoding "id:<namespace>:<value>") and exactly one for the
// blocking title when present ("title:<blocking-title>"). Pure function of
// the bib's current identifiers and title; incomplete identifiers contribute
// nothing. Duplicate keys collapse, so a bib never carries the same match
// point twice.
func GenerateMatchPoints(bib *models.BibRecord, identifiers []models.BibIdentifier) []models.MatchPoint {
	matchPoints := make([]models.MatchPoint, 0, len(identifiers)+1)
	seen := make(map[uuid.UUID]struct{}, len(identifiers)+1)

	add := func(mp models.MatchPoint) {
		if _, dup := seen[mp.Value]; dup {
			return
		}

		seen[mp.Value] = struct{}{}
		matchPoints = append(matchPoints, mp)
	}

	for _, ident := range identifiers {
		if !ident.Complete() {
			continue
		}

		add(models.IdentifierMatchPoint(bib.ID, ident.Namespace, ident.Value))
	}

	if bib.BlockingTitle != "" {
		add(models.TitleMatchPoint(bib.ID, bib.BlockingTitle))
	}

	return matchPoints
}

// matchPointValues extracts the hashed values used for candidate lookup.
func matchPointValues(matchPoints []models.MatchPoint) []uuid.UUID {
	values := make([]uuid.UUID, len(matchPoints))
	for i, mp := range matchPoints {
		values[i] = mp.Value
	}

	return values
}
