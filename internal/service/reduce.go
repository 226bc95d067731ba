package service

import (
	"sort"

	"github.com/google/uuid"

	"github.com/openlibraryenvironment/dcb-clustering/internal/models"
)

// candidate is one distinct cluster with its vote count.
type candidate struct {
	cluster models.ClusterRecord
	votes   int
}

// reduceClusterRecords decides the single cluster a bib belongs in, given the
// raw (duplicate-per-hit) candidate list and the bib's pre-existing cluster.
//
// Duplicates are grouped into vote counts and candidates ranked descending.
// On equal votes the bib's current cluster ranks first, so a bib whose
// evidence hasn't clearly shifted doesn't hop clusters; remaining ties order
// by cluster ID to keep the outcome independent of query row order. A
// current cluster that attracted no votes at all is appended last: it is
// still merged rather than left behind as an orphan, but only as a last
// resort.
//
// Returns (nil, nil) when there is no candidate at all — the caller creates
// a brand-new cluster. Otherwise the head is the winner and every remaining
// candidate must be absorbed into it.
func reduceClusterRecords(
	matched []models.ClusterRecord,
	current *models.ClusterRecord,
) (winner *models.ClusterRecord, losers []models.ClusterRecord) {
	votes := make(map[uuid.UUID]*candidate)
	order := make([]uuid.UUID, 0, len(matched))

	for _, c := range matched {
		if existing, ok := votes[c.ID]; ok {
			existing.votes++
			continue
		}

		votes[c.ID] = &candidate{cluster: c, votes: 1}
		order = append(order, c.ID)
	}

	ranked := make([]*candidate, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, votes[id])
	}

	currentID := uuid.Nil
	if current != nil {
		currentID = current.ID
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.votes != b.votes {
			return a.votes > b.votes
		}

		if a.cluster.ID == currentID {
			return true
		}

		if b.cluster.ID == currentID {
			return false
		}

		return a.cluster.ID.String() < b.cluster.ID.String()
	})

	if current != nil {
		if _, voted := votes[current.ID]; !voted {
			ranked = append(ranked, &candidate{cluster: *current})
		}
	}

	if len(ranked) == 0 {
		return nil, nil
	}

	winner = &ranked[0].cluster

	for _, c := range ranked[1:] {
		losers = append(losers, c.cluster)
	}

	return winner, losers
}
