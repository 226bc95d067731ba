package models

import "github.com/google/uuid"

// MatchPoint is one blocking key derived from a bib, either from an
// identifier ("id:<namespace>:<value>") or the blocking title
// ("title:<blocking-title>"). Only the UUID hash of the key is stored;
// uniqueness is per (bib, value).
type MatchPoint struct {
	ID    uuid.UUID `json:"id"`
	BibID uuid.UUID `json:"bib_id"`
	Value uuid.UUID `json:"value"`
}

// IdentifierMatchPoint encodes an identifier-derived match point for a bib.
func IdentifierMatchPoint(bibID uuid.UUID, namespace, value string) MatchPoint {
	return newMatchPoint(bibID, "id:"+namespace+":"+value)
}

// TitleMatchPoint encodes the blocking-title match point for a bib.
func TitleMatchPoint(bibID uuid.UUID, blockingTitle string) MatchPoint {
	return newMatchPoint(bibID, "title:"+blockingTitle)
}

func newMatchPoint(bibID uuid.UUID, key string) MatchPoint {
	value := MatchPointValue(key)

	return MatchPoint{
		ID:    uuid.NewSHA1(identityNamespace, []byte("mp:"+bibID.String()+":"+value.String())),
		BibID: bibID,
		Value: value,
	}
}
