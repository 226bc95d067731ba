package models

import "github.com/google/uuid"

// identityNamespace is the UUIDv5 namespace for all derived record identities.
// Every deterministic ID in the system hashes into this namespace so that
// re-ingesting the same source data always lands on the same rows.
var identityNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("dcb.openlibraryenvironment.org"))

// BibID derives the stable identity of a bib record from its source system
// and source record ID.
func BibID(sourceSystemID uuid.UUID, sourceRecordID string) uuid.UUID {
	return uuid.NewSHA1(identityNamespace, []byte("bib:"+sourceSystemID.String()+":"+sourceRecordID))
}

// IdentifierID derives the stable identity of a bib identifier from its
// namespace, value and owning bib, making identifier upserts idempotent.
func IdentifierID(ownerID uuid.UUID, namespace, value string) uuid.UUID {
	return uuid.NewSHA1(identityNamespace, []byte("identifier:"+ownerID.String()+":"+namespace+":"+value))
}

// MatchPointValue hashes an encoded match-point key ("id:..." or "title:...")
// into a fixed-width UUID so candidate lookups hit a uniform index.
func MatchPointValue(key string) uuid.UUID {
	return uuid.NewSHA1(identityNamespace, []byte("match-point:"+key))
}
