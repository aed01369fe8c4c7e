package offer

// Matches reports whether existing is a reciprocal pending counterpart for
// o: mutual have/want item names, a different creator, and no decline
// history between the pair. Item names are compared as stored, already
// lowercased at creation.
//
// This is the Go statement of the predicate CreateAndMatch runs in SQL.
func Matches(existing, o *Offer) bool {
	return existing.ID != o.ID &&
		existing.Status == StatusPending &&
		existing.WantName == o.HaveName &&
		existing.HaveName == o.WantName &&
		existing.HaveOwner != o.HaveOwner &&
		!existing.HasDeclined(o.ID) &&
		!o.HasDeclined(existing.ID)
}
