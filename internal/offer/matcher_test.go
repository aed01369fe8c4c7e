package offer

import "testing"

func TestMatches(t *testing.T) {
	base := func() (*Offer, *Offer) {
		existing := &Offer{
			ID: "a", HaveName: "rice", WantName: "maize",
			HaveOwner: "u1", Status: StatusPending,
		}
		incoming := &Offer{
			ID: "b", HaveName: "maize", WantName: "rice",
			HaveOwner: "u2", Status: StatusPending,
		}
		return existing, incoming
	}

	t.Run("reciprocal pending pair matches", func(t *testing.T) {
		existing, incoming := base()
		if !Matches(existing, incoming) {
			t.Fatal("expected match")
		}
	})

	t.Run("non-reciprocal names do not match", func(t *testing.T) {
		existing, incoming := base()
		incoming.WantName = "yam"
		if Matches(existing, incoming) {
			t.Fatal("unexpected match")
		}
	})

	t.Run("same owner never matches", func(t *testing.T) {
		existing, incoming := base()
		incoming.HaveOwner = "u1"
		if Matches(existing, incoming) {
			t.Fatal("unexpected match")
		}
	})

	t.Run("non-pending candidate excluded", func(t *testing.T) {
		existing, incoming := base()
		existing.Status = StatusMatched
		if Matches(existing, incoming) {
			t.Fatal("unexpected match")
		}
	})

	t.Run("declined pair permanently excluded", func(t *testing.T) {
		existing, incoming := base()
		existing.DeclinedWith = []string{"b"}
		if Matches(existing, incoming) {
			t.Fatal("candidate that declined the incoming offer must not match")
		}

		existing, incoming = base()
		incoming.DeclinedWith = []string{"a"}
		if Matches(existing, incoming) {
			t.Fatal("incoming offer that declined the candidate must not match")
		}
	})

	t.Run("offer never matches itself", func(t *testing.T) {
		existing, incoming := base()
		incoming.ID = existing.ID
		if Matches(existing, incoming) {
			t.Fatal("offer matched itself")
		}
	})
}
