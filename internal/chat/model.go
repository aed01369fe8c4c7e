package chat

import "time"

// Message is a persisted chat line. Messages belong to exactly one offer
// and are never mutated; decline-swap deletes them in bulk.
type Message struct {
	ID        int64     `json:"id"`
	OfferID   string    `json:"offer_id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// WSMessage is what a live client sends over the socket. The sender is
// client-supplied on this path; the REST path uses the authenticated user.
type WSMessage struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}
