package offer

import (
	"strings"
	"time"
)

// Offer statuses. matched_with is only set while a pair sits in
// matched or later; decline-swap drops both sides back to pending.
const (
	StatusPending       = "pending"
	StatusMatched       = "matched"
	StatusCodeGenerated = "code_generated"
	StatusCompleted     = "completed"
	StatusDeclined      = "declined"
)

type Offer struct {
	ID string `json:"id"`

	HaveName     string  `json:"have_name"`
	HaveQuantity string  `json:"have_quantity"`
	HaveCategory string  `json:"have_category"`
	HaveImage    *string `json:"have_image"`
	HaveOwner    string  `json:"have_owner"`

	WantName     string  `json:"want_name"`
	WantQuantity string  `json:"want_quantity"`
	WantCategory string  `json:"want_category"`
	WantImage    *string `json:"want_image"`
	WantOwner    *string `json:"want_owner"`

	Location  string    `json:"location"`
	Message   *string   `json:"message"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`

	MatchedWith    *string  `json:"matched_with"`
	CompletionCode *string  `json:"-"`
	ConfirmedBy    *string  `json:"confirmed_by"`
	DeclinedWith   []string `json:"declined_with"`
}

// IsTerminal reports whether the offer can be purged from history.
func (o *Offer) IsTerminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusDeclined
}

// HasDeclined reports whether this offer was already matched-and-declined
// against the given offer id.
func (o *Offer) HasDeclined(id string) bool {
	for _, d := range o.DeclinedWith {
		if d == id {
			return true
		}
	}
	return false
}

// Payload is an offer as every endpoint serializes it, with its badge.
type Payload struct {
	Offer
	Badge string `json:"badge"`
}

func WithBadge(o Offer) Payload {
	return Payload{Offer: o, Badge: BadgeForStatus(o.Status)}
}

// BadgeForStatus derives the display label for a status.
// Unrecognized statuses pass through unchanged.
func BadgeForStatus(status string) string {
	switch status {
	case StatusPending:
		return "Pending"
	case StatusMatched:
		return "Matched"
	case StatusCompleted, StatusDeclined:
		return strings.ToUpper(status[:1]) + status[1:]
	default:
		return status
	}
}

var categories = map[string]string{
	"rice":    "Grains",
	"maize":   "Grains",
	"millet":  "Grains",
	"sorghum": "Grains",

	"yam":          "Tubers",
	"cassava":      "Tubers",
	"cocoyam":      "Tubers",
	"sweet potato": "Tubers",

	"palm oil":      "Oils",
	"groundnut oil": "Oils",
	"vegetable oil": "Oils",

	"beans":    "Legumes",
	"lentils":  "Legumes",
	"soybeans": "Legumes",

	"onion":  "Spices",
	"garlic": "Spices",
	"ginger": "Spices",
}

// CategorizeItem maps an item name to its category by exact
// lowercase lookup. Unknown names fall into Misc.
func CategorizeItem(name string) string {
	if c, ok := categories[strings.ToLower(name)]; ok {
		return c
	}
	return "Misc"
}

// Item is the have/want half of a creation request. The category field is
// accepted for compatibility but always re-derived server side.
type Item struct {
	Name     string  `json:"name"`
	Quantity string  `json:"quantity"`
	Category string  `json:"category"`
	Image    *string `json:"image"`
	Owner    *string `json:"owner"`
}

type CreateRequest struct {
	HaveItem Item    `json:"have_item"`
	WantItem Item    `json:"want_item"`
	Location string  `json:"location"`
	Message  *string `json:"message"`
}

// MatchPair is one row of /offers/matches/full: the caller's side plus the
// linked reciprocal offer, when it still exists.
type MatchPair struct {
	YourOffer    Payload  `json:"your_offer"`
	MatchedOffer *Payload `json:"matched_offer"`
}
