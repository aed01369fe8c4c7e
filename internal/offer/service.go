package offer

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("offer not found")
	ErrNotCreator     = errors.New("only the creator can generate the code")
	ErrNotResponder   = errors.New("only the responder can confirm the code")
	ErrNotParticipant = errors.New("you are not part of this swap")
	ErrNotMatched     = errors.New("offer is not matched")
	ErrCodeNotIssued  = errors.New("no completion code has been issued")
	ErrInvalidCode    = errors.New("invalid code")
)

const (
	codeLength   = 20
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Service drives the swap lifecycle: creation with reciprocal matching,
// code issuance and confirmation, paired complete/decline, the
// decline-and-reset path, and history purges.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Create persists a new pending offer under owner and links it to a
// reciprocal pending offer when one exists. Matching is case-insensitive
// on item names; the insert and the link commit together.
func (s *Service) Create(ctx context.Context, owner string, req *CreateRequest) (*Offer, error) {
	o := &Offer{
		ID:           uuid.NewString(),
		HaveName:     strings.ToLower(req.HaveItem.Name),
		HaveQuantity: req.HaveItem.Quantity,
		HaveCategory: CategorizeItem(req.HaveItem.Name),
		HaveImage:    req.HaveItem.Image,
		HaveOwner:    owner,
		WantName:     strings.ToLower(req.WantItem.Name),
		WantQuantity: req.WantItem.Quantity,
		WantCategory: CategorizeItem(req.WantItem.Name),
		WantImage:    req.WantItem.Image,
		WantOwner:    req.WantItem.Owner,
		Location:     req.Location,
		Message:      req.Message,
		Status:       StatusPending,
		Timestamp:    s.now().UTC(),
		DeclinedWith: []string{},
	}

	if _, err := s.store.CreateAndMatch(ctx, o); err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Offer, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, page, pageSize int) ([]Offer, int, error) {
	return s.store.List(ctx, f, page, pageSize)
}

// FullMatches returns the caller's matched offers together with the linked
// reciprocal side of each.
func (s *Service) FullMatches(ctx context.Context, owner string, page, pageSize int) ([]MatchPair, int, error) {
	offers, total, err := s.store.List(ctx, ListFilter{Owner: owner, Statuses: []string{StatusMatched}}, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	pairs := make([]MatchPair, 0, len(offers))
	for _, o := range offers {
		pair := MatchPair{YourOffer: WithBadge(o)}
		if o.MatchedWith != nil {
			if partner, err := s.store.GetByID(ctx, *o.MatchedWith); err == nil {
				p := WithBadge(*partner)
				pair.MatchedOffer = &p
			}
		}
		pairs = append(pairs, pair)
	}
	return pairs, total, nil
}

// Complete marks a matched offer and its partner completed.
// Only the creator may complete, and only from the matched state.
func (s *Service) Complete(ctx context.Context, id, actor string) (*Offer, error) {
	return s.finish(ctx, id, actor, StatusCompleted)
}

// Decline marks a matched offer and its partner declined.
func (s *Service) Decline(ctx context.Context, id, actor string) (*Offer, error) {
	return s.finish(ctx, id, actor, StatusDeclined)
}

func (s *Service) finish(ctx context.Context, id, actor, status string) (*Offer, error) {
	o, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.HaveOwner != actor {
		return nil, ErrNotFound
	}
	if o.Status != StatusMatched {
		return nil, ErrNotMatched
	}

	partner, err := s.partnerOf(ctx, o)
	if err != nil {
		return nil, err
	}

	o.Status = status
	if partner != nil {
		partner.Status = status
	}
	if err := s.store.UpdatePair(ctx, o, partner); err != nil {
		return nil, err
	}
	return o, nil
}

// GenerateCode issues a fresh completion code for a matched offer and moves
// it to code_generated. Re-issuing overwrites the previous code.
func (s *Service) GenerateCode(ctx context.Context, id, actor string) (string, error) {
	o, err := s.store.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if o.HaveOwner != actor {
		return "", ErrNotCreator
	}
	if o.Status != StatusMatched && o.Status != StatusCodeGenerated {
		return "", ErrNotMatched
	}

	code, err := generateSecureCode(codeLength)
	if err != nil {
		return "", err
	}
	o.CompletionCode = &code
	o.Status = StatusCodeGenerated

	if err := s.store.Update(ctx, o); err != nil {
		return "", err
	}
	return code, nil
}

// ConfirmCode completes the swap when the responder supplies the exact code
// the creator generated. The code is single-use: it is cleared on success.
func (s *Service) ConfirmCode(ctx context.Context, id, code, actor string) (*Offer, error) {
	o, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.WantOwner == nil || *o.WantOwner != actor {
		return nil, ErrNotResponder
	}
	if o.Status != StatusCodeGenerated || o.CompletionCode == nil {
		return nil, ErrCodeNotIssued
	}
	if *o.CompletionCode != code {
		return nil, ErrInvalidCode
	}

	partner, err := s.partnerOf(ctx, o)
	if err != nil {
		return nil, err
	}

	o.Status = StatusCompleted
	o.CompletionCode = nil
	o.ConfirmedBy = &actor
	if partner != nil {
		partner.Status = StatusCompleted
	}

	if err := s.store.UpdatePair(ctx, o, partner); err != nil {
		return nil, err
	}
	return o, nil
}

// DeclineSwap resets both sides of a swap to pending, records the pair as
// mutually declined so the matcher never re-links them, and purges every
// chat message either offer accumulated.
func (s *Service) DeclineSwap(ctx context.Context, id, actor string) (*Offer, error) {
	o, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor != o.HaveOwner && (o.WantOwner == nil || *o.WantOwner != actor) {
		return nil, ErrNotParticipant
	}

	partner, err := s.partnerOf(ctx, o)
	if err != nil {
		return nil, err
	}

	if partner != nil {
		if !o.HasDeclined(partner.ID) {
			o.DeclinedWith = append(o.DeclinedWith, partner.ID)
		}
		if !partner.HasDeclined(o.ID) {
			partner.DeclinedWith = append(partner.DeclinedWith, o.ID)
		}
		reset(partner)
	}
	reset(o)

	if err := s.store.ResetPair(ctx, o, partner); err != nil {
		return nil, err
	}
	return o, nil
}

func reset(o *Offer) {
	o.Status = StatusPending
	o.MatchedWith = nil
	o.CompletionCode = nil
	o.ConfirmedBy = nil
}

// ClearHistory removes every terminal offer owned by actor.
func (s *Service) ClearHistory(ctx context.Context, actor string) (int64, error) {
	return s.store.DeleteTerminalByOwner(ctx, actor)
}

// DeleteHistoryItem removes one terminal offer owned by actor.
func (s *Service) DeleteHistoryItem(ctx context.Context, id, actor string) error {
	deleted, err := s.store.DeleteTerminalByID(ctx, id, actor)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *Service) partnerOf(ctx context.Context, o *Offer) (*Offer, error) {
	if o.MatchedWith == nil {
		return nil, nil
	}
	partner, err := s.store.GetByID(ctx, *o.MatchedWith)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return partner, nil
}

func generateSecureCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
