package offer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListFilter narrows a listing to an owner and/or a status set.
// Zero values mean "any".
type ListFilter struct {
	Owner    string
	Statuses []string
}

// Store is the durable home of offers. Mutations touching a matched pair
// are applied to both rows in one transaction so a concurrent reader never
// observes one side flipped and the other not.
type Store interface {
	// CreateAndMatch inserts the offer and, in the same transaction, links
	// it to a reciprocal pending offer when one exists. Both sides of the
	// returned pair reflect the committed state; partner is nil when no
	// match was found.
	CreateAndMatch(ctx context.Context, o *Offer) (partner *Offer, err error)
	GetByID(ctx context.Context, id string) (*Offer, error)
	List(ctx context.Context, f ListFilter, page, pageSize int) ([]Offer, int, error)
	Update(ctx context.Context, o *Offer) error
	// UpdatePair persists both offers atomically. partner may be nil.
	UpdatePair(ctx context.Context, o, partner *Offer) error
	// ResetPair persists both offers and deletes every chat message
	// belonging to either offer id, all in one transaction.
	ResetPair(ctx context.Context, o, partner *Offer) error
	DeleteTerminalByOwner(ctx context.Context, owner string) (int64, error)
	// DeleteTerminalByID removes one terminal offer owned by owner and
	// reports whether a row was actually deleted.
	DeleteTerminalByID(ctx context.Context, id, owner string) (bool, error)
}

const offerColumns = `id, have_name, have_quantity, have_category, have_image, have_owner,
	want_name, want_quantity, want_category, want_image, want_owner,
	location, message, status, created_at, matched_with, completion_code, confirmed_by, declined_with`

type pgStore struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOffer(row rowScanner) (*Offer, error) {
	o := &Offer{}
	err := row.Scan(
		&o.ID, &o.HaveName, &o.HaveQuantity, &o.HaveCategory, &o.HaveImage, &o.HaveOwner,
		&o.WantName, &o.WantQuantity, &o.WantCategory, &o.WantImage, &o.WantOwner,
		&o.Location, &o.Message, &o.Status, &o.Timestamp, &o.MatchedWith,
		&o.CompletionCode, &o.ConfirmedBy, &o.DeclinedWith,
	)
	if err != nil {
		return nil, err
	}
	if o.DeclinedWith == nil {
		o.DeclinedWith = []string{}
	}
	return o, nil
}

func (s *pgStore) CreateAndMatch(ctx context.Context, o *Offer) (*Offer, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO offers (`+offerColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		o.ID, o.HaveName, o.HaveQuantity, o.HaveCategory, o.HaveImage, o.HaveOwner,
		o.WantName, o.WantQuantity, o.WantCategory, o.WantImage, o.WantOwner,
		o.Location, o.Message, o.Status, o.Timestamp, o.MatchedWith,
		o.CompletionCode, o.ConfirmedBy, o.DeclinedWith,
	)
	if err != nil {
		return nil, fmt.Errorf("insert offer: %w", err)
	}

	// Reciprocal search. The row lock makes concurrent creators racing for
	// the same pending offer serialize; SKIP LOCKED lets the loser fall
	// through to an unmatched insert instead of blocking.
	row := tx.QueryRow(ctx, `
		SELECT `+offerColumns+` FROM offers
		WHERE want_name = $1
		  AND have_name = $2
		  AND status = $3
		  AND have_owner <> $4
		  AND id <> $5
		  AND NOT (id = ANY($6))
		  AND NOT ($5 = ANY(declined_with))
		LIMIT 1
		FOR UPDATE SKIP LOCKED`,
		o.HaveName, o.WantName, StatusPending, o.HaveOwner, o.ID, o.DeclinedWith,
	)

	match, err := scanOffer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tx.Commit(ctx)
		}
		return nil, fmt.Errorf("match search: %w", err)
	}

	o.Status = StatusMatched
	o.MatchedWith = &match.ID
	if o.WantOwner == nil {
		o.WantOwner = &match.HaveOwner
	}
	match.Status = StatusMatched
	match.MatchedWith = &o.ID
	if match.WantOwner == nil {
		match.WantOwner = &o.HaveOwner
	}

	if err := updateOfferTx(ctx, tx, o); err != nil {
		return nil, err
	}
	if err := updateOfferTx(ctx, tx, match); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return match, nil
}

func updateOfferTx(ctx context.Context, tx pgx.Tx, o *Offer) error {
	_, err := tx.Exec(ctx, `
		UPDATE offers SET
			status = $2,
			want_owner = $3,
			matched_with = $4,
			completion_code = $5,
			confirmed_by = $6,
			declined_with = $7
		WHERE id = $1`,
		o.ID, o.Status, o.WantOwner, o.MatchedWith, o.CompletionCode, o.ConfirmedBy, o.DeclinedWith,
	)
	if err != nil {
		return fmt.Errorf("update offer %s: %w", o.ID, err)
	}
	return nil
}

func (s *pgStore) GetByID(ctx context.Context, id string) (*Offer, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, id)
	o, err := scanOffer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *pgStore) List(ctx context.Context, f ListFilter, page, pageSize int) ([]Offer, int, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 4)

	if f.Owner != "" {
		args = append(args, f.Owner)
		where = append(where, fmt.Sprintf("have_owner = $%d", len(args)))
	}
	if len(f.Statuses) > 0 {
		args = append(args, f.Statuses)
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM offers"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, pageSize, (page-1)*pageSize)
	rows, err := s.pool.Query(ctx, fmt.Sprintf(
		`SELECT `+offerColumns+` FROM offers%s ORDER BY created_at, id LIMIT $%d OFFSET $%d`,
		clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	offers := []Offer{}
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, 0, err
		}
		offers = append(offers, *o)
	}
	return offers, total, rows.Err()
}

func (s *pgStore) Update(ctx context.Context, o *Offer) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := updateOfferTx(ctx, tx, o); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *pgStore) UpdatePair(ctx context.Context, o, partner *Offer) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := updateOfferTx(ctx, tx, o); err != nil {
		return err
	}
	if partner != nil {
		if err := updateOfferTx(ctx, tx, partner); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *pgStore) ResetPair(ctx context.Context, o, partner *Offer) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ids := []string{o.ID}
	if err := updateOfferTx(ctx, tx, o); err != nil {
		return err
	}
	if partner != nil {
		ids = append(ids, partner.ID)
		if err := updateOfferTx(ctx, tx, partner); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM chat_messages WHERE offer_id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("purge chat: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *pgStore) DeleteTerminalByOwner(ctx context.Context, owner string) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM offers WHERE have_owner = $1 AND status = ANY($2)`,
		owner, []string{StatusCompleted, StatusDeclined},
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *pgStore) DeleteTerminalByID(ctx context.Context, id, owner string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM offers WHERE id = $1 AND have_owner = $2 AND status = ANY($3)`,
		id, owner, []string{StatusCompleted, StatusDeclined},
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
