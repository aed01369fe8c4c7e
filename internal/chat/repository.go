package chat

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageStore interface {
	// SaveMessage persists a message; the database assigns the id and the
	// timestamp, which together order the offer's channel.
	SaveMessage(ctx context.Context, offerID, sender, content string) (*Message, error)
	ListByOffer(ctx context.Context, offerID string) ([]Message, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) MessageStore {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) SaveMessage(ctx context.Context, offerID, sender, content string) (*Message, error) {
	msg := &Message{OfferID: offerID, Sender: sender, Content: content}
	query := `
		INSERT INTO chat_messages (offer_id, sender, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, offerID, sender, content).Scan(&msg.ID, &msg.Timestamp)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *pgRepository) ListByOffer(ctx context.Context, offerID string) ([]Message, error) {
	query := `
		SELECT id, offer_id, sender, content, created_at
		FROM chat_messages
		WHERE offer_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, offerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.OfferID, &msg.Sender, &msg.Content, &msg.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
