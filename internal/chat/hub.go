package chat

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const channelPrefix = "swapchat:"

// Hub owns the registry of live connections, keyed by offer id. All access
// goes through the mutex; handlers hold a *Hub, never the maps.
//
// With a Redis client the broadcast takes a round trip through pub/sub so
// every server instance fans out to its own sockets. Without one, dispatch
// is local.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*Client]bool

	// pubMu serializes persist-then-dispatch so subscribers see messages
	// in persistence order.
	pubMu sync.Mutex

	store MessageStore
	redis *redis.Client
	log   *logrus.Logger
}

func NewHub(store MessageStore, redisClient *redis.Client, log *logrus.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
		store: store,
		redis: redisClient,
		log:   log,
	}
}

// Subscribe adds the client to its offer's room. Idempotent.
func (h *Hub) Subscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.OfferID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[c.OfferID] = room
	}
	room[c] = true
}

// Unsubscribe removes the client and closes its send channel. Safe to call
// more than once; the room entry is the close guard.
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(c)
}

// drop must be called with h.mu held.
func (h *Hub) drop(c *Client) {
	room, ok := h.rooms[c.OfferID]
	if !ok {
		return
	}
	if _, ok := room[c]; ok {
		delete(room, c)
		close(c.Send)
	}
	if len(room) == 0 {
		delete(h.rooms, c.OfferID)
	}
}

// Publish persists the message, then broadcasts it to every live subscriber
// of the offer. Persistence failures fail the publish; delivery failures
// only drop the failing connection.
func (h *Hub) Publish(ctx context.Context, offerID, sender, content string) (*Message, error) {
	h.pubMu.Lock()
	defer h.pubMu.Unlock()

	msg, err := h.store.SaveMessage(ctx, offerID, sender, content)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	if h.redis != nil {
		if err := h.redis.Publish(ctx, channelPrefix+offerID, payload).Err(); err != nil {
			h.log.WithError(err).Warn("redis publish failed, delivering locally")
			h.deliver(offerID, payload)
		}
		return msg, nil
	}

	h.deliver(offerID, payload)
	return msg, nil
}

// deliver fans the payload out to the offer's room. A client whose send
// buffer is full is dropped rather than blocking the rest of the room.
func (h *Hub) deliver(offerID string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.rooms[offerID] {
		select {
		case c.Send <- payload:
		default:
			h.drop(c)
		}
	}
}

// Run consumes the Redis relay until ctx is cancelled. No-op without Redis.
func (h *Hub) Run(ctx context.Context) {
	if h.redis == nil {
		return
	}

	pubsub := h.redis.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			offerID := strings.TrimPrefix(msg.Channel, channelPrefix)
			h.deliver(offerID, []byte(msg.Payload))
		}
	}
}
