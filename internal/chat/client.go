package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second    // Time allowed to write a message to the peer.
	pongWait       = 60 * time.Second    // Time allowed to read the next pong message from the peer.
	pingPeriod     = (pongWait * 9) / 10 // Send pings to peer with this period. Must be less than pongWait.
	maxMessageSize = 4096                // Maximum message size allowed from peer.
)

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// OfferID names the channel this connection is subscribed to.
	OfferID string

	// Buffered channel of outbound payloads.
	Send chan []byte
}

func NewClient(hub *Hub, conn *websocket.Conn, offerID string) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		OfferID: offerID,
		Send:    make(chan []byte, 256),
	}
}

// ReadPump pumps inbound frames into the hub. A disconnect of any kind ends
// the loop and unsubscribes the client; it never propagates further.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unsubscribe(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).Debug("websocket closed")
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Content == "" {
			continue
		}

		if _, err := c.hub.Publish(context.Background(), c.OfferID, msg.Sender, msg.Content); err != nil {
			c.hub.log.WithError(err).Error("failed to publish chat message")
		}
	}
}

// WritePump pumps payloads from the hub to the websocket connection, with
// a ping keepalive so dead peers get pruned.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub dropped us.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
