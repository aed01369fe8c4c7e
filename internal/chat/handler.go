package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/onos231/Afromarket/internal/middleware"
	"github.com/onos231/Afromarket/internal/offer"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// OfferFinder is what we need from the offer service: existence checks for
// the REST chat endpoints. The interface keeps the packages loosely coupled.
type OfferFinder interface {
	Get(ctx context.Context, id string) (*offer.Offer, error)
}

type Handler struct {
	hub    *Hub
	store  MessageStore
	offers OfferFinder
}

func NewHandler(hub *Hub, store MessageStore, offers OfferFinder) *Handler {
	return &Handler{
		hub:    hub,
		store:  store,
		offers: offers,
	}
}

// GetMessages lists an offer's chat history, oldest first.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	offerID := chi.URLParam(r, "id")

	if _, err := h.offers.Get(r.Context(), offerID); err != nil {
		if errors.Is(err, offer.ErrNotFound) {
			http.Error(w, "Offer not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	messages, err := h.store.ListByOffer(r.Context(), offerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"messages": messages})
}

// PostMessage persists and broadcasts a message from the authenticated user.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	sender, ok := middleware.Username(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	offerID := chi.URLParam(r, "id")
	if _, err := h.offers.Get(r.Context(), offerID); err != nil {
		if errors.Is(err, offer.ErrNotFound) {
			http.Error(w, "Offer not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}

	msg, err := h.hub.Publish(r.Context(), offerID, sender, req.Content)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"chat": msg})
}

// ServeWs upgrades the request and joins the offer's live channel.
func (h *Handler) ServeWs(w http.ResponseWriter, r *http.Request) {
	offerID := chi.URLParam(r, "id")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.log.WithError(err).Error("websocket upgrade failed")
		return
	}

	client := NewClient(h.hub, conn, offerID)
	h.hub.Subscribe(client)

	go client.WritePump()
	go client.ReadPump()
}
