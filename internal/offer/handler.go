package offer

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/onos231/Afromarket/internal/middleware"
)

const defaultPageSize = 20

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// page holds the listing envelope every collection endpoint shares.
type page struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalPages int  `json:"total_pages"`
	NextPage   *int `json:"next_page"`
	PrevPage   *int `json:"prev_page"`
}

func pageParams(r *http.Request) (int, int) {
	p, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || p < 1 {
		p = 1
	}
	size, err := strconv.Atoi(r.URL.Query().Get("page_size"))
	if err != nil || size < 1 {
		size = defaultPageSize
	}
	return p, size
}

func pageMeta(total, p, size int) page {
	meta := page{
		Total:      total,
		Page:       p,
		PageSize:   size,
		TotalPages: (total + size - 1) / size,
	}
	if p < meta.TotalPages {
		next := p + 1
		meta.NextPage = &next
	}
	if p > 1 {
		prev := p - 1
		meta.PrevPage = &prev
	}
	return meta
}

func payloads(offers []Offer) []Payload {
	out := make([]Payload, 0, len(offers))
	for _, o := range offers {
		out = append(out, WithBadge(o))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "Offer not found", http.StatusNotFound)
	case errors.Is(err, ErrNotCreator), errors.Is(err, ErrNotResponder), errors.Is(err, ErrNotParticipant):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrNotMatched), errors.Is(err, ErrCodeNotIssued), errors.Is(err, ErrInvalidCode):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.Username(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.HaveItem.Name == "" || req.WantItem.Name == "" {
		http.Error(w, "have_item and want_item names are required", http.StatusBadRequest)
		return
	}

	o, err := h.Service.Create(r.Context(), owner, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Offer created",
		"offer":   WithBadge(*o),
	})
}

// list serves the shared listing shape; key names the collection field.
func (h *Handler) list(w http.ResponseWriter, r *http.Request, f ListFilter, key string) {
	p, size := pageParams(r)
	offers, total, err := h.Service.List(r.Context(), f, p, size)
	if err != nil {
		h.writeError(w, err)
		return
	}

	meta := pageMeta(total, p, size)
	writeJSON(w, http.StatusOK, map[string]any{
		"total":       meta.Total,
		"page":        meta.Page,
		"page_size":   meta.PageSize,
		"total_pages": meta.TotalPages,
		"next_page":   meta.NextPage,
		"prev_page":   meta.PrevPage,
		key:           payloads(offers),
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, ListFilter{}, "offers")
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.Username(r.Context())
	h.list(w, r, ListFilter{Owner: owner}, "offers")
}

func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.Username(r.Context())
	h.list(w, r, ListFilter{Owner: owner, Statuses: []string{StatusPending, StatusMatched}}, "active_offers")
}

func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.Username(r.Context())
	h.list(w, r, ListFilter{Owner: owner, Statuses: []string{StatusCompleted, StatusDeclined}}, "history")
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.Username(r.Context())
	h.list(w, r, ListFilter{Owner: owner, Statuses: []string{StatusMatched}}, "matches")
}

func (h *Handler) ListFullMatches(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.Username(r.Context())
	p, size := pageParams(r)

	pairs, total, err := h.Service.FullMatches(r.Context(), owner, p, size)
	if err != nil {
		h.writeError(w, err)
		return
	}

	meta := pageMeta(total, p, size)
	writeJSON(w, http.StatusOK, map[string]any{
		"total":       meta.Total,
		"page":        meta.Page,
		"page_size":   meta.PageSize,
		"total_pages": meta.TotalPages,
		"next_page":   meta.NextPage,
		"prev_page":   meta.PrevPage,
		"matches":     pairs,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WithBadge(*o))
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.Username(r.Context())
	o, err := h.Service.Complete(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Offer marked as completed",
		"offer":   WithBadge(*o),
	})
}

func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.Username(r.Context())
	o, err := h.Service.Decline(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Offer declined",
		"offer":   WithBadge(*o),
	})
}

func (h *Handler) GenerateCode(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.Username(r.Context())
	code, err := h.Service.GenerateCode(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Code generated successfully",
		"code":    code,
	})
}

func (h *Handler) ConfirmCode(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.Username(r.Context())

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	o, err := h.Service.ConfirmCode(r.Context(), chi.URLParam(r, "id"), req.Code, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Swap completed successfully",
		"offer":   WithBadge(*o),
	})
}

func (h *Handler) DeclineSwap(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.Username(r.Context())
	o, err := h.Service.DeclineSwap(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Swap declined",
		"offer":   WithBadge(*o),
	})
}

func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.Username(r.Context())
	deleted, err := h.Service.ClearHistory(r.Context(), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "History cleared",
		"deleted": deleted,
	})
}

func (h *Handler) DeleteHistoryItem(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.Username(r.Context())
	if err := h.Service.DeleteHistoryItem(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "History item deleted",
	})
}
