package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/cart"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/catalog"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/middleware"
)

type cartResponse struct {
	Items   []cart.Item  `json:"items"`
	Summary cart.Summary `json:"summary"`
}

func (h *Handler) cartResponse(s cart.State) cartResponse {
	items := s.Items
	if items == nil {
		items = []cart.Item{}
	}
	return cartResponse{Items: items, Summary: cart.Summarize(items, h.taxRate)}
}

// openCart opens the cart addressed by the request's cart scope.
func (h *Handler) openCart(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	store, err := h.carts.Open(r.Context(), middleware.GetCartScope(r.Context()))
	if err != nil {
		if errors.Is(err, cart.ErrMissingScope) {
			middleware.WriteError(w, r, http.StatusBadRequest, "missing cart session")
			return nil, false
		}
		h.internalError(w, r, "open cart failed", err)
		return nil, false
	}
	return store, true
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.openCart(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.cartResponse(store.State()))
}

type addItemRequest struct {
	ProductID string `json:"productId"`
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badJSON(w, r, err)
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		middleware.WriteError(w, r, http.StatusBadRequest, "productId is required")
		return
	}

	p, err := h.catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			middleware.WriteError(w, r, http.StatusNotFound, "product not found")
			return
		}
		h.internalError(w, r, "load product failed", err)
		return
	}

	store, ok := h.openCart(w, r)
	if !ok {
		return
	}
	state := store.AddItem(r.Context(), cart.Candidate{ID: p.ID, Title: p.Title, Price: p.Price})
	writeJSON(w, http.StatusOK, h.cartResponse(state))
}

type updateQuantityRequest struct {
	Quantity json.RawMessage `json:"quantity"`
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badJSON(w, r, err)
		return
	}
	qty, err := parseQuantityField(req.Quantity)
	if err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, "quantity must be an integer")
		return
	}

	store, ok := h.openCart(w, r)
	if !ok {
		return
	}
	state := store.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), qty)
	writeJSON(w, http.StatusOK, h.cartResponse(state))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.openCart(w, r)
	if !ok {
		return
	}
	state := store.RemoveItem(r.Context(), chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, h.cartResponse(state))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.openCart(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.cartResponse(store.ClearCart(r.Context())))
}

// parseQuantityField accepts either a JSON number or a numeric string, the
// way form inputs tend to submit it.
func parseQuantityField(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, cart.ErrInvalidQuantity
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, cart.ErrInvalidQuantity
		}
		return cart.ParseQuantity(s)
	}
	return cart.ParseQuantity(string(raw))
}
