package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/auth"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/cart"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/checkout"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/middleware"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/order"
)

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	store, ok := h.openCart(w, r)
	if !ok {
		return
	}

	res, err := h.checkout.Checkout(r.Context(), id.UserID, store, checkout.Meta{
		CorrelationID: middleware.GetCorrelationID(r.Context()),
		CausationID:   middleware.GetCausationID(r.Context()),
	})
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			middleware.WriteError(w, r, http.StatusConflict, "cart is empty")
		case errors.Is(err, checkout.ErrProductUnavailable):
			middleware.WriteError(w, r, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, cart.ErrAmountOverflow):
			middleware.WriteError(w, r, http.StatusUnprocessableEntity, "order total is too large")
		default:
			h.internalError(w, r, "checkout failed", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	orders, err := h.orders.ListForUser(r.Context(), id.UserID)
	if err != nil {
		h.internalError(w, r, "list orders failed", err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	o, err := h.orders.GetForUser(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			middleware.WriteError(w, r, http.StatusNotFound, "order not found")
			return
		}
		h.internalError(w, r, "get order failed", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
