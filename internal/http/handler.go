package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/cart"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/catalog"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/checkout"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/middleware"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/order"
)

const maxJSONBody = 64 << 10

type CatalogService interface {
	List(ctx context.Context, f catalog.ListFilter) ([]catalog.Product, error)
	Get(ctx context.Context, id string) (catalog.Product, error)
	Create(ctx context.Context, in catalog.ProductInput) (catalog.Product, error)
	Update(ctx context.Context, id string, in catalog.ProductInput) (catalog.Product, error)
	Delete(ctx context.Context, id string) error
}

type CartOpener interface {
	Open(ctx context.Context, scope string) (*cart.Store, error)
}

type CheckoutService interface {
	Checkout(ctx context.Context, userID string, store *cart.Store, meta checkout.Meta) (checkout.Result, error)
}

type OrderReader interface {
	ListForUser(ctx context.Context, userID string) ([]order.Order, error)
	GetForUser(ctx context.Context, userID, orderID string) (*order.Order, error)
}

type Handler struct {
	logger   *slog.Logger
	catalog  CatalogService
	carts    CartOpener
	checkout CheckoutService
	orders   OrderReader
	admins   AdminService
	taxRate  decimal.Decimal
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		logger:   d.Logger,
		catalog:  d.Catalog,
		carts:    d.Carts,
		checkout: d.Checkout,
		orders:   d.Orders,
		admins:   d.Admins,
		taxRate:  d.TaxRate,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// internalError logs err and answers 500 without leaking its text.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg, "err", err, "path", r.URL.Path)
	middleware.WriteError(w, r, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var errBodyTooLarge = errors.New("request body too large")

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

func badJSON(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBodyTooLarge) {
		middleware.WriteError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	middleware.WriteError(w, r, http.StatusBadRequest, "invalid json")
}
