package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/catalog"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/middleware"
)

type productResponse struct {
	catalog.Product
	FormattedPrice string `json:"formattedPrice"`
}

func toProductResponse(p catalog.Product) productResponse {
	return productResponse{Product: p, FormattedPrice: catalog.FormatPrice(p.Price)}
}

func toProductResponses(ps []catalog.Product) []productResponse {
	out := make([]productResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProductResponse(p))
	}
	return out
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := catalog.ListFilter{Query: q.Get("q")}

	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, "limit must be an integer")
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, "offset must be an integer")
		return
	}

	products, err := h.catalog.List(r.Context(), filter)
	if err != nil {
		h.internalError(w, r, "list products failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.productError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		badJSON(w, r, err)
		return
	}
	p, err := h.catalog.Create(r.Context(), in)
	if err != nil {
		h.productError(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "product created", "product_id", p.ID)
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		badJSON(w, r, err)
		return
	}
	p, err := h.catalog.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.productError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.productError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) productError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		middleware.WriteError(w, r, http.StatusNotFound, "product not found")
	case errors.Is(err, catalog.ErrInvalidInput):
		middleware.WriteError(w, r, http.StatusBadRequest, err.Error())
	default:
		h.internalError(w, r, "catalog operation failed", err)
	}
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
