package handlers

import (
	"errors"
	"net/http"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/apperr"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/store"
)

// HomeHandler serves the public storefront reads.
type HomeHandler struct {
	Store *store.Store
}

func (h *HomeHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "API Ghalya is working!"})
}

func (h *HomeHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.listProducts(w, r, false)
}

func (h *HomeHandler) Bestsellers(w http.ResponseWriter, r *http.Request) {
	h.listProducts(w, r, true)
}

func (h *HomeHandler) listProducts(w http.ResponseWriter, r *http.Request, bestsellersOnly bool) {
	products, err := h.Store.ListProducts(r.Context(), bestsellersOnly)
	if err != nil {
		writeError(w, r, apperr.Internal(err, "error fetching products"))
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *HomeHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, apperr.NotFound("product not found"))
		return
	}
	p, err := h.Store.GetProduct(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, apperr.NotFound("product not found"))
		return
	}
	if err != nil {
		writeError(w, r, apperr.Internal(err, "error fetching product"))
		return
	}
	writeJSON(w, http.StatusOK, p)
}
