package handlers

import (
	"net/http"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/apperr"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/models"
)

// ListOrders returns orders newest first with products resolved. page and
// limit are optional; without limit every order is returned.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	if limit < 0 {
		limit = 0
	}
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}

	offset := 0
	if limit > 0 {
		offset = (page - 1) * limit
	}

	list, err := h.Store.ListOrders(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, apperr.Internal(err, "error fetching orders"))
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if !models.OrderStatus(req.Status).Valid() {
		writeError(w, r, apperr.Conflict("invalid status"))
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, apperr.NotFound("order not found"))
		return
	}

	o, err := h.Engine.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
