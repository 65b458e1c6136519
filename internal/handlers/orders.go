package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/apperr"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/models"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/orders"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/store"
)

type OrderHandler struct {
	Store  *store.Store
	Engine *orders.Engine
}

type orderItemRequest struct {
	Product      flexString  `json:"product"`
	Quantity     flexString  `json:"quantity"`
	SelectedSize models.Size `json:"selectedSize"`
}

type orderRequest struct {
	CustomerName    string             `json:"customerName"`
	CustomerPhone   string             `json:"customerPhone"`
	CustomerAddress string             `json:"customerAddress"`
	Governorate     flexString         `json:"governorate"`
	Items           []orderItemRequest `json:"items"`
	Notes           string             `json:"notes"`
}

func (req orderRequest) input() orders.PlaceOrderInput {
	in := orders.PlaceOrderInput{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		Governorate:     req.Governorate.String(),
		Notes:           req.Notes,
	}
	for _, it := range req.Items {
		// Malformed ids resolve to no product; malformed quantities to zero.
		id, _ := it.Product.Int64()
		qty, _ := it.Quantity.Int()
		in.Items = append(in.Items, orders.ItemInput{
			ProductID:    id,
			Quantity:     qty,
			SelectedSize: models.Size(strings.TrimSpace(string(it.SelectedSize))),
		})
	}
	return in
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	order, err := h.Engine.PlaceOrder(r.Context(), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	offset := 0
	if limit > 0 {
		if page := queryInt(r, "page", 1); page > 1 {
			offset = (page - 1) * limit
		}
	}

	list, err := h.Store.ListOrders(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, apperr.Internal(err, "error fetching orders"))
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, apperr.NotFound("order not found"))
		return
	}
	o, err := h.Store.GetOrder(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, apperr.NotFound("order not found"))
		return
	}
	if err != nil {
		writeError(w, r, apperr.Internal(err, "error fetching order"))
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id, ok := pathID(r)
	if !ok {
		// Status is checked first so a bad value is reported even for a bad id.
		if !models.OrderStatus(req.Status).Valid() {
			writeError(w, r, apperr.Conflict("invalid status"))
			return
		}
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
