package handlers

import (
	"errors"
	"net/http"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/apperr"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/models"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/store"
)

const (
	defaultMessagePageSize = 10
	maxMessagePageSize     = 100
)

type messageListResponse struct {
	Success     bool             `json:"success"`
	Messages    []models.Message `json:"messages"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
	Total       int              `json:"total"`
}

type messageResponse struct {
	Success bool            `json:"success"`
	Message *models.Message `json:"message"`
}

type messageStatsResponse struct {
	Success bool                `json:"success"`
	Stats   *store.MessageStats `json:"stats"`
}

func (h *AdminHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(r, "limit", defaultMessagePageSize)
	if limit < 1 {
		limit = defaultMessagePageSize
	}
	if limit > maxMessagePageSize {
		limit = maxMessagePageSize
	}

	filter := store.MessageFilter{Limit: limit, Offset: (page - 1) * limit}
	switch status := r.URL.Query().Get("status"); status {
	case "", "all":
	default:
		if !models.MessageStatus(status).Valid() {
			writeError(w, r, apperr.Validation("invalid status"))
			return
		}
		filter.Status = models.MessageStatus(status)
	}

	messages, total, err := h.Store.ListMessages(r.Context(), filter)
	if err != nil {
		writeError(w, r, apperr.Internal(err, "error fetching messages"))
		return
	}

	writeJSON(w, http.StatusOK, messageListResponse{
		Success:     true,
		Messages:    messages,
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: page,
		Total:       total,
	})
}

// GetMessage returns one message and marks it read if it was new.
func (h *AdminHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, apperr.NotFound("message not found"))
		return
	}
	m, err := h.Store.OpenMessage(r.Context(), id)
	if err != nil {
		writeError(w, r, messageError(err, "error fetching message"))
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: m})
}

func (h *AdminHandler) UpdateMessageStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	status := models.MessageStatus(req.Status)
	if !status.Valid() {
		writeError(w, r, apperr.Validation("invalid status"))
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, apperr.NotFound("message not found"))
		return
	}

	m, err := h.Store.UpdateMessageStatus(r.Context(), id, status)
	if err != nil {
		writeError(w, r, messageError(err, "error updating message"))
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: m})
}

func (h *AdminHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, apperr.NotFound("message not found"))
		return
	}
	if err := h.Store.DeleteMessage(r.Context(), id); err != nil {
		writeError(w, r, messageError(err, "error deleting message"))
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: "message deleted"})
}

func (h *AdminHandler) MessageStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.GetMessageStats(r.Context())
	if err != nil {
		writeError(w, r, apperr.Internal(err, "error fetching message stats"))
		return
	}
	writeJSON(w, http.StatusOK, messageStatsResponse{Success: true, Stats: stats})
}

func messageError(err error, fallback string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("message not found")
	}
	return apperr.Internal(err, fallback)
}
