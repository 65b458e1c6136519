package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/apperr"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/models"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/store"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type ContactHandler struct {
	Store *store.Store
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type contactResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID int64  `json:"messageId"`
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	m := &models.Message{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Subject:   strings.TrimSpace(req.Subject),
		Body:      strings.TrimSpace(req.Message),
		Status:    models.MessageNew,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	}
	if m.Name == "" || m.Email == "" || m.Subject == "" || m.Body == "" {
		writeError(w, r, apperr.Validation("all fields are required"))
		return
	}
	if !emailRegex.MatchString(m.Email) {
		writeError(w, r, apperr.Validation("invalid email address"))
		return
	}

	if err := h.Store.CreateMessage(r.Context(), m); err != nil {
		writeError(w, r, apperr.Internal(err, "error sending message, please try again"))
		return
	}

	writeJSON(w, http.StatusCreated, contactResponse{
		Success:   true,
		Message:   "Your message has been received. We will get back to you as soon as possible.",
		MessageID: m.ID,
	})
}
