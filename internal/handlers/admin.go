package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/apperr"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/auth"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/images"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/orders"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/store"
)

type AdminHandler struct {
	Store         *store.Store
	Engine        *orders.Engine
	Auth          *auth.Authenticator
	Images        images.Store
	MaxImageBytes int64
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginUser struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    loginUser `json:"user"`
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	username := strings.TrimSpace(req.Username)

	if !h.Auth.CheckCredentials(username, req.Password) {
		slog.Warn("Admin login failed", "username", username, "ip", clientIP(r))
		writeError(w, r, auth.ErrBadLogin)
		return
	}

	token, _, err := h.Auth.Issue(username)
	if err != nil {
		writeError(w, r, apperr.Internal(err, "error issuing token"))
		return
	}

	slog.Info("Admin login successful", "username", username)
	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Message: "login successful",
		Token:   token,
		User:    loginUser{Username: username, Role: auth.RoleAdmin},
	})
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.GetDashboardStats(r.Context())
	if err != nil {
		writeError(w, r, apperr.Internal(err, "error fetching stats"))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
