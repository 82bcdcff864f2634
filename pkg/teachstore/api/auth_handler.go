package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/edustack/teachstore/pkg/teachstore"
	"github.com/edustack/teachstore/pkg/teachstore/auth"
)

// AuthHandler handles login.
type AuthHandler struct {
	service teachstore.Service
	tokens  *auth.Tokens
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(service teachstore.Service, tokens *auth.Tokens) *AuthHandler {
	return &AuthHandler{service: service, tokens: tokens}
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the response body for a successful login.
type LoginResponse struct {
	AccessToken string           `json:"access_token"`
	User        *teachstore.User `json:"user"`
}

// Login checks credentials and issues an access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		slog.Error("failed to issue token", "user", user.Username, "err", err)
		respondMessage(w, r, http.StatusInternalServerError, "failed to issue token")
		return
	}

	respond(w, r, http.StatusOK, LoginResponse{AccessToken: token, User: user})
}
