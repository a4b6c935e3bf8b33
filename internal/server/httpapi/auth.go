package httpapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/photoglow/internal/server/models"
)

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Credits  int64  `json:"credits"`
}

type authResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    userResponse `json:"user"`
}

func toUserResponse(a *models.Account) userResponse {
	return userResponse{ID: a.ID, Username: a.Username, Email: a.Email, Credits: a.Credits}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	switch {
	case req.Username == "" || req.Email == "" || req.Password == "":
		writeError(w, http.StatusBadRequest, "all fields are required")
		return
	case !strings.Contains(req.Email, "@"):
		writeError(w, http.StatusBadRequest, "invalid email format")
		return
	case len(req.Password) < 6:
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	account, token, err := h.identity.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Success: true, Token: token, User: toUserResponse(account)})
}

type loginRequest struct {
	EmailOrUsername string `json:"emailOrUsername"`
	Password        string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.EmailOrUsername == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "all fields are required")
		return
	}

	account, token, err := h.identity.Authenticate(r.Context(), req.EmailOrUsername, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Success: true, Token: token, User: toUserResponse(account)})
}

// googleCallback finishes a federated sign-in. The email has been verified
// by the provider before this redirect fires; the token ends up in the URL
// fragment the frontend picks up.
func (h *Handler) googleCallback(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		http.Redirect(w, r, h.baseURL, http.StatusFound)
		return
	}
	subject := r.URL.Query().Get("sub")

	_, token, err := h.identity.ResolveFederated(r.Context(), email, subject)
	if err != nil {
		h.logger.Error(r.Context(), "federated sign-in failed", "error", err)
		http.Redirect(w, r, h.baseURL, http.StatusFound)
		return
	}

	http.Redirect(w, r, h.baseURL+"/?googleAuth=true&token="+url.QueryEscape(token), http.StatusFound)
}
