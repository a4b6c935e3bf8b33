package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

type imageResponse struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"createdAt"`
}

type accountResponse struct {
	Success bool            `json:"success"`
	User    userResponse    `json:"user"`
	Images  []imageResponse `json:"images"`
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())

	assets, err := h.ledger.ListAssets(r.Context(), account.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	images := make([]imageResponse, 0, len(assets))
	for _, a := range assets {
		url, err := h.blobs.PresignGet(r.Context(), a.BlobKey)
		if err != nil {
			h.logger.Warn(r.Context(), "error signing asset url", "key", a.BlobKey, "error", err)
			url = ""
		}
		images = append(images, imageResponse{
			ID:        a.ID,
			Key:       a.BlobKey,
			URL:       url,
			Plan:      a.Plan,
			CreatedAt: a.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, accountResponse{
		Success: true,
		User:    toUserResponse(account),
		Images:  images,
	})
}

type updateAccountRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// updateAccount changes the profile fields only. Credits move exclusively
// through purchases and downloads; there is no way to write a balance here.
func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	switch {
	case req.Username == "" || req.Email == "":
		writeError(w, http.StatusBadRequest, "username and email are required")
		return
	case !strings.Contains(req.Email, "@"):
		writeError(w, http.StatusBadRequest, "invalid email format")
		return
	}

	if err := h.ledger.UpdateProfile(r.Context(), account.ID, req.Username, req.Email); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    map[string]string{"username": req.Username, "email": req.Email},
	})
}
