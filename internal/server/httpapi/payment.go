package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/photoglow/internal/common"
	"github.com/dmitrijs2005/photoglow/internal/server/checkout"
	"github.com/dmitrijs2005/photoglow/internal/server/pricing"
	"github.com/dmitrijs2005/photoglow/internal/server/reconcile"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// seam for tests
var constructEvent = webhook.ConstructEvent

const maxWebhookBody = 1 << 20

type planResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	AmountCents int64  `json:"amountCents"`
	Credits     int64  `json:"credits"`
}

func (h *Handler) listPlans(w http.ResponseWriter, r *http.Request) {
	all := pricing.All()
	plans := make([]planResponse, 0, len(all))
	for _, p := range all {
		plans = append(plans, planResponse{
			ID: p.ID, Name: p.Name, Description: p.Description,
			AmountCents: p.AmountCents, Credits: p.Credits,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "plans": plans})
}

type checkoutRequest struct {
	Plan     string `json:"plan"`
	Email    string `json:"email"`
	ImageKey string `json:"imageKey"`
	Context  string `json:"context"`
}

type checkoutResponse struct {
	Success        bool   `json:"success"`
	SessionID      string `json:"sessionId"`
	URL            string `json:"url"`
	RequiresSignup bool   `json:"requiresSignup"`
}

func (h *Handler) createCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account := accountFromContext(r.Context())
	if account == nil && req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	intent, err := checkout.BuildIntent(account, req.Plan, req.Context, req.ImageKey, req.Email)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	session, err := h.checkout.CreateSession(r.Context(), intent)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, checkoutResponse{
		Success:        true,
		SessionID:      session.ID,
		URL:            session.URL,
		RequiresSignup: session.RequiresSignup,
	})
}

// stripeWebhook verifies the provider signature and feeds completed
// checkout sessions to the reconciler. Reconciliation failures return 5xx
// so the provider redelivers; the journal makes the retry safe.
func (h *Handler) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "error reading body")
		return
	}

	event, err := constructEvent(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		h.logger.Warn(r.Context(), "webhook signature verification failed", "error", err)
		h.writeServiceError(w, r, fmt.Errorf("%w: %v", common.ErrorSignatureInvalid, err))
		return
	}

	if event.Type != "checkout.session.completed" {
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		writeError(w, http.StatusBadRequest, "malformed event payload")
		return
	}

	accountID := session.Metadata["userId"]
	if accountID == checkout.GuestUserID {
		accountID = ""
	}

	_, err = h.reconciler.Apply(r.Context(), &reconcile.Event{
		SourceTransactionID: session.ID,
		AccountID:           accountID,
		Email:               session.Metadata["email"],
		Plan:                session.Metadata["plan"],
		Context:             session.Metadata["context"],
		ImageKey:            session.Metadata["imageKey"],
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

type downloadRequest struct {
	ImageKey string `json:"imageKey"`
}

type downloadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Credits int64  `json:"credits"`
}

func (h *Handler) authorizeDownload(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ImageKey == "" {
		writeError(w, http.StatusBadRequest, "imageKey is required")
		return
	}

	grant, err := h.downloads.Authorize(r.Context(), accountFromContext(r.Context()), req.ImageKey)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, downloadResponse{Success: true, URL: grant.URL, Credits: grant.Balance})
}
