// Package httpapi exposes the public HTTP surface: auth, account, checkout,
// the payment webhook, image enhancement and download authorization.
package httpapi

import (
	"context"

	"github.com/dmitrijs2005/photoglow/internal/logging"
	"github.com/dmitrijs2005/photoglow/internal/server/checkout"
	"github.com/dmitrijs2005/photoglow/internal/server/download"
	"github.com/dmitrijs2005/photoglow/internal/server/enhance"
	"github.com/dmitrijs2005/photoglow/internal/server/identity"
	"github.com/dmitrijs2005/photoglow/internal/server/ledger"
	"github.com/dmitrijs2005/photoglow/internal/server/reconcile"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// BlobStore is the object-storage surface the handlers need.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// CheckoutSessions opens provider checkout sessions for purchase intents.
type CheckoutSessions interface {
	CreateSession(ctx context.Context, intent *checkout.Intent) (*checkout.Session, error)
}

type Handler struct {
	logger        logging.Logger
	identity      *identity.Service
	ledger        *ledger.Service
	checkout      CheckoutSessions
	reconciler    *reconcile.Service
	downloads     *download.Service
	enhancer      enhance.Enhancer
	blobs         BlobStore
	baseURL       string
	webhookSecret string
}

type HandlerOptions struct {
	Logger        logging.Logger
	Identity      *identity.Service
	Ledger        *ledger.Service
	Checkout      CheckoutSessions
	Reconciler    *reconcile.Service
	Downloads     *download.Service
	Enhancer      enhance.Enhancer
	Blobs         BlobStore
	BaseURL       string
	WebhookSecret string
}

func NewHandler(opts HandlerOptions) *Handler {
	return &Handler{
		logger:        opts.Logger,
		identity:      opts.Identity,
		ledger:        opts.Ledger,
		checkout:      opts.Checkout,
		reconciler:    opts.Reconciler,
		downloads:     opts.Downloads,
		enhancer:      opts.Enhancer,
		blobs:         opts.Blobs,
		baseURL:       opts.BaseURL,
		webhookSecret: opts.WebhookSecret,
	}
}

// Router wires all routes. Auth-optional routes still resolve the account
// when a bearer token is present; auth-required routes reject without one.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/plans", h.listPlans)

		r.Post("/auth/signup", h.signup)
		r.Post("/auth/login", h.login)
		r.Get("/auth/google-callback", h.googleCallback)

		r.Post("/stripe/webhook", h.stripeWebhook)

		r.Group(func(r chi.Router) {
			r.Use(h.withOptionalAccount)
			r.Post("/stripe/checkout", h.createCheckout)
			r.Post("/ia", h.enhanceImage)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.withAccount)
			r.Get("/user/account", h.getAccount)
			r.Put("/user/account", h.updateAccount)
			r.Post("/download", h.authorizeDownload)
		})
	})

	return r
}
