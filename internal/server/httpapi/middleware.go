package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/photoglow/internal/common"
	"github.com/dmitrijs2005/photoglow/internal/server/models"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey int

const accountKey ctxKey = 0

// accountFromContext returns the resolved account, or nil for guests.
func accountFromContext(ctx context.Context) *models.Account {
	account, _ := ctx.Value(accountKey).(*models.Account)
	return account
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func (h *Handler) resolveAccount(r *http.Request) (*models.Account, error) {
	token := bearerToken(r)
	if token == "" {
		return nil, common.ErrorUnauthorized
	}

	claims, err := h.identity.VerifyToken(token)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	account, err := h.ledger.GetAccountByID(r.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}
	return account, nil
}

// withAccount rejects requests without a valid bearer token.
func (h *Handler) withAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, err := h.resolveAccount(r)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accountKey, account)))
	})
}

// withOptionalAccount resolves the account when a valid token is present
// and otherwise lets the request through as a guest. A stale or malformed
// token downgrades to guest rather than failing the request.
func (h *Handler) withOptionalAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, err := h.resolveAccount(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accountKey, account)))
	})
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
