// Package reconcile turns verified payment events into ledger state. Every
// applied delivery is journaled under the provider's transaction id, so a
// redelivered event is recognized and ignored no matter which outcome the
// first delivery produced.
package reconcile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/photoglow/internal/common"
	"github.com/dmitrijs2005/photoglow/internal/dbx"
	"github.com/dmitrijs2005/photoglow/internal/logging"
	"github.com/dmitrijs2005/photoglow/internal/server/ledger"
	"github.com/dmitrijs2005/photoglow/internal/server/models"
	"github.com/dmitrijs2005/photoglow/internal/server/pricing"
	"github.com/dmitrijs2005/photoglow/internal/server/repositories/repomanager"
)

// Event is a verified, completed payment, reduced to the fields the
// decision table needs. AccountID is empty when checkout started as a
// guest; Apply re-resolves the actor by email, since the buyer may have
// signed up between checkout and delivery.
type Event struct {
	SourceTransactionID string
	AccountID           string
	Email               string
	Plan                string
	Context             string
	ImageKey            string
}

// Result reports what a delivery did. Balance is meaningful only for the
// direct-grant outcomes.
type Result struct {
	Outcome string
	Balance int64
}

type Service struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *Service {
	return &Service{db: db, repomanager: m, logger: logger}
}

// Apply runs the decision table for one delivery. The actor is re-resolved
// by email first, so a buyer who signed up after starting checkout still
// counts as an account holder. The journal row is the first write of the
// transaction; a duplicate transaction id short-circuits to an
// already-applied no-op before any balance is touched.
//
//   - purchase by an account holder from the download flow, with an image:
//     the purchased download is consumed on the spot, so the grant is the
//     plan's credits minus one and the image becomes an owned asset
//   - any other purchase by an account holder: full credit grant
//   - guest purchase of a multi-credit plan: pending grant under the email
//   - guest purchase with an image: the image is recorded as a guest asset,
//     no credits involved
//   - anything else: journal only
func (s *Service) Apply(ctx context.Context, event *Event) (*Result, error) {
	if event.SourceTransactionID == "" {
		return nil, fmt.Errorf("payment event without transaction id: %w", common.ErrorInternal)
	}
	plan, err := pricing.Lookup(event.Plan)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		// The checkout session may predate the buyer's signup. Resolving by
		// email inside the transaction routes the grant to the account
		// instead of parking it under an email no signup will ever claim.
		actorID := event.AccountID
		if actorID == "" && event.Email != "" {
			account, err := s.repomanager.Accounts(tx).GetByEmail(ctx, event.Email)
			if err != nil && !errors.Is(err, common.ErrorNotFound) {
				return err
			}
			if account != nil {
				actorID = account.ID
			}
		}
		result.Outcome = s.decide(actorID, event, plan)

		if err := s.repomanager.PaymentEvents(tx).Record(ctx, &models.PaymentEvent{
			SourceTransactionID: event.SourceTransactionID,
			Outcome:             result.Outcome,
			AccountID:           actorID,
			Email:               event.Email,
		}); err != nil {
			return err
		}

		switch result.Outcome {
		case models.OutcomeGrantWithAsset:
			balance, err := s.repomanager.Accounts(tx).AddCredits(ctx, actorID, plan.Credits-1)
			if err != nil {
				return err
			}
			result.Balance = balance
			return s.repomanager.Assets(tx).Create(ctx, &models.Asset{
				AccountID: actorID,
				Email:     event.Email,
				BlobKey:   event.ImageKey,
				Plan:      plan.ID,
			})

		case models.OutcomeGrant:
			balance, err := s.repomanager.Accounts(tx).AddCredits(ctx, actorID, plan.Credits)
			if err != nil {
				return err
			}
			result.Balance = balance
			return nil

		case models.OutcomePendingGrant:
			return s.repomanager.PendingGrants(tx).Create(ctx, &models.PendingGrant{
				Email:               event.Email,
				Credits:             plan.Credits,
				Plan:                plan.ID,
				SourceTransactionID: event.SourceTransactionID,
				ImageKey:            event.ImageKey,
				ExpiresAt:           time.Now().Add(ledger.PendingGrantTTL),
			})

		case models.OutcomeGuestAsset:
			return s.repomanager.Assets(tx).Create(ctx, &models.Asset{
				Email:   event.Email,
				BlobKey: event.ImageKey,
				Plan:    plan.ID,
			})

		default:
			return nil
		}
	})

	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			s.logger.Info(ctx, "payment event already applied", "transaction_id", event.SourceTransactionID)
			return &Result{Outcome: result.Outcome}, nil
		}
		return nil, fmt.Errorf("error applying payment event: %w", err)
	}

	// A direct grant means the account exists now, so grants parked under
	// the same email can never be claimed. Dropping them is hygiene only.
	if result.Outcome == models.OutcomeGrant || result.Outcome == models.OutcomeGrantWithAsset {
		if err := s.repomanager.PendingGrants(s.db).DeleteUnclaimed(ctx, event.Email); err != nil {
			s.logger.Error(ctx, "error purging stale pending grants", "email", event.Email, "error", err)
		}
	}

	return result, nil
}

func (s *Service) decide(actorID string, event *Event, plan pricing.Plan) string {
	switch {
	case actorID != "" && event.Context == pricing.ContextDownload && event.ImageKey != "":
		return models.OutcomeGrantWithAsset
	case actorID != "":
		return models.OutcomeGrant
	case pricing.RequiresSignup(true, plan):
		return models.OutcomePendingGrant
	case event.ImageKey != "":
		return models.OutcomeGuestAsset
	default:
		return models.OutcomeNone
	}
}
