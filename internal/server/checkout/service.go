// Package checkout builds purchase intents and opens provider checkout
// sessions for them. The intent's metadata travels through the provider
// and comes back on the webhook, where the reconciler consumes it.
package checkout

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/photoglow/internal/server/models"
	"github.com/dmitrijs2005/photoglow/internal/server/pricing"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// seam for tests
var createSession = session.New

// GuestUserID marks sessions opened without a resolved account.
const GuestUserID = "guest"

// Intent is a priced, attributed purchase, ready to be sent to the payment
// provider.
type Intent struct {
	Plan           pricing.Plan
	Context        string
	ImageKey       string
	Email          string
	AccountID      string
	RequiresSignup bool
}

// Session is the provider session the client gets redirected to.
type Session struct {
	ID             string
	URL            string
	RequiresSignup bool
}

type Service struct {
	baseURL string
}

func NewService(baseURL string) *Service {
	return &Service{baseURL: baseURL}
}

// BuildIntent resolves the plan, attributes the purchase to the account or
// the guest email, and decides whether signup must precede payment. Guests
// buying more than one credit require signup; a guest single-image purchase
// goes straight to checkout.
func BuildIntent(account *models.Account, planID, purchaseContext, imageKey, guestEmail string) (*Intent, error) {
	plan, err := pricing.Lookup(planID)
	if err != nil {
		return nil, err
	}

	if purchaseContext != pricing.ContextDownload {
		purchaseContext = pricing.ContextPricing
	}

	intent := &Intent{
		Plan:     plan,
		Context:  purchaseContext,
		ImageKey: imageKey,
		Email:    guestEmail,
	}
	if account != nil {
		intent.AccountID = account.ID
		intent.Email = account.Email
	}
	intent.RequiresSignup = pricing.RequiresSignup(account == nil, plan)

	return intent, nil
}

// CreateSession opens a provider checkout session for the intent. All
// reconciliation inputs ride in the session metadata.
func (s *Service) CreateSession(ctx context.Context, intent *Intent) (*Session, error) {
	userID := intent.AccountID
	if userID == "" {
		userID = GuestUserID
	}

	successURL := s.baseURL + "?payment=success"
	if intent.Context == pricing.ContextDownload && intent.Plan.Credits == 1 {
		successURL += "&download=true"
	}

	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyEUR)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(intent.Plan.Name),
						Description: stripe.String(intent.Plan.Description),
					},
					UnitAmount: stripe.Int64(intent.Plan.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(s.baseURL + "?payment=cancelled"),
	}
	if intent.Email != "" {
		params.CustomerEmail = stripe.String(intent.Email)
	}
	params.Metadata = map[string]string{
		"userId":         userID,
		"email":          intent.Email,
		"plan":           intent.Plan.ID,
		"credits":        strconv.FormatInt(intent.Plan.Credits, 10),
		"imageKey":       intent.ImageKey,
		"context":        intent.Context,
		"requiresSignup": strconv.FormatBool(intent.RequiresSignup),
	}

	sess, err := createSession(params)
	if err != nil {
		return nil, fmt.Errorf("error creating checkout session: %w", err)
	}

	return &Session{ID: sess.ID, URL: sess.URL, RequiresSignup: intent.RequiresSignup}, nil
}
