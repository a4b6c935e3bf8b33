// Package pricing is the single source of truth for the plan table and the
// signup-requirement rule. Both the checkout intent builder and the payment
// reconciler call into it, so the two can never disagree.
package pricing

import (
	"sort"

	"github.com/dmitrijs2005/photoglow/internal/common"
)

// Flow contexts carried through checkout metadata.
const (
	ContextPricing  = "pricing"
	ContextDownload = "download"
)

// PlanCredit labels assets paid for with a credit from the account balance
// rather than through a checkout plan.
const PlanCredit = "credit"

// Plan describes one purchasable option.
type Plan struct {
	ID          string
	Name        string
	Description string
	// AmountCents is the price in euro cents.
	AmountCents int64
	Credits     int64
}

var plans = map[string]Plan{
	"single": {
		ID:          "single",
		Name:        "Single Image Enhancement",
		Description: "Enhance 1 image",
		AmountCents: 399,
		Credits:     1,
	},
	"triple": {
		ID:          "triple",
		Name:        "3 Image Credits",
		Description: "Enhance 3 images",
		AmountCents: 999,
		Credits:     3,
	},
	"bundle10": {
		ID:          "bundle10",
		Name:        "10 Image Credits",
		Description: "Enhance 10 images",
		AmountCents: 2500,
		Credits:     10,
	},
}

// Lookup returns the plan for id, or common.ErrorInvalidPlan.
func Lookup(id string) (Plan, error) {
	p, ok := plans[id]
	if !ok {
		return Plan{}, common.ErrorInvalidPlan
	}
	return p, nil
}

// RequiresSignup reports whether a purchase must be preceded by account
// creation: true iff the buyer is a guest and the plan grants more than one
// credit. A guest buying a single image keeps the no-account flow.
func RequiresSignup(guest bool, plan Plan) bool {
	return guest && plan.Credits > 1
}

// All returns the purchasable plans, cheapest first.
func All() []Plan {
	out := make([]Plan, 0, len(plans))
	for _, p := range plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AmountCents < out[j].AmountCents })
	return out
}
