// Package download gates access to enhanced images. A download costs one
// credit; the spend and the ownership record land atomically, and only
// then is a short-lived URL handed out.
package download

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/photoglow/internal/common"
	"github.com/dmitrijs2005/photoglow/internal/server/ledger"
	"github.com/dmitrijs2005/photoglow/internal/server/models"
	"github.com/dmitrijs2005/photoglow/internal/server/pricing"
)

// URLSigner hands out presigned GET URLs for stored blobs.
type URLSigner interface {
	PresignGet(ctx context.Context, key string) (string, error)
}

// Grant is a successful authorization: where to fetch the image and how
// many credits remain.
type Grant struct {
	URL     string
	Balance int64
}

type Service struct {
	ledger *ledger.Service
	signer URLSigner
}

func NewService(l *ledger.Service, signer URLSigner) *Service {
	return &Service{ledger: l, signer: signer}
}

// Authorize spends one credit for the image and returns a download grant.
// Guests and accounts without credits get common.ErrorInsufficientCredits,
// which callers surface as a purchase prompt. The URL is signed before the
// spend so a storage failure never costs a credit.
func (s *Service) Authorize(ctx context.Context, account *models.Account, blobKey string) (*Grant, error) {
	if account == nil {
		return nil, common.ErrorInsufficientCredits
	}

	url, err := s.signer.PresignGet(ctx, blobKey)
	if err != nil {
		return nil, fmt.Errorf("error signing download url: %w", err)
	}

	balance, err := s.ledger.SpendCreditForAsset(ctx, account, blobKey, pricing.PlanCredit)
	if err != nil {
		if errors.Is(err, common.ErrorInsufficientCredits) {
			return nil, common.ErrorInsufficientCredits
		}
		return nil, err
	}

	return &Grant{URL: url, Balance: balance}, nil
}
