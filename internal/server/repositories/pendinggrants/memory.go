package pendinggrants

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/photoglow/internal/common"
	"github.com/dmitrijs2005/photoglow/internal/server/models"
)

// MemoryRepository is an in-memory Repository used in tests. Grants are
// kept in insertion order, so oldest-first claiming is deterministic even
// when timestamps collide.
type MemoryRepository struct {
	mu     sync.Mutex
	seq    int
	grants []*models.PendingGrant
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(ctx context.Context, grant *models.PendingGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, g := range r.grants {
		if g.SourceTransactionID == grant.SourceTransactionID {
			return common.ErrorConflict
		}
	}

	r.seq++
	stored := *grant
	stored.ID = "pg-" + strconv.Itoa(r.seq)
	stored.CreatedAt = time.Now()
	r.grants = append(r.grants, &stored)

	grant.ID = stored.ID
	grant.CreatedAt = stored.CreatedAt
	return nil
}

func (r *MemoryRepository) ClaimForEmail(ctx context.Context, email string, accountID string) (*models.PendingGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, g := range r.grants {
		if g.Email != email || g.Claimed || !g.ExpiresAt.After(now) {
			continue
		}
		g.Claimed = true
		g.ClaimedAt = &now
		g.ClaimedByAccountID = accountID

		copied := *g
		return &copied, nil
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) DeleteUnclaimed(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.grants[:0]
	for _, g := range r.grants {
		if g.Email == email && !g.Claimed {
			continue
		}
		kept = append(kept, g)
	}
	r.grants = kept
	return nil
}

// Snapshot returns copies of all stored grants, for test assertions.
func (r *MemoryRepository) Snapshot() []*models.PendingGrant {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.PendingGrant, 0, len(r.grants))
	for _, g := range r.grants {
		copied := *g
		out = append(out, &copied)
	}
	return out
}
