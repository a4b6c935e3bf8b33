package assets

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/photoglow/internal/server/models"
)

// MemoryRepository is an in-memory Repository used in tests.
type MemoryRepository struct {
	mu     sync.Mutex
	seq    int
	assets []*models.Asset
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(ctx context.Context, asset *models.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	stored := *asset
	stored.ID = "asset-" + strconv.Itoa(r.seq)
	stored.CreatedAt = time.Now()
	r.assets = append(r.assets, &stored)

	asset.ID = stored.ID
	asset.CreatedAt = stored.CreatedAt
	return nil
}

func (r *MemoryRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Asset
	for _, a := range r.assets {
		if a.AccountID == accountID {
			copied := *a
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// All returns copies of every stored asset, for test assertions.
func (r *MemoryRepository) All() []*models.Asset {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Asset, 0, len(r.assets))
	for _, a := range r.assets {
		copied := *a
		out = append(out, &copied)
	}
	return out
}
