package paymentevents

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/photoglow/internal/common"
	"github.com/dmitrijs2005/photoglow/internal/server/models"
)

// MemoryRepository is an in-memory Repository used in tests.
type MemoryRepository struct {
	mu     sync.Mutex
	events map[string]*models.PaymentEvent
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{events: make(map[string]*models.PaymentEvent)}
}

func (r *MemoryRepository) Record(ctx context.Context, event *models.PaymentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[event.SourceTransactionID]; ok {
		return common.ErrorConflict
	}
	stored := *event
	stored.CreatedAt = time.Now()
	r.events[stored.SourceTransactionID] = &stored
	return nil
}

// All returns copies of every journal row, for test assertions.
func (r *MemoryRepository) All() []*models.PaymentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.PaymentEvent, 0, len(r.events))
	for _, e := range r.events {
		copied := *e
		out = append(out, &copied)
	}
	return out
}
