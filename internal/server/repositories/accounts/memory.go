package accounts

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/photoglow/internal/common"
	"github.com/dmitrijs2005/photoglow/internal/server/models"
)

// MemoryRepository is an in-memory Repository used in tests. Mutations hold
// a single mutex so the check-and-set semantics match the SQL implementation.
type MemoryRepository struct {
	mu       sync.Mutex
	seq      int
	accounts map[string]*models.Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: make(map[string]*models.Account)}
}

func (r *MemoryRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.Email == account.Email || a.Username == account.Username {
			return nil, common.ErrorConflict
		}
	}

	r.seq++
	now := time.Now()
	stored := *account
	stored.ID = "acc-" + strconv.Itoa(r.seq)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.accounts[stored.ID] = &stored

	copied := stored
	return &copied, nil
}

func (r *MemoryRepository) get(match func(*models.Account) bool) (*models.Account, error) {
	for _, a := range r.accounts {
		if match(a) {
			copied := *a
			return &copied, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(func(a *models.Account) bool { return a.ID == id })
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(func(a *models.Account) bool { return a.Email == email })
}

func (r *MemoryRepository) GetByLogin(ctx context.Context, emailOrUsername string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(func(a *models.Account) bool {
		return a.Email == emailOrUsername || a.Username == emailOrUsername
	})
}

func (r *MemoryRepository) AddCredits(ctx context.Context, id string, amount int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return 0, common.ErrorNotFound
	}
	a.Credits += amount
	a.UpdatedAt = time.Now()
	return a.Credits, nil
}

func (r *MemoryRepository) TryDecrement(ctx context.Context, id string, amount int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok || a.Credits < amount {
		return 0, common.ErrorInsufficientCredits
	}
	a.Credits -= amount
	a.UpdatedAt = time.Now()
	return a.Credits, nil
}

func (r *MemoryRepository) UpdateProfile(ctx context.Context, id string, username string, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return common.ErrorNotFound
	}
	for _, other := range r.accounts {
		if other.ID != id && (other.Email == email || other.Username == username) {
			return common.ErrorConflict
		}
	}
	a.Username = username
	a.Email = email
	a.UpdatedAt = time.Now()
	return nil
}
