package accounts

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/photoglow/internal/common"
	"github.com/dmitrijs2005/photoglow/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_CreateAndLookups(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Account{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byLogin, err := repo.GetByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byLogin.ID)

	_, err = repo.Create(ctx, &models.Account{Username: "alice2", Email: "alice@example.com"})
	assert.ErrorIs(t, err, common.ErrorConflict)
}

// Launching N concurrent decrements of 1 against a balance of 1 must yield
// exactly one success; the balance never goes negative.
func TestMemory_TryDecrement_NoDoubleSpend(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Account{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	_, err = repo.AddCredits(ctx, created.ID, 1)
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	results := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = repo.TryDecrement(ctx, created.ID, 1)
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, common.ErrorInsufficientCredits):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, insufficient)

	final, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), final.Credits)
}

func TestMemory_UpdateProfile(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	a, err := repo.Create(ctx, &models.Account{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	b, err := repo.Create(ctx, &models.Account{Username: "bob", Email: "bob@example.com"})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateProfile(ctx, a.ID, "alice2", "alice2@example.com"))

	err = repo.UpdateProfile(ctx, b.ID, "alice2", "bob@example.com")
	assert.ErrorIs(t, err, common.ErrorConflict)

	err = repo.UpdateProfile(ctx, "ghost", "x", "x@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
