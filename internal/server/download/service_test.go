package download

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/photoglow/internal/common"
	"github.com/dmitrijs2005/photoglow/internal/server/ledger"
	"github.com/dmitrijs2005/photoglow/internal/server/models"
	"github.com/dmitrijs2005/photoglow/internal/server/pricing"
	"github.com/dmitrijs2005/photoglow/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSigner struct {
	url string
	err error
}

func (f *fakeSigner) PresignGet(ctx context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url + key, nil
}

func newTestService(t *testing.T, signer URLSigner) (*Service, *repomanager.MemoryRepositoryManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)

	m := repomanager.NewMemoryRepositoryManager()
	return NewService(ledger.NewService(db, m), signer), m, mock
}

func TestAuthorize_SpendsOneCredit(t *testing.T) {
	svc, m, mock := newTestService(t, &fakeSigner{url: "http://signed.example/"})
	ctx := context.Background()

	account, err := m.AccountRepo.Create(ctx, &models.Account{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	_, err = m.AccountRepo.AddCredits(ctx, account.ID, 3)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()

	grant, err := svc.Authorize(ctx, account, "enhanced/a.png")
	require.NoError(t, err)
	assert.Equal(t, "http://signed.example/enhanced/a.png", grant.URL)
	assert.Equal(t, int64(2), grant.Balance)

	assets := m.AssetRepo.All()
	require.Len(t, assets, 1)
	assert.Equal(t, account.ID, assets[0].AccountID)
	assert.Equal(t, "enhanced/a.png", assets[0].BlobKey)
	assert.Equal(t, pricing.PlanCredit, assets[0].Plan)
}

func TestAuthorize_SequentialSpends(t *testing.T) {
	svc, m, mock := newTestService(t, &fakeSigner{url: "http://signed.example/"})
	ctx := context.Background()

	account, err := m.AccountRepo.Create(ctx, &models.Account{Username: "bob", Email: "bob@example.com"})
	require.NoError(t, err)
	_, err = m.AccountRepo.AddCredits(ctx, account.ID, 2)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	for _, want := range []int64{1, 0} {
		grant, err := svc.Authorize(ctx, account, "enhanced/b.png")
		require.NoError(t, err)
		assert.Equal(t, want, grant.Balance)
	}

	_, err = svc.Authorize(ctx, account, "enhanced/b.png")
	assert.ErrorIs(t, err, common.ErrorInsufficientCredits)
	assert.Len(t, m.AssetRepo.All(), 2)
}

func TestAuthorize_Guest(t *testing.T) {
	svc, m, _ := newTestService(t, &fakeSigner{url: "http://signed.example/"})

	_, err := svc.Authorize(context.Background(), nil, "enhanced/c.png")
	assert.ErrorIs(t, err, common.ErrorInsufficientCredits)
	assert.Empty(t, m.AssetRepo.All())
}

func TestAuthorize_SignerFailureCostsNothing(t *testing.T) {
	svc, m, _ := newTestService(t, &fakeSigner{err: errors.New("storage down")})
	ctx := context.Background()

	account, err := m.AccountRepo.Create(ctx, &models.Account{Username: "carol", Email: "carol@example.com"})
	require.NoError(t, err)
	_, err = m.AccountRepo.AddCredits(ctx, account.ID, 1)
	require.NoError(t, err)

	_, err = svc.Authorize(ctx, account, "enhanced/d.png")
	require.Error(t, err)

	stored, err := m.AccountRepo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Credits)
	assert.Empty(t, m.AssetRepo.All())
}
