package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/serviqo/serviqo-backend/pkg/db/models"
	"github.com/serviqo/serviqo-backend/pkg/enums"
	pkgerrors "github.com/serviqo/serviqo-backend/pkg/errors"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*models.Account
	findErr  error
}

func newFakeAccountRepo(accounts ...*models.Account) *fakeAccountRepo {
	repo := &fakeAccountRepo{accounts: map[uuid.UUID]*models.Account{}}
	for _, a := range accounts {
		repo.accounts[a.ID] = a
	}
	return repo
}

func (f *fakeAccountRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeAccountRepo) Create(_ context.Context, account *models.Account) error {
	f.accounts[account.ID] = account
	return nil
}

func (f *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if a, ok := f.accounts[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeAccountRepo) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	for _, a := range f.accounts {
		if a.Email == email {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) FindForUpdate(_ context.Context, ids ...uuid.UUID) ([]models.Account, error) {
	out := []models.Account{}
	for _, id := range ids {
		if a, ok := f.accounts[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAccountRepo) AdjustBalance(_ context.Context, id uuid.UUID, deltaCents int64) error {
	if a, ok := f.accounts[id]; ok {
		a.BalanceCents += deltaCents
	}
	return nil
}

func (f *fakeAccountRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if a, ok := f.accounts[id]; ok {
		a.LastLoginAt = &at
	}
	return nil
}

func clientAccount(balance int64) *models.Account {
	return &models.Account{
		ID:           uuid.New(),
		Email:        "client@example.com",
		Name:         "Test Client",
		Role:         enums.AccountRoleClient,
		BalanceCents: balance,
		IsActive:     true,
	}
}

func TestGetProfileReturnsAccount(t *testing.T) {
	account := clientAccount(5000)
	svc, err := NewService(stubTxRunner{}, newFakeAccountRepo(account))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	got, err := svc.GetProfile(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.Email != account.Email {
		t.Fatalf("email = %s", got.Email)
	}
}

func TestGetProfileUnknownAccount(t *testing.T) {
	svc, _ := NewService(stubTxRunner{}, newFakeAccountRepo())
	_, err := svc.GetProfile(context.Background(), uuid.New())
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestGetBalance(t *testing.T) {
	account := clientAccount(12345)
	svc, _ := NewService(stubTxRunner{}, newFakeAccountRepo(account))

	balance, err := svc.GetBalance(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if balance != 12345 {
		t.Fatalf("balance = %d", balance)
	}
}

func TestCreditAddsFundsAndReturnsSnapshot(t *testing.T) {
	account := clientAccount(1000)
	repo := newFakeAccountRepo(account)
	svc, _ := NewService(stubTxRunner{}, repo)

	updated, err := svc.Credit(context.Background(), account.ID, 2500)
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if updated.BalanceCents != 3500 {
		t.Fatalf("expected snapshot balance 3500, got %d", updated.BalanceCents)
	}
	if repo.accounts[account.ID].BalanceCents != 3500 {
		t.Fatalf("stored balance = %d", repo.accounts[account.ID].BalanceCents)
	}
}

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	account := clientAccount(1000)
	svc, _ := NewService(stubTxRunner{}, newFakeAccountRepo(account))

	for _, amount := range []int64{0, -100} {
		if _, err := svc.Credit(context.Background(), account.ID, amount); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
			t.Fatalf("amount %d: expected VALIDATION_ERROR, got %v", amount, err)
		}
	}
}

func TestCreditUnknownAccount(t *testing.T) {
	svc, _ := NewService(stubTxRunner{}, newFakeAccountRepo())
	if _, err := svc.Credit(context.Background(), uuid.New(), 100); !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
