package accounts

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/serviqo/serviqo-backend/pkg/db/models"
	pkgerrors "github.com/serviqo/serviqo-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes account profile and balance reads plus the dev credit helper.
type Service interface {
	GetProfile(ctx context.Context, accountID uuid.UUID) (*models.Account, error)
	GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error)
	// Credit adds funds to an account and returns the post-mutation snapshot.
	// Exposed only through the dev seeding endpoint.
	Credit(ctx context.Context, accountID uuid.UUID, amountCents int64) (*models.Account, error)
}

type service struct {
	tx   txRunner
	repo Repository
}

// NewService wires an account service with the provided dependencies.
func NewService(tx txRunner, repo Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("account repository required")
	}
	return &service{tx: tx, repo: repo}, nil
}

func (s *service) GetProfile(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account")
	}
	if account == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return account, nil
}

func (s *service) GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	account, err := s.GetProfile(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return account.BalanceCents, nil
}

func (s *service) Credit(ctx context.Context, accountID uuid.UUID, amountCents int64) (*models.Account, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	var result *models.Account
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		locked, err := repo.FindForUpdate(ctx, accountID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locking account")
		}
		if len(locked) == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}

		if err := repo.AdjustBalance(ctx, accountID, amountCents); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "crediting account")
		}

		// Return the authoritative row as written, not a local computation.
		updated, err := repo.FindByID(ctx, accountID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading account")
		}
		result = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
