package transactions

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/serviqo/serviqo-backend/pkg/db/models"
	"github.com/serviqo/serviqo-backend/pkg/enums"
	pkgerrors "github.com/serviqo/serviqo-backend/pkg/errors"
	"github.com/serviqo/serviqo-backend/pkg/pagination"
)

// ListInput captures history query parameters from the API layer.
type ListInput struct {
	AccountID uuid.UUID
	Type      string
	Limit     int
	Cursor    string
}

// Service exposes the transaction history read side. Records are only ever
// written through the booking orchestrator's transaction.
type Service interface {
	ListForAccount(ctx context.Context, input ListInput) ([]models.TransactionRecord, *pagination.Cursor, error)
}

type service struct {
	repo Repository
}

// NewService wires a transaction service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListForAccount(ctx context.Context, input ListInput) ([]models.TransactionRecord, *pagination.Cursor, error) {
	if input.AccountID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}

	var typeFilter *enums.TransactionType
	if input.Type != "" {
		parsed, err := enums.ParseTransactionType(input.Type)
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction type")
		}
		typeFilter = &parsed
	}

	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	records, next, err := s.repo.ListByAccount(ctx, ListQuery{
		AccountID: input.AccountID,
		Type:      typeFilter,
		Limit:     input.Limit,
		Cursor:    cursor,
	})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing transactions")
	}
	return records, next, nil
}
