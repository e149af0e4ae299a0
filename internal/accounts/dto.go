package accounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/serviqo/serviqo-backend/pkg/db/models"
	"github.com/serviqo/serviqo-backend/pkg/enums"
	"github.com/serviqo/serviqo-backend/pkg/types"
)

// AccountDTO is the API projection of an account. The password hash never
// leaves the service layer.
type AccountDTO struct {
	ID           uuid.UUID         `json:"id"`
	Email        string            `json:"email"`
	Name         string            `json:"name"`
	Role         enums.AccountRole `json:"role"`
	BalanceCents int64             `json:"balance_cents"`
	Balance      string            `json:"balance"`
	IsActive     bool              `json:"is_active"`
	LastLoginAt  *time.Time        `json:"last_login_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// FromModel converts a stored account into its API projection.
func FromModel(account *models.Account) *AccountDTO {
	if account == nil {
		return nil
	}
	return &AccountDTO{
		ID:           account.ID,
		Email:        account.Email,
		Name:         account.Name,
		Role:         account.Role,
		BalanceCents: account.BalanceCents,
		Balance:      types.FormatDollars(account.BalanceCents),
		IsActive:     account.IsActive,
		LastLoginAt:  account.LastLoginAt,
		CreatedAt:    account.CreatedAt,
	}
}
