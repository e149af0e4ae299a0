package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/serviqo/serviqo-backend/pkg/enums"
)

// Account is the balance-holding identity for both clients and providers.
// BalanceCents is mutated only inside booking transactions and must never
// be observed below zero.
type Account struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string            `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string            `gorm:"column:password_hash;not null"`
	Name         string            `gorm:"column:name;not null"`
	Role         enums.AccountRole `gorm:"column:role;type:account_role_enum;not null"`
	BalanceCents int64             `gorm:"column:balance_cents;not null;default:0"`
	IsActive     bool              `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time        `gorm:"column:last_login_at"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
