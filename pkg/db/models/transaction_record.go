package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/serviqo/serviqo-backend/pkg/enums"
)

// TransactionRecord is an immutable ledger entry written in the same
// transaction as the booking change it describes. Name fields are snapshots;
// they do not follow later profile or listing edits.
type TransactionRecord struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID    uuid.UUID               `gorm:"column:booking_id;type:uuid;not null;index"`
	ClientID     uuid.UUID               `gorm:"column:client_id;type:uuid;not null;index"`
	ProviderID   uuid.UUID               `gorm:"column:provider_id;type:uuid;not null;index"`
	ServiceName  string                  `gorm:"column:service_name;not null"`
	ClientName   string                  `gorm:"column:client_name;not null"`
	ProviderName string                  `gorm:"column:provider_name;not null"`
	AmountCents  int64                   `gorm:"column:amount_cents;not null"`
	Type         enums.TransactionType   `gorm:"column:type;type:transaction_type_enum;not null"`
	Status       enums.TransactionStatus `gorm:"column:status;type:transaction_status_enum;not null"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
}
