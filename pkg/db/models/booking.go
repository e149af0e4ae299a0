package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/serviqo/serviqo-backend/pkg/enums"
)

// Booking records a client's reservation of a service. AmountCents is the
// price captured at creation; cancellation reverses exactly this amount.
type Booking struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID           uuid.UUID           `gorm:"column:client_id;type:uuid;not null;index"`
	ProviderID         uuid.UUID           `gorm:"column:provider_id;type:uuid;not null;index"`
	ServiceID          uuid.UUID           `gorm:"column:service_id;type:uuid;not null;index"`
	AmountCents        int64               `gorm:"column:amount_cents;not null"`
	Status             enums.BookingStatus `gorm:"column:status;type:booking_status_enum;not null;default:'confirmed'"`
	CancelledAt        *time.Time          `gorm:"column:cancelled_at"`
	CancellationReason *string             `gorm:"column:cancellation_reason"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	Service *ServiceListing `gorm:"foreignKey:ServiceID"`
}
