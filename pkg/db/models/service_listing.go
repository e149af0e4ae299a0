package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceListing is a bookable service published by a provider. Bookings
// snapshot PriceCents at creation time, so later edits never affect them.
type ServiceListing struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderID  uuid.UUID `gorm:"column:provider_id;type:uuid;not null;index"`
	Title       string    `gorm:"column:title;not null"`
	Description *string   `gorm:"column:description"`
	PriceCents  int64     `gorm:"column:price_cents;not null"`
	Active      bool      `gorm:"column:active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Provider *Account `gorm:"foreignKey:ProviderID"`
}
