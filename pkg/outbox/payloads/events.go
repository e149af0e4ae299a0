package payloads

import (
	"time"

	"github.com/google/uuid"
)

// BookingCreatedV1 is emitted after a booking commits with its money movement.
type BookingCreatedV1 struct {
	BookingID   uuid.UUID `json:"bookingId"`
	ClientID    uuid.UUID `json:"clientId"`
	ProviderID  uuid.UUID `json:"providerId"`
	ServiceID   uuid.UUID `json:"serviceId"`
	AmountCents int64     `json:"amountCents"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BookingCancelledV1 is emitted after a cancellation reversal commits.
type BookingCancelledV1 struct {
	BookingID   uuid.UUID `json:"bookingId"`
	ClientID    uuid.UUID `json:"clientId"`
	ProviderID  uuid.UUID `json:"providerId"`
	AmountCents int64     `json:"amountCents"`
	Reason      *string   `json:"reason,omitempty"`
	CancelledAt time.Time `json:"cancelledAt"`
}
