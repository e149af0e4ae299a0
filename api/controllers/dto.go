package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/serviqo/serviqo-backend/pkg/db/models"
	"github.com/serviqo/serviqo-backend/pkg/enums"
	"github.com/serviqo/serviqo-backend/pkg/pagination"
	"github.com/serviqo/serviqo-backend/pkg/types"
)

// pageEnvelope wraps cursor-paginated collections.
type pageEnvelope struct {
	Items      any     `json:"items"`
	NextCursor *string `json:"next_cursor,omitempty"`
}

func newPage(items any, next *pagination.Cursor) pageEnvelope {
	page := pageEnvelope{Items: items}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		page.NextCursor = &encoded
	}
	return page
}

type listingDTO struct {
	ID          uuid.UUID `json:"id"`
	ProviderID  uuid.UUID `json:"provider_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Price       string    `json:"price"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func listingFromModel(listing *models.ServiceListing) *listingDTO {
	if listing == nil {
		return nil
	}
	return &listingDTO{
		ID:          listing.ID,
		ProviderID:  listing.ProviderID,
		Title:       listing.Title,
		Description: listing.Description,
		PriceCents:  listing.PriceCents,
		Price:       types.FormatDollars(listing.PriceCents),
		Active:      listing.Active,
		CreatedAt:   listing.CreatedAt,
		UpdatedAt:   listing.UpdatedAt,
	}
}

func listingsFromModels(rows []models.ServiceListing) []listingDTO {
	out := make([]listingDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *listingFromModel(&rows[i]))
	}
	return out
}

type bookingDTO struct {
	ID                 uuid.UUID           `json:"id"`
	ClientID           uuid.UUID           `json:"client_id"`
	ProviderID         uuid.UUID           `json:"provider_id"`
	ServiceID          uuid.UUID           `json:"service_id"`
	AmountCents        int64               `json:"amount_cents"`
	Amount             string              `json:"amount"`
	Status             enums.BookingStatus `json:"status"`
	CancelledAt        *time.Time          `json:"cancelled_at,omitempty"`
	CancellationReason *string             `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

func bookingFromModel(booking *models.Booking) *bookingDTO {
	if booking == nil {
		return nil
	}
	return &bookingDTO{
		ID:                 booking.ID,
		ClientID:           booking.ClientID,
		ProviderID:         booking.ProviderID,
		ServiceID:          booking.ServiceID,
		AmountCents:        booking.AmountCents,
		Amount:             types.FormatDollars(booking.AmountCents),
		Status:             booking.Status,
		CancelledAt:        booking.CancelledAt,
		CancellationReason: booking.CancellationReason,
		CreatedAt:          booking.CreatedAt,
	}
}

func bookingsFromModels(rows []models.Booking) []bookingDTO {
	out := make([]bookingDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *bookingFromModel(&rows[i]))
	}
	return out
}

type transactionDTO struct {
	ID           uuid.UUID               `json:"id"`
	BookingID    uuid.UUID               `json:"booking_id"`
	ServiceName  string                  `json:"service_name"`
	ClientName   string                  `json:"client_name"`
	ProviderName string                  `json:"provider_name"`
	AmountCents  int64                   `json:"amount_cents"`
	Amount       string                  `json:"amount"`
	Type         enums.TransactionType   `json:"type"`
	Status       enums.TransactionStatus `json:"status"`
	CreatedAt    time.Time               `json:"created_at"`
}

func transactionsFromModels(rows []models.TransactionRecord) []transactionDTO {
	out := make([]transactionDTO, 0, len(rows))
	for _, record := range rows {
		out = append(out, transactionDTO{
			ID:           record.ID,
			BookingID:    record.BookingID,
			ServiceName:  record.ServiceName,
			ClientName:   record.ClientName,
			ProviderName: record.ProviderName,
			AmountCents:  record.AmountCents,
			Amount:       types.FormatDollars(record.AmountCents),
			Type:         record.Type,
			Status:       record.Status,
			CreatedAt:    record.CreatedAt,
		})
	}
	return out
}
