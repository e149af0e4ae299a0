package bookings

import (
	"github.com/google/uuid"

	"github.com/serviqo/serviqo-backend/pkg/db/models"
	"github.com/serviqo/serviqo-backend/pkg/enums"
	pkgerrors "github.com/serviqo/serviqo-backend/pkg/errors"
)

// InsufficientBalanceDetails is attached to INSUFFICIENT_BALANCE errors so the
// client can show how far short the balance falls.
type InsufficientBalanceDetails struct {
	RequiredCents  int64 `json:"requiredCents"`
	AvailableCents int64 `json:"availableCents"`
}

// CanCreateBooking checks every precondition for booking a service. It is a
// pure predicate: callers run it once on a fresh snapshot and again under row
// locks immediately before mutating, because the first snapshot may be stale.
func CanCreateBooking(client *models.Account, listing *models.ServiceListing, provider *models.Account) error {
	if client == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if listing == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	}
	// Self-booking outranks the role check so a provider booking their own
	// service is reported as what it is.
	if client.ID == listing.ProviderID {
		return pkgerrors.New(pkgerrors.CodeSelfBooking, "providers cannot book their own services")
	}
	if client.Role != enums.AccountRoleClient {
		return pkgerrors.New(pkgerrors.CodeWrongRole, "only clients can book services")
	}
	if !listing.Active {
		return pkgerrors.New(pkgerrors.CodeServiceInactive, "service is not active")
	}
	if provider == nil || !provider.IsActive {
		return pkgerrors.New(pkgerrors.CodeServiceInactive, "provider is not available")
	}
	if client.BalanceCents < listing.PriceCents {
		return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "balance is insufficient for this booking").
			WithDetails(InsufficientBalanceDetails{
				RequiredCents:  listing.PriceCents,
				AvailableCents: client.BalanceCents,
			})
	}
	return nil
}

// CanCancelBooking checks whether the actor may cancel the booking. Like
// CanCreateBooking it must be re-run under the booking row lock so that
// exactly one concurrent cancel wins.
func CanCancelBooking(actorID uuid.UUID, booking *models.Booking) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if booking == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	if booking.ClientID != actorID {
		return pkgerrors.New(pkgerrors.CodeNotOwner, "booking belongs to another account")
	}
	if booking.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeAlreadyCancelled, "booking is already cancelled")
	}
	return nil
}
