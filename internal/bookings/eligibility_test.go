package bookings

import (
	"testing"

	"github.com/google/uuid"

	"github.com/serviqo/serviqo-backend/pkg/db/models"
	"github.com/serviqo/serviqo-backend/pkg/enums"
	pkgerrors "github.com/serviqo/serviqo-backend/pkg/errors"
)

func eligibleParties() (*models.Account, *models.ServiceListing, *models.Account) {
	provider := &models.Account{
		ID:       uuid.New(),
		Name:     "Pat Provider",
		Role:     enums.AccountRoleProvider,
		IsActive: true,
	}
	client := &models.Account{
		ID:           uuid.New(),
		Name:         "Casey Client",
		Role:         enums.AccountRoleClient,
		BalanceCents: 10_000,
		IsActive:     true,
	}
	listing := &models.ServiceListing{
		ID:         uuid.New(),
		ProviderID: provider.ID,
		Title:      "Lawn Care",
		PriceCents: 5_000,
		Active:     true,
	}
	return client, listing, provider
}

func TestCanCreateBookingAccepts(t *testing.T) {
	client, listing, provider := eligibleParties()
	if err := CanCreateBooking(client, listing, provider); err != nil {
		t.Fatalf("expected eligible, got %v", err)
	}
}

func TestCanCreateBookingExactBalance(t *testing.T) {
	client, listing, provider := eligibleParties()
	client.BalanceCents = listing.PriceCents
	if err := CanCreateBooking(client, listing, provider); err != nil {
		t.Fatalf("exact balance should be eligible, got %v", err)
	}
}

func TestCanCreateBookingRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(client *models.Account, listing *models.ServiceListing, provider *models.Account) (*models.Account, *models.ServiceListing, *models.Account)
		want   pkgerrors.Code
	}{
		{
			name: "nil client",
			mutate: func(c *models.Account, l *models.ServiceListing, p *models.Account) (*models.Account, *models.ServiceListing, *models.Account) {
				return nil, l, p
			},
			want: pkgerrors.CodeUnauthorized,
		},
		{
			name: "missing listing",
			mutate: func(c *models.Account, l *models.ServiceListing, p *models.Account) (*models.Account, *models.ServiceListing, *models.Account) {
				return c, nil, p
			},
			want: pkgerrors.CodeNotFound,
		},
		{
			name: "provider books own service",
			mutate: func(c *models.Account, l *models.ServiceListing, p *models.Account) (*models.Account, *models.ServiceListing, *models.Account) {
				return p, l, p
			},
			want: pkgerrors.CodeSelfBooking,
		},
		{
			name: "provider books someone else's service",
			mutate: func(c *models.Account, l *models.ServiceListing, p *models.Account) (*models.Account, *models.ServiceListing, *models.Account) {
				other := &models.Account{ID: uuid.New(), Role: enums.AccountRoleProvider, BalanceCents: 99_999, IsActive: true}
				return other, l, p
			},
			want: pkgerrors.CodeWrongRole,
		},
		{
			name: "inactive listing",
			mutate: func(c *models.Account, l *models.ServiceListing, p *models.Account) (*models.Account, *models.ServiceListing, *models.Account) {
				l.Active = false
				return c, l, p
			},
			want: pkgerrors.CodeServiceInactive,
		},
		{
			name: "missing provider account",
			mutate: func(c *models.Account, l *models.ServiceListing, p *models.Account) (*models.Account, *models.ServiceListing, *models.Account) {
				return c, l, nil
			},
			want: pkgerrors.CodeServiceInactive,
		},
		{
			name: "deactivated provider",
			mutate: func(c *models.Account, l *models.ServiceListing, p *models.Account) (*models.Account, *models.ServiceListing, *models.Account) {
				p.IsActive = false
				return c, l, p
			},
			want: pkgerrors.CodeServiceInactive,
		},
		{
			name: "insufficient balance",
			mutate: func(c *models.Account, l *models.ServiceListing, p *models.Account) (*models.Account, *models.ServiceListing, *models.Account) {
				c.BalanceCents = l.PriceCents - 1
				return c, l, p
			},
			want: pkgerrors.CodeInsufficientBalance,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, listing, provider := eligibleParties()
			client, listing, provider = tc.mutate(client, listing, provider)
			err := CanCreateBooking(client, listing, provider)
			if !pkgerrors.Is(err, tc.want) {
				t.Fatalf("expected %s, got %v", tc.want, err)
			}
		})
	}
}

func TestInsufficientBalanceCarriesDetails(t *testing.T) {
	client, listing, provider := eligibleParties()
	client.BalanceCents = 100

	err := CanCreateBooking(client, listing, provider)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(InsufficientBalanceDetails)
	if !ok {
		t.Fatalf("expected InsufficientBalanceDetails, got %T", typed.Details())
	}
	if details.RequiredCents != 5_000 || details.AvailableCents != 100 {
		t.Fatalf("details = %+v", details)
	}
}

func TestCanCancelBooking(t *testing.T) {
	clientID := uuid.New()
	confirmed := &models.Booking{
		ID:       uuid.New(),
		ClientID: clientID,
		Status:   enums.BookingStatusConfirmed,
	}

	if err := CanCancelBooking(clientID, confirmed); err != nil {
		t.Fatalf("owner cancel should be eligible, got %v", err)
	}

	if err := CanCancelBooking(uuid.Nil, confirmed); !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if err := CanCancelBooking(clientID, nil); !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if err := CanCancelBooking(uuid.New(), confirmed); !pkgerrors.Is(err, pkgerrors.CodeNotOwner) {
		t.Fatalf("expected NOT_OWNER, got %v", err)
	}

	cancelled := *confirmed
	cancelled.Status = enums.BookingStatusCancelled
	if err := CanCancelBooking(clientID, &cancelled); !pkgerrors.Is(err, pkgerrors.CodeAlreadyCancelled) {
		t.Fatalf("expected ALREADY_CANCELLED, got %v", err)
	}
}
