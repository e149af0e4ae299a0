package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/serviqo/serviqo-backend/pkg/db/models"
	"github.com/serviqo/serviqo-backend/pkg/enums"
	pkgerrors "github.com/serviqo/serviqo-backend/pkg/errors"
)

type fakeBookingLoader struct {
	bookings map[uuid.UUID]*models.Booking
}

func (f *fakeBookingLoader) FindByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	return f.bookings[id], nil
}

type fakeRecordLoader struct {
	records []models.TransactionRecord
}

func (f *fakeRecordLoader) ListByBooking(_ context.Context, bookingID uuid.UUID) ([]models.TransactionRecord, error) {
	out := []models.TransactionRecord{}
	for _, r := range f.records {
		if r.BookingID == bookingID {
			out = append(out, r)
		}
	}
	return out, nil
}

func paymentRecord(bookingID uuid.UUID, amount int64) models.TransactionRecord {
	return models.TransactionRecord{
		ID:          uuid.New(),
		BookingID:   bookingID,
		AmountCents: amount,
		Type:        enums.TransactionTypePayment,
		Status:      enums.TransactionStatusCompleted,
	}
}

func refundRecord(bookingID uuid.UUID, amount int64) models.TransactionRecord {
	return models.TransactionRecord{
		ID:          uuid.New(),
		BookingID:   bookingID,
		AmountCents: amount,
		Type:        enums.TransactionTypeRefund,
		Status:      enums.TransactionStatusCancelled,
	}
}

func newChecker(t *testing.T, booking *models.Booking, records ...models.TransactionRecord) *Checker {
	t.Helper()
	checker, err := NewChecker(
		&fakeBookingLoader{bookings: map[uuid.UUID]*models.Booking{booking.ID: booking}},
		&fakeRecordLoader{records: records},
		prometheus.NewRegistry(),
	)
	if err != nil {
		t.Fatalf("NewChecker: %v", err)
	}
	return checker
}

func TestCheckBookingConfirmedConsistent(t *testing.T) {
	booking := &models.Booking{ID: uuid.New(), AmountCents: 500, Status: enums.BookingStatusConfirmed}
	checker := newChecker(t, booking, paymentRecord(booking.ID, 500))

	if err := checker.CheckBooking(context.Background(), booking.ID); err != nil {
		t.Fatalf("expected consistent booking, got %v", err)
	}
}

func TestCheckBookingCancelledConsistent(t *testing.T) {
	now := time.Now()
	booking := &models.Booking{
		ID:          uuid.New(),
		AmountCents: 500,
		Status:      enums.BookingStatusCancelled,
		CancelledAt: &now,
	}
	checker := newChecker(t, booking, paymentRecord(booking.ID, 500), refundRecord(booking.ID, 500))

	if err := checker.CheckBooking(context.Background(), booking.ID); err != nil {
		t.Fatalf("expected consistent booking, got %v", err)
	}
}

func TestCheckBookingReportsAllViolations(t *testing.T) {
	booking := &models.Booking{
		ID:          uuid.New(),
		AmountCents: 500,
		Status:      enums.BookingStatusCancelled,
	}
	// No payment, no refund, missing cancelled_at: three violations.
	checker := newChecker(t, booking)

	err := checker.CheckBooking(context.Background(), booking.ID)
	if err == nil {
		t.Fatal("expected violations")
	}
	if got := len(multierr.Errors(err)); got != 3 {
		t.Fatalf("expected 3 violations, got %d: %v", got, err)
	}
}

func TestCheckBookingRefundAmountMismatch(t *testing.T) {
	now := time.Now()
	booking := &models.Booking{
		ID:          uuid.New(),
		AmountCents: 500,
		Status:      enums.BookingStatusCancelled,
		CancelledAt: &now,
	}
	checker := newChecker(t, booking, paymentRecord(booking.ID, 500), refundRecord(booking.ID, 999))

	err := checker.CheckBooking(context.Background(), booking.ID)
	if err == nil {
		t.Fatal("expected refund mismatch violation")
	}
	if got := len(multierr.Errors(err)); got != 1 {
		t.Fatalf("expected 1 violation, got %d: %v", got, err)
	}
}

func TestCheckBookingConfirmedWithRefund(t *testing.T) {
	booking := &models.Booking{ID: uuid.New(), AmountCents: 500, Status: enums.BookingStatusConfirmed}
	checker := newChecker(t, booking, paymentRecord(booking.ID, 500), refundRecord(booking.ID, 500))

	if err := checker.CheckBooking(context.Background(), booking.ID); err == nil {
		t.Fatal("confirmed booking with a refund must be flagged")
	}
}

func TestCheckBookingUnknownID(t *testing.T) {
	booking := &models.Booking{ID: uuid.New(), AmountCents: 500, Status: enums.BookingStatusConfirmed}
	checker := newChecker(t, booking)

	err := checker.CheckBooking(context.Background(), uuid.New())
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
