package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/serviqo/serviqo-backend/pkg/db/models"
	"github.com/serviqo/serviqo-backend/pkg/enums"
	pkgerrors "github.com/serviqo/serviqo-backend/pkg/errors"
)

type bookingLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

type recordLoader interface {
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.TransactionRecord, error)
}

// Checker verifies the money-conservation invariants for committed bookings.
// It reads the same rows the orchestrator writes and reports every violation
// it finds, not just the first.
type Checker struct {
	bookings   bookingLoader
	records    recordLoader
	checked    prometheus.Counter
	violations prometheus.Counter
}

// NewChecker wires a conservation checker. The registerer is optional.
func NewChecker(bookings bookingLoader, records recordLoader, reg prometheus.Registerer) (*Checker, error) {
	if bookings == nil {
		return nil, fmt.Errorf("booking loader required")
	}
	if records == nil {
		return nil, fmt.Errorf("record loader required")
	}
	c := &Checker{bookings: bookings, records: records}
	if reg != nil {
		c.checked = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_audit_checks",
			Help: "Bookings run through the ledger consistency checker.",
		})
		c.violations = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_audit_violations",
			Help: "Ledger consistency violations found by the checker.",
		})
		reg.MustRegister(c.checked, c.violations)
	}
	return c, nil
}

// CheckBooking returns nil when the booking's ledger trail is consistent, or
// an aggregate of every violated rule.
func (c *Checker) CheckBooking(ctx context.Context, bookingID uuid.UUID) error {
	booking, err := c.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading booking")
	}
	if booking == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}

	records, err := c.records.ListByBooking(ctx, bookingID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading records")
	}

	var payments, refunds []models.TransactionRecord
	for _, record := range records {
		switch record.Type {
		case enums.TransactionTypePayment:
			payments = append(payments, record)
		case enums.TransactionTypeRefund:
			refunds = append(refunds, record)
		}
	}

	var violations error

	if len(payments) != 1 {
		violations = multierr.Append(violations,
			fmt.Errorf("booking %s: expected exactly 1 payment record, found %d", booking.ID, len(payments)))
	} else if payments[0].AmountCents != booking.AmountCents {
		violations = multierr.Append(violations,
			fmt.Errorf("booking %s: payment amount %d does not match captured amount %d",
				booking.ID, payments[0].AmountCents, booking.AmountCents))
	}

	switch booking.Status {
	case enums.BookingStatusConfirmed:
		if len(refunds) != 0 {
			violations = multierr.Append(violations,
				fmt.Errorf("booking %s: confirmed booking has %d refund records", booking.ID, len(refunds)))
		}
	case enums.BookingStatusCancelled:
		if booking.CancelledAt == nil {
			violations = multierr.Append(violations,
				fmt.Errorf("booking %s: cancelled booking missing cancelled_at", booking.ID))
		}
		if len(refunds) != 1 {
			violations = multierr.Append(violations,
				fmt.Errorf("booking %s: expected exactly 1 refund record, found %d", booking.ID, len(refunds)))
		} else if refunds[0].AmountCents != booking.AmountCents {
			violations = multierr.Append(violations,
				fmt.Errorf("booking %s: refund amount %d does not match captured amount %d",
					booking.ID, refunds[0].AmountCents, booking.AmountCents))
		}
	default:
		violations = multierr.Append(violations,
			fmt.Errorf("booking %s: unknown status %q", booking.ID, booking.Status))
	}

	if c.checked != nil {
		c.checked.Inc()
	}
	if violations != nil && c.violations != nil {
		c.violations.Add(float64(len(multierr.Errors(violations))))
	}
	return violations
}
