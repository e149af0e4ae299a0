package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/serviqo/serviqo-backend/pkg/db/models"
	"github.com/serviqo/serviqo-backend/pkg/enums"
	"github.com/serviqo/serviqo-backend/pkg/outbox/payloads"
)

type captureInserter struct {
	rows []models.OutboxEvent
	err  error
}

func (c *captureInserter) Insert(_ *gorm.DB, event models.OutboxEvent) error {
	if c.err != nil {
		return c.err
	}
	c.rows = append(c.rows, event)
	return nil
}

func TestEmitRequiresTransaction(t *testing.T) {
	svc := &Service{repo: &captureInserter{}}
	if err := svc.Emit(context.Background(), nil, DomainEvent{}); err == nil {
		t.Fatal("expected error for nil transaction")
	}
}

func TestEmitWrapsPayloadInEnvelope(t *testing.T) {
	capture := &captureInserter{}
	svc := &Service{repo: capture}

	bookingID := uuid.New()
	occurred := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	event := DomainEvent{
		EventType:     enums.EventBookingCreated,
		AggregateType: enums.AggregateBooking,
		AggregateID:   bookingID,
		Actor:         &ActorRef{AccountID: uuid.New(), Role: "client"},
		Data: payloads.BookingCreatedV1{
			BookingID:   bookingID,
			AmountCents: 2500,
			CreatedAt:   occurred,
		},
		OccurredAt: occurred,
	}

	if err := svc.Emit(context.Background(), &gorm.DB{}, event); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(capture.rows) != 1 {
		t.Fatalf("expected 1 inserted row, got %d", len(capture.rows))
	}

	row := capture.rows[0]
	if row.EventType != enums.EventBookingCreated {
		t.Fatalf("event type = %s", row.EventType)
	}
	if row.AggregateID != bookingID {
		t.Fatalf("aggregate id = %s", row.AggregateID)
	}

	var envelope PayloadEnvelope
	if err := json.Unmarshal(row.Payload, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.Version != 1 {
		t.Fatalf("expected default version 1, got %d", envelope.Version)
	}
	if envelope.EventID == "" {
		t.Fatal("expected generated event id")
	}
	if !envelope.OccurredAt.Equal(occurred) {
		t.Fatalf("occurredAt = %s", envelope.OccurredAt)
	}

	var data payloads.BookingCreatedV1
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data.AmountCents != 2500 {
		t.Fatalf("amount = %d", data.AmountCents)
	}
}
