package enums

// OutboxEventType enumerates the domain events written to outbox_events.
type OutboxEventType string

const (
	EventBookingCreated   OutboxEventType = "booking.created"
	EventBookingCancelled OutboxEventType = "booking.cancelled"
)

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateBooking OutboxAggregateType = "booking"
)
