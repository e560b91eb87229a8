package events

import "time"

// TopicBookingEvents carries booking lifecycle events.
const TopicBookingEvents = "booking.events"

// Source is the CloudEvents source of every event this service emits.
const Source = "service-shareit"

const (
	BookingCreated  = "booking.created"
	BookingApproved = "booking.approved"
	BookingRejected = "booking.rejected"
)

// BookingEvent is the payload of every booking lifecycle event.
type BookingEvent struct {
	BookingID  int64     `json:"bookingId"`
	ItemID     int64     `json:"itemId"`
	OwnerID    int64     `json:"ownerId"`
	BookerID   int64     `json:"bookerId"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
}
