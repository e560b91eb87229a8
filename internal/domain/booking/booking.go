package booking

import (
	"time"

	"github.com/shareit/service-shareit/internal/pkg/domain"
)

// ItemRef is the snapshot of the booked item carried by a booking.
type ItemRef struct {
	ID          int64
	Name        string
	Description string
	Available   bool
	OwnerID     int64
	RequestID   *int64
}

// BookerRef is the snapshot of the requesting user.
type BookerRef struct {
	ID    int64
	Name  string
	Email string
}

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id     int64
	item   ItemRef
	booker BookerRef
	start  time.Time
	end    time.Time
	status BookingStatus

	createdAt time.Time
	updatedAt time.Time
}

// ValidateInterval checks that start is strictly before end.
func ValidateInterval(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return domain.NewValidationError("booking start and end are required")
	}
	if !start.Before(end) {
		return domain.NewValidationError("booking start must be before end")
	}
	return nil
}

// NewBooking creates a WAITING booking of item by booker.
// The booker may not own the item; that case is reported as NotFound.
func NewBooking(item ItemRef, booker BookerRef, start, end, now time.Time) (*Booking, error) {
	if err := ValidateInterval(start, end); err != nil {
		return nil, err
	}
	if !item.Available {
		return nil, domain.NewValidationError("item is not available for booking")
	}
	if item.OwnerID == booker.ID {
		return nil, domain.NewNotFoundError("Item", item.ID)
	}

	return &Booking{
		item:      item,
		booker:    booker,
		start:     start.UTC(),
		end:       end.UTC(),
		status:    StatusWaiting,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id int64,
	item ItemRef,
	booker BookerRef,
	start, end time.Time,
	status BookingStatus,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		item:      item,
		booker:    booker,
		start:     start,
		end:       end,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

func (b *Booking) ID() int64             { return b.id }
func (b *Booking) Item() ItemRef         { return b.item }
func (b *Booking) Booker() BookerRef     { return b.booker }
func (b *Booking) Start() time.Time      { return b.start }
func (b *Booking) End() time.Time        { return b.end }
func (b *Booking) Status() BookingStatus { return b.status }
func (b *Booking) CreatedAt() time.Time  { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time  { return b.updatedAt }

// VisibleTo reports whether userID is the booker or the item owner.
func (b *Booking) VisibleTo(userID int64) bool {
	return b.booker.ID == userID || b.item.OwnerID == userID
}

// --- Behavior ---

// Decide applies the owner's decision. Only WAITING bookings can be decided,
// and only the item owner may decide; the booker and third parties get NotFound.
func (b *Booking) Decide(actorID int64, approved bool, now time.Time) error {
	target := StatusRejected
	if approved {
		target = StatusApproved
	}

	if b.status != StatusWaiting {
		return domain.NewRequestFailedError("booking has already been decided")
	}
	if actorID == b.booker.ID || actorID != b.item.OwnerID {
		return domain.NewNotFoundError("Booking", b.id)
	}
	if !b.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(b.status), string(target))
	}

	b.status = target
	b.updatedAt = now
	return nil
}
