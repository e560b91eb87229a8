package booking

import "context"

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking with its item and booker snapshots.
	FindByID(ctx context.Context, id int64) (*Booking, error)

	// Find returns the bookings matching the criteria, ordered and windowed.
	Find(ctx context.Context, criteria Criteria) ([]*Booking, error)

	// FindApprovedByItemIDs returns APPROVED bookings of the given items in one query.
	FindApprovedByItemIDs(ctx context.Context, itemIDs []int64) ([]*Booking, error)

	// Save persists a new booking and returns it with its assigned id.
	Save(ctx context.Context, booking *Booking) (*Booking, error)

	// UpdateDecision stores a decided status only if the stored row is still WAITING.
	UpdateDecision(ctx context.Context, booking *Booking) error
}
