package booking

import "time"

// Perspective selects whose bookings are listed.
type Perspective int

const (
	// ByBooker lists bookings the user made.
	ByBooker Perspective = iota
	// ByOwner lists bookings on items the user owns.
	ByOwner
)

// Criteria is the query a listing request translates to. Stores must return
// exactly the bookings Matches accepts, ordered by Less, windowed by Page.
type Criteria struct {
	Perspective Perspective
	UserID      int64

	Status          *BookingStatus
	StartAtOrBefore *time.Time
	EndAtOrAfter    *time.Time
	EndBefore       *time.Time
	StartAfter      *time.Time

	// Ascending orders by start ascending; otherwise descending.
	Ascending bool
	Page      Page
}

// NewCriteria builds the criteria for state evaluated at now.
func NewCriteria(perspective Perspective, userID int64, state State, now time.Time, page Page) Criteria {
	c := Criteria{Perspective: perspective, UserID: userID, Page: page}

	switch state {
	case StateCurrent:
		c.StartAtOrBefore = &now
		c.EndAtOrAfter = &now
		c.Ascending = true
	case StatePast:
		c.EndBefore = &now
	case StateFuture:
		c.StartAfter = &now
	case StateWaiting:
		s := StatusWaiting
		c.Status = &s
	case StateRejected:
		s := StatusRejected
		c.Status = &s
	}
	return c
}

// Matches reports whether b satisfies the anchor and every predicate.
func (c Criteria) Matches(b *Booking) bool {
	switch c.Perspective {
	case ByBooker:
		if b.booker.ID != c.UserID {
			return false
		}
	case ByOwner:
		if b.item.OwnerID != c.UserID {
			return false
		}
	}

	if c.Status != nil && b.status != *c.Status {
		return false
	}
	if c.StartAtOrBefore != nil && b.start.After(*c.StartAtOrBefore) {
		return false
	}
	if c.EndAtOrAfter != nil && b.end.Before(*c.EndAtOrAfter) {
		return false
	}
	if c.EndBefore != nil && !b.end.Before(*c.EndBefore) {
		return false
	}
	if c.StartAfter != nil && !b.start.After(*c.StartAfter) {
		return false
	}
	return true
}

// Less orders by start, ties broken by id, both in the criteria direction.
func (c Criteria) Less(a, b *Booking) bool {
	if !a.start.Equal(b.start) {
		if c.Ascending {
			return a.start.Before(b.start)
		}
		return a.start.After(b.start)
	}
	if c.Ascending {
		return a.id < b.id
	}
	return a.id > b.id
}
