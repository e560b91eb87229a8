package booking

import "time"

// LastAndNext picks, among the APPROVED bookings of one item, the one with the
// latest start at or before now and the one with the earliest start after now.
// Either result may be nil.
func LastAndNext(bookings []*Booking, now time.Time) (last, next *Booking) {
	for _, b := range bookings {
		if b.status != StatusApproved {
			continue
		}
		if !b.start.After(now) {
			if last == nil || b.start.After(last.start) {
				last = b
			}
		} else if next == nil || b.start.Before(next.start) {
			next = b
		}
	}
	return last, next
}
