package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	bookingDomain "github.com/shareit/service-shareit/internal/domain/booking"
	itemDomain "github.com/shareit/service-shareit/internal/domain/item"
)

// localLayout is the zone-less form clients commonly send; it is read as UTC.
const localLayout = "2006-01-02T15:04:05"

// Timestamp is a UTC instant that accepts RFC 3339 or zone-less input and
// always renders as RFC 3339.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t.UTC()} }

// ParseTimestamp parses RFC 3339 first, then the zone-less layout.
func ParseTimestamp(s string) (Timestamp, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return NewTimestamp(t), nil
	}
	t, err := time.ParseInLocation(localLayout, s, time.UTC)
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return NewTimestamp(t), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// CreateBookingRequest is the body of POST /bookings.
type CreateBookingRequest struct {
	ItemID int64      `json:"itemId" binding:"required,gt=0"`
	Start  *Timestamp `json:"start" binding:"required"`
	End    *Timestamp `json:"end" binding:"required"`
}

// BookerView is the booker as shown on a booking.
type BookerView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ItemSummary is the item as shown on a booking.
type ItemSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	RequestID   *int64 `json:"requestId,omitempty"`
}

// BookingView is the response representation of a booking.
type BookingView struct {
	ID     int64       `json:"id"`
	Start  Timestamp   `json:"start"`
	End    Timestamp   `json:"end"`
	Status string      `json:"status"`
	Booker BookerView  `json:"booker"`
	Item   ItemSummary `json:"item"`
	ItemID int64       `json:"itemId"`
}

// BookingShort is the booking projection attached to an item.
type BookingShort struct {
	ID       int64     `json:"id"`
	BookerID int64     `json:"bookerId"`
	Start    Timestamp `json:"start"`
	End      Timestamp `json:"end"`
}

// ItemView is an item with its owner-only booking info.
type ItemView struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Available   bool          `json:"available"`
	RequestID   *int64        `json:"requestId,omitempty"`
	LastBooking *BookingShort `json:"lastBooking"`
	NextBooking *BookingShort `json:"nextBooking"`
}

func toBookingView(bk *bookingDomain.Booking) BookingView {
	item := bk.Item()
	booker := bk.Booker()
	return BookingView{
		ID:     bk.ID(),
		Start:  NewTimestamp(bk.Start()),
		End:    NewTimestamp(bk.End()),
		Status: bk.Status().String(),
		Booker: BookerView{ID: booker.ID, Name: booker.Name, Email: booker.Email},
		Item: ItemSummary{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Available:   item.Available,
			RequestID:   item.RequestID,
		},
		ItemID: item.ID,
	}
}

func toBookingViews(bookings []*bookingDomain.Booking) []BookingView {
	views := make([]BookingView, len(bookings))
	for i, bk := range bookings {
		views[i] = toBookingView(bk)
	}
	return views
}

func toBookingShort(bk *bookingDomain.Booking) *BookingShort {
	if bk == nil {
		return nil
	}
	return &BookingShort{
		ID:       bk.ID(),
		BookerID: bk.Booker().ID,
		Start:    NewTimestamp(bk.Start()),
		End:      NewTimestamp(bk.End()),
	}
}

func toItemView(it *itemDomain.Item) ItemView {
	return ItemView{
		ID:          it.ID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		RequestID:   it.RequestID(),
	}
}
