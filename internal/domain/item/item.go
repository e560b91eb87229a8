package item

import "time"

// Item is a thing a user lists for others to borrow. It is read-only here;
// listing and editing items is handled elsewhere.
type Item struct {
	id          int64
	name        string
	description string
	available   bool
	ownerID     int64
	requestID   *int64
	createdAt   time.Time
}

// ReconstructItem rebuilds an Item from persistence data.
func ReconstructItem(id int64, name, description string, available bool, ownerID int64, requestID *int64, createdAt time.Time) *Item {
	return &Item{
		id:          id,
		name:        name,
		description: description,
		available:   available,
		ownerID:     ownerID,
		requestID:   requestID,
		createdAt:   createdAt,
	}
}

func (i *Item) ID() int64            { return i.id }
func (i *Item) Name() string         { return i.name }
func (i *Item) Description() string  { return i.description }
func (i *Item) Available() bool      { return i.available }
func (i *Item) OwnerID() int64       { return i.ownerID }
func (i *Item) RequestID() *int64    { return i.requestID }
func (i *Item) CreatedAt() time.Time { return i.createdAt }

// OwnedBy reports whether userID owns the item.
func (i *Item) OwnedBy(userID int64) bool { return i.ownerID == userID }
