package item

import "context"

// ItemRepository is the read side of the item catalog.
type ItemRepository interface {
	FindByID(ctx context.Context, id int64) (*Item, error)
	// FindByOwnerID lists an owner's items by id ascending.
	FindByOwnerID(ctx context.Context, ownerID int64, offset, limit int) ([]*Item, error)
}
