package application

import (
	"context"
	"fmt"

	bookingDomain "github.com/shareit/service-shareit/internal/domain/booking"
	itemDomain "github.com/shareit/service-shareit/internal/domain/item"
	userDomain "github.com/shareit/service-shareit/internal/domain/user"
	"github.com/shareit/service-shareit/internal/pkg/clock"
	"go.uber.org/zap"
)

// ItemService serves item views enriched with booking info.
type ItemService struct {
	items    itemDomain.ItemRepository
	users    userDomain.UserRepository
	bookings bookingDomain.BookingRepository
	clock    clock.Clock
	logger   *zap.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(
	items itemDomain.ItemRepository,
	users userDomain.UserRepository,
	bookings bookingDomain.BookingRepository,
	clk clock.Clock,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{items: items, users: users, bookings: bookings, clock: clk, logger: logger}
}

// GetItem returns one item. Booking info is attached only for its owner.
func (s *ItemService) GetItem(ctx context.Context, viewerID, itemID int64) (*ItemView, error) {
	if _, err := s.users.FindByID(ctx, viewerID); err != nil {
		return nil, err
	}
	it, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	views, err := s.FillWithBookingInfo(ctx, []*itemDomain.Item{it}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListOwnerItems returns the caller's items by id with booking info.
func (s *ItemService) ListOwnerItems(ctx context.Context, ownerID int64, from, size int) ([]ItemView, error) {
	page, err := bookingDomain.NewPage(from, size)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return nil, err
	}

	items, err := s.items.FindByOwnerID(ctx, ownerID, page.Offset(), page.Limit())
	if err != nil {
		return nil, err
	}
	return s.FillWithBookingInfo(ctx, items, ownerID)
}

// FillWithBookingInfo attaches last and next APPROVED bookings to the items
// viewerID owns. Bookings for all owned items are loaded in one query.
func (s *ItemService) FillWithBookingInfo(ctx context.Context, items []*itemDomain.Item, viewerID int64) ([]ItemView, error) {
	views := make([]ItemView, len(items))
	var owned []int64
	for i, it := range items {
		views[i] = toItemView(it)
		if it.OwnedBy(viewerID) {
			owned = append(owned, it.ID())
		}
	}
	if len(owned) == 0 {
		return views, nil
	}

	approved, err := s.bookings.FindApprovedByItemIDs(ctx, owned)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking info: %w", err)
	}
	byItem := make(map[int64][]*bookingDomain.Booking, len(owned))
	for _, bk := range approved {
		byItem[bk.Item().ID] = append(byItem[bk.Item().ID], bk)
	}

	now := s.clock.Now()
	for i, it := range items {
		if !it.OwnedBy(viewerID) {
			continue
		}
		last, next := bookingDomain.LastAndNext(byItem[it.ID()], now)
		views[i].LastBooking = toBookingShort(last)
		views[i].NextBooking = toBookingShort(next)
	}

	s.logger.Debug("booking info attached",
		zap.Int64("viewer_id", viewerID),
		zap.Int("owned_items", len(owned)),
	)
	return views, nil
}
