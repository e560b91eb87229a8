package application

import (
	"context"
	"fmt"
	"strconv"

	bookingDomain "github.com/shareit/service-shareit/internal/domain/booking"
	itemDomain "github.com/shareit/service-shareit/internal/domain/item"
	userDomain "github.com/shareit/service-shareit/internal/domain/user"
	"github.com/shareit/service-shareit/internal/events"
	"github.com/shareit/service-shareit/internal/pkg/clock"
	"github.com/shareit/service-shareit/internal/pkg/domain"
	"github.com/shareit/service-shareit/internal/pkg/kafka"
	"github.com/shareit/service-shareit/internal/pkg/metrics"
	"go.uber.org/zap"
)

// EventPublisher delivers CloudEvents. *kafka.Producer implements it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	bookings  bookingDomain.BookingRepository
	users     userDomain.UserRepository
	items     itemDomain.ItemRepository
	publisher EventPublisher
	topic     string
	clock     clock.Clock
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService. A nil publisher disables events.
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	users userDomain.UserRepository,
	items itemDomain.ItemRepository,
	publisher EventPublisher,
	topic string,
	clk clock.Clock,
	logger *zap.Logger,
) *BookingService {
	if topic == "" {
		topic = events.TopicBookingEvents
	}
	return &BookingService{
		bookings:  bookings,
		users:     users,
		items:     items,
		publisher: publisher,
		topic:     topic,
		clock:     clk,
		logger:    logger,
	}
}

// CreateBooking places a WAITING booking on an item for the booker.
func (s *BookingService) CreateBooking(ctx context.Context, bookerID int64, req CreateBookingRequest) (*BookingView, error) {
	var start, end Timestamp
	if req.Start != nil {
		start = *req.Start
	}
	if req.End != nil {
		end = *req.End
	}
	if err := bookingDomain.ValidateInterval(start.Time, end.Time); err != nil {
		return nil, err
	}

	booker, err := s.users.FindByID(ctx, bookerID)
	if err != nil {
		return nil, err
	}
	it, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(
		bookingDomain.ItemRef{
			ID:          it.ID(),
			Name:        it.Name(),
			Description: it.Description(),
			Available:   it.Available(),
			OwnerID:     it.OwnerID(),
			RequestID:   it.RequestID(),
		},
		bookingDomain.BookerRef{ID: booker.ID, Name: booker.Name, Email: booker.Email},
		start.Time,
		end.Time,
		s.clock.Now(),
	)
	if err != nil {
		return nil, err
	}

	saved, err := s.bookings.Save(ctx, bk)
	if err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	metrics.RecordBookingCreated()
	s.logger.Info("booking created",
		zap.Int64("booking_id", saved.ID()),
		zap.Int64("item_id", it.ID()),
		zap.Int64("booker_id", booker.ID),
	)
	s.publishBookingEvent(ctx, events.BookingCreated, saved)

	result := toBookingView(saved)
	return &result, nil
}

// ApproveBooking records the item owner's decision on a WAITING booking.
func (s *BookingService) ApproveBooking(ctx context.Context, actorID, bookingID int64, approved bool) (*BookingView, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, actorID); err != nil {
		return nil, err
	}

	if err := bk.Decide(actorID, approved, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.bookings.UpdateDecision(ctx, bk); err != nil {
		return nil, err
	}

	metrics.RecordBookingDecision(bk.Status().String())
	s.logger.Info("booking decided",
		zap.Int64("booking_id", bk.ID()),
		zap.Int64("owner_id", actorID),
		zap.String("status", bk.Status().String()),
	)

	eventType := events.BookingRejected
	if bk.Status() == bookingDomain.StatusApproved {
		eventType = events.BookingApproved
	}
	s.publishBookingEvent(ctx, eventType, bk)

	result := toBookingView(bk)
	return &result, nil
}

// GetBooking returns a booking visible to its booker or the item owner.
func (s *BookingService) GetBooking(ctx context.Context, actorID, bookingID int64) (*BookingView, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.VisibleTo(actorID) {
		return nil, domain.NewNotFoundError("Booking", bookingID)
	}
	result := toBookingView(bk)
	return &result, nil
}

// ListBookerBookings lists bookings made by the user.
func (s *BookingService) ListBookerBookings(ctx context.Context, userID int64, state string, from, size int) ([]BookingView, error) {
	return s.list(ctx, bookingDomain.ByBooker, userID, state, from, size)
}

// ListOwnerBookings lists bookings on the user's items.
func (s *BookingService) ListOwnerBookings(ctx context.Context, userID int64, state string, from, size int) ([]BookingView, error) {
	return s.list(ctx, bookingDomain.ByOwner, userID, state, from, size)
}

func (s *BookingService) list(ctx context.Context, perspective bookingDomain.Perspective, userID int64, stateText string, from, size int) ([]BookingView, error) {
	state, err := bookingDomain.ParseState(stateText)
	if err != nil {
		return nil, err
	}
	page, err := bookingDomain.NewPage(from, size)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	criteria := bookingDomain.NewCriteria(perspective, userID, state, s.clock.Now(), page)
	bookings, err := s.bookings.Find(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingViews(bookings), nil
}

func (s *BookingService) publishBookingEvent(ctx context.Context, eventType string, bk *bookingDomain.Booking) {
	evt := events.BookingEvent{
		BookingID:  bk.ID(),
		ItemID:     bk.Item().ID,
		OwnerID:    bk.Item().OwnerID,
		BookerID:   bk.Booker().ID,
		Start:      bk.Start(),
		End:        bk.End(),
		Status:     bk.Status().String(),
		OccurredAt: s.clock.Now(),
	}
	s.publishEvent(ctx, eventType, strconv.FormatInt(bk.ID(), 10), evt)
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	if s.publisher == nil {
		return
	}

	cloudEvent, err := kafka.NewCloudEvent(events.Source, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.PublishEvent(ctx, s.topic, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", s.topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
