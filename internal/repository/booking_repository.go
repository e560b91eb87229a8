package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingDomain "github.com/shareit/service-shareit/internal/domain/booking"
	"github.com/shareit/service-shareit/internal/pkg/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	ItemID    int64     `gorm:"not null;index:idx_bookings_item_status,priority:1"`
	Item      ItemModel `gorm:"foreignKey:ItemID"`
	BookerID  int64     `gorm:"not null;index:idx_bookings_booker_start,priority:1"`
	Booker    UserModel `gorm:"foreignKey:BookerID"`
	StartAt   time.Time `gorm:"not null;index:idx_bookings_booker_start,priority:2"`
	EndAt     time.Time `gorm:"not null"`
	Status    string    `gorm:"not null;size:16;index:idx_bookings_item_status,priority:2"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) withRefs(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Item").Preload("Booker")
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id int64) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.withRefs(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id)
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// Find translates the criteria into a single filtered, ordered and paged query.
func (r *GormBookingRepository) Find(ctx context.Context, c bookingDomain.Criteria) ([]*bookingDomain.Booking, error) {
	q := r.withRefs(ctx).Model(&BookingModel{}).Select("bookings.*")

	switch c.Perspective {
	case bookingDomain.ByOwner:
		q = q.Joins("JOIN items ON items.id = bookings.item_id").Where("items.owner_id = ?", c.UserID)
	default:
		q = q.Where("bookings.booker_id = ?", c.UserID)
	}

	if c.Status != nil {
		q = q.Where("bookings.status = ?", string(*c.Status))
	}
	if c.StartAtOrBefore != nil {
		q = q.Where("bookings.start_at <= ?", c.StartAtOrBefore.UTC())
	}
	if c.EndAtOrAfter != nil {
		q = q.Where("bookings.end_at >= ?", c.EndAtOrAfter.UTC())
	}
	if c.EndBefore != nil {
		q = q.Where("bookings.end_at < ?", c.EndBefore.UTC())
	}
	if c.StartAfter != nil {
		q = q.Where("bookings.start_at > ?", c.StartAfter.UTC())
	}

	if c.Ascending {
		q = q.Order("bookings.start_at ASC").Order("bookings.id ASC")
	} else {
		q = q.Order("bookings.start_at DESC").Order("bookings.id DESC")
	}

	var models []BookingModel
	if err := q.Offset(c.Page.Offset()).Limit(c.Page.Limit()).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindApprovedByItemIDs returns every APPROVED booking of the given items.
func (r *GormBookingRepository) FindApprovedByItemIDs(ctx context.Context, itemIDs []int64) ([]*bookingDomain.Booking, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}

	var models []BookingModel
	if err := r.withRefs(ctx).
		Where("item_id IN ? AND status = ?", itemIDs, string(bookingDomain.StatusApproved)).
		Order("start_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find approved bookings: %w", err)
	}
	return toDomainBookings(models)
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) (*bookingDomain.Booking, error) {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}
	return bookingDomain.ReconstructBooking(
		model.ID, bk.Item(), bk.Booker(), bk.Start(), bk.End(), bk.Status(), bk.CreatedAt(), bk.UpdatedAt(),
	), nil
}

// UpdateDecision writes the decided status guarded by status = WAITING, so of
// two concurrent decisions only one can succeed.
func (r *GormBookingRepository) UpdateDecision(ctx context.Context, bk *bookingDomain.Booking) error {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND status = ?", bk.ID(), string(bookingDomain.StatusWaiting)).
		Updates(map[string]interface{}{
			"status":     string(bk.Status()),
			"updated_at": bk.UpdatedAt().UTC(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewRequestFailedError("booking has already been decided")
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:        bk.ID(),
		ItemID:    bk.Item().ID,
		BookerID:  bk.Booker().ID,
		StartAt:   bk.Start().UTC(),
		EndAt:     bk.End().UTC(),
		Status:    string(bk.Status()),
		CreatedAt: bk.CreatedAt().UTC(),
		UpdatedAt: bk.UpdatedAt().UTC(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	item := bookingDomain.ItemRef{
		ID:          m.ItemID,
		Name:        m.Item.Name,
		Description: m.Item.Description,
		Available:   m.Item.Available,
		OwnerID:     m.Item.OwnerID,
		RequestID:   m.Item.RequestID,
	}
	booker := bookingDomain.BookerRef{
		ID:    m.BookerID,
		Name:  m.Booker.Name,
		Email: m.Booker.Email,
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		item,
		booker,
		m.StartAt.UTC(),
		m.EndAt.UTC(),
		status,
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
