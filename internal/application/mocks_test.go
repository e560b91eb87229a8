package application

import (
	"context"

	bookingDomain "github.com/shareit/service-shareit/internal/domain/booking"
	itemDomain "github.com/shareit/service-shareit/internal/domain/item"
	userDomain "github.com/shareit/service-shareit/internal/domain/user"
	"github.com/shareit/service-shareit/internal/pkg/kafka"
	"github.com/stretchr/testify/mock"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id int64) (*bookingDomain.Booking, error) {
	args := m.Called(ctx, id)
	bk, _ := args.Get(0).(*bookingDomain.Booking)
	return bk, args.Error(1)
}

func (m *mockBookingRepo) Find(ctx context.Context, c bookingDomain.Criteria) ([]*bookingDomain.Booking, error) {
	args := m.Called(ctx, c)
	out, _ := args.Get(0).([]*bookingDomain.Booking)
	return out, args.Error(1)
}

func (m *mockBookingRepo) FindApprovedByItemIDs(ctx context.Context, itemIDs []int64) ([]*bookingDomain.Booking, error) {
	args := m.Called(ctx, itemIDs)
	out, _ := args.Get(0).([]*bookingDomain.Booking)
	return out, args.Error(1)
}

func (m *mockBookingRepo) Save(ctx context.Context, bk *bookingDomain.Booking) (*bookingDomain.Booking, error) {
	args := m.Called(ctx, bk)
	out, _ := args.Get(0).(*bookingDomain.Booking)
	return out, args.Error(1)
}

func (m *mockBookingRepo) UpdateDecision(ctx context.Context, bk *bookingDomain.Booking) error {
	return m.Called(ctx, bk).Error(0)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*userDomain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*userDomain.User)
	return u, args.Error(1)
}

type mockItemRepo struct {
	mock.Mock
}

func (m *mockItemRepo) FindByID(ctx context.Context, id int64) (*itemDomain.Item, error) {
	args := m.Called(ctx, id)
	it, _ := args.Get(0).(*itemDomain.Item)
	return it, args.Error(1)
}

func (m *mockItemRepo) FindByOwnerID(ctx context.Context, ownerID int64, offset, limit int) ([]*itemDomain.Item, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	out, _ := args.Get(0).([]*itemDomain.Item)
	return out, args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error {
	return m.Called(ctx, topic, key, event).Error(0)
}
