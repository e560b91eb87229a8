package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	bookingDomain "github.com/shareit/service-shareit/internal/domain/booking"
	"github.com/shareit/service-shareit/internal/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(AllModels()...))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) UserModel {
	t.Helper()
	u := UserModel{Name: name, Email: name + "@example.com", CreatedAt: now}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedItem(t *testing.T, db *gorm.DB, owner UserModel, name string) ItemModel {
	t.Helper()
	it := ItemModel{Name: name, Description: name + " description", Available: true, OwnerID: owner.ID, CreatedAt: now}
	require.NoError(t, db.Create(&it).Error)
	return it
}

func seedBooking(t *testing.T, repo *GormBookingRepository, it ItemModel, booker UserModel, start, end time.Duration, status bookingDomain.BookingStatus) *bookingDomain.Booking {
	t.Helper()
	bk := bookingDomain.ReconstructBooking(0,
		bookingDomain.ItemRef{ID: it.ID, OwnerID: it.OwnerID, Available: true},
		bookingDomain.BookerRef{ID: booker.ID},
		now.Add(start), now.Add(end), status, now, now)
	saved, err := repo.Save(context.Background(), bk)
	require.NoError(t, err)
	require.NotZero(t, saved.ID())
	return saved
}

func TestUserAndItemRepositories(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	drill := seedItem(t, db, alice, "drill")
	seedItem(t, db, alice, "saw")

	users := NewGormUserRepository(db)
	u, err := users.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)

	_, err = users.FindByID(ctx, 999)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	items := NewGormItemRepository(db)
	it, err := items.FindByID(ctx, drill.ID)
	require.NoError(t, err)
	assert.True(t, it.OwnedBy(alice.ID))
	assert.Equal(t, "drill description", it.Description())

	_, err = items.FindByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	owned, err := items.FindByOwnerID(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, "drill", owned[0].Name())
}

func TestBookingRepository_SaveAndFind(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice, bob := seedUser(t, db, "alice"), seedUser(t, db, "bob")
	drill := seedItem(t, db, alice, "drill")
	repo := NewGormBookingRepository(db)

	saved := seedBooking(t, repo, drill, bob, time.Hour, 2*time.Hour, bookingDomain.StatusWaiting)

	got, err := repo.FindByID(ctx, saved.ID())
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusWaiting, got.Status())
	assert.Equal(t, "drill", got.Item().Name)
	assert.Equal(t, alice.ID, got.Item().OwnerID)
	assert.Equal(t, "bob", got.Booker().Name)
	assert.True(t, now.Add(time.Hour).Equal(got.Start()))

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func bookingIDs(bookings []*bookingDomain.Booking) []int64 {
	out := []int64{}
	for _, b := range bookings {
		out = append(out, b.ID())
	}
	return out
}

func TestBookingRepository_FindByState(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice, bob, carol := seedUser(t, db, "alice"), seedUser(t, db, "bob"), seedUser(t, db, "carol")
	drill := seedItem(t, db, alice, "drill")
	tent := seedItem(t, db, carol, "tent")
	repo := NewGormBookingRepository(db)

	past := seedBooking(t, repo, drill, bob, -48*time.Hour, -24*time.Hour, bookingDomain.StatusApproved)
	current := seedBooking(t, repo, drill, bob, -time.Hour, time.Hour, bookingDomain.StatusApproved)
	future := seedBooking(t, repo, drill, bob, 24*time.Hour, 48*time.Hour, bookingDomain.StatusWaiting)
	rejected := seedBooking(t, repo, drill, bob, 2*time.Hour, 3*time.Hour, bookingDomain.StatusRejected)
	other := seedBooking(t, repo, tent, bob, 3*time.Hour, 4*time.Hour, bookingDomain.StatusWaiting)
	seedBooking(t, repo, tent, alice, 5*time.Hour, 6*time.Hour, bookingDomain.StatusWaiting)

	page, _ := bookingDomain.NewPage(0, 10)
	cases := []struct {
		name        string
		perspective bookingDomain.Perspective
		userID      int64
		state       bookingDomain.State
		want        []int64
	}{
		{"booker all", bookingDomain.ByBooker, bob.ID, bookingDomain.StateAll, []int64{future.ID(), other.ID(), rejected.ID(), current.ID(), past.ID()}},
		{"booker current", bookingDomain.ByBooker, bob.ID, bookingDomain.StateCurrent, []int64{current.ID()}},
		{"booker past", bookingDomain.ByBooker, bob.ID, bookingDomain.StatePast, []int64{past.ID()}},
		{"booker future", bookingDomain.ByBooker, bob.ID, bookingDomain.StateFuture, []int64{future.ID(), other.ID(), rejected.ID()}},
		{"booker waiting", bookingDomain.ByBooker, bob.ID, bookingDomain.StateWaiting, []int64{future.ID(), other.ID()}},
		{"booker rejected", bookingDomain.ByBooker, bob.ID, bookingDomain.StateRejected, []int64{rejected.ID()}},
		{"owner all", bookingDomain.ByOwner, alice.ID, bookingDomain.StateAll, []int64{future.ID(), rejected.ID(), current.ID(), past.ID()}},
		{"owner waiting", bookingDomain.ByOwner, alice.ID, bookingDomain.StateWaiting, []int64{future.ID()}},
		{"owner of nothing booked", bookingDomain.ByOwner, bob.ID, bookingDomain.StateAll, []int64{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.Find(ctx, bookingDomain.NewCriteria(tc.perspective, tc.userID, tc.state, now, page))
			require.NoError(t, err)
			assert.Equal(t, tc.want, bookingIDs(got))
		})
	}
}

func TestBookingRepository_FindMatchesDomainCriteria(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice, bob := seedUser(t, db, "alice"), seedUser(t, db, "bob")
	drill := seedItem(t, db, alice, "drill")
	repo := NewGormBookingRepository(db)

	var all []*bookingDomain.Booking
	offsets := []time.Duration{-72, -30, -3, -2, -1, 0, 1, 5, 30}
	for i, off := range offsets {
		status := bookingDomain.StatusApproved
		if i%3 == 0 {
			status = bookingDomain.StatusRejected
		}
		all = append(all, seedBooking(t, repo, drill, bob, off*time.Hour, (off+3)*time.Hour, status))
	}
	for i := range all {
		all[i], _ = repo.FindByID(ctx, all[i].ID())
	}

	page, _ := bookingDomain.NewPage(0, 100)
	for _, state := range []bookingDomain.State{bookingDomain.StateAll, bookingDomain.StateCurrent, bookingDomain.StatePast, bookingDomain.StateFuture, bookingDomain.StateWaiting, bookingDomain.StateRejected} {
		for _, c := range []bookingDomain.Criteria{
			bookingDomain.NewCriteria(bookingDomain.ByBooker, bob.ID, state, now, page),
			bookingDomain.NewCriteria(bookingDomain.ByOwner, alice.ID, state, now, page),
		} {
			got, err := repo.Find(ctx, c)
			require.NoError(t, err)

			want := []int64{}
			var matched []*bookingDomain.Booking
			for _, b := range all {
				if c.Matches(b) {
					matched = append(matched, b)
				}
			}
			for i := 1; i < len(matched); i++ {
				for j := i; j > 0 && c.Less(matched[j], matched[j-1]); j-- {
					matched[j], matched[j-1] = matched[j-1], matched[j]
				}
			}
			for _, b := range matched {
				want = append(want, b.ID())
			}
			assert.Equal(t, want, bookingIDs(got), "state %s perspective %d", state, c.Perspective)
		}
	}
}

func TestBookingRepository_EndAtNowIsCurrent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice, bob := seedUser(t, db, "alice"), seedUser(t, db, "bob")
	drill := seedItem(t, db, alice, "drill")
	repo := NewGormBookingRepository(db)

	endsNow := seedBooking(t, repo, drill, bob, -2*time.Hour, 0, bookingDomain.StatusApproved)
	startsNow := seedBooking(t, repo, drill, bob, 0, 2*time.Hour, bookingDomain.StatusApproved)
	ended := seedBooking(t, repo, drill, bob, -2*time.Hour, -time.Nanosecond, bookingDomain.StatusApproved)

	page, _ := bookingDomain.NewPage(0, 10)
	find := func(perspective bookingDomain.Perspective, userID int64, state bookingDomain.State) []int64 {
		got, err := repo.Find(ctx, bookingDomain.NewCriteria(perspective, userID, state, now, page))
		require.NoError(t, err)
		return bookingIDs(got)
	}

	for _, side := range []struct {
		perspective bookingDomain.Perspective
		userID      int64
	}{{bookingDomain.ByBooker, bob.ID}, {bookingDomain.ByOwner, alice.ID}} {
		assert.ElementsMatch(t, []int64{endsNow.ID(), startsNow.ID()}, find(side.perspective, side.userID, bookingDomain.StateCurrent))
		assert.Equal(t, []int64{ended.ID()}, find(side.perspective, side.userID, bookingDomain.StatePast))
		assert.Empty(t, find(side.perspective, side.userID, bookingDomain.StateFuture))
	}
}

func TestBookingRepository_Paging(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice, bob := seedUser(t, db, "alice"), seedUser(t, db, "bob")
	drill := seedItem(t, db, alice, "drill")
	repo := NewGormBookingRepository(db)

	var ids []int64
	for i := 0; i < 5; i++ {
		b := seedBooking(t, repo, drill, bob, time.Duration(10-i)*time.Hour, time.Duration(11-i)*time.Hour, bookingDomain.StatusWaiting)
		ids = append(ids, b.ID())
	}

	page, _ := bookingDomain.NewPage(2, 2)
	got, err := repo.Find(ctx, bookingDomain.NewCriteria(bookingDomain.ByBooker, bob.ID, bookingDomain.StateAll, now, page))
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[2], ids[3]}, bookingIDs(got))

	// from=3,size=2 snaps to the same page
	page, _ = bookingDomain.NewPage(3, 2)
	got, err = repo.Find(ctx, bookingDomain.NewCriteria(bookingDomain.ByBooker, bob.ID, bookingDomain.StateAll, now, page))
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[2], ids[3]}, bookingIDs(got))

	page, _ = bookingDomain.NewPage(4, 2)
	got, err = repo.Find(ctx, bookingDomain.NewCriteria(bookingDomain.ByBooker, bob.ID, bookingDomain.StateAll, now, page))
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[4]}, bookingIDs(got))
}

func TestBookingRepository_FindApprovedByItemIDs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice, bob := seedUser(t, db, "alice"), seedUser(t, db, "bob")
	drill, saw, ladder := seedItem(t, db, alice, "drill"), seedItem(t, db, alice, "saw"), seedItem(t, db, alice, "ladder")
	repo := NewGormBookingRepository(db)

	a := seedBooking(t, repo, drill, bob, time.Hour, 2*time.Hour, bookingDomain.StatusApproved)
	seedBooking(t, repo, drill, bob, 3*time.Hour, 4*time.Hour, bookingDomain.StatusWaiting)
	b := seedBooking(t, repo, saw, bob, -2*time.Hour, -time.Hour, bookingDomain.StatusApproved)
	seedBooking(t, repo, ladder, bob, time.Hour, 2*time.Hour, bookingDomain.StatusApproved)

	got, err := repo.FindApprovedByItemIDs(ctx, []int64{drill.ID, saw.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID(), a.ID()}, bookingIDs(got))

	got, err = repo.FindApprovedByItemIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBookingRepository_UpdateDecisionIsExclusive(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice, bob := seedUser(t, db, "alice"), seedUser(t, db, "bob")
	drill := seedItem(t, db, alice, "drill")
	repo := NewGormBookingRepository(db)
	saved := seedBooking(t, repo, drill, bob, time.Hour, 2*time.Hour, bookingDomain.StatusWaiting)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		okN    int
		failed []error
	)
	for _, approved := range []bool{true, false} {
		wg.Add(1)
		go func(approved bool) {
			defer wg.Done()
			bk, err := repo.FindByID(ctx, saved.ID())
			if !assert.NoError(t, err) {
				return
			}
			if err := bk.Decide(alice.ID, approved, now); err != nil {
				mu.Lock()
				failed = append(failed, err)
				mu.Unlock()
				return
			}
			err = repo.UpdateDecision(ctx, bk)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, err)
				return
			}
			okN++
		}(approved)
	}
	wg.Wait()

	assert.Equal(t, 1, okN)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0], domain.ErrRequestFailed)

	stored, err := repo.FindByID(ctx, saved.ID())
	require.NoError(t, err)
	assert.True(t, stored.Status().IsTerminal())
}
