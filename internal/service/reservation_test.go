package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kozynetsoleksandr/reservation/internal/model"
	"github.com/kozynetsoleksandr/reservation/internal/store"
)

func newTestService(t *testing.T) (*Service, store.Store) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.Reservation{}))
	st := store.NewGormStore(db)
	return New(st), st
}

func pendingReservation(roomID int64, start, end model.Date) Reservation {
	return Reservation{
		UserID:    42,
		RoomID:    roomID,
		StartDate: start,
		EndDate:   end,
	}
}

func jan(day int) model.Date { return model.DateOf(2024, time.January, day) }

func TestCreate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, pendingReservation(1, jan(1), jan(5)))
	require.NoError(t, err)
	require.NotNil(t, created.ID)
	require.NotNil(t, created.Status)
	assert.NotZero(t, *created.ID)
	assert.Equal(t, model.StatusPending, *created.Status)

	second, err := svc.Create(ctx, pendingReservation(1, jan(6), jan(8)))
	require.NoError(t, err)
	assert.NotEqual(t, *created.ID, *second.ID)
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id := int64(99)
	status := model.StatusPending

	testCases := []struct {
		name  string
		input Reservation
	}{
		{
			name: "status set by caller",
			input: Reservation{
				UserID: 42, RoomID: 1, StartDate: jan(1), EndDate: jan(5),
				Status: &status,
			},
		},
		{
			name: "id set by caller",
			input: Reservation{
				ID:     &id,
				UserID: 42, RoomID: 1, StartDate: jan(1), EndDate: jan(5),
			},
		},
		{
			name:  "end before start",
			input: pendingReservation(1, jan(5), jan(1)),
		},
		{
			name:  "end equals start",
			input: pendingReservation(1, jan(5), jan(5)),
		},
		{
			name:  "missing dates",
			input: Reservation{UserID: 42, RoomID: 1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input)
			require.Error(t, err)
			assert.Equal(t, KindInvalidArgument, KindOf(err))
		})
	}
}

func TestCreateGetRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, pendingReservation(3, jan(1), jan(4)))
	require.NoError(t, err)

	fetched, err := svc.GetByID(ctx, *created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created.ID, *fetched.ID)
	assert.Equal(t, created.UserID, fetched.UserID)
	assert.Equal(t, created.RoomID, fetched.RoomID)
	assert.True(t, created.StartDate.Equal(fetched.StartDate))
	assert.True(t, created.EndDate.Equal(fetched.EndDate))
	assert.Equal(t, *created.Status, *fetched.Status)
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetByID(context.Background(), 777)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestListAllEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestUpdate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, pendingReservation(1, jan(1), jan(5)))
	require.NoError(t, err)

	// The payload's id and status are ignored in favor of the stored
	// identifier and forced PENDING.
	bogusID := int64(12345)
	bogusStatus := model.StatusApproved
	updated, err := svc.Update(ctx, *created.ID, Reservation{
		ID:     &bogusID,
		UserID: 43, RoomID: 2, StartDate: jan(2), EndDate: jan(6),
		Status: &bogusStatus,
	})
	require.NoError(t, err)
	assert.Equal(t, *created.ID, *updated.ID)
	assert.Equal(t, int64(43), updated.UserID)
	assert.Equal(t, int64(2), updated.RoomID)
	assert.Equal(t, model.StatusPending, *updated.Status)
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Update(context.Background(), 777, pendingReservation(1, jan(1), jan(5)))
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUpdateRejectsNonPending(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	approved, err := svc.Create(ctx, pendingReservation(1, jan(1), jan(5)))
	require.NoError(t, err)
	_, err = svc.Approve(ctx, *approved.ID)
	require.NoError(t, err)

	cancelled, err := svc.Create(ctx, pendingReservation(2, jan(1), jan(5)))
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, *cancelled.ID))

	for _, tc := range []struct {
		name   string
		id     int64
		status model.Status
	}{
		{name: "approved", id: *approved.ID, status: model.StatusApproved},
		{name: "cancelled", id: *cancelled.ID, status: model.StatusCancelled},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// A perfectly valid payload still fails: only the current status matters.
			_, err := svc.Update(ctx, tc.id, pendingReservation(1, jan(10), jan(12)))
			require.Error(t, err)
			assert.Equal(t, KindInvalidArgument, KindOf(err))
			assert.Contains(t, err.Error(), string(tc.status))
		})
	}
}

func TestUpdateRejectsBadDates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, pendingReservation(1, jan(1), jan(5)))
	require.NoError(t, err)

	_, err = svc.Update(ctx, *created.ID, pendingReservation(1, jan(5), jan(5)))
	require.Error(t, err)
	assert.Equal(t, KindInvalidArgument, KindOf(err))
}

func TestCancel(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, pendingReservation(1, jan(1), jan(5)))
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, *created.ID))

	fetched, err := svc.GetByID(ctx, *created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, *fetched.Status)

	// Cancelling twice is rejected, not silently accepted.
	err = svc.Cancel(ctx, *created.ID)
	require.Error(t, err)
	assert.Equal(t, KindInvalidState, KindOf(err))
}

func TestCancelApprovedRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, pendingReservation(1, jan(1), jan(5)))
	require.NoError(t, err)
	_, err = svc.Approve(ctx, *created.ID)
	require.NoError(t, err)

	err = svc.Cancel(ctx, *created.ID)
	require.Error(t, err)
	assert.Equal(t, KindInvalidState, KindOf(err))
	assert.Contains(t, err.Error(), "contact a manager")
}

func TestCancelNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Cancel(context.Background(), 777)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestApprove(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, pendingReservation(1, jan(1), jan(10)))
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, *created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, *approved.Status)

	fetched, err := svc.GetByID(ctx, *created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, *fetched.Status)
}

func TestApproveNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Approve(context.Background(), 777)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestApproveRejectsNonPending(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, pendingReservation(1, jan(1), jan(5)))
	require.NoError(t, err)
	_, err = svc.Approve(ctx, *created.ID)
	require.NoError(t, err)

	// Approving twice fails: APPROVED is not PENDING.
	_, err = svc.Approve(ctx, *created.ID)
	require.Error(t, err)
	assert.Equal(t, KindInvalidArgument, KindOf(err))

	cancelled, err := svc.Create(ctx, pendingReservation(2, jan(1), jan(5)))
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, *cancelled.ID))

	_, err = svc.Approve(ctx, *cancelled.ID)
	require.Error(t, err)
	assert.Equal(t, KindInvalidArgument, KindOf(err))
}

// TestApproveConflictScenario walks the booking scenario: with room R holding
// an APPROVED reservation for [Jan 1, Jan 10), a pending reservation for
// [Jan 10, Jan 15) approves fine (adjacent, half-open), while one for
// [Jan 5, Jan 12) conflicts.
func TestApproveConflictScenario(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	const roomR = int64(7)

	base, err := svc.Create(ctx, pendingReservation(roomR, jan(1), jan(10)))
	require.NoError(t, err)
	_, err = svc.Approve(ctx, *base.ID)
	require.NoError(t, err)

	adjacent, err := svc.Create(ctx, pendingReservation(roomR, jan(10), jan(15)))
	require.NoError(t, err)
	approvedAdjacent, err := svc.Approve(ctx, *adjacent.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, *approvedAdjacent.Status)

	overlapping, err := svc.Create(ctx, pendingReservation(roomR, jan(5), jan(12)))
	require.NoError(t, err)
	_, err = svc.Approve(ctx, *overlapping.ID)
	require.Error(t, err)
	assert.Equal(t, KindInvalidArgument, KindOf(err))

	stillPending, err := svc.GetByID(ctx, *overlapping.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, *stillPending.Status)
}

func TestApproveIgnoresOtherRooms(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	other, err := svc.Create(ctx, pendingReservation(1, jan(1), jan(10)))
	require.NoError(t, err)
	_, err = svc.Approve(ctx, *other.ID)
	require.NoError(t, err)

	// Same dates, different room: no conflict.
	created, err := svc.Create(ctx, pendingReservation(2, jan(1), jan(10)))
	require.NoError(t, err)
	_, err = svc.Approve(ctx, *created.ID)
	assert.NoError(t, err)
}

func TestApproveConcurrentSameRoom(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	const room = int64(3)

	first, err := svc.Create(ctx, pendingReservation(room, jan(1), jan(10)))
	require.NoError(t, err)
	second, err := svc.Create(ctx, pendingReservation(room, jan(5), jan(12)))
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.Approve(ctx, *first.ID)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.Approve(ctx, *second.ID)
	}()
	wg.Wait()

	// Exactly one approval wins regardless of scheduling; the loser sees the
	// winner's APPROVED row during its conflict scan.
	var succeeded, failed int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, KindInvalidArgument, KindOf(err))
			failed++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, pendingReservation(1, jan(1), jan(5)))
	require.NoError(t, err)
	_, err = svc.Approve(ctx, *created.ID)
	require.NoError(t, err)

	// Hard delete is unconditional; lifecycle state does not gate it.
	require.NoError(t, svc.Delete(ctx, *created.ID))

	_, err = svc.GetByID(ctx, *created.ID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestDeleteNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Delete(context.Background(), 777)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}
