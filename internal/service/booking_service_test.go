package service

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
)

func newFixtureBookings(t *testing.T, db *models.Database, notifier bookingNotifier) (*BookingService, databaseStore) {
	st := newFixtureStore(t, db)
	svc := NewBookingService(st, nil, notifier, nil, nil, time.UTC, nil)
	svc.now = fixtureNow
	return svc, st
}

func bookingRequest(mechanicID, label string) CreateBookingRequest {
	return CreateBookingRequest{
		CustomerID: "cust-1",
		ServiceID:  "svc-oil",
		Vehicle:    models.Vehicle{ID: "veh-1"},
		MechanicID: mechanicID,
		Date:       fixtureMonday,
		Time:       label,
		Location:   "Quezon City",
	}
}

func TestBookingCreateReservesSlot(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, st := newFixtureBookings(t, nil, notifier)

	booking, err := svc.Create(context.Background(), bookingRequest("mech-a", "09:00 AM"))
	require.NoError(t, err)
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, models.BookingStatusUpcoming, booking.Status)
	assert.Equal(t, "Ana Reyes", booking.MechanicName)
	assert.Equal(t, "Oil Change", booking.ServiceName)
	assert.Equal(t, 1500.0, booking.ServicePrice)
	assert.Equal(t, "Honda", booking.Vehicle.Make)
	assert.Empty(t, booking.StatusHistory)

	assert.Len(t, st.Snapshot().Bookings, 1)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, BookingEventCreated, notifier.events[0].Type)
	assert.Equal(t, "mech-a", notifier.events[0].MechanicID)
}

func TestBookingCreateWithoutMechanic(t *testing.T) {
	svc, _ := newFixtureBookings(t, nil, nil)

	req := bookingRequest("", "07:30 AM")
	req.Vehicle = models.Vehicle{Make: "Yamaha", Model: "NMAX"}
	booking, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, booking.MechanicID)
	assert.Equal(t, "Yamaha", booking.Vehicle.Make)
}

func TestBookingCreateRejectsOccupiedSlot(t *testing.T) {
	svc, st := newFixtureBookings(t, nil, nil)

	_, err := svc.Create(context.Background(), bookingRequest("mech-a", "09:00 AM"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), bookingRequest("mech-a", "09:00 AM"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSlotUnavailable.Code, appErrors.FromError(err).Code)
	assert.Len(t, st.Snapshot().Bookings, 1)
}

func TestBookingCreateAfterCancellationFreesSlot(t *testing.T) {
	svc, _ := newFixtureBookings(t, nil, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, bookingRequest("mech-a", "10:00 AM"))
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, first.ID, UpdateBookingStatusRequest{Status: models.BookingStatusCancelled, Reason: "Customer request"}, nil)
	require.NoError(t, err)

	second, err := svc.Create(ctx, bookingRequest("mech-a", "10:00 AM"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestBookingCreateRejectsInvalidRequests(t *testing.T) {
	cases := map[string]struct {
		mutate func(*CreateBookingRequest)
		code   string
	}{
		"label not generated":   {mutate: func(r *CreateBookingRequest) { r.Time = "09:30 AM" }, code: appErrors.ErrSlotUnavailable.Code},
		"outside window":        {mutate: func(r *CreateBookingRequest) { r.Time = "11:00 AM" }, code: appErrors.ErrSlotUnavailable.Code},
		"day off":               {mutate: func(r *CreateBookingRequest) { r.Date = "2024-06-04" }, code: appErrors.ErrSlotUnavailable.Code},
		"pending mechanic":      {mutate: func(r *CreateBookingRequest) { r.MechanicID = "mech-pending" }, code: appErrors.ErrValidation.Code},
		"unknown mechanic":      {mutate: func(r *CreateBookingRequest) { r.MechanicID = "mech-x" }, code: appErrors.ErrNotFound.Code},
		"unknown customer":      {mutate: func(r *CreateBookingRequest) { r.CustomerID = "cust-x" }, code: appErrors.ErrNotFound.Code},
		"unknown service":       {mutate: func(r *CreateBookingRequest) { r.ServiceID = "svc-x" }, code: appErrors.ErrNotFound.Code},
		"unknown vehicle":       {mutate: func(r *CreateBookingRequest) { r.Vehicle = models.Vehicle{ID: "veh-x"} }, code: appErrors.ErrNotFound.Code},
		"vehicle missing model": {mutate: func(r *CreateBookingRequest) { r.Vehicle = models.Vehicle{Make: "Honda"} }, code: appErrors.ErrValidation.Code},
		"bad time label":        {mutate: func(r *CreateBookingRequest) { r.Time = "9am" }, code: appErrors.ErrValidation.Code},
		"bad date":              {mutate: func(r *CreateBookingRequest) { r.Date = "06/03/2024" }, code: appErrors.ErrValidation.Code},
		"past date":             {mutate: func(r *CreateBookingRequest) { r.Date = "2024-05-27" }, code: appErrors.ErrValidation.Code},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc, st := newFixtureBookings(t, nil, nil)
			req := bookingRequest("mech-a", "09:00 AM")
			tc.mutate(&req)

			_, err := svc.Create(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, tc.code, appErrors.FromError(err).Code)
			assert.Empty(t, st.Snapshot().Bookings)
		})
	}
}

func TestBookingCreateTodayRejectsStartedSlots(t *testing.T) {
	svc, st := newFixtureBookings(t, nil, nil)
	manila := time.FixedZone("PHT", 8*3600)
	svc.location = manila
	svc.now = func() time.Time { return time.Date(2024, time.June, 3, 9, 30, 0, 0, manila).UTC() }

	_, err := svc.Create(context.Background(), bookingRequest("mech-a", "09:00 AM"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, st.Snapshot().Bookings)

	booking, err := svc.Create(context.Background(), bookingRequest("mech-a", "10:00 AM"))
	require.NoError(t, err)
	assert.Equal(t, fixtureMonday, booking.Date)
}

func TestBookingCreateConcurrentRequestsForOneSlot(t *testing.T) {
	svc, st := newFixtureBookings(t, nil, nil)

	const attempts = 12
	var (
		wg        sync.WaitGroup
		succeeded int32
		conflicts int32
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), bookingRequest("mech-a", "09:00 AM"))
			if err == nil {
				atomic.AddInt32(&succeeded, 1)
				return
			}
			if appErrors.FromError(err).Code == appErrors.ErrSlotUnavailable.Code {
				atomic.AddInt32(&conflicts, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded)
	assert.Equal(t, int32(attempts-1), conflicts)
	assert.Len(t, st.Snapshot().Bookings, 1)
}

func TestBookingCancelIsIdempotent(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, _ := newFixtureBookings(t, nil, notifier)
	ctx := context.Background()

	booking, err := svc.Create(ctx, bookingRequest("mech-a", "09:00 AM"))
	require.NoError(t, err)
	before := len(booking.StatusHistory)

	cancel := UpdateBookingStatusRequest{Status: models.BookingStatusCancelled, Reason: "Customer request"}
	cancelled, err := svc.SetStatus(ctx, booking.ID, cancel, nil)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, "Customer request", cancelled.CancellationReason)
	require.Len(t, cancelled.StatusHistory, before+1)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.StatusHistory[before].Status)

	again, err := svc.SetStatus(ctx, booking.ID, cancel, nil)
	require.NoError(t, err)
	assert.Len(t, again.StatusHistory, before+1)

	// created + one status change; the repeat is silent.
	assert.Len(t, notifier.events, 2)
}

func TestBookingSetStatusRules(t *testing.T) {
	svc, _ := newFixtureBookings(t, nil, nil)
	ctx := context.Background()

	booking, err := svc.Create(ctx, bookingRequest("mech-a", "09:00 AM"))
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, booking.ID, UpdateBookingStatusRequest{Status: "Teleported"}, nil)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.SetStatus(ctx, booking.ID, UpdateBookingStatusRequest{Status: models.BookingStatusCancelled}, nil)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code, "reason required")

	_, err = svc.SetStatus(ctx, "missing", UpdateBookingStatusRequest{Status: models.BookingStatusEnRoute}, nil)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	for _, status := range []models.BookingStatus{models.BookingStatusEnRoute, models.BookingStatusInProgress, models.BookingStatusCompleted} {
		updated, err := svc.SetStatus(ctx, booking.ID, UpdateBookingStatusRequest{Status: status}, nil)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	_, err = svc.SetStatus(ctx, booking.ID, UpdateBookingStatusRequest{Status: models.BookingStatusUpcoming}, nil)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)

	final, err := svc.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Len(t, final.StatusHistory, 3)
}

func TestBookingReoccupyingHeldSlotFails(t *testing.T) {
	svc, _ := newFixtureBookings(t, nil, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, bookingRequest("mech-a", "09:00 AM"))
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, first.ID, UpdateBookingStatusRequest{Status: models.BookingStatusConfirmed}, nil)
	require.NoError(t, err)

	// Confirmed does not hold the slot, so a second booking can take it.
	_, err = svc.Create(ctx, bookingRequest("mech-a", "09:00 AM"))
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, first.ID, UpdateBookingStatusRequest{Status: models.BookingStatusEnRoute}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSlotUnavailable.Code, appErrors.FromError(err).Code)
}

func TestBookingSetStatusAuthorization(t *testing.T) {
	svc, _ := newFixtureBookings(t, nil, nil)
	ctx := context.Background()

	booking, err := svc.Create(ctx, bookingRequest("mech-a", "09:00 AM"))
	require.NoError(t, err)

	stranger := &models.UserInfo{ID: "mech-other", Role: models.RoleMechanic}
	_, err = svc.SetStatus(ctx, booking.ID, UpdateBookingStatusRequest{Status: models.BookingStatusEnRoute}, stranger)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	customer := &models.UserInfo{ID: "cust-1", Role: models.RoleCustomer}
	_, err = svc.SetStatus(ctx, booking.ID, UpdateBookingStatusRequest{Status: models.BookingStatusEnRoute}, customer)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	assigned := &models.UserInfo{ID: "mech-a", Role: models.RoleMechanic}
	updated, err := svc.SetStatus(ctx, booking.ID, UpdateBookingStatusRequest{Status: models.BookingStatusEnRoute}, assigned)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusEnRoute, updated.Status)

	cancelled, err := svc.SetStatus(ctx, booking.ID, UpdateBookingStatusRequest{Status: models.BookingStatusCancelled, Reason: "Changed plans"}, customer)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
}

func TestBookingAssignMechanic(t *testing.T) {
	db := fixtureDatabase()
	db.Mechanics = append(db.Mechanics, fixtureMechanic("mech-b", "Ben Torres"))
	notifier := &recordingNotifier{}
	svc, _ := newFixtureBookings(t, db, notifier)
	ctx := context.Background()

	taken, err := svc.Create(ctx, bookingRequest("mech-b", "10:00 AM"))
	require.NoError(t, err)
	open, err := svc.Create(ctx, bookingRequest("", "10:00 AM"))
	require.NoError(t, err)

	_, err = svc.AssignMechanic(ctx, open.ID, AssignMechanicRequest{MechanicID: "mech-b"})
	assert.Equal(t, appErrors.ErrSlotUnavailable.Code, appErrors.FromError(err).Code)

	assigned, err := svc.AssignMechanic(ctx, open.ID, AssignMechanicRequest{MechanicID: "mech-a"})
	require.NoError(t, err)
	assert.Equal(t, "mech-a", assigned.MechanicID)
	assert.Equal(t, models.BookingStatusUpcoming, assigned.Status)

	// Reassigning to the current mechanic does not collide with itself.
	_, err = svc.AssignMechanic(ctx, open.ID, AssignMechanicRequest{MechanicID: "mech-a"})
	require.NoError(t, err)

	_, err = svc.AssignMechanic(ctx, "missing", AssignMechanicRequest{MechanicID: "mech-a"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.SetStatus(ctx, taken.ID, UpdateBookingStatusRequest{Status: models.BookingStatusCompleted}, nil)
	require.NoError(t, err)
	_, err = svc.AssignMechanic(ctx, taken.ID, AssignMechanicRequest{MechanicID: "mech-a"})
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)

	last := notifier.events[len(notifier.events)-1]
	assert.Equal(t, BookingEventStatus, last.Type)
}

func TestBookingList(t *testing.T) {
	db := fixtureDatabase()
	base := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"b1", "b2", "b3"} {
		db.Bookings = append(db.Bookings, models.Booking{
			ID:         id,
			CustomerID: "cust-1",
			MechanicID: "mech-a",
			Date:       fixtureMonday,
			Status:     models.BookingStatusUpcoming,
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		})
	}
	db.Bookings[1].Status = models.BookingStatusCompleted
	svc, _ := newFixtureBookings(t, db, nil)

	items, page, err := svc.List(context.Background(), models.BookingFilter{CustomerID: "cust-1"})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, []string{"b3", "b2", "b1"}, []string{items[0].ID, items[1].ID, items[2].ID})

	items, _, err = svc.List(context.Background(), models.BookingFilter{Status: models.BookingStatusCompleted})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b2", items[0].ID)

	items, page, err = svc.List(context.Background(), models.BookingFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	require.Len(t, items, 1)
	assert.Equal(t, "b1", items[0].ID)

	_, _, err = svc.List(context.Background(), models.BookingFilter{Status: "Lost"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBookingListPageBeyondRange(t *testing.T) {
	db := fixtureDatabase()
	db.Bookings = append(db.Bookings, models.Booking{ID: "b1", CustomerID: "cust-1", Date: fixtureMonday, Status: models.BookingStatusUpcoming})
	svc, _ := newFixtureBookings(t, db, nil)

	for _, p := range []int{2, 922337203685477580, math.MaxInt} {
		var (
			items []models.Booking
			page  *models.Pagination
			err   error
		)
		require.NotPanics(t, func() {
			items, page, err = svc.List(context.Background(), models.BookingFilter{Page: p, PageSize: 20})
		})
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Equal(t, 1, page.TotalCount)
	}
}

func TestPageBounds(t *testing.T) {
	cases := []struct {
		total, page, size int
		start, end        int
	}{
		{total: 5, page: 1, size: 2, start: 0, end: 2},
		{total: 5, page: 3, size: 2, start: 4, end: 5},
		{total: 5, page: 4, size: 2, start: 5, end: 5},
		{total: 4, page: 3, size: 2, start: 4, end: 4},
		{total: 0, page: 1, size: 20, start: 0, end: 0},
		{total: 3, page: math.MaxInt, size: 100, start: 3, end: 3},
	}
	for _, tc := range cases {
		start, end := pageBounds(tc.total, tc.page, tc.size)
		assert.Equal(t, tc.start, start, "%+v", tc)
		assert.Equal(t, tc.end, end, "%+v", tc)
	}
}

func TestBookingCreateStorageFailure(t *testing.T) {
	svc := NewBookingService(newBrokenStore(t), nil, nil, nil, nil, time.UTC, nil)
	svc.now = fixtureNow

	_, err := svc.Create(context.Background(), bookingRequest("mech-a", "09:00 AM"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStorage.Code, appErrors.FromError(err).Code)
}
