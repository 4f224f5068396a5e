package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
)

func newFixtureMatching(t *testing.T, db *models.Database) *MatchingService {
	svc := NewMatchingService(newFixtureStore(t, db), nil, nil, nil, nil, nil)
	svc.now = fixtureNow
	return svc
}

func TestFindAvailableMarksBookedSlotsDisabled(t *testing.T) {
	db := fixtureDatabase()
	db.Bookings = []models.Booking{
		{ID: "b1", CustomerID: "cust-1", MechanicID: "mech-a", Date: fixtureMonday, Time: "09:00 AM", Status: models.BookingStatusUpcoming},
	}
	svc := newFixtureMatching(t, db)

	result, err := svc.FindAvailable(context.Background(), AvailabilityQuery{ServiceID: "svc-oil", Date: fixtureMonday})
	require.NoError(t, err)
	require.Len(t, result.Mechanics, 1)

	candidate := result.Mechanics[0]
	assert.Equal(t, "mech-a", candidate.Mechanic.ID)
	assert.Equal(t, []models.TimeSlot{{Label: "09:00 AM", Booked: true}, {Label: "10:00 AM", Booked: false}}, candidate.Slots)
	assert.Equal(t, 1, candidate.OpenSlots)
}

func TestFindAvailableDropsFullyBookedMechanics(t *testing.T) {
	db := fixtureDatabase()
	db.Bookings = []models.Booking{
		{ID: "b1", MechanicID: "mech-a", Date: fixtureMonday, Time: "09:00 AM", Status: models.BookingStatusUpcoming},
		{ID: "b2", MechanicID: "mech-a", Date: fixtureMonday, Time: "10:00 AM", Status: models.BookingStatusInProgress},
	}
	svc := newFixtureMatching(t, db)

	result, err := svc.FindAvailable(context.Background(), AvailabilityQuery{ServiceID: "svc-oil", Date: fixtureMonday})
	require.NoError(t, err)
	assert.Empty(t, result.Mechanics)
}

func TestFindAvailableHidesPasswordHashes(t *testing.T) {
	db := fixtureDatabase()
	db.Mechanics[0].PasswordHash = "secret-hash"
	svc := newFixtureMatching(t, db)

	result, err := svc.FindAvailable(context.Background(), AvailabilityQuery{ServiceID: "svc-oil", Date: fixtureMonday})
	require.NoError(t, err)
	require.Len(t, result.Mechanics, 1)
	assert.Empty(t, result.Mechanics[0].Mechanic.PasswordHash)
}

func TestFindAvailableValidation(t *testing.T) {
	svc := newFixtureMatching(t, nil)

	_, err := svc.FindAvailable(context.Background(), AvailabilityQuery{ServiceID: "svc-oil", Date: "03-06-2024"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.FindAvailable(context.Background(), AvailabilityQuery{ServiceID: "svc-oil", Date: fixtureMonday, SortBy: "price"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.FindAvailable(context.Background(), AvailabilityQuery{ServiceID: "missing", Date: fixtureMonday})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMechanicSlots(t *testing.T) {
	svc := newFixtureMatching(t, nil)

	slots, err := svc.MechanicSlots(context.Background(), "mech-a", fixtureMonday)
	require.NoError(t, err)
	assert.Len(t, slots, 2)

	_, err = svc.MechanicSlots(context.Background(), "nobody", fixtureMonday)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.MechanicSlots(context.Background(), "mech-a", "tomorrow")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityCacheKeyVariesWithVersion(t *testing.T) {
	q := AvailabilityQuery{ServiceID: "svc-oil", Date: fixtureMonday}
	assert.NotEqual(t, availabilityCacheKey(1, q), availabilityCacheKey(2, q))
	assert.Equal(t, availabilityCacheKey(1, q), availabilityCacheKey(1, q))
	assert.Contains(t, availabilityCacheKey(3, q), "availability:v3:")
}
