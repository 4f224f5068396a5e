package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
)

func TestMechanicServiceRegister(t *testing.T) {
	st := newFixtureStore(t, nil)
	svc := NewMechanicService(st, nil, nil)

	mechanic, err := svc.Register(context.Background(), RegisterMechanicRequest{
		Name:            "  Rico Lim ",
		Email:           "Rico@RidersBUD.test",
		Password:        "secret1",
		Specializations: []string{"Brakes", " Brakes", "Electrical"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.MechanicStatusPending, mechanic.Status)
	assert.Equal(t, "Rico Lim", mechanic.Name)
	assert.Equal(t, "rico@ridersbud.test", mechanic.Email)
	assert.Equal(t, []string{"Brakes", "Electrical"}, mechanic.Specializations)
	assert.Empty(t, mechanic.PasswordHash)

	stored := st.Snapshot().FindMechanic(mechanic.ID)
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))

	_, err = svc.Register(context.Background(), RegisterMechanicRequest{Name: "Dup", Email: "carla@ridersbud.test", Password: "secret1"})
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	_, err = svc.Register(context.Background(), RegisterMechanicRequest{Name: "Short", Email: "short@ridersbud.test", Password: "123"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMechanicServiceListAndStatus(t *testing.T) {
	svc := NewMechanicService(newFixtureStore(t, nil), nil, nil)
	ctx := context.Background()

	pending := models.MechanicStatusPending
	items, err := svc.List(ctx, models.MechanicFilter{Status: &pending})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "mech-pending", items[0].ID)

	approved, err := svc.SetStatus(ctx, "mech-pending", UpdateMechanicStatusRequest{Status: models.MechanicStatusActive})
	require.NoError(t, err)
	assert.Equal(t, models.MechanicStatusActive, approved.Status)

	items, err = svc.List(ctx, models.MechanicFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"mech-a", "mech-pending"}, mechanicIDs(items))

	_, err = svc.SetStatus(ctx, "mech-a", UpdateMechanicStatusRequest{Status: "Retired"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.SetStatus(ctx, "nobody", UpdateMechanicStatusRequest{Status: models.MechanicStatusActive})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMechanicServiceUpdateAvailability(t *testing.T) {
	svc := NewMechanicService(newFixtureStore(t, nil), nil, nil)
	ctx := context.Background()

	week := models.WeeklyAvailability{"Friday": {IsAvailable: true, StartTime: "10:00", EndTime: "15:00"}}
	updated, err := svc.UpdateAvailability(ctx, "mech-a", week)
	require.NoError(t, err)
	assert.Equal(t, week, updated.WeeklyAvailability)

	_, err = svc.UpdateAvailability(ctx, "mech-a", models.WeeklyAvailability{"Friday": {IsAvailable: true, StartTime: "15:00", EndTime: "10:00"}})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMechanicServiceTimeOff(t *testing.T) {
	st := newFixtureStore(t, nil)
	svc := NewMechanicService(st, nil, nil)
	ctx := context.Background()

	_, err := svc.AddTimeOff(ctx, "mech-a", models.DateRange{StartDate: "2024-07-10", EndDate: "2024-07-12"})
	require.NoError(t, err)
	updated, err := svc.AddTimeOff(ctx, "mech-a", models.DateRange{StartDate: "2024-06-01", EndDate: "2024-06-07", Reason: " Leave "})
	require.NoError(t, err)
	require.Len(t, updated.UnavailableDateRanges, 2)
	assert.Equal(t, "2024-06-01", updated.UnavailableDateRanges[0].StartDate)
	assert.Equal(t, "Leave", updated.UnavailableDateRanges[0].Reason)

	// Time off empties the day for availability.
	slots := NewAvailabilityService(SlotPolicyFit, nil).ComputeSlotsForDay(*st.Snapshot().FindMechanic("mech-a"), fixtureSettings(60), fixtureMonday)
	assert.Empty(t, slots)

	_, err = svc.AddTimeOff(ctx, "mech-a", models.DateRange{StartDate: "2024-06-09", EndDate: "2024-06-08"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.AddTimeOff(ctx, "mech-a", models.DateRange{StartDate: "June 9", EndDate: "2024-06-10"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	updated, err = svc.RemoveTimeOff(ctx, "mech-a", "2024-06-01")
	require.NoError(t, err)
	assert.Len(t, updated.UnavailableDateRanges, 1)

	_, err = svc.RemoveTimeOff(ctx, "mech-a", "2024-06-01")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMechanicServiceUpdateSpecializations(t *testing.T) {
	svc := NewMechanicService(newFixtureStore(t, nil), nil, nil)

	updated, err := svc.UpdateSpecializations(context.Background(), "mech-a", UpdateSpecializationsRequest{Specializations: []string{"Tires", "Tires", "Suspension"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Tires", "Suspension"}, updated.Specializations)

	_, err = svc.UpdateSpecializations(context.Background(), "mech-a", UpdateSpecializationsRequest{Specializations: []string{""}})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMechanicServiceGetHidesHash(t *testing.T) {
	db := fixtureDatabase()
	db.Mechanics[0].PasswordHash = "hash"
	svc := NewMechanicService(newFixtureStore(t, db), nil, nil)

	m, err := svc.Get(context.Background(), "mech-a")
	require.NoError(t, err)
	assert.Empty(t, m.PasswordHash)

	_, err = svc.Get(context.Background(), "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
