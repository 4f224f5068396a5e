package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
)

func TestComputeSlotsForDayMondayWindow(t *testing.T) {
	svc := NewAvailabilityService(SlotPolicyFit, nil)
	mechanic := fixtureMechanic("mech-a", "Ana")

	slots := svc.ComputeSlotsForDay(mechanic, fixtureSettings(60), fixtureMonday)
	assert.Equal(t, []string{"09:00 AM", "10:00 AM"}, slots)
}

func TestComputeSlotsForDayIsIdempotent(t *testing.T) {
	svc := NewAvailabilityService(SlotPolicyFit, nil)
	mechanic := fixtureMechanic("mech-a", "Ana")
	settings := fixtureSettings(30)

	first := svc.ComputeSlotsForDay(mechanic, settings, fixtureMonday)
	second := svc.ComputeSlotsForDay(mechanic, settings, fixtureMonday)
	assert.Equal(t, first, second)
	assert.Len(t, first, 4)
}

func TestComputeSlotsForDayUnavailableWeekday(t *testing.T) {
	svc := NewAvailabilityService(SlotPolicyFit, nil)
	mechanic := fixtureMechanic("mech-a", "Ana")

	assert.Empty(t, svc.ComputeSlotsForDay(mechanic, fixtureSettings(60), "2024-06-04"))
	assert.Empty(t, svc.ComputeSlotsForDay(mechanic, fixtureSettings(60), "2024-06-05"))
}

func TestComputeSlotsForDayTimeOffCoversDate(t *testing.T) {
	svc := NewAvailabilityService(SlotPolicyFit, nil)
	mechanic := fixtureMechanic("mech-a", "Ana")
	mechanic.UnavailableDateRanges = []models.DateRange{{StartDate: "2024-06-01", EndDate: "2024-06-07", Reason: "Leave"}}

	assert.Empty(t, svc.ComputeSlotsForDay(mechanic, fixtureSettings(60), "2024-06-03"))
	assert.NotEmpty(t, svc.ComputeSlotsForDay(mechanic, fixtureSettings(60), "2024-06-10"))
}

func TestComputeSlotsForDayPolicies(t *testing.T) {
	mechanic := fixtureMechanic("mech-a", "Ana")
	mechanic.WeeklyAvailability = mondayOnly("09:00", "10:30")

	fit := NewAvailabilityService(SlotPolicyFit, nil).ComputeSlotsForDay(mechanic, fixtureSettings(60), fixtureMonday)
	assert.Equal(t, []string{"09:00 AM"}, fit)

	overhang := NewAvailabilityService(SlotPolicyOverhang, nil).ComputeSlotsForDay(mechanic, fixtureSettings(60), fixtureMonday)
	assert.Equal(t, []string{"09:00 AM", "10:00 AM"}, overhang)

	assert.Equal(t, SlotPolicyFit, NewAvailabilityService("bogus", nil).Policy())
}

func TestComputeSlotsForDayAfternoonLabels(t *testing.T) {
	mechanic := fixtureMechanic("mech-a", "Ana")
	mechanic.WeeklyAvailability = mondayOnly("11:30", "13:30")

	slots := NewAvailabilityService(SlotPolicyFit, nil).ComputeSlotsForDay(mechanic, fixtureSettings(60), fixtureMonday)
	assert.Equal(t, []string{"11:30 AM", "12:30 PM"}, slots)
}

func TestComputeSlotsForDayRejectsMalformedInput(t *testing.T) {
	svc := NewAvailabilityService(SlotPolicyFit, nil)

	cases := map[string]struct {
		start, end string
		duration   int
		date       string
	}{
		"start after end":   {start: "11:00", end: "09:00", duration: 60, date: fixtureMonday},
		"start equals end":  {start: "09:00", end: "09:00", duration: 60, date: fixtureMonday},
		"zero duration":     {start: "09:00", end: "11:00", duration: 0, date: fixtureMonday},
		"negative duration": {start: "09:00", end: "11:00", duration: -15, date: fixtureMonday},
		"unparseable time":  {start: "9am", end: "11:00", duration: 60, date: fixtureMonday},
		"bad date":          {start: "09:00", end: "11:00", duration: 60, date: "03/06/2024"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			mechanic := fixtureMechanic("mech-a", "Ana")
			mechanic.WeeklyAvailability = mondayOnly(tc.start, tc.end)
			slots := svc.ComputeSlotsForDay(mechanic, fixtureSettings(tc.duration), tc.date)
			assert.NotNil(t, slots)
			assert.Empty(t, slots)
		})
	}
}

func TestDaySlotsFlagsOccupyingBookings(t *testing.T) {
	svc := NewAvailabilityService(SlotPolicyFit, nil)
	mechanic := fixtureMechanic("mech-a", "Ana")
	mechanic.WeeklyAvailability = mondayOnly("08:00", "13:00")

	bookings := []models.Booking{
		{ID: "1", MechanicID: "mech-a", Date: fixtureMonday, Time: "08:00 AM", Status: models.BookingStatusUpcoming},
		{ID: "2", MechanicID: "mech-a", Date: fixtureMonday, Time: "09:00 AM", Status: models.BookingStatusEnRoute},
		{ID: "3", MechanicID: "mech-a", Date: fixtureMonday, Time: "10:00 AM", Status: models.BookingStatusInProgress},
		{ID: "4", MechanicID: "mech-a", Date: fixtureMonday, Time: "11:00 AM", Status: models.BookingStatusCancelled},
		{ID: "5", MechanicID: "mech-a", Date: fixtureMonday, Time: "12:00 PM", Status: models.BookingStatusCompleted},
		{ID: "6", MechanicID: "mech-b", Date: fixtureMonday, Time: "11:00 AM", Status: models.BookingStatusUpcoming},
		{ID: "7", MechanicID: "mech-a", Date: "2024-06-10", Time: "11:00 AM", Status: models.BookingStatusUpcoming},
	}

	slots := svc.DaySlots(mechanic, fixtureSettings(60), bookings, fixtureMonday)
	assert.Equal(t, []models.TimeSlot{
		{Label: "08:00 AM", Booked: true},
		{Label: "09:00 AM", Booked: true},
		{Label: "10:00 AM", Booked: true},
		{Label: "11:00 AM", Booked: false},
		{Label: "12:00 PM", Booked: false},
	}, slots)

	assert.True(t, svc.IsSlotOpen(mechanic, fixtureSettings(60), bookings, fixtureMonday, "11:00 AM"))
	assert.False(t, svc.IsSlotOpen(mechanic, fixtureSettings(60), bookings, fixtureMonday, "08:00 AM"))
	assert.False(t, svc.IsSlotOpen(mechanic, fixtureSettings(60), bookings, fixtureMonday, "08:30 AM"))
}

func TestValidateWeeklyAvailability(t *testing.T) {
	require.NoError(t, ValidateWeeklyAvailability(models.WeeklyAvailability{
		"Monday": {IsAvailable: true, StartTime: "08:00", EndTime: "17:00"},
		"Sunday": {IsAvailable: false, StartTime: "", EndTime: ""},
	}))

	err := ValidateWeeklyAvailability(models.WeeklyAvailability{"Monday": {IsAvailable: true, StartTime: "17:00", EndTime: "08:00"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	err = ValidateWeeklyAvailability(models.WeeklyAvailability{"Funday": {IsAvailable: true, StartTime: "08:00", EndTime: "09:00"}})
	require.Error(t, err)

	err = ValidateWeeklyAvailability(models.WeeklyAvailability{"Monday": {IsAvailable: true, StartTime: "8", EndTime: "09:00"}})
	require.Error(t, err)
}
