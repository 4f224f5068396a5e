package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDatabase() *Database {
	ts := time.Date(2024, 6, 3, 9, 15, 30, 123456789, time.UTC)
	return &Database{
		Services: []Service{{ID: "svc-1", Name: "Oil Change", Category: "Maintenance", Price: 1499.99, Duration: "1 hour"}},
		Parts:    []Part{{ID: "part-1", Name: "Brake Pad", Category: "Brakes", Price: 899.5, Stock: 12}},
		Mechanics: []Mechanic{{
			ID:              "mech-1",
			Name:            "Juan",
			Specializations: []string{"Engine Repair"},
			Rating:          4.8,
			ReviewCount:     31,
			Status:          MechanicStatusActive,
			WeeklyAvailability: WeeklyAvailability{
				"Monday": {IsAvailable: true, StartTime: "09:00", EndTime: "11:00"},
			},
			UnavailableDateRanges: []DateRange{{StartDate: "2024-06-01", EndDate: "2024-06-07", Reason: "Leave"}},
			CreatedAt:             ts,
		}},
		Bookings: []Booking{{
			ID:            "bk-1",
			ServiceID:     "svc-1",
			MechanicID:    "mech-1",
			Date:          "2024-06-10",
			Time:          "09:00 AM",
			Status:        BookingStatusCancelled,
			StatusHistory: []StatusEntry{{Status: BookingStatusCancelled, Timestamp: ts}},
			BeforeImages:  []string{},
			AfterImages:   []string{},
			CreatedAt:     ts,
		}},
		Settings: DefaultSettings(),
		Roles:    []Role{{ID: "role-1", Name: "Manager", Permissions: []string{"bookings:write"}}},
	}
}

func TestDatabaseJSONRoundTrip(t *testing.T) {
	original := sampleDatabase()

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Database
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, *original, decoded)
}

func TestDatabaseCloneIsDeep(t *testing.T) {
	original := sampleDatabase()
	cp, err := original.Clone()
	require.NoError(t, err)

	cp.Mechanics[0].Specializations[0] = "Changed"
	cp.Bookings[0].StatusHistory = append(cp.Bookings[0].StatusHistory, StatusEntry{Status: BookingStatusUpcoming})

	assert.Equal(t, "Engine Repair", original.Mechanics[0].Specializations[0])
	assert.Len(t, original.Bookings[0].StatusHistory, 1)
}

func TestDatabaseNormalizeDefaultsOptionalFields(t *testing.T) {
	db := &Database{
		Mechanics: []Mechanic{{ID: "m"}},
		Bookings:  []Booking{{ID: "b"}},
	}
	db.Normalize()

	assert.Equal(t, DefaultSettings(), db.Settings)
	assert.Equal(t, MechanicStatusPending, db.Mechanics[0].Status)
	assert.NotNil(t, db.Mechanics[0].WeeklyAvailability)
	assert.Equal(t, BookingStatusUpcoming, db.Bookings[0].Status)
	assert.NotNil(t, db.Bookings[0].StatusHistory)
	assert.NotNil(t, db.Bookings[0].BeforeImages)
}

func TestDateRangeCoversInclusive(t *testing.T) {
	r := DateRange{StartDate: "2024-06-01", EndDate: "2024-06-07"}
	assert.True(t, r.Covers("2024-06-01"))
	assert.True(t, r.Covers("2024-06-03"))
	assert.True(t, r.Covers("2024-06-07"))
	assert.False(t, r.Covers("2024-05-31"))
	assert.False(t, r.Covers("2024-06-08"))
}

func TestBookingOccupies(t *testing.T) {
	b := Booking{MechanicID: "m1", Date: "2024-06-10", Time: "09:00 AM", Status: BookingStatusUpcoming}
	assert.True(t, b.Occupies("m1", "2024-06-10", "09:00 AM"))

	b.Status = BookingStatusConfirmed
	assert.False(t, b.Occupies("m1", "2024-06-10", "09:00 AM"))

	b.Status = BookingStatusInProgress
	assert.False(t, b.Occupies("m2", "2024-06-10", "09:00 AM"))
}

func TestEmailTakenAcrossAccountTypes(t *testing.T) {
	db := &Database{
		Customers:  []Customer{{Email: "cust@example.com"}},
		AdminUsers: []AdminUser{{Email: "admin@example.com"}},
	}
	assert.True(t, db.EmailTaken("CUST@example.com"))
	assert.True(t, db.EmailTaken(" admin@example.com "))
	assert.False(t, db.EmailTaken("other@example.com"))
}
