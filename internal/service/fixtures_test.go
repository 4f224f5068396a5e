package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	"github.com/sasetin42/RidersBUD-sub003/internal/store"
)

// 2024-06-03 is a Monday.
const fixtureMonday = "2024-06-03"

func fixtureNow() time.Time {
	return time.Date(2024, time.June, 2, 10, 0, 0, 0, time.UTC)
}

func mondayOnly(start, end string) models.WeeklyAvailability {
	return models.WeeklyAvailability{
		"Monday":  {IsAvailable: true, StartTime: start, EndTime: end},
		"Tuesday": {IsAvailable: false, StartTime: start, EndTime: end},
	}
}

func fixtureMechanic(id, name string) models.Mechanic {
	return models.Mechanic{
		ID:                    id,
		Name:                  name,
		Email:                 id + "@ridersbud.test",
		Specializations:       []string{"Oil Change"},
		Rating:                4.5,
		ReviewCount:           10,
		Status:                models.MechanicStatusActive,
		WeeklyAvailability:    mondayOnly("09:00", "11:00"),
		UnavailableDateRanges: []models.DateRange{},
	}
}

func fixtureSettings(duration int) models.Settings {
	settings := models.DefaultSettings()
	settings.BookingSlotDuration = duration
	return settings
}

func fixtureDatabase() *models.Database {
	return &models.Database{
		Services: []models.Service{
			{ID: "svc-oil", Name: "Oil Change", Category: "Maintenance", Price: 1500},
			{ID: "svc-quote", Name: "Engine Diagnostics", Category: "Diagnostics", Price: 0},
		},
		Parts: []models.Part{
			{ID: "part-filter", Name: "Oil Filter", Category: "Filters", Price: 350, Stock: 5},
			{ID: "part-pads", Name: "Brake Pads", Category: "Brakes", Price: 1850, Stock: 1},
		},
		Mechanics: []models.Mechanic{
			fixtureMechanic("mech-a", "Ana Reyes"),
			func() models.Mechanic {
				m := fixtureMechanic("mech-pending", "Paolo Cruz")
				m.Status = models.MechanicStatusPending
				return m
			}(),
		},
		Bookings: []models.Booking{},
		Customers: []models.Customer{
			{ID: "cust-1", Name: "Carla Santos", Email: "carla@ridersbud.test", Vehicles: []models.Vehicle{
				{ID: "veh-1", Make: "Honda", Model: "Click 125i", Year: 2022},
			}},
		},
		Orders:     []models.Order{},
		Settings:   fixtureSettings(60),
		AdminUsers: []models.AdminUser{},
		Roles:      []models.Role{},
		Tasks:      []models.Task{},
	}
}

func newFixtureStore(t *testing.T, db *models.Database) *store.Store {
	t.Helper()
	if db == nil {
		db = fixtureDatabase()
	}
	s := store.New(store.NewMemoryPersister(), nil)
	require.NoError(t, s.Load(context.Background(), func() *models.Database { return db }))
	return s
}

type brokenPersister struct{}

func (brokenPersister) Load(context.Context) (*models.DatabaseDocument, error) {
	return nil, store.ErrNotFound
}

func (brokenPersister) Save(context.Context, *models.DatabaseDocument, int64) error {
	return errors.New("disk unavailable")
}

func newBrokenStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(brokenPersister{}, nil)
	require.NoError(t, s.Load(context.Background(), fixtureDatabase))
	return s
}

type recordingNotifier struct {
	events []BookingEvent
}

func (r *recordingNotifier) BookingChanged(ctx context.Context, event BookingEvent) {
	r.events = append(r.events, event)
}
