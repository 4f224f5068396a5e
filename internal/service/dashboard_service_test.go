package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
)

func TestDashboardServiceAdmin(t *testing.T) {
	db := fixtureDatabase()
	db.Bookings = []models.Booking{
		{ID: "b1", MechanicID: "mech-a", Date: "2024-06-02", Status: models.BookingStatusUpcoming},
		{ID: "b2", Date: "2024-06-02", Status: models.BookingStatusUpcoming},
		{ID: "b3", Date: "2024-06-01", Status: models.BookingStatusCancelled},
	}
	db.Orders = []models.Order{
		{ID: "o1", Total: 700, Status: models.OrderStatusDelivered},
		{ID: "o2", Total: 1850, Status: models.OrderStatusCancelled},
	}
	db.Tasks = []models.Task{{ID: "t1", Status: models.TaskStatusPending}, {ID: "t2", Status: models.TaskStatusCompleted}}

	svc := NewDashboardService(newFixtureStore(t, db), nil, time.UTC, nil, DashboardServiceConfig{LowStockThreshold: 5})
	svc.now = fixtureNow

	summary, cached := svc.Admin(context.Background())
	assert.False(t, cached)
	assert.Equal(t, "2024-06-02", summary.Date)
	assert.Equal(t, 2, summary.BookingsByStatus["Upcoming"])
	assert.Equal(t, 1, summary.BookingsByStatus["Cancelled"])
	assert.Equal(t, 2, summary.BookingsToday)
	assert.Equal(t, 1, summary.Unassigned)
	assert.Equal(t, 1, summary.ActiveMechanics)
	assert.Equal(t, 1, summary.PendingMechanics)
	assert.Equal(t, 1, summary.Customers)
	assert.Equal(t, 700.0, summary.OrderRevenue)
	assert.Equal(t, 1, summary.OpenTasks)
	assert.Equal(t, []string{"part-pads", "part-filter"}, []string{summary.LowStockParts[0].ID, summary.LowStockParts[1].ID})
	assert.Equal(t, int64(1), summary.Version)
}
