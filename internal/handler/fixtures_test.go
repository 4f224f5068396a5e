package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/sasetin42/RidersBUD-sub003/internal/middleware"
	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	"github.com/sasetin42/RidersBUD-sub003/internal/service"
	"github.com/sasetin42/RidersBUD-sub003/internal/store"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
)

const testPassword = "secret123"

var (
	adminClaims    = &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	customerClaims = &models.JWTClaims{UserID: "cust-1", Role: models.RoleCustomer}
	otherCustomer  = &models.JWTClaims{UserID: "cust-2", Role: models.RoleCustomer}
	mechanicClaims = &models.JWTClaims{UserID: "mech-a", Role: models.RoleMechanic}
)

// bookingDate is always in the future so bookings pass the past-date check.
func bookingDate() string {
	return time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")
}

func everyDay(start, end string) models.WeeklyAvailability {
	week := models.WeeklyAvailability{}
	for _, day := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"} {
		week[day] = models.DayAvailability{IsAvailable: true, StartTime: start, EndTime: end}
	}
	return week
}

func testDatabase(t *testing.T) *models.Database {
	t.Helper()
	hash, err := service.HashPassword(testPassword)
	require.NoError(t, err)

	return &models.Database{
		Services: []models.Service{
			{ID: "svc-oil", Name: "Oil Change", Category: "Maintenance", Price: 1500},
		},
		Parts: []models.Part{
			{ID: "part-filter", Name: "Oil Filter", Category: "Filters", Price: 350, Stock: 2},
		},
		Mechanics: []models.Mechanic{{
			ID: "mech-a", Name: "Ana Reyes", Email: "ana@ridersbud.test", PasswordHash: hash,
			Specializations: []string{"Oil Change"}, Rating: 4.7, ReviewCount: 12,
			Status: models.MechanicStatusActive, WeeklyAvailability: everyDay("09:00", "11:00"),
			UnavailableDateRanges: []models.DateRange{},
		}},
		Bookings: []models.Booking{{
			ID: "bk-1", CustomerID: "cust-1", CustomerName: "Carla Santos", ServiceID: "svc-oil", ServiceName: "Oil Change",
			ServicePrice: 1500, Vehicle: models.Vehicle{ID: "veh-1", Make: "Honda", Model: "Click 125i"},
			MechanicID: "mech-a", MechanicName: "Ana Reyes", Date: bookingDate(), Time: "10:00 AM",
			Status: models.BookingStatusUpcoming, StatusHistory: []models.StatusEntry{},
			BeforeImages: []string{}, AfterImages: []string{},
		}},
		Customers: []models.Customer{
			{ID: "cust-1", Name: "Carla Santos", Email: "carla@ridersbud.test", PasswordHash: hash, Vehicles: []models.Vehicle{
				{ID: "veh-1", Make: "Honda", Model: "Click 125i", Year: 2022},
			}},
			{ID: "cust-2", Name: "Dino Lim", Email: "dino@ridersbud.test", Vehicles: []models.Vehicle{}},
		},
		Orders:   []models.Order{},
		Banners:  []models.Banner{{ID: "b1", Title: "Live", Active: true}, {ID: "b2", Title: "Draft"}},
		Settings: models.DefaultSettings(),
		FAQs:     []models.FAQ{},
		AdminUsers: []models.AdminUser{
			{ID: "admin-1", Name: "Admin", Email: "admin@ridersbud.test", PasswordHash: hash, RoleID: "role-super", Active: true},
		},
		Roles: []models.Role{{ID: "role-super", Name: "Super Admin", Permissions: []string{"*"}}},
		Tasks: []models.Task{},
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db := testDatabase(t)
	s := store.New(store.NewMemoryPersister(), nil)
	require.NoError(t, s.Load(context.Background(), func() *models.Database { return db }))
	return s
}

func newTestContext(method, target string, body interface{}, claims *models.JWTClaims, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(v)
	default:
		raw, _ := json.Marshal(v)
		reader = bytes.NewReader(raw)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	c.Params = params
	return c, rec
}

func idParam(id string) gin.Param {
	return gin.Param{Key: "id", Value: id}
}

type testEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if dest != nil {
		require.NoError(t, json.Unmarshal(env.Data, dest))
	}
	return env
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	env := decodeEnvelope(t, rec, nil)
	require.NotNil(t, env.Error, rec.Body.String())
	return env.Error.Code
}
