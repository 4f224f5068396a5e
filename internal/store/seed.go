package store

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
)

// Default back-office login created with the seed data.
const (
	SeedAdminEmail    = "admin@ridersbud.com"
	SeedAdminPassword = "admin123"
)

func workWeek(start, end string) models.WeeklyAvailability {
	week := models.WeeklyAvailability{}
	for _, day := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday} {
		week[day.String()] = models.DayAvailability{IsAvailable: true, StartTime: start, EndTime: end}
	}
	week[time.Saturday.String()] = models.DayAvailability{IsAvailable: true, StartTime: start, EndTime: "12:00"}
	week[time.Sunday.String()] = models.DayAvailability{IsAvailable: false, StartTime: start, EndTime: end}
	return week
}

// Seed returns the initial catalogue, mechanics and back-office accounts.
func Seed() *models.Database {
	now := time.Now().UTC()
	adminHash, _ := bcrypt.GenerateFromPassword([]byte(SeedAdminPassword), bcrypt.DefaultCost)

	return &models.Database{
		Services: []models.Service{
			{ID: "svc-oil-change", Name: "Oil Change", Category: "Maintenance", Description: "Engine oil and filter replacement.", Price: 1500, Duration: "1 hr"},
			{ID: "svc-brake-service", Name: "Brake Service", Category: "Brakes", Description: "Pad inspection, cleaning and replacement.", Price: 2500, Duration: "2 hrs"},
			{ID: "svc-tune-up", Name: "General Tune-Up", Category: "Maintenance", Description: "Spark plugs, filters and fluid top-up.", Price: 3500, Duration: "3 hrs"},
			{ID: "svc-battery", Name: "Battery Replacement", Category: "Electrical", Description: "On-site battery test and swap.", Price: 800, Duration: "30 mins"},
			{ID: "svc-diagnostics", Name: "Engine Diagnostics", Category: "Diagnostics", Description: "OBD scan and inspection. Priced after assessment.", Price: 0, Duration: "1 hr"},
		},
		Parts: []models.Part{
			{ID: "part-oil-filter", Name: "Oil Filter", Category: "Filters", Brand: "Denso", Price: 350, Stock: 40},
			{ID: "part-brake-pads", Name: "Brake Pads (Front)", Category: "Brakes", Brand: "Brembo", Price: 1850, Stock: 15},
			{ID: "part-spark-plug", Name: "Spark Plug", Category: "Ignition", Brand: "NGK", Price: 280, Stock: 60},
			{ID: "part-battery", Name: "12V Battery", Category: "Electrical", Brand: "Motolite", Price: 4200, Stock: 8},
		},
		Mechanics: []models.Mechanic{
			{
				ID: "mech-1", Name: "Juan Dela Cruz", Email: "juan@ridersbud.com", Phone: "+639171234567",
				Bio: "Engine and brake specialist.", Specializations: []string{"Maintenance", "Brakes"},
				Rating: 4.8, ReviewCount: 124, YearsExperience: 10, Status: models.MechanicStatusActive,
				WeeklyAvailability: workWeek("08:00", "17:00"), UnavailableDateRanges: []models.DateRange{}, CreatedAt: now,
			},
			{
				ID: "mech-2", Name: "Maria Santos", Email: "maria@ridersbud.com", Phone: "+639181234567",
				Bio: "Electrical systems and diagnostics.", Specializations: []string{"Electrical", "Diagnostics"},
				Rating: 4.9, ReviewCount: 87, YearsExperience: 7, Status: models.MechanicStatusActive,
				WeeklyAvailability: workWeek("09:00", "18:00"), UnavailableDateRanges: []models.DateRange{}, CreatedAt: now,
			},
			{
				ID: "mech-3", Name: "Pedro Reyes", Email: "pedro@ridersbud.com", Phone: "+639191234567",
				Bio: "All-round motorcycle mechanic.", Specializations: []string{"Maintenance"},
				Rating: 4.5, ReviewCount: 42, YearsExperience: 4, Status: models.MechanicStatusPending,
				WeeklyAvailability: workWeek("08:00", "17:00"), UnavailableDateRanges: []models.DateRange{}, CreatedAt: now,
			},
		},
		Bookings:  []models.Booking{},
		Customers: []models.Customer{},
		Orders:    []models.Order{},
		Banners: []models.Banner{
			{ID: "banner-1", Title: "Book a mechanic to your doorstep", ImageURL: "/static/banners/doorstep.jpg", Active: true},
		},
		Settings: models.DefaultSettings(),
		FAQs: []models.FAQ{
			{ID: "faq-1", Question: "How do I book a service?", Answer: "Pick a service, choose a mechanic and an open time slot, then confirm.", Category: "Booking"},
			{ID: "faq-2", Question: "Can I cancel a booking?", Answer: "Yes, provide a reason when cancelling from the booking details page.", Category: "Booking"},
		},
		AdminUsers: []models.AdminUser{
			{ID: "admin-1", Name: "Administrator", Email: SeedAdminEmail, PasswordHash: string(adminHash), RoleID: "role-super", Active: true, CreatedAt: now},
		},
		Roles: []models.Role{
			{ID: "role-super", Name: "Super Admin", Permissions: []string{"*"}},
			{ID: "role-dispatch", Name: "Dispatcher", Permissions: []string{"bookings:read", "bookings:write", "mechanics:read"}},
		},
		Tasks: []models.Task{},
	}
}
