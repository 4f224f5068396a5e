package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Database is the whole application state, persisted as one JSON document.
type Database struct {
	Services   []Service   `json:"services"`
	Parts      []Part      `json:"parts"`
	Mechanics  []Mechanic  `json:"mechanics"`
	Bookings   []Booking   `json:"bookings"`
	Customers  []Customer  `json:"customers"`
	Orders     []Order     `json:"orders"`
	Banners    []Banner    `json:"banners"`
	Settings   Settings    `json:"settings"`
	FAQs       []FAQ       `json:"faqs"`
	AdminUsers []AdminUser `json:"adminUsers"`
	Roles      []Role      `json:"roles"`
	Tasks      []Task      `json:"tasks"`
}

// DatabaseDocument wraps the tree with the version used for compare-and-set writes.
type DatabaseDocument struct {
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
	Database  *Database `json:"database"`
}

// Clone returns a deep copy of the tree.
func (db *Database) Clone() (*Database, error) {
	if db == nil {
		return nil, nil
	}
	raw, err := json.Marshal(db)
	if err != nil {
		return nil, fmt.Errorf("clone database: %w", err)
	}
	var cp Database
	if err := json.Unmarshal(raw, &cp); err != nil {
		return nil, fmt.Errorf("clone database: %w", err)
	}
	return &cp, nil
}

// Normalize fills optional fields that older documents may lack.
func (db *Database) Normalize() {
	if db.Settings.BookingSlotDuration == 0 && db.Settings.AppName == "" {
		db.Settings = DefaultSettings()
	}
	for i := range db.Mechanics {
		if db.Mechanics[i].Status == "" {
			db.Mechanics[i].Status = MechanicStatusPending
		}
		if db.Mechanics[i].WeeklyAvailability == nil {
			db.Mechanics[i].WeeklyAvailability = WeeklyAvailability{}
		}
	}
	for i := range db.Bookings {
		b := &db.Bookings[i]
		if b.Status == "" {
			b.Status = BookingStatusUpcoming
		}
		if b.StatusHistory == nil {
			b.StatusHistory = []StatusEntry{}
		}
		if b.BeforeImages == nil {
			b.BeforeImages = []string{}
		}
		if b.AfterImages == nil {
			b.AfterImages = []string{}
		}
	}
}

// FindService returns the service with id or nil.
func (db *Database) FindService(id string) *Service {
	for i := range db.Services {
		if db.Services[i].ID == id {
			return &db.Services[i]
		}
	}
	return nil
}

// FindPart returns the part with id or nil.
func (db *Database) FindPart(id string) *Part {
	for i := range db.Parts {
		if db.Parts[i].ID == id {
			return &db.Parts[i]
		}
	}
	return nil
}

// FindMechanic returns the mechanic with id or nil.
func (db *Database) FindMechanic(id string) *Mechanic {
	for i := range db.Mechanics {
		if db.Mechanics[i].ID == id {
			return &db.Mechanics[i]
		}
	}
	return nil
}

// FindBooking returns the booking with id or nil.
func (db *Database) FindBooking(id string) *Booking {
	for i := range db.Bookings {
		if db.Bookings[i].ID == id {
			return &db.Bookings[i]
		}
	}
	return nil
}

// FindCustomer returns the customer with id or nil.
func (db *Database) FindCustomer(id string) *Customer {
	for i := range db.Customers {
		if db.Customers[i].ID == id {
			return &db.Customers[i]
		}
	}
	return nil
}

// FindOrder returns the order with id or nil.
func (db *Database) FindOrder(id string) *Order {
	for i := range db.Orders {
		if db.Orders[i].ID == id {
			return &db.Orders[i]
		}
	}
	return nil
}

// FindRole returns the role with id or nil.
func (db *Database) FindRole(id string) *Role {
	for i := range db.Roles {
		if db.Roles[i].ID == id {
			return &db.Roles[i]
		}
	}
	return nil
}

// FindTask returns the task with id or nil.
func (db *Database) FindTask(id string) *Task {
	for i := range db.Tasks {
		if db.Tasks[i].ID == id {
			return &db.Tasks[i]
		}
	}
	return nil
}

// EmailTaken reports whether any account of any kind already uses email.
func (db *Database) EmailTaken(email string) bool {
	for _, c := range db.Customers {
		if equalFold(c.Email, email) {
			return true
		}
	}
	for _, m := range db.Mechanics {
		if equalFold(m.Email, email) {
			return true
		}
	}
	for _, u := range db.AdminUsers {
		if equalFold(u.Email, email) {
			return true
		}
	}
	return false
}
