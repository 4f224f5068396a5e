package models

import (
	"strings"
	"time"
)

// MechanicStatus gates whether a mechanic is offered to customers.
type MechanicStatus string

const (
	MechanicStatusActive   MechanicStatus = "Active"
	MechanicStatusInactive MechanicStatus = "Inactive"
	MechanicStatusPending  MechanicStatus = "Pending"
)

// Valid returns true when the status is a supported value.
func (s MechanicStatus) Valid() bool {
	switch s {
	case MechanicStatusActive, MechanicStatusInactive, MechanicStatusPending:
		return true
	default:
		return false
	}
}

// DayAvailability is the recurring working window for one weekday. Times are HH:MM.
type DayAvailability struct {
	IsAvailable bool   `json:"isAvailable"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}

// WeeklyAvailability is keyed by English weekday name ("Monday" ... "Sunday").
type WeeklyAvailability map[string]DayAvailability

// For returns the entry for the given weekday. Missing days are unavailable.
func (w WeeklyAvailability) For(day time.Weekday) DayAvailability {
	if w == nil {
		return DayAvailability{}
	}
	return w[day.String()]
}

// DateRange is a closed calendar-date interval (YYYY-MM-DD), no time of day.
type DateRange struct {
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason,omitempty"`
}

// Covers reports whether date falls inside the range, bounds included.
func (r DateRange) Covers(date string) bool {
	return r.StartDate <= date && date <= r.EndDate
}

// Mechanic is a mobile service provider.
type Mechanic struct {
	ID                    string             `json:"id"`
	Name                  string             `json:"name"`
	Email                 string             `json:"email"`
	Phone                 string             `json:"phone,omitempty"`
	PasswordHash          string             `json:"passwordHash,omitempty"`
	Bio                   string             `json:"bio,omitempty"`
	ImageURL              string             `json:"imageUrl,omitempty"`
	Specializations       []string           `json:"specializations"`
	Rating                float64            `json:"rating"`
	ReviewCount           int                `json:"reviewCount"`
	YearsExperience       int                `json:"yearsExperience,omitempty"`
	Status                MechanicStatus     `json:"status"`
	WeeklyAvailability    WeeklyAvailability `json:"weeklyAvailability"`
	UnavailableDateRanges []DateRange        `json:"unavailableDateRanges"`
	CreatedAt             time.Time          `json:"createdAt"`
}

// UnavailableOn reports whether any time-off range covers date.
func (m Mechanic) UnavailableOn(date string) bool {
	for _, r := range m.UnavailableDateRanges {
		if r.Covers(date) {
			return true
		}
	}
	return false
}

// HasSpecialization reports an exact tag match.
func (m Mechanic) HasSpecialization(tag string) bool {
	for _, s := range m.Specializations {
		if s == tag {
			return true
		}
	}
	return false
}

// NameContains is the case-insensitive free-text search on the mechanic name.
func (m Mechanic) NameContains(search string) bool {
	return strings.Contains(strings.ToLower(m.Name), strings.ToLower(search))
}

// Public returns a copy safe to send to clients.
func (m Mechanic) Public() Mechanic {
	m.PasswordHash = ""
	return m
}

// MechanicFilter captures list filters for mechanics.
type MechanicFilter struct {
	Status *MechanicStatus
	Search string
}
