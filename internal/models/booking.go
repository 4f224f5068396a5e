package models

import "time"

// BookingStatus is the booking lifecycle state.
type BookingStatus string

const (
	BookingStatusUpcoming         BookingStatus = "Upcoming"
	BookingStatusConfirmed        BookingStatus = "Booking Confirmed"
	BookingStatusMechanicAssigned BookingStatus = "Mechanic Assigned"
	BookingStatusEnRoute          BookingStatus = "En Route"
	BookingStatusInProgress       BookingStatus = "In Progress"
	BookingStatusCompleted        BookingStatus = "Completed"
	BookingStatusCancelled        BookingStatus = "Cancelled"
)

// Valid returns true when the status is a supported value.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusUpcoming, BookingStatusConfirmed, BookingStatusMechanicAssigned,
		BookingStatusEnRoute, BookingStatusInProgress, BookingStatusCompleted, BookingStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is allowed.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// OccupiesSlot reports whether a booking in this status holds its mechanic/date/time slot.
func (s BookingStatus) OccupiesSlot() bool {
	switch s {
	case BookingStatusUpcoming, BookingStatusEnRoute, BookingStatusInProgress:
		return true
	default:
		return false
	}
}

// Busy reports whether the mechanic is out on this booking right now.
func (s BookingStatus) Busy() bool {
	return s == BookingStatusEnRoute || s == BookingStatusInProgress
}

// StatusEntry is one audit record in a booking's status history.
type StatusEntry struct {
	Status    BookingStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
}

// Vehicle identifies the customer's car or motorcycle.
type Vehicle struct {
	ID          string `json:"id,omitempty"`
	Make        string `json:"make" validate:"required"`
	Model       string `json:"model" validate:"required"`
	Year        int    `json:"year,omitempty" validate:"omitempty,min=1900,max=2100"`
	PlateNumber string `json:"plateNumber,omitempty"`
}

// Booking is a scheduled appointment. Date is YYYY-MM-DD and Time is the slot label.
type Booking struct {
	ID                 string        `json:"id"`
	CustomerID         string        `json:"customerId"`
	CustomerName       string        `json:"customerName"`
	ServiceID          string        `json:"serviceId"`
	ServiceName        string        `json:"serviceName"`
	ServicePrice       float64       `json:"servicePrice"`
	Vehicle            Vehicle       `json:"vehicle"`
	MechanicID         string        `json:"mechanicId,omitempty"`
	MechanicName       string        `json:"mechanicName,omitempty"`
	Date               string        `json:"date"`
	Time               string        `json:"time"`
	Location           string        `json:"location,omitempty"`
	Notes              string        `json:"notes,omitempty"`
	Status             BookingStatus `json:"status"`
	StatusHistory      []StatusEntry `json:"statusHistory"`
	CancellationReason string        `json:"cancellationReason,omitempty"`
	BeforeImages       []string      `json:"beforeImages"`
	AfterImages        []string      `json:"afterImages"`
	CreatedAt          time.Time     `json:"createdAt"`
}

// Occupies reports whether the booking holds the given mechanic/date/time slot.
func (b Booking) Occupies(mechanicID, date, label string) bool {
	return b.MechanicID != "" && b.MechanicID == mechanicID && b.Date == date && b.Time == label && b.Status.OccupiesSlot()
}

// BookingFilter describes query params for listing bookings.
type BookingFilter struct {
	CustomerID string
	MechanicID string
	Status     BookingStatus
	Date       string
	Page       int
	PageSize   int
}
