package models

// TimeSlot is one generated slot label for a mechanic and date.
// Booked slots are returned so clients can render them disabled.
type TimeSlot struct {
	Label  string `json:"label"`
	Booked bool   `json:"booked"`
}
