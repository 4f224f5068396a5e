package models

// BusinessHours is the shop-wide opening window, HH:MM.
type BusinessHours struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// Settings is the single process-wide configuration record.
type Settings struct {
	BookingSlotDuration int           `json:"bookingSlotDuration" validate:"min=5,max=240"`
	BusinessHours       BusinessHours `json:"businessHours"`
	AppName             string        `json:"appName" validate:"required"`
	ContactEmail        string        `json:"contactEmail,omitempty" validate:"omitempty,email"`
	ContactPhone        string        `json:"contactPhone,omitempty"`
	Currency            string        `json:"currency,omitempty"`
}

// DefaultSettings returns the settings used when none are persisted.
func DefaultSettings() Settings {
	return Settings{
		BookingSlotDuration: 60,
		BusinessHours:       BusinessHours{Start: "08:00", End: "18:00"},
		AppName:             "RidersBUD",
		ContactEmail:        "support@ridersbud.com",
		Currency:            "PHP",
	}
}
