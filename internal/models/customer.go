package models

import "time"

// Customer is a registered app user who books services and buys parts.
type Customer struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Vehicles     []Vehicle `json:"vehicles"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Public returns a copy safe to send to clients.
func (c Customer) Public() Customer {
	c.PasswordHash = ""
	return c
}
