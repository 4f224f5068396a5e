package models

// Banner is a promotional image shown on the customer home screen.
type Banner struct {
	ID       string `json:"id"`
	Title    string `json:"title" validate:"required"`
	ImageURL string `json:"imageUrl" validate:"required"`
	Link     string `json:"link,omitempty"`
	Active   bool   `json:"active"`
}

// FAQ is a help-centre entry.
type FAQ struct {
	ID       string `json:"id"`
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
	Category string `json:"category,omitempty"`
}
