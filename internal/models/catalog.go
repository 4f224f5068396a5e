package models

// Service is a bookable offering. A zero price means a quote is required.
type Service struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Duration    string  `json:"duration,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

// RequiresQuote reports whether the service has no fixed price.
func (s Service) RequiresQuote() bool {
	return s.Price == 0
}

// Part is an auto part sold through the shop.
type Part struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Brand         string   `json:"brand,omitempty"`
	Description   string   `json:"description,omitempty"`
	Price         float64  `json:"price"`
	Stock         int      `json:"stock"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	Compatibility []string `json:"compatibility,omitempty"`
}
