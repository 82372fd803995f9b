package domain

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Bookings  []string  `json:"bookings"`
}

// Draft is the unvalidated snapshot of an in-progress booking form.
type Draft struct {
	Destination         string      `json:"destination,omitempty"`
	DepartureDate       string      `json:"departureDate,omitempty"`
	Duration            string      `json:"duration,omitempty"`
	NumberOfPassengers  string      `json:"numberOfPassengers,omitempty"`
	Accommodation       string      `json:"accommodation,omitempty"`
	FirstName           string      `json:"firstName,omitempty"`
	LastName            string      `json:"lastName,omitempty"`
	Email               string      `json:"email,omitempty"`
	Phone               string      `json:"phone,omitempty"`
	SpecialRequirements string      `json:"specialRequirements,omitempty"`
	Passengers          []Passenger `json:"passengers,omitempty"`
	Extras              []ExtraID   `json:"extras,omitempty"`
	SavedAt             time.Time   `json:"savedAt"`
}
