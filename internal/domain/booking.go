package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	return s == BookingStatusConfirmed || s == BookingStatusCancelled
}

type Passenger struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       *int   `json:"age,omitempty"`
	Email     string `json:"email,omitempty"`
}

type ContactInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (c ContactInfo) FullName() string {
	return c.FirstName + " " + c.LastName
}

// SelectedExtra is an extra as priced at the moment it was chosen.
type SelectedExtra struct {
	ID    ExtraID `json:"id"`
	Price int64   `json:"price"`
}

type Booking struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	CancelledAt *time.Time    `json:"cancelledAt,omitempty"`

	Destination   string    `json:"destination"`
	DepartureDate time.Time `json:"departureDate"`
	Duration      int       `json:"duration"`

	Passengers         []Passenger `json:"passengers"`
	NumberOfPassengers int         `json:"numberOfPassengers"`

	Accommodation string `json:"accommodation"`

	ContactInfo         ContactInfo     `json:"contactInfo"`
	SpecialRequirements string          `json:"specialRequirements"`
	Extras              []SelectedExtra `json:"extras"`

	BasePrice          int64  `json:"basePrice"`
	AccommodationPrice int64  `json:"accommodationPrice"`
	ExtrasPrice        int64  `json:"extrasPrice"`
	TotalPrice         int64  `json:"totalPrice"`
	Currency           string `json:"currency"`

	BookingReference string `json:"bookingReference"`
}

// BookingInput is the submission payload produced by the booking form.
// Prices are informational only; they are recomputed before storing.
type BookingInput struct {
	Destination         string          `json:"destination"`
	DepartureDate       string          `json:"departureDate"`
	Duration            *int            `json:"duration,omitempty"`
	NumberOfPassengers  int             `json:"numberOfPassengers"`
	Accommodation       string          `json:"accommodation"`
	FirstName           string          `json:"firstName"`
	LastName            string          `json:"lastName"`
	Email               string          `json:"email"`
	Phone               string          `json:"phone"`
	SpecialRequirements string          `json:"specialRequirements"`
	Passengers          []Passenger     `json:"passengers"`
	Extras              []SelectedExtra `json:"extras"`
	BasePrice           int64           `json:"basePrice"`
	TotalPrice          int64           `json:"totalPrice"`
	Currency            string          `json:"currency"`
}

// BookingPatch carries the fields an owner may change. Nil fields are left untouched.
type BookingPatch struct {
	Status              *BookingStatus `json:"status,omitempty"`
	DepartureDate       *time.Time     `json:"departureDate,omitempty"`
	SpecialRequirements *string        `json:"specialRequirements,omitempty"`
	ContactInfo         *ContactInfo   `json:"contactInfo,omitempty"`
}

// Apply merges the patch into b. Cancelling stamps CancelledAt with now and
// confirming again clears it. UpdatedAt is stamped by the caller.
func (p BookingPatch) Apply(b *Booking, now time.Time) {
	if p.Status != nil {
		switch {
		case *p.Status == BookingStatusCancelled && b.Status != BookingStatusCancelled:
			at := now
			b.CancelledAt = &at
		case *p.Status == BookingStatusConfirmed:
			b.CancelledAt = nil
		}
		b.Status = *p.Status
	}
	if p.DepartureDate != nil {
		b.DepartureDate = *p.DepartureDate
	}
	if p.SpecialRequirements != nil {
		b.SpecialRequirements = *p.SpecialRequirements
	}
	if p.ContactInfo != nil {
		b.ContactInfo = *p.ContactInfo
	}
}

type SearchFilters struct {
	Destination string        `form:"destination" json:"destination,omitempty"`
	Status      BookingStatus `form:"status" json:"status,omitempty"`
	DateFrom    *time.Time    `json:"dateFrom,omitempty"`
	DateTo      *time.Time    `json:"dateTo,omitempty"`
}

type Stats struct {
	Total      int   `json:"total"`
	Confirmed  int   `json:"confirmed"`
	Cancelled  int   `json:"cancelled"`
	Upcoming   int   `json:"upcoming"`
	Past       int   `json:"past"`
	TotalSpent int64 `json:"totalSpent"`
}
