// Package pricing derives a price breakdown from booking selections.
package pricing

import "github.com/Domenick1991/spacevoyager/internal/domain"

// DefaultDurationDays applies when no usable duration was entered.
const DefaultDurationDays = 7

type Selection struct {
	Destination    *domain.Destination
	Accommodation  *domain.Accommodation
	DurationDays   *int
	PassengerCount int
	Extras         []domain.SelectedExtra
}

// Compute returns the breakdown for sel. Absent selections zero out their term:
// total = (base + accommodation) * max(passengers, 1) + extras.
func Compute(sel Selection) domain.PriceBreakdown {
	var p domain.PriceBreakdown

	if sel.Destination != nil {
		p.Base = sel.Destination.Price
	}
	if sel.Accommodation != nil {
		p.Accommodation = sel.Accommodation.PricePerDay * int64(Duration(sel.DurationDays))
	}
	for _, e := range sel.Extras {
		p.Extras += e.Price
	}

	passengers := sel.PassengerCount
	if passengers < 1 {
		passengers = 1
	}
	p.Total = (p.Base+p.Accommodation)*int64(passengers) + p.Extras
	return p
}

// Duration resolves an optional day count to the value used for pricing.
func Duration(days *int) int {
	if days == nil {
		return DefaultDurationDays
	}
	return *days
}

func Days(n int) *int { return &n }
