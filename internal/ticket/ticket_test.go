package ticket

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/spacevoyager/internal/catalog"
	"github.com/Domenick1991/spacevoyager/internal/domain"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	logger, _ := test.NewNullLogger()
	cat := catalog.NewStore(catalog.DefaultFS(), nil, logger)
	require.NoError(t, cat.Load(context.Background()))
	r, err := NewRenderer(cat)
	require.NoError(t, err)
	return r
}

func sampleBooking() *domain.Booking {
	return &domain.Booking{
		ID:                 "b1",
		Status:             domain.BookingStatusConfirmed,
		Destination:        "moon",
		DepartureDate:      time.Date(2026, 12, 1, 0, 0, 0, 0, time.Local),
		NumberOfPassengers: 2,
		Accommodation:      "standard",
		ContactInfo: domain.ContactInfo{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Phone:     "+1 (800) 555-1234",
		},
		TotalPrice:       32000,
		Currency:         "USD",
		BookingReference: "SV-AB12CD34",
	}
}

func TestRenderer_Fields(t *testing.T) {
	r := newRenderer(t)
	fields := r.Fields(sampleBooking())

	assert.Equal(t, "SV-AB12CD34", fields["bookingReference"])
	assert.Equal(t, "Lunar Gateway", fields["destinationName"])
	assert.Equal(t, "Moon", fields["destinationPlanet"])
	assert.Equal(t, "December 1, 2026", fields["departureDate"])
	assert.Equal(t, DepartureTime, fields["departureTime"])
	assert.Equal(t, "Ada Lovelace", fields["passengerName"])
	assert.Equal(t, "2", fields["numberOfPassengers"])
	assert.Equal(t, "32,000 USD", fields["totalPrice"])
	assert.Equal(t, "USD", fields["currency"])
	assert.NotEmpty(t, fields["accommodationType"])
}

func TestRenderer_FallsBackToIDs(t *testing.T) {
	r := newRenderer(t)
	b := sampleBooking()
	b.Destination = "pluto"
	b.Accommodation = "igloo"
	b.BookingReference = ""

	fields := r.Fields(b)
	assert.Equal(t, "pluto", fields["destinationName"])
	assert.Equal(t, "igloo", fields["accommodationType"])
	assert.Equal(t, "N/A", fields["bookingReference"])
}

func TestRenderer_Render(t *testing.T) {
	r := newRenderer(t)
	b := sampleBooking()
	b.ContactInfo.LastName = "<script>"

	out := r.Render(b)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "SV-AB12CD34")
	assert.Contains(t, out, "Lunar Gateway (Moon)")
	assert.Contains(t, out, "32,000 USD")
	assert.Contains(t, out, "Ada &lt;script&gt;")
	assert.NotContains(t, out, "{{")
}

func TestRenderer_CustomTemplate(t *testing.T) {
	logger, _ := test.NewNullLogger()
	r, err := NewRendererWithTemplate("{{bookingReference}}|{{status}}", catalog.NewStore(catalog.DefaultFS(), nil, logger))
	require.NoError(t, err)
	assert.Equal(t, "SV-AB12CD34|confirmed", r.Render(sampleBooking()))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "SpaceVoyager-Ticket-SV-AB12CD34.html", FileName(sampleBooking()))
	assert.Equal(t, "SpaceVoyager-Ticket-unknown.html", FileName(&domain.Booking{}))
}
