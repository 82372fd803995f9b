// Package ticket renders a confirmed booking as a standalone printable HTML page.
package ticket

import (
	_ "embed"
	"fmt"
	"html"
	"strconv"

	"github.com/Domenick1991/spacevoyager/internal/domain"
	"github.com/Domenick1991/spacevoyager/internal/validation"
	"github.com/valyala/fasttemplate"
)

// DepartureTime is printed on every ticket; launches leave at a fixed slot.
const DepartureTime = "09:00 UTC"

//go:embed templates/ticket.html
var defaultTemplate string

type Lookup interface {
	Destination(id string) (*domain.Destination, bool)
	Accommodation(id string) (*domain.Accommodation, bool)
}

type Renderer struct {
	tpl     *fasttemplate.Template
	catalog Lookup
}

func NewRenderer(catalog Lookup) (*Renderer, error) {
	return NewRendererWithTemplate(defaultTemplate, catalog)
}

// NewRendererWithTemplate uses {{name}} placeholders in src.
func NewRendererWithTemplate(src string, catalog Lookup) (*Renderer, error) {
	tpl, err := fasttemplate.NewTemplate(src, "{{", "}}")
	if err != nil {
		return nil, fmt.Errorf("parse ticket template: %w", err)
	}
	return &Renderer{
		tpl:     tpl,
		catalog: catalog,
	}, nil
}

// Fields returns the placeholder values for b. Catalog entries that no longer
// exist fall back to the stored ids.
func (r *Renderer) Fields(b *domain.Booking) map[string]string {
	reference := b.BookingReference
	if reference == "" {
		reference = "N/A"
	}

	destName, destPlanet := b.Destination, ""
	if d, ok := r.catalog.Destination(b.Destination); ok {
		destName, destPlanet = d.Name, d.Planet
	}
	accName, accDesc := b.Accommodation, ""
	if a, ok := r.catalog.Accommodation(b.Accommodation); ok {
		accName = a.Name
		accDesc = a.ShortDescription
		if accDesc == "" {
			accDesc = a.Description
		}
	}

	departure := ""
	if !b.DepartureDate.IsZero() {
		departure = validation.FormatDate(b.DepartureDate)
	}

	return map[string]string{
		"bookingReference":         reference,
		"destinationName":          destName,
		"destinationPlanet":        destPlanet,
		"departureDate":            departure,
		"departureTime":            DepartureTime,
		"passengerName":            b.ContactInfo.FullName(),
		"passengerEmail":           b.ContactInfo.Email,
		"passengerPhone":           b.ContactInfo.Phone,
		"numberOfPassengers":       strconv.Itoa(b.NumberOfPassengers),
		"accommodationType":        accName,
		"accommodationDescription": accDesc,
		"totalPrice":               validation.FormatPrice(b.TotalPrice, b.Currency),
		"currency":                 b.Currency,
		"status":                   string(b.Status),
	}
}

func (r *Renderer) Render(b *domain.Booking) string {
	fields := r.Fields(b)
	values := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		values[k] = html.EscapeString(v)
	}
	return r.tpl.ExecuteString(values)
}

func FileName(b *domain.Booking) string {
	reference := b.BookingReference
	if reference == "" {
		reference = "unknown"
	}
	return "SpaceVoyager-Ticket-" + reference + ".html"
}
