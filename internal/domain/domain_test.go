package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{"validation", NewValidationError("a is required", "b is invalid"), ErrValidation, "a is required, b is invalid"},
		{"authentication", &AuthenticationError{}, ErrUnauthenticated, "you must be logged in"},
		{"authorization", &AuthorizationError{Action: "delete", BookingID: "b1"}, ErrForbidden, "not allowed to delete booking b1"},
		{"not found", &NotFoundError{Kind: "booking", ID: "b1"}, ErrNotFound, "booking b1 not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("create: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))
			assert.Equal(t, tt.message, tt.err.Error())
			for _, other := range []error{ErrValidation, ErrUnauthenticated, ErrForbidden, ErrNotFound} {
				if other != tt.sentinel {
					assert.False(t, errors.Is(wrapped, other))
				}
			}
		})
	}
}

func TestBookingPatch_Apply(t *testing.T) {
	departure := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	b := &Booking{
		Status:              BookingStatusConfirmed,
		DepartureDate:       departure,
		SpecialRequirements: "none",
		ContactInfo:         ContactInfo{FirstName: "Ada", LastName: "Lovelace"},
	}

	at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	note := "window seat"
	BookingPatch{SpecialRequirements: &note}.Apply(b, at)
	assert.Equal(t, "window seat", b.SpecialRequirements)
	assert.Equal(t, BookingStatusConfirmed, b.Status)
	assert.Equal(t, departure, b.DepartureDate)
	assert.Nil(t, b.CancelledAt)

	status := BookingStatusCancelled
	BookingPatch{Status: &status}.Apply(b, at)
	assert.Equal(t, BookingStatusCancelled, b.Status)
	if assert.NotNil(t, b.CancelledAt) {
		assert.Equal(t, at, *b.CancelledAt)
	}

	// cancelling twice keeps the first timestamp
	BookingPatch{Status: &status}.Apply(b, at.Add(time.Hour))
	assert.Equal(t, at, *b.CancelledAt)

	confirmed := BookingStatusConfirmed
	BookingPatch{Status: &confirmed}.Apply(b, at.Add(2*time.Hour))
	assert.Equal(t, BookingStatusConfirmed, b.Status)
	assert.Nil(t, b.CancelledAt)
	assert.Equal(t, "Ada Lovelace", b.ContactInfo.FullName())
}

func TestBookingStatus_Valid(t *testing.T) {
	assert.True(t, BookingStatusConfirmed.Valid())
	assert.True(t, BookingStatusCancelled.Valid())
	assert.False(t, BookingStatus("pending").Valid())
}
