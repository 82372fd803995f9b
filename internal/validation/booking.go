package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Domenick1991/spacevoyager/internal/domain"
)

type BookingValidator struct {
	now func() time.Time
}

func NewBookingValidator(now func() time.Time) *BookingValidator {
	if now == nil {
		now = time.Now
	}
	return &BookingValidator{now: now}
}

// Validate evaluates every rule and returns a *domain.ValidationError listing all violations.
func (v *BookingValidator) Validate(in domain.BookingInput) error {
	var problems []string

	if strings.TrimSpace(in.Destination) == "" {
		problems = append(problems, "destination is required")
	}

	if strings.TrimSpace(in.DepartureDate) == "" {
		problems = append(problems, "departure date is required")
	} else if dep, ok := ParseDate(in.DepartureDate); !ok {
		problems = append(problems, "departure date is invalid")
	} else if dep.Before(StartOfDay(v.now())) {
		problems = append(problems, "departure date cannot be in the past")
	}

	if !hasMinChars(in.FirstName, 2) {
		problems = append(problems, "first name is invalid (min 2 characters)")
	}
	if !hasMinChars(in.LastName, 2) {
		problems = append(problems, "last name is invalid (min 2 characters)")
	}
	if !IsEmail(in.Email) {
		problems = append(problems, "email is invalid")
	}
	if !IsPhone(in.Phone) {
		problems = append(problems, "phone number is invalid")
	}
	if in.Duration != nil && *in.Duration < 0 {
		problems = append(problems, "duration cannot be negative")
	}
	if in.NumberOfPassengers < 1 {
		problems = append(problems, "number of passengers must be at least 1")
	}
	if strings.TrimSpace(in.Accommodation) == "" {
		problems = append(problems, "accommodation is required")
	}

	if len(in.Passengers) > 0 {
		problems = append(problems, ValidatePassengers(in.Passengers)...)
		if in.NumberOfPassengers >= 1 && len(in.Passengers) != in.NumberOfPassengers {
			problems = append(problems, fmt.Sprintf("expected %d passengers, got %d", in.NumberOfPassengers, len(in.Passengers)))
		}
	}

	if len(problems) > 0 {
		return domain.NewValidationError(problems...)
	}
	return nil
}

// ValidatePassengers returns one message per invalid passenger.
func ValidatePassengers(passengers []domain.Passenger) []string {
	if len(passengers) == 0 {
		return []string{"at least one passenger is required"}
	}

	var problems []string
	for i, p := range passengers {
		var errs []string
		if !hasMinChars(p.FirstName, 2) {
			errs = append(errs, "invalid first name")
		}
		if !hasMinChars(p.LastName, 2) {
			errs = append(errs, "invalid last name")
		}
		if p.Age != nil && (*p.Age < 0 || *p.Age > 150) {
			errs = append(errs, "invalid age")
		}
		if p.Email != "" && !IsEmail(p.Email) {
			errs = append(errs, "invalid email")
		}
		if len(errs) > 0 {
			problems = append(problems, fmt.Sprintf("passenger %d: %s", i+1, strings.Join(errs, "; ")))
		}
	}
	return problems
}

// hasMinChars counts runes of the trimmed value.
func hasMinChars(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= n
}
