// Package validation holds the field rule engine and the booking checks built on it.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

type RuleKind string

const (
	Required   RuleKind = "required"
	Email      RuleKind = "email"
	Phone      RuleKind = "phone"
	MinLength  RuleKind = "minLength"
	MaxLength  RuleKind = "maxLength"
	Min        RuleKind = "min"
	Max        RuleKind = "max"
	Date       RuleKind = "date"
	FutureDate RuleKind = "futureDate"
	Pattern    RuleKind = "pattern"
	Match      RuleKind = "match"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^[\d\s\-+()]{8,}$`)
)

// Predicate reports whether value satisfies a rule. params is empty for flag rules.
type Predicate func(value string, params ...any) bool

var defaultMessages = map[RuleKind]string{
	Required:   "This field is required",
	Email:      "Invalid email",
	Phone:      "Invalid phone number",
	MinLength:  "Minimum {0} characters required",
	MaxLength:  "Maximum {0} characters allowed",
	Min:        "The minimum value is {0}",
	Max:        "The maximum value is {0}",
	Date:       "Invalid date",
	FutureDate: "The date must be in the future",
	Pattern:    "Invalid format",
	Match:      "Values do not match",
}

func IsRequired(value string) bool {
	return strings.TrimSpace(value) != ""
}

func IsEmail(value string) bool {
	return emailRegex.MatchString(value)
}

func IsPhone(value string) bool {
	return phoneRegex.MatchString(value)
}

func HasMinLength(value string, n int) bool {
	return value != "" && utf8.RuneCountInString(value) >= n
}

func HasMaxLength(value string, n int) bool {
	return value != "" && utf8.RuneCountInString(value) <= n
}

func AtLeast(value string, min float64) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return err == nil && f >= min
}

func AtMost(value string, max float64) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return err == nil && f <= max
}

func MatchesPattern(value, pattern string) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(value)
}

func builtinPredicates(now func() time.Time) map[RuleKind]Predicate {
	return map[RuleKind]Predicate{
		Required: func(v string, _ ...any) bool { return IsRequired(v) },
		Email:    func(v string, _ ...any) bool { return IsEmail(v) },
		Phone:    func(v string, _ ...any) bool { return IsPhone(v) },
		MinLength: func(v string, p ...any) bool {
			n, ok := intParam(p)
			return ok && HasMinLength(v, n)
		},
		MaxLength: func(v string, p ...any) bool {
			n, ok := intParam(p)
			return ok && HasMaxLength(v, n)
		},
		Min: func(v string, p ...any) bool {
			f, ok := floatParam(p)
			return ok && AtLeast(v, f)
		},
		Max: func(v string, p ...any) bool {
			f, ok := floatParam(p)
			return ok && AtMost(v, f)
		},
		Date:       func(v string, _ ...any) bool { return IsValidDate(v) },
		FutureDate: func(v string, _ ...any) bool { return IsFutureDate(v, now()) },
		Pattern: func(v string, p ...any) bool {
			if len(p) == 0 {
				return false
			}
			return MatchesPattern(v, fmt.Sprint(p[0]))
		},
		Match: func(v string, p ...any) bool {
			return len(p) > 0 && v == fmt.Sprint(p[0])
		},
	}
}

func floatParam(p []any) (float64, bool) {
	if len(p) == 0 {
		return 0, false
	}
	switch v := p[0].(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

func intParam(p []any) (int, bool) {
	f, ok := floatParam(p)
	return int(f), ok
}
