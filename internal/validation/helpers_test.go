package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2026-10-18")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.Local), d)

	_, ok = ParseDate("2026-10-18T09:00:00Z")
	assert.True(t, ok)

	_, ok = ParseDate("18/10/2026")
	assert.False(t, ok)
}

func TestDateHelpers(t *testing.T) {
	a := time.Date(2026, 10, 18, 0, 0, 0, 0, time.Local)
	b := a.Add(36 * time.Hour)

	assert.True(t, IsAfter(b, a))
	assert.True(t, IsBefore(a, b))
	assert.Equal(t, "October 18, 2026", FormatDate(a))
	assert.Equal(t, a, StartOfDay(a.Add(5*time.Hour)))
}

func TestPriceHelpers(t *testing.T) {
	assert.True(t, IsCurrency("USD"))
	assert.False(t, IsCurrency("XYZW"))

	assert.Equal(t, "32,000 USD", FormatPrice(32000, "usd"))
	assert.Equal(t, "1,500 USD", FormatPrice(1500, ""))
}
