package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyFilters_UpperLower(t *testing.T) {
	assert.Equal(t, "RAIN", ApplyFilters("Rain", []string{"upper"}))
	assert.Equal(t, "rain", ApplyFilters("Rain", []string{"lower"}))
}

func TestApplyFilters_Truncate(t *testing.T) {
	assert.Equal(t, "abcde", ApplyFilters("abcde", []string{"truncate(5)"}))
	assert.Equal(t, "abcde…", ApplyFilters("abcdefgh", []string{"truncate(5)"}))
	// default length is 30
	long := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	assert.Equal(t, long[:30]+"…", ApplyFilters(long, []string{"truncate"}))
	// rune safe
	assert.Equal(t, "héll…", ApplyFilters("héllo wörld", []string{"truncate(4)"}))
}

func TestApplyFilters_DateShort(t *testing.T) {
	ts := time.Date(2025, 2, 21, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "Feb 21", ApplyFilters(ts, []string{"date_short"}))
	assert.Equal(t, "Feb 21", ApplyFilters("2025-02-21", []string{"date_short"}))
	assert.Equal(t, "Feb 21", ApplyFilters("2025-02-21T09:30:00Z", []string{"date_short"}))
	// unparseable input passes through untouched
	assert.Equal(t, "next tuesday", ApplyFilters("next tuesday", []string{"date_short"}))
}

func TestApplyFilters_Currency(t *testing.T) {
	assert.Equal(t, "$1,234.50", ApplyFilters("1234.5", []string{"currency"}))
	assert.Equal(t, "$0.99", ApplyFilters("0.99", []string{"currency"}))
	assert.Equal(t, "$1,000,000.00", ApplyFilters("1000000", []string{"currency"}))
	assert.Equal(t, "-$42.00", ApplyFilters("-42", []string{"currency"}))
	// already formatted input is normalised, not mangled
	assert.Equal(t, "$1,234.50", ApplyFilters("$1,234.50", []string{"currency"}))
	assert.Equal(t, "not a number", ApplyFilters("not a number", []string{"currency"}))
}

func TestApplyFilters_UnknownFilterSkipped(t *testing.T) {
	assert.Equal(t, "HELLO", ApplyFilters("hello", []string{"sparkle", "upper"}))
}

func TestApplyFilters_Chained(t *testing.T) {
	assert.Equal(t, "ABCDE…", ApplyFilters("abcdefgh", []string{"upper", "truncate(5)"}))
}
