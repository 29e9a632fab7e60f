package sources

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func calendarFixture() []byte {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:past@test",
		"DTSTART:20250308T100000Z",
		"SUMMARY:Yesterday's standup",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:late@test",
		"DTSTART:20250310T213000Z",
		"SUMMARY:Band practice",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:soon@test",
		"DTSTART:20250309T220000Z",
		"SUMMARY:Dentist",
		`DESCRIPTION:Bring the\, um\, forms\nSecond line is dropped`,
		"LOCATION:12 Queen St",
		"STATUS:CONFIRMED",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:allday@test",
		"DTSTART;VALUE=DATE:20250310",
		"SUMMARY:Public holiday",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:faraway@test",
		"DTSTART:20250320T100000Z",
		"SUMMARY:Next week's thing",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}

func TestIcsSource_ParseUpcomingWindow(t *testing.T) {
	src := &IcsSource{
		UpcomingOnly: true,
		DaysAhead:    3,
		now:          func() time.Time { return time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC) },
	}

	items := src.Parse(calendarFixture())
	assert.Len(t, items, 3)

	assert.Equal(t, "Dentist", items[0].Title)
	assert.Equal(t, "Bring the, um, forms", items[0].Subtitle)
	assert.Equal(t, "10:00 PM", items[0].Value)
	assert.Equal(t, "12 Queen St", items[0].Location)
	assert.Equal(t, "CONFIRMED", items[0].Meta["status"])
	assert.Equal(t, "soon@test", items[0].Meta["uid"])

	assert.Equal(t, "Public holiday", items[1].Title)
	assert.Equal(t, "All day", items[1].Value)

	assert.Equal(t, "Band practice", items[2].Title)
	assert.Equal(t, "9:30 PM", items[2].Value)
}

func TestIcsSource_MaxItems(t *testing.T) {
	src := &IcsSource{
		MaxItems: 1,
		now:      func() time.Time { return time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC) },
	}
	items := src.Parse(calendarFixture())
	assert.Len(t, items, 1)
	assert.Equal(t, "Yesterday's standup", items[0].Title)
}

func TestIcsSource_BadInput(t *testing.T) {
	src := &IcsSource{}
	assert.Empty(t, src.Parse([]byte("this is not a calendar")))
	assert.Empty(t, src.Parse(42))
}
