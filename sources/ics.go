package sources

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/hackadoodle/smalltv/models"
)

// IcsSource loads DataItems from an iCalendar feed (URL or local file).
// Every VEVENT becomes one item: SUMMARY → title, first DESCRIPTION line →
// subtitle, DTSTART → date, LOCATION → location, and the start time rendered
// as "2:30 PM" (or "All day") → value.
type IcsSource struct {
	URLOrPath string
	// UpcomingOnly skips events whose start has already passed.
	UpcomingOnly bool
	// DaysAhead caps events to the next N days (0 = no limit, 1 = today).
	DaysAhead int
	// MaxItems caps the list length (0 = no limit).
	MaxItems int
	Headers  map[string]string
	Client   *http.Client

	// now is swappable for tests.
	now func() time.Time
}

func (s *IcsSource) Fetch(ctx context.Context) (any, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return fetchURLOrFile(ctx, client, s.URLOrPath, s.Headers)
}

func (s *IcsSource) Parse(raw any) []models.DataItem {
	data, ok := raw.([]byte)
	if !ok {
		return nil
	}
	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		slog.Warn("Failed to parse ICS calendar", slog.String("stack", err.Error()))
		return nil
	}

	nowFn := s.now
	if nowFn == nil {
		nowFn = time.Now
	}
	now := nowFn().UTC()

	// Cutoff is the end of the Nth day from today
	var cutoff time.Time
	if s.DaysAhead > 0 {
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		cutoff = midnight.AddDate(0, 0, s.DaysAhead)
	}

	var items []models.DataItem
	for _, event := range cal.Events() {
		item, start, ok := parseEvent(event)
		if !ok {
			continue
		}
		if s.UpcomingOnly && !start.IsZero() && start.Before(now) {
			continue
		}
		if !cutoff.IsZero() && !start.IsZero() && !start.Before(cutoff) {
			continue
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return sortKey(items[i].Date).Before(sortKey(items[j].Date))
	})

	if s.MaxItems > 0 && len(items) > s.MaxItems {
		items = items[:s.MaxItems]
	}
	return items
}

func parseEvent(event *ics.VEvent) (models.DataItem, time.Time, bool) {
	title := propValue(event, ics.ComponentPropertySummary)
	if title == "" {
		title = "(No title)"
	}

	subtitle := ""
	if desc := propValue(event, ics.ComponentPropertyDescription); desc != "" {
		// ICS descriptions carry escaped separators
		desc = strings.ReplaceAll(desc, `\n`, "\n")
		desc = strings.ReplaceAll(desc, `\,`, ",")
		subtitle = strings.TrimSpace(strings.SplitN(strings.TrimSpace(desc), "\n", 2)[0])
	}

	start, allDay := eventStart(event)

	value := ""
	switch {
	case allDay:
		value = "All day"
	case !start.IsZero():
		value = strings.TrimPrefix(start.Format("03:04 PM"), "0")
	}

	meta := map[string]any{}
	for key, prop := range map[string]ics.ComponentProperty{
		"uid":       ics.ComponentPropertyUniqueId,
		"dtend":     ics.ComponentPropertyDtEnd,
		"organizer": ics.ComponentPropertyOrganizer,
		"url":       ics.ComponentPropertyUrl,
		"status":    ics.ComponentPropertyStatus,
	} {
		if v := propValue(event, prop); v != "" {
			meta[key] = v
		}
	}

	item := models.DataItem{
		Title:    title,
		Subtitle: subtitle,
		Value:    value,
		Location: strings.TrimSpace(propValue(event, ics.ComponentPropertyLocation)),
		Meta:     meta,
	}
	if !start.IsZero() {
		item.Date = start
	}
	return item, start, true
}

// eventStart resolves DTSTART as a UTC timestamp. All-day events count as
// midnight UTC on their date.
func eventStart(event *ics.VEvent) (time.Time, bool) {
	if start, err := event.GetStartAt(); err == nil {
		return start.UTC(), false
	}
	if start, err := event.GetAllDayStartAt(); err == nil {
		return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

func propValue(event *ics.VEvent, name ics.ComponentProperty) string {
	prop := event.GetProperty(name)
	if prop == nil {
		return ""
	}
	return prop.Value
}

// sortKey produces a sortable timestamp for any date representation;
// unknowns sort to the end.
func sortKey(date any) time.Time {
	if ts, ok := date.(time.Time); ok {
		return ts
	}
	return time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
}
