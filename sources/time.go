package sources

import (
	"context"
	"strings"
	"time"

	"github.com/hackadoodle/smalltv/models"
)

// TimeSource produces a single item holding the current date and time. The
// scheduler refreshes it every minute independently of the network sources.
type TimeSource struct {
	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func (s *TimeSource) Fetch(ctx context.Context) (any, error) {
	nowFn := s.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return nowFn(), nil
}

func (s *TimeSource) Parse(raw any) []models.DataItem {
	now, ok := raw.(time.Time)
	if !ok {
		return nil
	}
	return []models.DataItem{{
		Title:    now.Format("January 2, 2006"),
		Subtitle: now.Format("Monday"),
		Value:    strings.TrimPrefix(now.Format("03:04 PM"), "0"),
		Date:     now,
		Meta:     map[string]any{"type": "time"},
	}}
}
