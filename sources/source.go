package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hackadoodle/smalltv/models"
)

const defaultTimeout = 10 * time.Second

// DataSource is the contract every source plugin satisfies. The split
// between Fetch and Parse is deliberate: Parse can be unit tested with
// canned data, and a network error is distinguishable from a parse error.
// Fetch may fail; Parse never does and returns an empty list on bad input.
type DataSource interface {
	// Fetch pulls raw data from wherever the source lives (HTTP, file,
	// the wall clock). The concrete type of raw depends on the source.
	Fetch(ctx context.Context) (any, error)
	// Parse converts raw data into DataItems.
	Parse(raw any) []models.DataItem
}

// Items fetches and parses in one call, propagating fetch errors.
func Items(ctx context.Context, s DataSource) ([]models.DataItem, error) {
	raw, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return s.Parse(raw), nil
}

// FromConfig builds the concrete source a SourceConfig entry describes.
func FromConfig(cfg models.SourceConfig, client *http.Client) (DataSource, error) {
	switch cfg.Type {
	case "weather":
		return &WeatherSource{
			Lat:      cfgFloat(cfg.Config, "lat", 0),
			Lon:      cfgFloat(cfg.Config, "lon", 0),
			Location: cfgString(cfg.Config, "location", ""),
			Units:    cfgString(cfg.Config, "units", "celsius"),
			Client:   client,
		}, nil
	case "ics":
		return &IcsSource{
			URLOrPath:    cfgString(cfg.Config, "path", ""),
			UpcomingOnly: cfgBool(cfg.Config, "upcoming_only", false),
			DaysAhead:    cfgInt(cfg.Config, "days_ahead", 0),
			MaxItems:     cfgInt(cfg.Config, "max_items", 0),
			Client:       client,
		}, nil
	case "json":
		return &JsonSource{
			URLOrPath: cfgString(cfg.Config, "path", ""),
			JSONPath:  cfgString(cfg.Config, "json_path", ""),
			Client:    client,
		}, nil
	case "time":
		return &TimeSource{}, nil
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Type)
	}
}

// fetchURLOrFile reads from an HTTP(S) URL or a local file path.
func fetchURLOrFile(ctx context.Context, client *http.Client, target string, headers map[string]string) ([]byte, error) {
	target = strings.TrimSpace(target)
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		res, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()
		if res.StatusCode < 200 || res.StatusCode >= 300 {
			return nil, fmt.Errorf("fetch %s: HTTP %d", target, res.StatusCode)
		}
		return io.ReadAll(res.Body)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("source file not found: %s", target)
	}
	return data, nil
}

func cfgString(m map[string]any, key, fallback string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return fallback
}

func cfgFloat(m map[string]any, key string, fallback float64) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return fallback
}

func cfgInt(m map[string]any, key string, fallback int) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

func cfgBool(m map[string]any, key string, fallback bool) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return fallback
}
