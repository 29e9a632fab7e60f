package models

import "fmt"

// SourceConfig is one entry in the configured source list: what kind of
// source it is, how to fetch it and which template renders it.
type SourceConfig struct {
	Type     string         `json:"type"`
	Label    string         `json:"label"`
	Template string         `json:"template"`
	Config   map[string]any `json:"config"`
}

func WeatherSourceConfig(lat, lon float64, location, units string, template string) SourceConfig {
	if template == "" {
		template = "weather_current"
	}
	return SourceConfig{
		Type:     "weather",
		Label:    fmt.Sprintf("Weather - %s", location),
		Template: template,
		Config: map[string]any{
			"lat":      lat,
			"lon":      lon,
			"location": location,
			"units":    units,
		},
	}
}

func IcsSourceConfig(path string, upcomingOnly bool, daysAhead int, label, template string) SourceConfig {
	if label == "" {
		label = fmt.Sprintf("Calendar - %s", path)
	}
	if template == "" {
		template = "calendar_basic"
	}
	return SourceConfig{
		Type:     "ics",
		Label:    label,
		Template: template,
		Config: map[string]any{
			"path":          path,
			"upcoming_only": upcomingOnly,
			"days_ahead":    daysAhead,
		},
	}
}

func JsonSourceConfig(path, label, template string) SourceConfig {
	if label == "" {
		label = fmt.Sprintf("JSON - %s", path)
	}
	if template == "" {
		template = "calendar_basic"
	}
	return SourceConfig{
		Type:     "json",
		Label:    label,
		Template: template,
		Config:   map[string]any{"path": path},
	}
}

func TimeSourceConfig(template string) SourceConfig {
	if template == "" {
		template = "clock"
	}
	return SourceConfig{
		Type:     "time",
		Label:    "Current Time",
		Template: template,
		Config:   map[string]any{},
	}
}
