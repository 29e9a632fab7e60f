package sources

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hackadoodle/smalltv/models"
)

// WeatherBaseURL is Open-Meteo's forecast endpoint. Free, no API key.
const WeatherBaseURL = "https://api.open-meteo.com/v1/forecast"

// wmoDescriptions maps WMO weather interpretation codes to readable text.
var wmoDescriptions = map[int]string{
	0:  "Clear Sky",
	1:  "Mainly Clear",
	2:  "Partly Cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Icy Fog",
	51: "Light Drizzle",
	53: "Drizzle",
	55: "Heavy Drizzle",
	61: "Light Rain",
	63: "Rain",
	65: "Heavy Rain",
	71: "Light Snow",
	73: "Snow",
	75: "Heavy Snow",
	77: "Snow Grains",
	80: "Showers",
	81: "Rain Showers",
	82: "Heavy Showers",
	85: "Snow Showers",
	86: "Heavy Snow Showers",
	95: "Thunderstorm",
	96: "Thunderstorm",
	99: "Thunderstorm",
}

// WeatherSource fetches current conditions plus a 7-day forecast from
// Open-Meteo. Item 0 is the current weather; items 1..7 are daily entries.
// The wmo_code meta field feeds weather_icon template zones.
type WeatherSource struct {
	Lat      float64
	Lon      float64
	Location string
	// Units is "celsius" or "fahrenheit".
	Units  string
	Client *http.Client
}

type openMeteoResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		FeelsLike   float64 `json:"apparent_temperature"`
		WeatherCode int     `json:"weathercode"`
		WindSpeed   float64 `json:"windspeed_10m"`
		Humidity    float64 `json:"relativehumidity_2m"`
	} `json:"current"`
	Daily struct {
		Time        []string  `json:"time"`
		WeatherCode []int     `json:"weathercode"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
		PrecipProb  []float64 `json:"precipitation_probability_max"`
	} `json:"daily"`
}

func (s *WeatherSource) Fetch(ctx context.Context) (any, error) {
	unit := "celsius"
	if s.Units == "fahrenheit" {
		unit = "fahrenheit"
	}
	params := url.Values{
		"latitude":         {formatFloat(s.Lat)},
		"longitude":        {formatFloat(s.Lon)},
		"current":          {"temperature_2m,apparent_temperature,weathercode,windspeed_10m,relativehumidity_2m"},
		"daily":            {"weathercode,temperature_2m_max,temperature_2m_min,precipitation_probability_max"},
		"temperature_unit": {unit},
		"windspeed_unit":   {"kmh"},
		"timezone":         {"auto"},
		"forecast_days":    {"7"},
	}
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return fetchURLOrFile(ctx, client, WeatherBaseURL+"?"+params.Encode(), nil)
}

func (s *WeatherSource) Parse(raw any) []models.DataItem {
	data, ok := raw.([]byte)
	if !ok {
		return nil
	}
	var resp openMeteoResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		slog.Warn("Failed to parse Open-Meteo response", slog.String("stack", err.Error()))
		return nil
	}

	symbol := "°C"
	if s.Units == "fahrenheit" {
		symbol = "°F"
	}

	var items []models.DataItem

	cur := resp.Current
	desc, ok := wmoDescriptions[cur.WeatherCode]
	if !ok {
		desc = "Unknown"
	}
	items = append(items, models.DataItem{
		Title:    desc,
		Subtitle: "Feels like " + formatFloat(cur.FeelsLike) + symbol + "  Humidity " + formatFloat(cur.Humidity) + "%",
		Value:    formatFloat(cur.Temperature) + symbol,
		Date:     time.Now(),
		Location: s.Location,
		Meta: map[string]any{
			"wind":     "Wind " + formatFloat(cur.WindSpeed) + " km/h",
			"humidity": formatFloat(cur.Humidity) + "%",
			"wmo_code": cur.WeatherCode,
			"type":     "current",
		},
	})

	daily := resp.Daily
	for i, dateStr := range daily.Time {
		code := 0
		if i < len(daily.WeatherCode) {
			code = daily.WeatherCode[i]
		}
		dDesc, ok := wmoDescriptions[code]
		if !ok {
			dDesc = "Unknown"
		}
		var tempMax, tempMin, precip string
		if i < len(daily.TempMax) {
			tempMax = formatFloat(daily.TempMax[i]) + symbol
		}
		if i < len(daily.TempMin) {
			tempMin = formatFloat(daily.TempMin[i]) + symbol
		}
		if i < len(daily.PrecipProb) {
			precip = formatFloat(daily.PrecipProb[i]) + "%"
		}

		item := models.DataItem{
			Title:    dDesc,
			Subtitle: "Low " + tempMin,
			Value:    tempMax,
			Location: s.Location,
			Meta: map[string]any{
				"temp_min":   tempMin,
				"temp_max":   tempMax,
				"precip_pct": precip,
				"wmo_code":   code,
				"type":       "forecast",
			},
		}
		if ts, err := time.Parse("2006-01-02", dateStr); err == nil {
			item.Date = ts
		}
		items = append(items, item)
	}

	return items
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
