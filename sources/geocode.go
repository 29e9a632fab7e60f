package sources

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hackadoodle/smalltv/models"
)

// GeocodeBaseURL is Open-Meteo's free geocoding endpoint.
const GeocodeBaseURL = "https://geocoding-api.open-meteo.com/v1/search"

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
		Admin1    string  `json:"admin1"`
	} `json:"results"`
}

// SearchLocation looks up places by name and returns display name plus
// coordinates for each hit. Returns an empty list on any error.
func SearchLocation(ctx context.Context, client *http.Client, query string, count int) []models.Location {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if count <= 0 {
		count = 5
	}
	params := url.Values{
		"name":     {query},
		"count":    {strconv.Itoa(count)},
		"language": {"en"},
		"format":   {"json"},
	}
	data, err := fetchURLOrFile(ctx, client, GeocodeBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		slog.Warn("Geocoding search failed", slog.String("stack", err.Error()))
		return nil
	}
	var resp geocodeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		slog.Warn("Geocoding parse failed", slog.String("stack", err.Error()))
		return nil
	}

	var results []models.Location
	for _, r := range resp.Results {
		parts := []string{r.Name}
		if r.Admin1 != "" {
			parts = append(parts, r.Admin1)
		}
		if r.Country != "" {
			parts = append(parts, r.Country)
		}
		results = append(results, models.Location{
			Name:    strings.Join(parts, ", "),
			Lat:     r.Latitude,
			Lon:     r.Longitude,
			Country: r.Country,
			Admin1:  r.Admin1,
		})
	}
	return results
}
