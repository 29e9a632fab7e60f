package sources

import (
	"context"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
)

func TestSearchLocation(t *testing.T) {
	defer gock.Off()

	gock.New("https://geocoding-api.open-meteo.com").
		Get("/v1/search").
		MatchParam("name", "auckland").
		Reply(200).
		BodyString(`{"results": [
			{"name": "Auckland", "latitude": -36.85, "longitude": 174.76, "country": "New Zealand", "admin1": "Auckland"}
		]}`)

	results := SearchLocation(context.Background(), nil, "auckland", 5)
	assert.Len(t, results, 1)
	assert.Equal(t, "Auckland, Auckland, New Zealand", results[0].Name)
	assert.Equal(t, -36.85, results[0].Lat)
}

func TestSearchLocation_ErrorReturnsEmpty(t *testing.T) {
	defer gock.Off()

	gock.New("https://geocoding-api.open-meteo.com").
		Get("/v1/search").
		Reply(500)

	results := SearchLocation(context.Background(), nil, "nowhere", 5)
	assert.Empty(t, results)
}
