package utils

import (
	"net/http"
	"time"
)

const UserAgent = "smalltv/1.0 (+https://github.com/hackadoodle/smalltv)"

// UARoundtripper stamps every outbound request with our User-Agent so the
// public APIs we poll (Open-Meteo, calendar hosts) can identify us.
type UARoundtripper struct {
	RT http.RoundTripper
}

func (uart *UARoundtripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", UserAgent)
	rt := uart.RT
	if rt == nil {
		rt = http.DefaultTransport
	}
	return rt.RoundTrip(req)
}

// NewHTTPClient returns the shared client used by all data sources.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &UARoundtripper{},
	}
}
