package device

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hackadoodle/smalltv/models"
)

const (
	// DefaultPort is the firmware's HTTP port.
	DefaultPort = 80
	// DefaultTimeout bounds every individual HTTP call against the device.
	DefaultTimeout = 8 * time.Second

	statusEndpoint = "/app.json"
	albumEndpoint  = "/album.json"
	setEndpoint    = "/set"
	deleteEndpoint = "/delete"
	uploadEndpoint = "/doUpload"
)

// Protocol carries the firmware-version-specific knobs. The parameter names
// and the "OK" acknowledgment were observed on SmallTV Ultra V9.0.41 and are
// not guaranteed to hold across firmware revisions, so they are configuration
// rather than constants.
type Protocol struct {
	UploadDir       string
	FilenamePrefix  string
	Extension       string
	PhotoAlbumTheme int
	IntervalParam   string
	AutoplayParam   string
	OKResponse      string
	CanvasSize      int
	JPEGQuality     int
	DeleteDelay     time.Duration
}

// DefaultProtocol returns the knobs for SmallTV Ultra V9 stock firmware.
func DefaultProtocol() Protocol {
	return Protocol{
		UploadDir:       "/image/",
		FilenamePrefix:  "hd_",
		Extension:       ".jpg",
		PhotoAlbumTheme: 3,
		IntervalParam:   "i_i",
		AutoplayParam:   "autoplay",
		OKResponse:      "OK",
		CanvasSize:      240,
		JPEGQuality:     90,
		DeleteDelay:     300 * time.Millisecond,
	}
}

// Client talks to one SmallTV device. Every operation returns an explicit
// (ok, message) result instead of an error for expected failures: the device
// lives on a flaky home network and the caller always wants a message it can
// show a human, never a panic path.
//
// Calls against the same device must be serialized by the caller. The
// firmware has no locking and concurrent uploads interleave into a corrupted
// file set.
type Client struct {
	ip      string
	port    int
	timeout time.Duration
	http    *http.Client
	proto   Protocol
}

// Option mutates the client during construction.
type Option func(*Client)

// WithPort overrides the device HTTP port.
func WithPort(port int) Option {
	return func(c *Client) { c.port = port }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// WithHTTPClient installs a custom http.Client for the command endpoints.
// Uploads always bypass it and go over a raw TCP connection.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithProtocol overrides the firmware protocol knobs.
func WithProtocol(p Protocol) Option {
	return func(c *Client) { c.proto = p }
}

// NewClient builds a client for the device at ip.
func NewClient(ip string, opts ...Option) *Client {
	c := &Client{
		ip:      strings.TrimSpace(ip),
		port:    DefaultPort,
		timeout: DefaultTimeout,
		proto:   DefaultProtocol(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c
}

// Protocol returns the active protocol knobs.
func (c *Client) Protocol() Protocol {
	return c.proto
}

func (c *Client) base() string {
	return fmt.Sprintf("http://%s", net.JoinHostPort(c.ip, strconv.Itoa(c.port)))
}

// Ping tests the connection via /app.json. Connection refused, timeout and
// generic failures produce distinct messages.
func (c *Client) Ping() (bool, string) {
	resp, err := c.http.Get(c.base() + statusEndpoint)
	if err != nil {
		return false, c.describeTransportError("Ping", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Sprintf("Device at %s answered HTTP %d", c.ip, resp.StatusCode)
	}
	return true, fmt.Sprintf("Connected to %s (status %d)", c.ip, resp.StatusCode)
}

// GetStatus fetches /app.json as structured data. On failure the returned
// map holds an "error" entry instead of device state.
func (c *Client) GetStatus() (bool, map[string]any) {
	resp, err := c.http.Get(c.base() + statusEndpoint)
	if err != nil {
		return false, map[string]any{"error": err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, map[string]any{"error": fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}
	var status map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return false, map[string]any{"error": err.Error()}
	}
	return true, status
}

// GetAlbumState reads the current autoplay/interval pair from album.json.
func (c *Client) GetAlbumState() (bool, models.AlbumState) {
	state := models.AlbumState{Autoplay: 0, Interval: 10}
	resp, err := c.http.Get(c.base() + albumEndpoint)
	if err != nil {
		return false, state
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, state
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return false, state
	}
	return true, state
}

// DisplayImage tells the device to immediately show an uploaded file.
func (c *Client) DisplayImage(path string) (bool, string) {
	body, err := c.getCommand(setEndpoint, url.Values{"img": {path}})
	if err != nil {
		return false, fmt.Sprintf("Display command error: %v", err)
	}
	_ = body
	return true, "Display OK"
}

// SetTheme switches the device display theme.
func (c *Client) SetTheme(theme int) (bool, string) {
	body, err := c.getCommand(setEndpoint, url.Values{"theme": {strconv.Itoa(theme)}})
	if err != nil {
		return false, fmt.Sprintf("Theme error: %v", err)
	}
	_ = body
	return true, fmt.Sprintf("Theme set to %d", theme)
}

// SetSlideshowInterval enables autoplay and sets the slide interval in one
// combined command. The firmware acknowledges with a literal "OK" body;
// anything else is a rejection.
func (c *Client) SetSlideshowInterval(seconds int) (bool, string) {
	params := url.Values{
		c.proto.IntervalParam: {strconv.Itoa(seconds)},
		c.proto.AutoplayParam: {"1"},
	}
	body, err := c.getCommand(setEndpoint, params)
	if err != nil {
		return false, fmt.Sprintf("Slideshow interval error: %v", err)
	}
	if strings.TrimSpace(body) != c.proto.OKResponse {
		return false, fmt.Sprintf("Device rejected command: %s", strings.TrimSpace(body))
	}
	return true, fmt.Sprintf("Slideshow autoplay enabled (%ds interval)", seconds)
}

// SetAutoplay enables or disables slideshow autoplay, optionally updating the
// interval at the same time. Pass seconds <= 0 to preserve the current
// interval: the state is read back first so toggling one half of the pair
// never clobbers the other.
func (c *Client) SetAutoplay(enabled bool, seconds int) (bool, string) {
	if seconds <= 0 {
		_, current := c.GetAlbumState()
		seconds = current.Interval
		if seconds <= 0 {
			seconds = 10
		}
	}
	autoplay := 0
	if enabled {
		autoplay = 1
	}
	payload, err := json.Marshal(models.AlbumState{Autoplay: autoplay, Interval: seconds})
	if err != nil {
		return false, fmt.Sprintf("Autoplay error: %v", err)
	}
	status, body := c.Upload(payload, "album.json", "/", "application/json")
	if status != 200 && status != 201 && status != 204 {
		return false, fmt.Sprintf("album.json upload failed: HTTP %d %s", status, body)
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	return true, fmt.Sprintf("Slideshow autoplay %s", state)
}

// SetBrightness sets display brightness, clamped to 0-100.
func (c *Client) SetBrightness(level int) (bool, string) {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	body, err := c.getCommand(setEndpoint, url.Values{"brt": {strconv.Itoa(level)}})
	if err != nil {
		return false, fmt.Sprintf("Brightness error: %v", err)
	}
	_ = body
	return true, fmt.Sprintf("Brightness set to %d%%", level)
}

// getCommand issues a GET against one of the device's command endpoints and
// returns the response body. Non-2xx statuses are errors.
func (c *Client) getCommand(endpoint string, params url.Values) (string, error) {
	resp, err := c.http.Get(c.base() + endpoint + "?" + params.Encode())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return string(body), fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return string(body), nil
}

// describeTransportError folds the usual network failure modes into messages
// a human can act on.
func (c *Client) describeTransportError(op string, err error) string {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Sprintf("Timeout connecting to %s (%s)", c.ip, c.timeout)
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return fmt.Sprintf("Cannot reach %s - is the device on the same network?", c.ip)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Sprintf("Cannot resolve %s: %v", c.ip, dnsErr)
	}
	return fmt.Sprintf("%s error: %v", op, err)
}
