package jobs

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hackadoodle/smalltv/config"
	"github.com/hackadoodle/smalltv/db"
	"github.com/hackadoodle/smalltv/device"
	"github.com/hackadoodle/smalltv/models"
	"github.com/hackadoodle/smalltv/render"
)

func fakeDeviceClient(t *testing.T, uploads *int) *device.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/doUpload":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if r.MultipartForm.File["file"][0].Filename == ".list" {
				fmt.Fprint(w, "<html></html>")
				return
			}
			*uploads++
			fmt.Fprint(w, "OK")
		case "/set", "/delete":
			fmt.Fprint(w, "OK")
		default:
			fmt.Fprint(w, "{}")
		}
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatal(err)
	}
	proto := device.DefaultProtocol()
	proto.DeleteDelay = time.Millisecond
	return device.NewClient(u.Hostname(), device.WithPort(port), device.WithTimeout(2*time.Second), device.WithProtocol(proto))
}

func testRunner(t *testing.T, client *device.Client) (*Runner, db.Store) {
	t.Helper()
	tplDir := t.TempDir()
	tpl := `{"name": "clock", "zones": [{"field": "title", "x": 10, "y": 40}, {"field": "value", "x": 10, "y": 100}]}`
	if err := os.WriteFile(filepath.Join(tplDir, "clock.json"), []byte(tpl), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Sources = []models.SourceConfig{models.TimeSourceConfig("clock")}

	store := db.NewMemoryStore()
	renderer := render.NewRenderer(t.TempDir())
	return NewRunner(cfg, store, client, renderer, render.NewLoader(tplDir)), store
}

func TestRunner_RefreshAndPush(t *testing.T) {
	uploads := 0
	client := fakeDeviceClient(t, &uploads)
	runner, store := testRunner(t, client)

	// nothing cached yet
	ok, msg := runner.Push(false)
	assert.False(t, ok)
	assert.Equal(t, "No tiles to push", msg)

	runner.RefreshSources()
	assert.NotEmpty(t, runner.Items("Current Time"))

	ok, msg = runner.Push(false)
	assert.True(t, ok)
	assert.Contains(t, msg, "1 image(s) uploaded")
	assert.Equal(t, 1, uploads)

	history, err := store.RecentPushes(5)
	assert.NoError(t, err)
	assert.Len(t, history, 1)
	assert.True(t, history[0].Success)
	assert.NotEmpty(t, history[0].Fingerprint)
}

func TestRunner_UnchangedPushIsSkipped(t *testing.T) {
	uploads := 0
	client := fakeDeviceClient(t, &uploads)
	runner, store := testRunner(t, client)

	runner.RefreshSources()

	ok, _ := runner.Push(false)
	assert.True(t, ok)
	assert.Equal(t, 1, uploads)

	// same frames again: skipped without touching the device
	ok, msg := runner.Push(false)
	assert.True(t, ok)
	assert.Equal(t, "Slideshow unchanged", msg)
	assert.Equal(t, 1, uploads)

	// forced pushes always hit the device
	ok, _ = runner.Push(true)
	assert.True(t, ok)
	assert.Equal(t, 2, uploads)

	history, _ := store.RecentPushes(5)
	assert.Len(t, history, 2)
}

func TestRunner_PreviewFrame(t *testing.T) {
	uploads := 0
	client := fakeDeviceClient(t, &uploads)
	runner, _ := testRunner(t, client)

	_, err := runner.PreviewFrame("Current Time")
	assert.Error(t, err, "no items cached before the first refresh")

	runner.RefreshSources()
	png, err := runner.PreviewFrame("Current Time")
	assert.NoError(t, err)
	assert.NotEmpty(t, png)
	// PNG magic
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])

	_, err = runner.PreviewFrame("nope")
	assert.Error(t, err)
	assert.Equal(t, 0, uploads)
}
