package device

import (
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// recorder captures every call the client makes so tests can assert on
// ordering.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.calls...)
}

const deviceListing = `<html><body><table>
<tr><td><a href="/image/hd_00.jpg">hd_00.jpg</a></td></tr>
<tr><td><a href="/image/hd_01.jpg">hd_01.jpg</a></td></tr>
<tr><td><a href="/image/cat.gif">cat.gif</a></td></tr>
</table></body></html>`

// fakeDevice emulates the firmware's HTTP surface. uploadStatus lets tests
// fail the nth image upload.
func fakeDevice(t *testing.T, rec *recorder, failUploadAt int, setBody string) *Client {
	t.Helper()
	uploads := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/app.json":
			rec.add("status")
			fmt.Fprint(w, `{"theme":3,"brt":80}`)
		case "/album.json":
			rec.add("album")
			fmt.Fprint(w, `{"autoplay":1,"i_i":15}`)
		case "/doUpload":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			header := r.MultipartForm.File["file"][0]
			if header.Filename == ".list" {
				rec.add("list")
				fmt.Fprint(w, deviceListing)
				return
			}
			uploads++
			rec.add("upload " + header.Filename)
			if failUploadAt > 0 && uploads == failUploadAt {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, "write error")
				return
			}
			fmt.Fprint(w, "OK")
		case "/set":
			rec.add("set " + r.URL.RawQuery)
			fmt.Fprint(w, setBody)
		case "/delete":
			rec.add("delete " + r.URL.Query().Get("file"))
			fmt.Fprint(w, "OK")
		default:
			w.WriteHeader(http.StatusNotFound)
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
	proto := DefaultProtocol()
	proto.DeleteDelay = time.Millisecond
	return NewClient(u.Hostname(), WithPort(port), WithTimeout(2*time.Second), WithProtocol(proto))
}

func testFrames(n int) []image.Image {
	var frames []image.Image
	for i := 0; i < n; i++ {
		frames = append(frames, image.NewRGBA(image.Rect(0, 0, 24, 24)))
	}
	return frames
}

func TestPing(t *testing.T) {
	rec := &recorder{}
	client := fakeDevice(t, rec, 0, "OK")
	ok, msg := client.Ping()
	assert.True(t, ok)
	assert.Contains(t, msg, "Connected to")
}

func TestPing_ConnectionRefused(t *testing.T) {
	client := NewClient("127.0.0.1", WithPort(1), WithTimeout(time.Second))
	ok, msg := client.Ping()
	assert.False(t, ok)
	assert.Contains(t, msg, "is the device on the same network?")
}

func TestGetAlbumState(t *testing.T) {
	rec := &recorder{}
	client := fakeDevice(t, rec, 0, "OK")
	ok, state := client.GetAlbumState()
	assert.True(t, ok)
	assert.Equal(t, 1, state.Autoplay)
	assert.Equal(t, 15, state.Interval)
}

func TestParseListing_OnlyAnchorsWithPaths(t *testing.T) {
	files := parseListing(deviceListing)
	assert.Equal(t, []string{"hd_00.jpg", "hd_01.jpg", "cat.gif"}, files)
}

func TestDeleteManagedImages_SkipsForeignFiles(t *testing.T) {
	rec := &recorder{}
	client := fakeDevice(t, rec, 0, "OK")

	deleted, ok, msg := client.DeleteManagedImages(time.Millisecond)
	assert.True(t, ok)
	assert.Equal(t, 2, deleted)
	assert.Contains(t, msg, "Cleared 2 old image(s)")

	calls := rec.all()
	assert.Equal(t, []string{
		"list",
		"delete /image/hd_00.jpg",
		"delete /image/hd_01.jpg",
	}, calls)
}

func TestSendAll_OrderedSequence(t *testing.T) {
	rec := &recorder{}
	client := fakeDevice(t, rec, 0, "OK")

	var progress [][2]int
	ok, msg := client.SendAll(testFrames(3), 10, func(uploaded, total int) {
		progress = append(progress, [2]int{uploaded, total})
	})
	assert.True(t, ok)
	assert.Contains(t, msg, "3 image(s) uploaded, slideshow started (10s interval)")
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, progress)

	calls := rec.all()
	assert.Equal(t, []string{
		"list",
		"delete /image/hd_00.jpg",
		"delete /image/hd_01.jpg",
		"upload hd_00.jpg",
		"upload hd_01.jpg",
		"upload hd_02.jpg",
		"set autoplay=1&i_i=10",
		"set theme=3",
	}, calls)
}

func TestSendAll_AbortsOnFailedUpload(t *testing.T) {
	rec := &recorder{}
	client := fakeDevice(t, rec, 2, "OK")

	ok, msg := client.SendAll(testFrames(3), 10, nil)
	assert.False(t, ok)
	assert.Contains(t, msg, "Upload failed at image 2/3")

	for _, call := range rec.all() {
		assert.NotContains(t, call, "set")
	}
}

func TestSendAll_IntervalRejectionIsSoftFailure(t *testing.T) {
	rec := &recorder{}
	client := fakeDevice(t, rec, 0, "ERR")

	ok, msg := client.SendAll(testFrames(2), 10, nil)
	assert.True(t, ok)
	assert.Contains(t, msg, "2 image(s) uploaded. Warning: interval failed")
	assert.Contains(t, msg, "Device rejected command: ERR")
}

func TestSendAll_NoImages(t *testing.T) {
	rec := &recorder{}
	client := fakeDevice(t, rec, 0, "OK")
	ok, msg := client.SendAll(nil, 10, nil)
	assert.False(t, ok)
	assert.Equal(t, "No images to send", msg)
}

func TestSendImage_UploadsThenDisplays(t *testing.T) {
	rec := &recorder{}
	client := fakeDevice(t, rec, 0, "OK")

	ok, msg := client.SendImage(testFrames(1)[0])
	assert.True(t, ok)
	assert.Contains(t, msg, "Image sent to")

	calls := rec.all()
	assert.Equal(t, []string{
		"upload hd_preview.jpg",
		"set img=%2Fimage%2Fhd_preview.jpg",
	}, calls)
}

func TestSendImage_FailedUploadSkipsDisplay(t *testing.T) {
	rec := &recorder{}
	client := fakeDevice(t, rec, 1, "OK")

	ok, msg := client.SendImage(testFrames(1)[0])
	assert.False(t, ok)
	assert.Contains(t, msg, "write error")

	for _, call := range rec.all() {
		assert.NotContains(t, call, "set")
	}
}

func TestSendImageFile(t *testing.T) {
	rec := &recorder{}
	client := fakeDevice(t, rec, 0, "OK")

	filePath := filepath.Join(t.TempDir(), "photo.png")
	f, err := os.Create(filePath)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, testFrames(1)[0]); err != nil {
		t.Fatal(err)
	}
	f.Close()

	ok, msg := client.SendImageFile(filePath)
	assert.True(t, ok)
	assert.Contains(t, msg, "Image sent to")
	assert.Contains(t, rec.all(), "upload hd_preview.jpg")
}

func TestSendImageFile_MissingFile(t *testing.T) {
	rec := &recorder{}
	client := fakeDevice(t, rec, 0, "OK")

	ok, msg := client.SendImageFile(filepath.Join(t.TempDir(), "nope.png"))
	assert.False(t, ok)
	assert.Contains(t, msg, "File not found")
	assert.Empty(t, rec.all())
}

func TestSetBrightness_Clamped(t *testing.T) {
	rec := &recorder{}
	client := fakeDevice(t, rec, 0, "OK")
	ok, msg := client.SetBrightness(250)
	assert.True(t, ok)
	assert.Contains(t, msg, "100%")
	assert.Equal(t, []string{"set brt=100"}, rec.all())
}
