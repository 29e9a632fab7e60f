package device

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/image/draw"
)

// Upload POSTs data to /doUpload over a raw TCP connection and returns the
// HTTP status and response body. The request is written by hand so the wire
// carries exactly one Content-Length header, Connection: close and no
// Transfer-Encoding: the ESP8266 web server has no dechunking logic and
// silently corrupts anything else.
func (c *Client) Upload(data []byte, filename, dir, contentType string) (int, string) {
	body := EncodeMultipart("file", filename, contentType, data, DefaultBoundary)

	addr := net.JoinHostPort(c.ip, strconv.Itoa(c.port))
	conn, err := net.DialTimeout("tcp", addr, c.timeout)
	if err != nil {
		return 0, c.describeTransportError("Upload", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	var req bytes.Buffer
	fmt.Fprintf(&req, "POST %s?dir=%s HTTP/1.1\r\n", uploadEndpoint, dir)
	fmt.Fprintf(&req, "Host: %s\r\n", addr)
	fmt.Fprintf(&req, "Content-Type: multipart/form-data; boundary=%s\r\n", DefaultBoundary)
	fmt.Fprintf(&req, "Content-Length: %d\r\n", len(body))
	req.WriteString("Connection: close\r\n")
	req.WriteString("\r\n")
	req.Write(body)

	if _, err := conn.Write(req.Bytes()); err != nil {
		return 0, fmt.Sprintf("Upload write error: %v", err)
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	if err != nil {
		return 0, fmt.Sprintf("Upload read error: %v", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Sprintf("Upload body error: %v", err)
	}
	return resp.StatusCode, strings.TrimSpace(string(respBody))
}

// ListImages returns the filenames currently in the upload directory.
//
// The firmware has no listing endpoint: the only way to see uploaded files is
// the HTML directory table it returns as the response body of an upload call.
// We upload a zero-byte placeholder purely to harvest that listing and pull
// filenames out of the anchor hrefs. If the firmware ever grows a real
// listing endpoint, this is the one method to swap out.
func (c *Client) ListImages() []string {
	status, body := c.Upload(nil, ".list", c.proto.UploadDir, "application/octet-stream")
	if status < 200 || status >= 300 {
		return nil
	}
	return parseListing(body)
}

func parseListing(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	var files []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.Contains(href, "/") {
			return
		}
		name := path.Base(href)
		if name == "" || name == "." || name == "/" {
			return
		}
		files = append(files, name)
	})
	return files
}

// DeleteManagedImages removes every numbered slideshow image (hd_xx.jpg) from
// the upload directory. Other files in the same listing are left alone. The
// firmware drops deletes issued back to back, so a fixed delay separates each
// one; this is rate limiting the device, not a performance choice. Returns
// how many files were deleted even on partial failure.
func (c *Client) DeleteManagedImages(delay time.Duration) (int, bool, string) {
	files := c.ListImages()
	var toDelete []string
	for _, f := range files {
		if strings.HasPrefix(f, c.proto.FilenamePrefix) && strings.HasSuffix(f, c.proto.Extension) {
			toDelete = append(toDelete, f)
		}
	}
	if len(toDelete) == 0 {
		return 0, true, "No images to clear"
	}

	deleted := 0
	for _, filename := range toDelete {
		params := url.Values{"file": {c.proto.UploadDir + filename}}
		if _, err := c.getCommand(deleteEndpoint, params); err != nil {
			return deleted, false, fmt.Sprintf("Deleted %d/%d, then error: %v", deleted, len(toDelete), err)
		}
		deleted++
		time.Sleep(delay)
	}
	return deleted, true, fmt.Sprintf("Cleared %d old image(s)", deleted)
}

// SendImage converts img to the device canvas, uploads it under a preview
// filename and displays it immediately. Single-image preview path.
func (c *Client) SendImage(img image.Image) (bool, string) {
	jpegBytes, err := c.toJPEG(img)
	if err != nil {
		return false, fmt.Sprintf("Image conversion failed: %v", err)
	}

	filename := c.proto.FilenamePrefix + "preview" + c.proto.Extension
	status, msg := c.Upload(jpegBytes, filename, c.proto.UploadDir, "image/jpeg")
	if status != 200 && status != 201 && status != 204 {
		return false, msg
	}

	if ok, msg := c.DisplayImage(c.proto.UploadDir + filename); !ok {
		return false, msg
	}
	return true, fmt.Sprintf("Image sent to %s (%.1f KB)", c.ip, float64(len(jpegBytes))/1024)
}

// SendImageFile loads a PNG/JPEG/GIF from disk and sends it.
func (c *Client) SendImageFile(filePath string) (bool, string) {
	f, err := os.Open(filePath)
	if err != nil {
		return false, fmt.Sprintf("File not found: %s", filePath)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return false, fmt.Sprintf("Cannot open image: %v", err)
	}
	return c.SendImage(img)
}

// SendAll uploads a full image set and starts the Photo Album slideshow.
//
// The sequence is strictly ordered: clear old numbered images (best effort),
// upload each image as hd_00.jpg, hd_01.jpg, ... aborting on the first
// failure, then set the interval and switch themes. The last two steps are
// soft failures - the images are already on the device, so a rejected command
// still reports overall success with a warning and the next SendAll corrects
// the mode. Nothing is retried or rolled back; there is no device-side
// transaction to lean on.
//
// onProgress, if non-nil, is invoked after each successful upload with
// (uploaded, total).
func (c *Client) SendAll(images []image.Image, interval int, onProgress func(uploaded, total int)) (bool, string) {
	if len(images) == 0 {
		return false, "No images to send"
	}

	if deleted, ok, msg := c.DeleteManagedImages(c.proto.DeleteDelay); ok && deleted > 0 {
		slog.Debug("Cleared previous slideshow images", slog.String("result", msg))
	} else if !ok {
		slog.Warn("Failed to clear previous slideshow images", slog.String("result", msg))
	}

	total := len(images)
	uploaded := 0

	for i, img := range images {
		filename := fmt.Sprintf("%s%02d%s", c.proto.FilenamePrefix, i, c.proto.Extension)
		jpegBytes, err := c.toJPEG(img)
		if err != nil {
			return false, fmt.Sprintf("Image %d conversion failed: %v", i, err)
		}

		status, msg := c.Upload(jpegBytes, filename, c.proto.UploadDir, "image/jpeg")
		if status != 200 && status != 201 && status != 204 {
			return false, fmt.Sprintf("Upload failed at image %d/%d: %s", i+1, total, msg)
		}

		uploaded++
		if onProgress != nil {
			onProgress(uploaded, total)
		}
	}

	if ok, msg := c.SetSlideshowInterval(interval); !ok {
		return true, fmt.Sprintf("%d image(s) uploaded. Warning: interval failed (%s)", uploaded, msg)
	}

	if ok, msg := c.SetTheme(c.proto.PhotoAlbumTheme); !ok {
		return true, fmt.Sprintf("%d image(s) uploaded. Warning: theme switch failed (%s)", uploaded, msg)
	}

	return true, fmt.Sprintf("%d image(s) uploaded, slideshow started (%ds interval)", uploaded, interval)
}

// toJPEG resizes img to the device canvas and encodes it at the configured
// quality.
func (c *Client) toJPEG(img image.Image) ([]byte, error) {
	size := c.proto.CanvasSize
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: c.proto.JPEGQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
