package device

import (
	"bytes"
	"io"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeMultipart_RoundTrip(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0x00, 0x01, 0x02}
	body := EncodeMultipart("file", "hd_00.jpg", "image/jpeg", payload, DefaultBoundary)

	reader := multipart.NewReader(bytes.NewReader(body), DefaultBoundary)
	part, err := reader.NextPart()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "file", part.FormName())
	assert.Equal(t, "hd_00.jpg", part.FileName())
	assert.Equal(t, "image/jpeg", part.Header.Get("Content-Type"))

	got, err := io.ReadAll(part)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, payload, got)

	_, err = reader.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestEncodeMultipart_EmptyPayload(t *testing.T) {
	body := EncodeMultipart("file", ".list", "application/octet-stream", nil, DefaultBoundary)

	reader := multipart.NewReader(bytes.NewReader(body), DefaultBoundary)
	part, err := reader.NextPart()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, ".list", part.FileName())
	got, err := io.ReadAll(part)
	if err != nil {
		t.Fatal(err)
	}
	assert.Empty(t, got)
}
