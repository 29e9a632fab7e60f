package device

import "bytes"

// DefaultBoundary is the multipart boundary used for uploads. The firmware
// does not care about the token itself, only that the body and the
// Content-Type header agree on it.
const DefaultBoundary = "----HackadoodleBoundary"

// EncodeMultipart builds a single-part multipart/form-data body: one part
// holding payload under fieldName/fileName, followed by the closing boundary.
// Equivalent to what curl -F file=@img.jpg would send, minus anything the
// firmware chokes on. The caller must send Content-Length equal to
// len(result) with Connection: close and no Transfer-Encoding header.
func EncodeMultipart(fieldName, fileName, contentType string, payload []byte, boundary string) []byte {
	var b bytes.Buffer
	b.Grow(len(payload) + 256)
	b.WriteString("--" + boundary + "\r\n")
	b.WriteString(`Content-Disposition: form-data; name="` + fieldName + `"; filename="` + fileName + `"` + "\r\n")
	b.WriteString("Content-Type: " + contentType + "\r\n")
	b.WriteString("\r\n")
	b.Write(payload)
	b.WriteString("\r\n")
	b.WriteString("--" + boundary + "--\r\n")
	return b.Bytes()
}
