// Package device drives a GeekMagic SmallTV Ultra display over its HTTP API.
//
// The SmallTV Ultra (ESP8266, stock firmware) exposes a small HTTP surface:
//
//	POST /doUpload?dir=/image/        multipart file upload
//	GET  /set?img=/image/x.jpg        display a single image immediately
//	GET  /set?theme=<n>               switch display theme
//	GET  /set?i_i=<s>&autoplay=1      set slideshow interval + enable autoplay
//	GET  /set?brt=<0-100>             set brightness
//	GET  /delete?file=/image/x.jpg    delete an uploaded file
//	GET  /app.json                    device status / ping
//	GET  /album.json                  current autoplay + interval state
//
// The embedded web server is fragile: it cannot dechunk requests and drops
// uploads that carry anything other than exactly one Content-Length header,
// so uploads are written by hand over a raw TCP connection rather than going
// through an HTTP client that might pick chunked encoding.
//
// Slideshow workflow:
//
//  1. Delete previously uploaded hd_xx.jpg images (best effort).
//  2. Upload the new set under numbered filenames (hd_00.jpg, hd_01.jpg, ...).
//  3. Set the slide interval and enable autoplay in one command.
//  4. Switch to the Photo Album theme; the device cycles on its own from there.
//
// There is no device-side transaction. Steps 3 and 4 are soft failures: the
// images are already uploaded, so the next push simply corrects the state.
//
// Parameter names (i_i, autoplay) and the literal "OK" acknowledgment are
// specific to observed firmware (SmallTV Ultra V9.0.41) and configurable via
// Protocol rather than baked in.
package device
