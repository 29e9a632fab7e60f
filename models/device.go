package models

import "time"

// AlbumState mirrors the device's album.json payload. The firmware reads this
// file to decide whether to auto-cycle the photo album and how fast.
type AlbumState struct {
	Autoplay int `json:"autoplay"`
	Interval int `json:"i_i"`
}

// Location is one geocoding search result.
type Location struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	Admin1  string  `json:"admin1"`
}

// PushRecord is one slideshow push as remembered by the store.
type PushRecord struct {
	ID          uint      `db:"id" json:"id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	ImageCount  int       `db:"image_count" json:"image_count"`
	Interval    int       `db:"slide_interval" json:"interval"`
	Fingerprint string    `db:"fingerprint" json:"fingerprint"`
	Success     bool      `db:"success" json:"success"`
	Message     string    `db:"message" json:"message"`
}
