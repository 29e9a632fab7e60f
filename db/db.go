package db

import (
	"embed"

	"github.com/hackadoodle/smalltv/models"
)

// Store persists push history so the API can report what was last sent to
// the device and the push job can skip unchanged slideshows.
type Store interface {
	ApplyMigrations(migrations embed.FS) error
	RecordPush(record models.PushRecord) error
	RecentPushes(limit int) ([]models.PushRecord, error)
	// LastFingerprint returns the fingerprint of the most recent successful
	// push, or "" when none exists.
	LastFingerprint() string
}
