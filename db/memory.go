package db

import (
	"embed"
	"sync"

	"github.com/hackadoodle/smalltv/models"
)

// MemoryStore keeps push history in process memory. Used by tests and as a
// fallback when no database path is configured.
type MemoryStore struct {
	m    sync.Mutex
	data []models.PushRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (ms *MemoryStore) ApplyMigrations(migrations embed.FS) error {
	return nil
}

func (ms *MemoryStore) RecordPush(record models.PushRecord) error {
	ms.m.Lock()
	defer ms.m.Unlock()
	record.ID = uint(len(ms.data) + 1)
	ms.data = append(ms.data, record)
	return nil
}

func (ms *MemoryStore) RecentPushes(limit int) ([]models.PushRecord, error) {
	ms.m.Lock()
	defer ms.m.Unlock()
	if limit <= 0 {
		limit = 10
	}
	pushes := []models.PushRecord{}
	for i := len(ms.data) - 1; i >= 0 && len(pushes) < limit; i-- {
		pushes = append(pushes, ms.data[i])
	}
	return pushes, nil
}

func (ms *MemoryStore) LastFingerprint() string {
	ms.m.Lock()
	defer ms.m.Unlock()
	for i := len(ms.data) - 1; i >= 0; i-- {
		if ms.data[i].Success {
			return ms.data[i].Fingerprint
		}
	}
	return ""
}
