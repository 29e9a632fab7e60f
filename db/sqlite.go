package db

import (
	"embed"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/hackadoodle/smalltv/models"

	_ "modernc.org/sqlite"
)

type SqliteStore struct {
	DB *sqlx.DB
}

func NewSqliteStore(dsn string) (Store, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &SqliteStore{
		DB: db,
	}, nil
}

func (s *SqliteStore) ApplyMigrations(migrations embed.FS) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		return err
	}

	// The embedded FS roots the .sql files at its top level
	if err := goose.Up(s.DB.DB, "."); err != nil {
		return err
	}

	return nil
}

func (s *SqliteStore) RecordPush(record models.PushRecord) error {
	_, err := s.DB.Exec(
		"INSERT INTO pushes (created_at, image_count, slide_interval, fingerprint, success, message) VALUES (?, ?, ?, ?, ?, ?)",
		record.CreatedAt,
		record.ImageCount,
		record.Interval,
		record.Fingerprint,
		record.Success,
		record.Message,
	)
	return err
}

func (s *SqliteStore) RecentPushes(limit int) ([]models.PushRecord, error) {
	pushes := []models.PushRecord{}
	if limit <= 0 {
		limit = 10
	}
	if err := s.DB.Select(&pushes, "SELECT id, created_at, image_count, slide_interval, fingerprint, success, message FROM pushes ORDER BY created_at DESC, id DESC LIMIT ?", limit); err != nil {
		return pushes, err
	}
	return pushes, nil
}

func (s *SqliteStore) LastFingerprint() string {
	p := models.PushRecord{}
	err := s.DB.Get(&p, "SELECT id, created_at, image_count, slide_interval, fingerprint, success, message FROM pushes WHERE success = true ORDER BY created_at DESC, id DESC LIMIT 1")
	if err != nil {
		return ""
	}
	return p.Fingerprint
}
