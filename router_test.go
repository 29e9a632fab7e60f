package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hackadoodle/smalltv/config"
	"github.com/hackadoodle/smalltv/db"
	"github.com/hackadoodle/smalltv/device"
	"github.com/hackadoodle/smalltv/events"
	"github.com/hackadoodle/smalltv/jobs"
	"github.com/hackadoodle/smalltv/models"
	"github.com/hackadoodle/smalltv/render"
)

func testHandler(t *testing.T) (http.Handler, db.Store) {
	t.Helper()
	events.Init()

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.WebhookSecret = "sekrit"

	store := db.NewMemoryStore()
	// port 1 is never listening, device calls fail fast
	client := device.NewClient("127.0.0.1", device.WithPort(1), device.WithTimeout(time.Second))
	runner := jobs.NewRunner(cfg, store, client, render.NewRenderer(t.TempDir()), render.NewLoader(t.TempDir()))

	return RegisterRoutes(http.NewServeMux(), cfg, client, store, runner), store
}

func TestStatusEndpoint_UnreachableDevice(t *testing.T) {
	handler, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["reachable"])
	assert.NotEmpty(t, body["detail"])
}

func TestHistoryEndpoint(t *testing.T) {
	handler, store := testHandler(t)
	assert.NoError(t, store.RecordPush(models.PushRecord{Fingerprint: "abcd", Success: true}))

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var records []models.PushRecord
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Len(t, records, 1)
	assert.Equal(t, "abcd", records[0].Fingerprint)
}

func TestPushEndpoint_WrongMethod(t *testing.T) {
	handler, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/push", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestPushEndpoint_NoTiles(t *testing.T) {
	handler, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/push", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "No tiles to push")
}

func TestPreviewEndpoint_UnknownSource(t *testing.T) {
	handler, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/preview/nothing", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhook_RejectsMissingSignature(t *testing.T) {
	handler, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/webhook/refresh", strings.NewReader("{}"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	handler, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/webhook/refresh", strings.NewReader("{}"))
	req.Header.Set("X-Hub-Signature-256", "sha256=deadbeef")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhook_AcceptsValidSignature(t *testing.T) {
	handler, _ := testHandler(t)

	body := []byte("{}")
	mac := hmac.New(sha256.New, []byte("sekrit"))
	mac.Write(body)
	signature := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/webhook/refresh", strings.NewReader("{}"))
	req.Header.Set("X-Hub-Signature-256", signature)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Refresh scheduled")
}
