package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	hmacext "github.com/alexellis/hmac/v2"
	"github.com/rs/cors"

	"github.com/hackadoodle/smalltv/config"
	"github.com/hackadoodle/smalltv/db"
	"github.com/hackadoodle/smalltv/device"
	"github.com/hackadoodle/smalltv/events"
	"github.com/hackadoodle/smalltv/jobs"
	"github.com/hackadoodle/smalltv/sources"
	"github.com/hackadoodle/smalltv/utils"
)

func renderJSONMessage(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	res := map[string]string{"message": message}
	json.NewEncoder(w).Encode(res)
}

func renderJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func RegisterRoutes(mux *http.ServeMux, cfg *config.Config, client *device.Client, store db.Store, runner *jobs.Runner) http.Handler {

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "Welcome to hackadoodle, a driver for GeekMagic SmallTV displays.\nYou can find the source code on <a href=\"https://github.com/hackadoodle/smalltv\">Github</a>\n")
	})

	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		renderJSONMessage(w, "This is the base of the hackadoodle API")
	})

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		reachable, detail := client.Ping()
		response := map[string]any{
			"device_ip": cfg.DeviceIP,
			"reachable": reachable,
			"detail":    detail,
		}
		if reachable {
			if ok, status := client.GetStatus(); ok {
				response["status"] = status
			}
			if ok, album := client.GetAlbumState(); ok {
				response["album"] = album
			}
		}
		json.NewEncoder(w).Encode(response)
	})

	mux.HandleFunc("/api/preview/", func(w http.ResponseWriter, r *http.Request) {
		label := strings.TrimPrefix(r.URL.Path, "/api/preview/")
		if label == "" {
			renderJSONError(w, http.StatusBadRequest, "no source label was provided")
			return
		}
		png, err := runner.PreviewFrame(label)
		if err != nil {
			renderJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	})

	mux.HandleFunc("/api/push", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			renderJSONError(w, http.StatusMethodNotAllowed, "that method is invalid for this endpoint")
			return
		}
		ok, message := runner.Push(true)
		if !ok {
			renderJSONError(w, http.StatusBadGateway, message)
			return
		}
		renderJSONMessage(w, message)
	})

	mux.HandleFunc("/api/history", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		results, err := store.RecentPushes(10)
		if err != nil {
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		json.NewEncoder(w).Encode(results)
	})

	mux.HandleFunc("/api/geocode", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		query := r.URL.Query().Get("q")
		if query == "" {
			renderJSONError(w, http.StatusBadRequest, "q was not provided")
			return
		}
		locations := sources.SearchLocation(r.Context(), utils.NewHTTPClient(device.DefaultTimeout), query, 5)
		json.NewEncoder(w).Encode(locations)
	})

	// External automations (say a calendar just changed) can force a refresh
	// and push without waiting for the next scheduled run.
	mux.HandleFunc("/api/webhook/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			renderJSONError(w, http.StatusMethodNotAllowed, "that method is invalid for this endpoint")
			return
		}
		if cfg.WebhookSecret == "" {
			renderJSONError(w, http.StatusServiceUnavailable, "this endpoint is not properly configured")
			return
		}
		signature := r.Header.Get("X-Hub-Signature-256")
		if signature == "" {
			renderJSONError(w, http.StatusUnauthorized, "no signature was provided")
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			renderJSONError(w, http.StatusBadRequest, "failed to read request body as part of signature validation")
			return
		}
		if err := hmacext.Validate(body, signature, cfg.WebhookSecret); err != nil {
			slog.With(slog.Any("error", err)).Error("Failed signature validation")
			renderJSONError(w, http.StatusUnauthorized, "signature failed validation")
			return
		}
		go func() {
			runner.RefreshSources()
			runner.Push(false)
		}()
		renderJSONMessage(w, "Refresh scheduled")
	})

	mux.HandleFunc("/events", events.Server.ServeHTTP)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"http://localhost:1313", "http://localhost:8080"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Origin, Content-Type, Accept"},
	})

	handler := c.Handler(mux)

	return handler
}
