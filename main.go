package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/hackadoodle/smalltv/config"
	"github.com/hackadoodle/smalltv/db"
	"github.com/hackadoodle/smalltv/device"
	"github.com/hackadoodle/smalltv/events"
	"github.com/hackadoodle/smalltv/jobs"
	"github.com/hackadoodle/smalltv/migrations"
	"github.com/hackadoodle/smalltv/render"
	"github.com/hackadoodle/smalltv/utils"
)

func main() {

	if err := godotenv.Load(); err != nil {
		fmt.Println(err)
	}

	configPath := utils.GetEnv("CONFIG_PATH", config.DefaultPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	// Seed a config file on first boot so there is something to edit.
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := cfg.Save(configPath); err != nil {
			fmt.Println(err)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.GetLogLevel(),
	}))
	slog.SetDefault(logger)

	if utils.GetEnv("RESET_DB", "0") == "1" {
		if err := os.Remove(cfg.DBPath); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}

	store, err := db.NewSqliteStore(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := store.ApplyMigrations(migrations.GetMigrations()); err != nil {
		slog.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	client := device.NewClient(cfg.DeviceIP, device.WithPort(cfg.DevicePort))

	renderer := render.NewRenderer(cfg.FontsDir)
	templates := render.NewLoader(cfg.TemplatesDir)

	runner := jobs.NewRunner(cfg, store, client, renderer, templates)
	jobScheduler := runner.SetupInBackground()

	if utils.GetEnv("BACKGROUND_JOBS_ENABLED", "true") == "true" {
		// Prime the tiles before the first scheduled run so the push job has
		// something to render immediately.
		go runner.RefreshSources()
		jobScheduler.StartAsync()
		slog.Info("Background jobs have started up in the background.")
	} else {
		slog.Info("Background jobs are disabled.")
	}

	events.Init()

	router := RegisterRoutes(http.NewServeMux(), cfg, client, store, runner)

	slog.Info(fmt.Sprintf("hackadoodle is running at http://localhost%s", cfg.HTTPAddr))

	if err := http.ListenAndServe(cfg.HTTPAddr, router); err != nil {
		fmt.Println(err)
		jobScheduler.Stop()
		os.Exit(1)
	}
}
