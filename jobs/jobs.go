package jobs

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/hackadoodle/smalltv/config"
	"github.com/hackadoodle/smalltv/db"
	"github.com/hackadoodle/smalltv/device"
	"github.com/hackadoodle/smalltv/models"
	"github.com/hackadoodle/smalltv/render"
	"github.com/hackadoodle/smalltv/sources"
	"github.com/hackadoodle/smalltv/utils"
)

const fetchTimeout = 30 * time.Second

// Runner owns the background loop: refresh each configured source on a
// schedule, render the resulting tiles, and push the slideshow to the device
// when the rendered frames change.
type Runner struct {
	cfg       *config.Config
	store     db.Store
	client    *device.Client
	renderer  *render.Renderer
	templates *render.Loader
	http      *http.Client

	mu    sync.Mutex
	tiles map[string][]models.DataItem

	// pushMu serialises scheduled pushes with forced pushes from the API.
	pushMu     sync.Mutex
	failureRun int
	alerted    bool
}

func NewRunner(cfg *config.Config, store db.Store, client *device.Client, renderer *render.Renderer, templates *render.Loader) *Runner {
	return &Runner{
		cfg:       cfg,
		store:     store,
		client:    client,
		renderer:  renderer,
		templates: templates,
		http:      utils.NewHTTPClient(fetchTimeout),
		tiles:     map[string][]models.DataItem{},
	}
}

func (r *Runner) SetupInBackground() *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)

	s.Every(r.cfg.RefreshSeconds).Seconds().Do(r.RefreshSources)
	s.Every(r.cfg.PushSeconds).Seconds().Do(r.PushJob)

	slog.Info("Jobs scheduled. Scheduler not running yet.")

	return s
}

// RefreshSources fetches every configured source and replaces its cached
// items. A failing source keeps its previous items so one flaky API does not
// blank out a tile.
func (r *Runner) RefreshSources() {
	runID := uuid.NewString()
	logger := slog.With(slog.String("run_id", runID))

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	for _, sc := range r.cfg.Sources {
		src, err := sources.FromConfig(sc, r.http)
		if err != nil {
			logger.With(slog.String("source", sc.Label)).Error("Skipping unknown source", slog.String("error", err.Error()))
			continue
		}
		items, err := sources.Items(ctx, src)
		if err != nil {
			logger.With(slog.String("source", sc.Label)).Warn("Source refresh failed, keeping stale items", slog.String("error", err.Error()))
			continue
		}
		r.mu.Lock()
		r.tiles[sc.Label] = items
		r.mu.Unlock()
		logger.With(slog.String("source", sc.Label)).Debug("Refreshed source", slog.Int("items", len(items)))
	}
}

// Items returns the cached items for one source label.
func (r *Runner) Items(label string) []models.DataItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tiles[label]
}
