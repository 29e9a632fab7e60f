package jobs

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/gregdel/pushover"

	"github.com/hackadoodle/smalltv/events"
	"github.com/hackadoodle/smalltv/models"
	"github.com/hackadoodle/smalltv/render"
	"github.com/hackadoodle/smalltv/utils"
)

// alertThreshold is how many consecutive failed pushes trigger a Pushover
// alert. One alert per outage; the flag resets on the next success.
const alertThreshold = 3

// PushJob renders the current tiles and pushes them to the device, unless
// the rendered frames are identical to the last successful push.
func (r *Runner) PushJob() {
	r.Push(false)
}

// Push renders every ordered tile and sends the slideshow. When force is
// false an unchanged fingerprint skips the device entirely.
func (r *Runner) Push(force bool) (bool, string) {
	r.pushMu.Lock()
	defer r.pushMu.Unlock()

	frames, encoded := r.RenderFrames()
	if len(frames) == 0 {
		return false, "No tiles to push"
	}

	fingerprint := utils.Fingerprint(encoded)
	if !force && fingerprint == r.store.LastFingerprint() {
		slog.Debug("Slideshow unchanged, skipping push", slog.String("fingerprint", fingerprint))
		return true, "Slideshow unchanged"
	}

	ok, message := r.client.SendAll(frames, r.cfg.Interval, func(uploaded, total int) {
		events.PublishProgress(uploaded, total)
	})

	record := models.PushRecord{
		CreatedAt:   time.Now().UTC(),
		ImageCount:  len(frames),
		Interval:    r.cfg.Interval,
		Fingerprint: fingerprint,
		Success:     ok,
		Message:     message,
	}
	if err := r.store.RecordPush(record); err != nil {
		slog.Error("Failed to record push", slog.String("error", err.Error()))
	}

	if ok {
		events.PublishDevice("push", message)
		r.failureRun = 0
		r.alerted = false
		slog.Info("Pushed slideshow", slog.Int("images", len(frames)), slog.String("fingerprint", fingerprint))
	} else {
		events.PublishDevice("push_failed", message)
		r.failureRun++
		slog.Error("Push failed", slog.String("message", message), slog.Int("consecutive", r.failureRun))
		r.maybeAlert(message)
	}

	return ok, message
}

// RenderFrames renders one frame per ordered tile. Tiles whose source has no
// cached items yet are skipped. The encoded PNG bytes are returned alongside
// for fingerprinting.
func (r *Runner) RenderFrames() ([]image.Image, [][]byte) {
	var frames []image.Image
	var encoded [][]byte
	for _, sc := range r.cfg.OrderedSources() {
		items := r.Items(sc.Label)
		if len(items) == 0 {
			continue
		}
		tpl, err := r.templates.Load(sc.Template)
		if err != nil {
			slog.With(slog.String("source", sc.Label), slog.String("template", sc.Template)).
				Warn("Skipping tile with missing template", slog.String("error", err.Error()))
			continue
		}
		frame := r.renderer.Render(tpl, items[0])
		png, err := render.EncodePNG(frame)
		if err != nil {
			slog.With(slog.String("source", sc.Label)).Warn("Skipping tile that failed to encode", slog.String("error", err.Error()))
			continue
		}
		frames = append(frames, frame)
		encoded = append(encoded, png)
	}
	return frames, encoded
}

// PreviewFrame renders a single tile by source label without touching the
// device.
func (r *Runner) PreviewFrame(label string) ([]byte, error) {
	for _, sc := range r.cfg.Sources {
		if sc.Label != label {
			continue
		}
		items := r.Items(sc.Label)
		if len(items) == 0 {
			return nil, fmt.Errorf("no items cached for source %q yet", label)
		}
		tpl, err := r.templates.Load(sc.Template)
		if err != nil {
			return nil, err
		}
		return r.renderer.RenderPNG(tpl, items[0])
	}
	return nil, fmt.Errorf("no source configured with label %q", label)
}

func (r *Runner) maybeAlert(detail string) {
	if r.failureRun < alertThreshold || r.alerted {
		return
	}
	if r.cfg.PushoverToken == "" || r.cfg.PushoverRecipient == "" {
		return
	}
	pushoverApp := pushover.New(r.cfg.PushoverToken)
	recipient := pushover.NewRecipient(r.cfg.PushoverRecipient)
	message := &pushover.Message{
		Message:    fmt.Sprintf("%d pushes in a row have failed. Last error: %s", r.failureRun, detail),
		Title:      "SmallTV is unreachable",
		Priority:   pushover.PriorityHigh,
		Timestamp:  time.Now().Unix(),
		DeviceName: "hackadoodle",
	}
	if _, err := pushoverApp.SendMessage(message, recipient); err != nil {
		slog.Error("Failed to send Pushover alert", slog.String("error", err.Error()))
		return
	}
	r.alerted = true
}
