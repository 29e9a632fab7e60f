package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/hackadoodle/smalltv/models"
)

// Renderer composes a DataItem and a Template into a raster image. Rendering
// is synchronous, CPU-bound and idempotent: callers may re-render the same
// pair every refresh tick and simply pay the (tiny) cost again.
type Renderer struct {
	fonts *Registry
}

func NewRenderer(fontsDir string) *Renderer {
	return &Renderer{fonts: NewRegistry(fontsDir)}
}

// Fonts exposes the registry, mainly for badge helpers and tests.
func (r *Renderer) Fonts() *Registry {
	return r.fonts
}

// Render produces a template.Width × template.Height image from item. A bad
// zone is logged and skipped; one malformed zone never costs the rest of the
// frame.
func (r *Renderer) Render(tpl *Template, item models.DataItem) *image.RGBA {
	img := r.background(tpl)

	for i := range tpl.Zones {
		zone := &tpl.Zones[i]
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("Zone draw failed",
						slog.String("zone", zone.Field),
						slog.String("template", tpl.Name),
						slog.String("stack", fmt.Sprintf("%v", rec)),
					)
				}
			}()
			r.drawZone(img, zone, item, tpl.Width)
		}()
	}

	return img
}

// RenderPNG renders and encodes losslessly, for previews.
func (r *Renderer) RenderPNG(tpl *Template, item models.DataItem) ([]byte, error) {
	return EncodePNG(r.Render(tpl, item))
}

// EncodePNG losslessly encodes a frame that has already been rendered.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) background(tpl *Template) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, tpl.Width, tpl.Height))
	bg := strings.TrimSpace(tpl.Background)

	if !strings.HasPrefix(bg, "#") {
		if f, err := os.Open(bg); err == nil {
			defer f.Close()
			if decoded, _, err := image.Decode(f); err == nil {
				xdraw.CatmullRom.Scale(img, img.Bounds(), decoded, decoded.Bounds(), xdraw.Over, nil)
				return img
			}
		}
	}

	fill, err := ParseHexColor(bg)
	if err != nil {
		fill = color.RGBA{A: 255} // black
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)
	return img
}

func (r *Renderer) drawZone(img *image.RGBA, zone *Zone, item models.DataItem, canvasWidth int) {
	// Icon zones draw shapes, not text
	if zone.Type == "weather_icon" {
		code := toInt(item.Meta["wmo_code"], 0)
		size := zone.Size
		if size <= 0 {
			size = 64
		}
		DrawWeatherIcon(img, code, zone.X, zone.Y, size)
		return
	}

	raw := resolveField(item, zone.Field)

	text := ApplyFilters(raw, zone.Filters)
	if text == "" {
		return
	}

	face := r.fonts.Resolve(zone.Font)

	if zone.MaxWidth > 0 {
		text = fitText(face, text, zone.MaxWidth)
	}

	x := zone.X
	if zone.Align == "center" || zone.Align == "right" {
		w := textWidth(face, text)
		maxW := zone.MaxWidth
		if maxW <= 0 {
			maxW = canvasWidth
		}
		if zone.Align == "center" {
			x = zone.X + (maxW-w)/2
		} else {
			x = zone.X + maxW - w
		}
	}

	col, err := ParseHexColor(zone.Color)
	if err != nil {
		col = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}

	drawString(img, face, text, x, zone.Y, col)
}

// resolveField reads a zone's bound value. Dotted meta paths go straight to
// the meta map; everything else goes through the item's generic lookup, which
// keeps native timestamps intact for the date filters.
func resolveField(item models.DataItem, field string) any {
	if key, ok := strings.CutPrefix(field, "meta."); ok {
		if item.Meta == nil {
			return ""
		}
		v, ok := item.Meta[key]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprintf("%v", v)
	}
	return item.Get(field, "")
}

// fitText trims one character at a time from the end, appending an ellipsis,
// until the rendered width fits. Cost is bounded by the string length, which
// is fine at 240px. If even one character does not fit, just the ellipsis
// remains.
func fitText(face font.Face, text string, maxWidth int) string {
	if textWidth(face, text) <= maxWidth {
		return text
	}
	runes := []rune(text)
	for i := len(runes); i > 0; i-- {
		candidate := string(runes[:i]) + "…"
		if textWidth(face, candidate) <= maxWidth {
			return candidate
		}
	}
	return "…"
}

func textWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// drawString paints text with (x, y) as the top-left corner, converting to
// the baseline origin the font machinery expects.
func drawString(img *image.RGBA, face font.Face, s string, x, y int, col color.Color) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

func toInt(v any, fallback int) int {
	switch t := v.(type) {
	case nil:
		return fallback
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
		return fallback
	default:
		return fallback
	}
}
