package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Zone is one positioned, styled drawing instruction within a template.
// Zones draw in declaration order; later zones draw over earlier ones.
type Zone struct {
	// Field names the DataItem field to render. Dotted "meta.<key>" paths
	// read the meta map directly.
	Field string `json:"field"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Font  string `json:"font"`
	Color string `json:"color"`
	// Filters are applied in order, e.g. ["upper", "truncate(20)"].
	Filters  []string `json:"filters"`
	MaxWidth int      `json:"max_width"`
	// Align is left, center or right.
	Align string `json:"align"`
	// LineHeight is reserved for future multi-line support.
	LineHeight int `json:"line_height"`
	// Type is "text" or "weather_icon". Icon zones ignore field, filters,
	// font and color and read meta.wmo_code instead.
	Type string `json:"type"`
	// Size is the icon bounding box in pixels for weather_icon zones.
	Size int `json:"size"`
}

// Template is a named, reusable image layout binding DataItem fields to
// drawable zones.
type Template struct {
	Name       string `json:"name"`
	// Background is a hex color string or a path to a background image.
	Background string `json:"background"`
	Zones      []Zone `json:"zones"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

func (t *Template) applyDefaults() {
	if t.Name == "" {
		t.Name = "unnamed"
	}
	if t.Background == "" {
		t.Background = "#000000"
	}
	if t.Width <= 0 {
		t.Width = 240
	}
	if t.Height <= 0 {
		t.Height = 240
	}
	for i := range t.Zones {
		z := &t.Zones[i]
		if z.Font == "" {
			z.Font = "regular14"
		}
		if z.Color == "" {
			z.Color = "#ffffff"
		}
		if z.Align == "" {
			z.Align = "left"
		}
		if z.Type == "" {
			z.Type = "text"
		}
	}
}

// Loader reads template JSON files from a directory.
type Loader struct {
	dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load reads a template by name (filename without .json).
func (l *Loader) Load(name string) (*Template, error) {
	return l.LoadFile(filepath.Join(l.dir, name+".json"))
}

// LoadFile reads a template from an explicit file path.
func (l *Loader) LoadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}
	t.applyDefaults()
	return &t, nil
}

// List returns the names of all templates in the directory.
func (l *Loader) List() []string {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	return names
}
