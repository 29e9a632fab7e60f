package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hackadoodle/smalltv/models"
)

// JsonSource loads DataItems from a JSON URL or local file.
//
// The simple case is a root-level array of objects. For data buried inside a
// response envelope, JSONPath drills down with a dot-separated path
// ("data.events"). FieldMap remaps DataItem field names to JSON keys when
// they differ ({"title": "summary"}); unmapped fields match by name and
// everything left over lands in meta. A single object is wrapped in a
// one-element list.
type JsonSource struct {
	URLOrPath string
	JSONPath  string
	// FieldMap maps DataItem field names to JSON key names.
	FieldMap map[string]string
	Headers  map[string]string
	Client   *http.Client
}

func (s *JsonSource) Fetch(ctx context.Context) (any, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return fetchURLOrFile(ctx, client, s.URLOrPath, s.Headers)
}

func (s *JsonSource) Parse(raw any) []models.DataItem {
	data, ok := raw.([]byte)
	if !ok {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		slog.Warn("JSON source parse error", slog.String("stack", err.Error()))
		return nil
	}

	if s.JSONPath != "" {
		decoded = dig(decoded, s.JSONPath)
		if decoded == nil {
			slog.Warn("JSON source path not found", slog.String("json_path", s.JSONPath))
			return nil
		}
	}

	var list []any
	switch v := decoded.(type) {
	case []any:
		list = v
	case map[string]any:
		list = []any{v}
	default:
		slog.Warn("JSON source expected list or object", slog.String("got", fmt.Sprintf("%T", decoded)))
		return nil
	}

	var items []models.DataItem
	for i, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			slog.Warn("JSON source skipping non-object item", slog.Int("index", i))
			continue
		}
		items = append(items, s.mapToItem(obj))
	}
	return items
}

// dig traverses a dot-separated path into nested objects.
func dig(data any, path string) any {
	current := data
	for _, key := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = obj[key]
		if current == nil {
			return nil
		}
	}
	return current
}

func (s *JsonSource) mapToItem(obj map[string]any) models.DataItem {
	knownFields := []string{"title", "subtitle", "value", "date", "image", "location"}

	resolved := map[string]any{}
	for _, itemField := range knownFields {
		if jsonKey, ok := s.FieldMap[itemField]; ok {
			if v, exists := obj[jsonKey]; exists {
				resolved[itemField] = v
			}
		}
	}
	for _, field := range knownFields {
		if _, done := resolved[field]; done {
			continue
		}
		if v, exists := obj[field]; exists {
			resolved[field] = v
		}
	}

	mappedKeys := map[string]bool{}
	for _, jsonKey := range s.FieldMap {
		mappedKeys[jsonKey] = true
	}
	known := map[string]bool{}
	for _, f := range knownFields {
		known[f] = true
	}
	meta := map[string]any{}
	for k, v := range obj {
		if !known[k] && !mappedKeys[k] {
			meta[k] = v
		}
	}

	return models.DataItem{
		Title:    asString(resolved["title"]),
		Subtitle: asString(resolved["subtitle"]),
		Value:    asString(resolved["value"]),
		Date:     resolved["date"],
		Image:    asString(resolved["image"]),
		Location: asString(resolved["location"]),
		Meta:     meta,
	}
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
