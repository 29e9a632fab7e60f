package models

import (
	"fmt"
	"time"
)

// DataItem is the normalized unit that flows from a source into the renderer.
// One item becomes one rendered frame. Anything without a first class field
// (weather codes, wind strings and so on) lives in Meta.
type DataItem struct {
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle"`
	Value    string         `json:"value"`
	// Date is either a time.Time or a raw string, kept un-normalized so the
	// date filters can branch on the native type.
	Date     any            `json:"date,omitempty"`
	Image    string         `json:"image,omitempty"`
	Location string         `json:"location,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// Get looks up a field by name, falling back to Meta and then to fallback.
// It never fails. time.Time values are returned as-is so filters can work
// with the actual timestamp rather than a stringified copy.
func (d DataItem) Get(field string, fallback string) any {
	var val any
	switch field {
	case "title":
		val = d.Title
	case "subtitle":
		val = d.Subtitle
	case "value":
		val = d.Value
	case "date":
		val = d.Date
	case "image":
		val = d.Image
	case "location":
		val = d.Location
	default:
		if d.Meta != nil {
			val = d.Meta[field]
		}
	}
	if val == nil || val == "" {
		if d.Meta != nil {
			if mv, ok := d.Meta[field]; ok && mv != nil {
				val = mv
			}
		}
	}
	if val == nil || val == "" {
		return fallback
	}
	if ts, ok := val.(time.Time); ok {
		return ts
	}
	if s, ok := val.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", val)
}
