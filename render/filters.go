package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Filter specs are a name with an optional single parenthesized argument:
// "upper", "truncate(20)", "date_short", "currency". Unknown names are
// silently skipped so templates authored against a newer build keep working.
var filterPattern = regexp.MustCompile(`^(\w+)(?:\((.+)\))?$`)

// dateLayouts are tried in order by date_short when the value arrives as
// text rather than a native timestamp.
var dateLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
}

// ApplyFilters runs value through the filter chain in order and returns the
// final text. Filters never fail; an unparseable input degrades to
// passthrough.
func ApplyFilters(value any, specs []string) string {
	cur := value
	for _, spec := range specs {
		m := filterPattern.FindStringSubmatch(strings.TrimSpace(spec))
		if m == nil {
			continue
		}
		name, arg := m[1], m[2]
		switch name {
		case "upper":
			cur = strings.ToUpper(stringify(cur))
		case "lower":
			cur = strings.ToLower(stringify(cur))
		case "truncate":
			cur = truncate(stringify(cur), arg)
		case "date_short":
			cur = dateShort(cur)
		case "currency":
			cur = currency(stringify(cur))
		}
	}
	return stringify(cur)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", t)
	}
}

func truncate(s, arg string) string {
	n := 30
	if arg != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(arg)); err == nil && parsed >= 0 {
			n = parsed
		}
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

// dateShort renders a date as e.g. "Feb 21". Native timestamps skip string
// parsing entirely; text values are tried against each known layout and
// returned unchanged if none match.
func dateShort(v any) string {
	if ts, ok := v.(time.Time); ok {
		return ts.Format("Jan 2")
	}
	clean := strings.TrimSpace(stringify(v))
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, clean); err == nil {
			return ts.Format("Jan 2")
		}
	}
	return stringify(v)
}

// currency formats a numeric string as dollars: "1234.5" becomes "$1,234.50".
func currency(s string) string {
	cleaned := strings.NewReplacer(",", "", "$", "").Replace(s)
	f, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return s
	}
	neg := f < 0
	if neg {
		f = -f
	}
	whole := strconv.FormatFloat(f, 'f', 2, 64)
	dot := strings.Index(whole, ".")
	intPart, fracPart := whole[:dot], whole[dot+1:]

	var grouped strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(d)
	}
	out := "$" + grouped.String() + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
