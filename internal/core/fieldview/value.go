// Package fieldview renders backend records under field-level authorization.
//
// The backend omits JSON keys the caller may not see. A missing key, or a key
// holding null, is rendered as a placeholder and is never an error.
package fieldview

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Placeholder is shown for redacted or unrenderable values.
const Placeholder = "—"

// Record is one decoded JSON object from the backend.
type Record map[string]any

// ValueType selects the formatting applied to a field.
type ValueType string

const (
	TypeText     ValueType = "text"
	TypeDate     ValueType = "date"
	TypeDateTime ValueType = "datetime"
	TypeCurrency ValueType = "currency"
	TypeNumber   ValueType = "number"
	TypeBadge    ValueType = "badge"
)

// Options controls DisplayValue. Zero values mean text, the default
// placeholder and UTC.
type Options struct {
	Type        ValueType
	Placeholder string
	Location    *time.Location
}

const (
	dateLayout     = "1/2/2006"
	dateTimeLayout = "1/2/2006, 3:04:05 PM"
)

// Accepted timestamp layouts, most specific first.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var printer = message.NewPrinter(language.AmericanEnglish)

// IsFieldVisible reports whether field is present in rec with a non-null value.
func IsFieldVisible(rec Record, field string) bool {
	if rec == nil {
		return false
	}
	v, ok := rec[field]
	return ok && v != nil
}

// SafeFieldValue returns the value of field, or def when it is not visible.
func SafeFieldValue(rec Record, field string, def any) any {
	if !IsFieldVisible(rec, field) {
		return def
	}
	return rec[field]
}

// DisplayValue formats field for display. Values that are missing, null or
// of the wrong shape for opts.Type render as the placeholder.
func DisplayValue(rec Record, field string, opts Options) string {
	placeholder := opts.Placeholder
	if placeholder == "" {
		placeholder = Placeholder
	}
	if !IsFieldVisible(rec, field) {
		return placeholder
	}

	s, ok := formatValue(rec[field], opts)
	if !ok {
		return placeholder
	}
	return s
}

func formatValue(v any, opts Options) (string, bool) {
	switch opts.Type {
	case TypeDate, TypeDateTime:
		t, ok := parseTime(v)
		if !ok {
			return "", false
		}
		loc := opts.Location
		if loc == nil {
			loc = time.UTC
		}
		if opts.Type == TypeDate {
			return t.In(loc).Format(dateLayout), true
		}
		return t.In(loc).Format(dateTimeLayout), true

	case TypeCurrency:
		f, ok := toFloat(v)
		if !ok {
			return "", false
		}
		return FormatCurrency(f), true

	case TypeNumber:
		f, ok := toFloat(v)
		if !ok {
			return "", false
		}
		return FormatNumber(f), true

	default:
		return stringify(v), true
	}
}

// FormatCurrency renders f as en-US dollars, e.g. $1,234.50 or -$3.10.
func FormatCurrency(f float64) string {
	sign := ""
	if f < 0 {
		sign = "-"
		f = math.Abs(f)
	}
	return sign + "$" + printer.Sprint(number.Decimal(f, number.Scale(2)))
}

// FormatNumber renders f with en-US grouping and up to three fraction digits.
func FormatNumber(f float64) string {
	return printer.Sprint(number.Decimal(f))
}

// Only numbers format as currency or number; numeric strings do not.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func parseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool, json.Number, int, int64:
		return fmt.Sprint(t)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
