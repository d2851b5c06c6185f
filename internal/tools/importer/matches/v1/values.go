package matchimporter

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// dateLayouts lists the date renderings seen in match exports, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/06 15:04",
	"1/2/06",
}

var championCaser = cases.Lower(language.Und)

// championID derives the stable champion key from a display name: lower case
// with spaces replaced by underscores ("Lee Sin" -> "lee_sin").
func championID(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.ReplaceAll(championCaser.String(name), " ", "_")
}

// parseCount reads a non-negative counter. Blank, negative or non-numeric
// values become 0; whole floats such as "3.0" are accepted.
func parseCount(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if n, err := strconv.Atoi(value); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// parseDate reads a game date from a text layout or an Excel serial number.
// Unparsable values yield nil.
func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			parsed = parsed.UTC()
			return &parsed
		}
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		if parsed, err := excelize.ExcelDateToTime(serial, false); err == nil {
			parsed = parsed.UTC()
			return &parsed
		}
	}
	return nil
}

// cleanID normalizes identifiers read from spreadsheets, where numeric IDs
// may be rendered as floats ("12.0").
func cleanID(value string) string {
	value = strings.TrimSpace(value)
	if strings.HasSuffix(value, ".0") {
		if _, err := strconv.ParseInt(strings.TrimSuffix(value, ".0"), 10, 64); err == nil {
			return strings.TrimSuffix(value, ".0")
		}
	}
	return value
}
