package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	articleMarker = regexp.MustCompile(`(?:арт(?:икул)?\.?\s*)([A-Za-z0-9\-]+)`)
	articleRun    = regexp.MustCompile(`[A-Za-z0-9]{5,}`)
)

var dateLayouts = []string{
	"02.01.2006",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006",
	"01/02/2006 15:04:05",
	"1/2/2006",
	"1/2/2006 15:04:05",
}

// ParseNumber reads a decimal that may use a comma separator. Unparseable
// input yields 0.
func ParseNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseDeliveredQuantity sums "+"-joined partial deliveries such as "5+3+2".
func ParseDeliveredQuantity(s string) float64 {
	if strings.TrimSpace(s) == "" {
		return 0
	}
	if !strings.Contains(s, "+") {
		return ParseNumber(s)
	}

	var sum float64
	for _, part := range strings.Split(s, "+") {
		sum += ParseNumber(part)
	}
	return sum
}

// ParseDate reads a date in one of the supported layouts or as an Excel
// serial number.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	if serial, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// ExtractArticle finds an article code inside a product name, first after an
// "арт."/"артикул" marker, then as the first run of five or more letters and
// digits.
func ExtractArticle(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	if m := articleMarker.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return articleRun.FindString(name)
}
