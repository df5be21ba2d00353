// backend-go/internal/domain/order.go
package domain

import (
	"sort"
	"strings"
	"time"
)

// OrderLine is a single historical purchase-order position as read from the
// source workbook.
type OrderLine struct {
	OrderDate         time.Time  `json:"OrderDate" db:"order_date"`
	OrderNumber       string     `json:"OrderNumber" db:"order_number"`
	PositionNumber    string     `json:"PositionNumber" db:"position_number"`
	ProductName       string     `json:"ProductName" db:"product_name"`
	ArticleNumber     string     `json:"ArticleNumber" db:"article_number"`
	OrderedQuantity   float64    `json:"OrderedQuantity" db:"ordered_quantity"`
	DeliveredQuantity float64    `json:"DeliveredQuantity" db:"delivered_quantity"`
	DeliveryDate      *time.Time `json:"DeliveryDate,omitempty" db:"delivery_date"`
	Notes             string     `json:"Notes" db:"notes"`
}

// HasArticle reports whether the line carries a non-blank article code.
func (l OrderLine) HasArticle() bool {
	return strings.TrimSpace(l.ArticleNumber) != ""
}

// HasName reports whether the line carries a non-blank product name.
func (l OrderLine) HasName() bool {
	return strings.TrimSpace(l.ProductName) != ""
}

// LeadDays returns the number of days between ordering and delivery.
func (l OrderLine) LeadDays() (float64, bool) {
	if l.DeliveryDate == nil {
		return 0, false
	}
	return DaysBetween(l.OrderDate, *l.DeliveryDate), true
}

// NormalizeArticle returns the grouping key for an article code.
func NormalizeArticle(article string) string {
	return strings.ToUpper(strings.TrimSpace(article))
}

// SortByOrderDate returns a copy of lines ordered by order date. Lines with
// equal dates keep their relative order.
func SortByOrderDate(lines []OrderLine) []OrderLine {
	sorted := make([]OrderLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OrderDate.Before(sorted[j].OrderDate)
	})
	return sorted
}

// DaysBetween returns the fractional number of days from a to b.
func DaysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / 24
}

// AddDays shifts t by a fractional number of days.
func AddDays(t time.Time, days float64) time.Time {
	return t.Add(time.Duration(days * float64(24*time.Hour)))
}

// CalendarDay truncates t to midnight in its own location.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
