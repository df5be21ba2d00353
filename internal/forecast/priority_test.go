package forecast

import (
	"testing"
	"time"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
)

func TestPriority(t *testing.T) {
	ref := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		days float64
		want int
	}{
		{-30, 1},
		{-0.5, 1},
		{0, 2},
		{6.9, 2},
		{7, 3},
		{13.99, 3},
		{14, 4},
		{20.5, 4},
		{21, 5},
		{120, 5},
	}

	for _, tt := range tests {
		if got := Priority(domain.AddDays(ref, tt.days), ref); got != tt.want {
			t.Errorf("%v days: expected priority %d, got %d", tt.days, tt.want, got)
		}
	}
}

func TestPriorityIsMonotonic(t *testing.T) {
	ref := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	prev := Priority(domain.AddDays(ref, -10), ref)
	for d := -10.0; d <= 40; d += 0.25 {
		got := Priority(domain.AddDays(ref, d), ref)
		if got < prev {
			t.Fatalf("priority decreased from %d to %d at %v days", prev, got, d)
		}
		prev = got
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		count int
		want  float64
	}{
		{0, 30}, {2, 30}, {3, 50}, {4, 50}, {5, 70}, {9, 70}, {10, 85}, {19, 85}, {20, 95}, {500, 95},
	}

	prev := 0.0
	for _, tt := range tests {
		got := Confidence(tt.count)
		if got != tt.want {
			t.Errorf("count %d: expected %v, got %v", tt.count, tt.want, got)
		}
		if got < prev {
			t.Errorf("confidence decreased at count %d", tt.count)
		}
		prev = got
	}
}
