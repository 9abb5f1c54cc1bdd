package models

import (
	"testing"
	"time"
)

func TestCounterElapsed(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := Counter{StartedAt: start}

	tests := []struct {
		name     string
		now      time.Time
		wantDays int
		wantZero bool
	}{
		{"same instant", start, 0, true},
		{"before start", start.Add(-time.Hour), 0, true},
		{"just under a day", start.Add(23 * time.Hour), 0, false},
		{"three days", start.Add(72*time.Hour + time.Minute), 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Days(tt.now); got != tt.wantDays {
				t.Errorf("Days() = %d, want %d", got, tt.wantDays)
			}
			if (c.Elapsed(tt.now) == 0) != tt.wantZero {
				t.Errorf("Elapsed() = %v", c.Elapsed(tt.now))
			}
		})
	}
}

func TestSubcategoryIsCustom(t *testing.T) {
	if (Subcategory{Name: "Meditation"}).IsCustom() {
		t.Error("catalog subcategory reported as custom")
	}
	if !(Subcategory{Name: "Knitting", OwnerID: "u1"}).IsCustom() {
		t.Error("owned subcategory not reported as custom")
	}
}
