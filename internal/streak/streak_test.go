package streak

import "testing"

func TestCurrent(t *testing.T) {
	const today = "2024-03-01"

	tests := []struct {
		name string
		days []string
		want int
	}{
		{"no records", nil, 0},
		{"only today", []string{"2024-03-01"}, 1},
		{"three consecutive", []string{"2024-03-01", "2024-02-29", "2024-02-28"}, 3},
		{"gap after today", []string{"2024-03-01", "2024-02-28"}, 1},
		{"yesterday only", []string{"2024-02-29"}, 0},
		{"unordered input", []string{"2024-02-28", "2024-03-01", "2024-02-29"}, 3},
		{"future day ignored", []string{"2024-03-02", "2024-03-01", "2024-02-29"}, 2},
		{"only future", []string{"2024-03-05"}, 0},
		{"duplicates", []string{"2024-03-01", "2024-03-01", "2024-02-29"}, 2},
		{"malformed skipped", []string{"2024-03-01", "yesterday", "2024-02-29"}, 2},
		{"across year", []string{"2024-01-01", "2023-12-31", "2023-12-30"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Current(tt.days, today); got != tt.want {
				t.Errorf("Current() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCurrentAcrossYearBoundary(t *testing.T) {
	days := []string{"2024-01-01", "2023-12-31", "2023-12-30"}
	if got := Current(days, "2024-01-01"); got != 3 {
		t.Errorf("Current() = %d, want 3", got)
	}
}

func TestCurrentInvalidReference(t *testing.T) {
	if got := Current([]string{"2024-03-01"}, "03/01/2024"); got != 0 {
		t.Errorf("Current() with malformed ref = %d, want 0", got)
	}
}

func TestReached(t *testing.T) {
	tests := []struct {
		streak, duration int
		want             bool
	}{
		{2, 3, false},
		{3, 3, true},
		{4, 3, true},
		{0, 0, false},
	}
	for _, tt := range tests {
		if got := Reached(tt.streak, tt.duration); got != tt.want {
			t.Errorf("Reached(%d, %d) = %v, want %v", tt.streak, tt.duration, got, tt.want)
		}
	}
}
