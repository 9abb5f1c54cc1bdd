// Package streak derives consecutive-day streaks from progress days.
package streak

import (
	"time"

	"github.com/julianstephens/habitd/internal/constants"
)

// Current returns the number of consecutive calendar days ending at ref
// that appear in days. Days after ref and malformed days are ignored, and
// input order does not matter.
func Current(days []string, ref string) int {
	refDay, err := time.Parse(constants.DateFormat, ref)
	if err != nil {
		return 0
	}

	seen := make(map[string]bool, len(days))
	for _, d := range days {
		t, err := time.Parse(constants.DateFormat, d)
		if err != nil || t.After(refDay) {
			continue
		}
		seen[t.Format(constants.DateFormat)] = true
	}

	count := 0
	for cursor := refDay; seen[cursor.Format(constants.DateFormat)]; cursor = cursor.AddDate(0, 0, -1) {
		count++
	}
	return count
}

// Reached reports whether a streak satisfies a target duration
func Reached(streak, durationDays int) bool {
	return durationDays > 0 && streak >= durationDays
}
