package services

import (
	"slices"
	"time"

	"github.com/OraComigo/models"
)

// ComputeStreak counts consecutive calendar days with a history entry, walking
// back from today. A day counts when it has any entry at all. The chain is
// broken when the most recent entry is more than one day before today.
// Unparseable keys and dates after today are ignored.
func ComputeStreak(history map[string]models.DayCompletion, today string) int {
	todayDate, err := time.Parse(DateLayout, today)
	if err != nil {
		return 0
	}

	dates := make([]time.Time, 0, len(history))
	for key := range history {
		d, err := time.Parse(DateLayout, key)
		if err != nil || d.After(todayDate) {
			continue
		}
		dates = append(dates, d)
	}
	if len(dates) == 0 {
		return 0
	}

	slices.SortFunc(dates, func(a, b time.Time) int { return b.Compare(a) })

	if daysBetween(dates[0], todayDate) > 1 {
		return 0
	}

	streak := 1
	for i := 1; i < len(dates); i++ {
		if daysBetween(dates[i], dates[i-1]) > 1 {
			break
		}
		streak++
	}
	return streak
}

// daysBetween expects UTC midnights as produced by time.Parse(DateLayout).
func daysBetween(earlier, later time.Time) int {
	return int(later.Sub(earlier).Hours() / 24)
}
