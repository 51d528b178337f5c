package streak

import "time"

// Result describes a user's consecutive-day activity runs inside the
// inspected window.
type Result struct {
	Current      int        `json:"current_streak"`
	Longest      int        `json:"longest_streak"`
	StartDate    *time.Time `json:"streak_start_date,omitempty"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

// Compute walks activity timestamps (any order) as UTC calendar days.
// A one-day gap between consecutive days extends the run, repeated activity
// on the same day neither extends nor breaks it, and a larger gap resets
// the run. Current is the run ending at the most recent day; Longest is the
// maximum run seen. Streaks longer than the supplied window are reported as
// the window max, since the history query is bounded.
func Compute(timestamps []time.Time) Result {
	if len(timestamps) == 0 {
		return Result{}
	}

	days := uniqueDaysAscending(timestamps)

	longest := 1
	run := 1
	runStart := days[0]
	currentStart := days[0]

	for i := 1; i < len(days); i++ {
		gap := int(days[i].Sub(days[i-1]).Hours() / 24)
		if gap == 1 {
			run++
		} else {
			run = 1
			runStart = days[i]
		}
		if run > longest {
			longest = run
		}
		currentStart = runStart
	}

	last := days[len(days)-1]
	return Result{
		Current:      run,
		Longest:      longest,
		StartDate:    &currentStart,
		LastActivity: &last,
	}
}

func uniqueDaysAscending(timestamps []time.Time) []time.Time {
	seen := make(map[time.Time]bool, len(timestamps))
	var days []time.Time
	for _, ts := range timestamps {
		day := truncateToDay(ts)
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	// Insertion sort: windows are small (30 entries) and usually nearly
	// ordered already.
	for i := 1; i < len(days); i++ {
		for j := i; j > 0 && days[j].Before(days[j-1]); j-- {
			days[j], days[j-1] = days[j-1], days[j]
		}
	}
	return days
}

func truncateToDay(ts time.Time) time.Time {
	u := ts.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
