package analytics

import (
	"sort"
	"time"

	"github.com/arnold/lifesync-api/internal/clock"
	"github.com/arnold/lifesync-api/internal/models"
)

// Consecutive entry days may differ by up to this many days; the slack
// absorbs clock and timezone jitter.
const streakGapTolerance = 1.1

type StreakStats struct {
	Current int `json:"current"`
	// Longest is only reported while the journal is live, i.e. the latest
	// entry is from today or yesterday. Otherwise it is 0.
	Longest int `json:"longest"`
	// LongestEver is the longest run over the whole journal, live or not.
	LongestEver int `json:"longestEver"`
}

// Streaks computes journaling streaks as of now.
func Streaks(entries []models.JournalEntry, now time.Time) StreakStats {
	days := entryDays(entries, now.Location())
	if len(days) == 0 {
		return StreakStats{}
	}

	sorted := make([]string, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	stats := StreakStats{LongestEver: longestRun(sorted)}

	today := clock.DateKey(now)
	yesterday := clock.AddDays(today, -1)
	latest := sorted[len(sorted)-1]
	if latest != today && latest != yesterday {
		return stats
	}

	stats.Longest = stats.LongestEver
	cursor := today
	if !days[today] {
		cursor = yesterday
	}
	for days[cursor] {
		stats.Current++
		cursor = clock.AddDays(cursor, -1)
	}
	return stats
}

func longestRun(sortedDays []string) int {
	longest, run := 0, 1
	for i := 0; i+1 < len(sortedDays); i++ {
		a, errA := clock.ParseDay(sortedDays[i])
		b, errB := clock.ParseDay(sortedDays[i+1])
		if errA == nil && errB == nil && b.Sub(a).Hours()/24 <= streakGapTolerance {
			run++
			continue
		}
		longest = max(longest, run)
		run = 1
	}
	return max(longest, run)
}

// entryDays is the set of calendar days holding at least one entry.
func entryDays(entries []models.JournalEntry, loc *time.Location) map[string]bool {
	days := make(map[string]bool, len(entries))
	for i := range entries {
		days[entries[i].Day(loc)] = true
	}
	return days
}

// entryOn returns the first entry dated day, or nil. Entries are stored
// newest first, so this is the latest entry of that day.
func entryOn(entries []models.JournalEntry, day string, loc *time.Location) *models.JournalEntry {
	for i := range entries {
		if entries[i].Day(loc) == day {
			return &entries[i]
		}
	}
	return nil
}
