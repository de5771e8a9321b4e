package analytics

import (
	"fmt"
	"time"

	"github.com/arnold/lifesync-api/internal/clock"
	"github.com/arnold/lifesync-api/internal/models"
)

type CalendarDay struct {
	Day      int    `json:"day"`
	Date     string `json:"date"`
	HasEntry bool   `json:"hasEntry"`
	IsToday  bool   `json:"isToday"`
}

// CalendarMonth is a Monday-first month grid. LeadingBlanks is the number of
// empty cells before day 1.
type CalendarMonth struct {
	Year          int           `json:"year"`
	Month         int           `json:"month"`
	LeadingBlanks int           `json:"leadingBlanks"`
	Days          []CalendarDay `json:"days"`
}

// Calendar marks which days of the month carry at least one journal entry.
func Calendar(entries []models.JournalEntry, year int, month time.Month, now time.Time) (CalendarMonth, error) {
	if month < time.January || month > time.December {
		return CalendarMonth{}, fmt.Errorf("month %d out of range", month)
	}

	loc := now.Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	have := entryDays(entries, loc)
	today := clock.DateKey(now)

	blanks := int(first.Weekday()) - 1
	if first.Weekday() == time.Sunday {
		blanks = 6
	}

	out := CalendarMonth{
		Year:          year,
		Month:         int(month),
		LeadingBlanks: blanks,
		Days:          make([]CalendarDay, 0, daysInMonth),
	}
	for d := 1; d <= daysInMonth; d++ {
		key := fmt.Sprintf("%04d-%02d-%02d", year, int(month), d)
		out.Days = append(out.Days, CalendarDay{
			Day:      d,
			Date:     key,
			HasEntry: have[key],
			IsToday:  key == today,
		})
	}
	return out, nil
}
