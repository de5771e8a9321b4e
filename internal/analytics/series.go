package analytics

import (
	"math"
	"time"

	"github.com/arnold/lifesync-api/internal/clock"
	"github.com/arnold/lifesync-api/internal/models"
)

const (
	DefaultSeriesDays   = 14
	DefaultWellnessDays = 10
	maxSeriesDays       = 366
)

type SeriesOptions struct {
	Days     int    `query:"days"`
	GoalID   string `query:"goalId"`
	WithMood bool   `query:"mood"`
}

// SeriesPoint is one day of the progress chart. Value is nil when nothing is
// known about that day.
type SeriesPoint struct {
	Date  string `json:"date"`
	Value *int   `json:"value"`
	Mood  *int   `json:"mood,omitempty"`
}

// ProgressSeries returns daily-quota completion percentages for the last
// opts.Days days ending today, either averaged over all goals or for a
// single goal.
func ProgressSeries(goals []models.Goal, entries []models.JournalEntry, now time.Time, opts SeriesOptions) []SeriesPoint {
	days := opts.Days
	if days <= 0 {
		days = DefaultSeriesDays
	}
	days = min(days, maxSeriesDays)

	loc := now.Location()
	today := clock.DateKey(now)
	var history map[string]HistoricalGoal
	if opts.GoalID != "" {
		history = historicalIndex(goals, entries)
	}

	points := make([]SeriesPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := clock.AddDays(today, -i)
		entry := entryOn(entries, day, loc)
		p := SeriesPoint{Date: day}

		if opts.WithMood && entry != nil && entry.Wellness != nil {
			p.Mood = intPtr(entry.Wellness.Mood * 10)
		}

		if opts.GoalID == "" {
			p.Value = aggregateValue(goals, entry, day, today, loc)
		} else {
			p.Value = goalValue(opts.GoalID, goals, history, entry, day, today, loc)
		}
		points = append(points, p)
	}
	return points
}

func aggregateValue(goals []models.Goal, entry *models.JournalEntry, day, today string, loc *time.Location) *int {
	var source []models.GoalSnapshot
	switch {
	case entry != nil && entry.GoalSnapshots != nil:
		source = entry.GoalSnapshots
	case day == today:
		source = liveSnapshots(goals)
	}

	sum, n := 0.0, 0
	for _, s := range source {
		if completedBy(s.IsCompleted, s.CompletedAt, day, loc) {
			sum++
			n++
			continue
		}
		if s.DailyTarget > 0 {
			sum += math.Min(1, s.DailyProgress/s.DailyTarget)
			n++
		}
	}
	if n == 0 {
		if entry != nil {
			return intPtr(0)
		}
		return nil
	}
	return intPtr(int(math.Round(sum / float64(n) * 100)))
}

func goalValue(id string, goals []models.Goal, history map[string]HistoricalGoal, entry *models.JournalEntry, day, today string, loc *time.Location) *int {
	if h, ok := history[id]; ok && completedBy(h.Status == models.StatusCompleted, h.CompletedAt, day, loc) {
		return intPtr(100)
	}

	if entry != nil {
		for _, s := range entry.GoalSnapshots {
			if s.GoalID == id {
				return intPtr(snapshotPercent(s))
			}
		}
	}

	if day == today {
		for i := range goals {
			if goals[i].ID == id {
				return intPtr(snapshotPercent(liveSnapshot(&goals[i])))
			}
		}
	}
	return nil
}

func snapshotPercent(s models.GoalSnapshot) int {
	if s.DailyTarget > 0 {
		return int(math.Round(math.Min(1, s.DailyProgress/s.DailyTarget) * 100))
	}
	if s.IsCompleted {
		return 100
	}
	return 0
}

// completedBy reports whether a goal counted as complete on day. Completion
// later than day does not count.
func completedBy(isCompleted bool, completedAt *time.Time, day string, loc *time.Location) bool {
	if !isCompleted || completedAt == nil {
		return false
	}
	return clock.DateKey(completedAt.In(loc)) <= day
}

func liveSnapshots(goals []models.Goal) []models.GoalSnapshot {
	out := make([]models.GoalSnapshot, 0, len(goals))
	for i := range goals {
		out = append(out, liveSnapshot(&goals[i]))
	}
	return out
}

func liveSnapshot(g *models.Goal) models.GoalSnapshot {
	return models.GoalSnapshot{
		GoalID:        g.ID,
		Title:         g.Title,
		Current:       g.Current,
		Target:        g.Target,
		DailyProgress: g.DailyProgress,
		DailyTarget:   g.DailyTarget,
		IsCompleted:   g.Status == models.StatusCompleted,
		IsDailyDone:   g.DailyQuotaMet(),
		CompletedAt:   g.CompletedAt,
	}
}

// WellnessPoint holds per-day averages of the wellness metrics. Fields are
// nil on days without a report.
type WellnessPoint struct {
	Date          string   `json:"date"`
	Mood          *float64 `json:"mood"`
	Energy        *float64 `json:"energy"`
	Sleep         *float64 `json:"sleep"`
	Concentration *float64 `json:"concentration"`
	Stress        *float64 `json:"stress"`
}

func WellnessSeries(entries []models.JournalEntry, now time.Time, days int) []WellnessPoint {
	if days <= 0 {
		days = DefaultWellnessDays
	}
	days = min(days, maxSeriesDays)

	loc := now.Location()
	today := clock.DateKey(now)
	points := make([]WellnessPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := clock.AddDays(today, -i)
		p := WellnessPoint{Date: day}

		var sum models.WellnessMetrics
		n := 0
		for j := range entries {
			w := entries[j].Wellness
			if w == nil || entries[j].Day(loc) != day {
				continue
			}
			sum.Mood += w.Mood
			sum.Energy += w.Energy
			sum.Sleep += w.Sleep
			sum.Concentration += w.Concentration
			sum.Stress += w.Stress
			n++
		}
		if n > 0 {
			avg := func(total int) *float64 {
				v := float64(total) / float64(n)
				return &v
			}
			p.Mood = avg(sum.Mood)
			p.Energy = avg(sum.Energy)
			p.Sleep = avg(sum.Sleep)
			p.Concentration = avg(sum.Concentration)
			p.Stress = avg(sum.Stress)
		}
		points = append(points, p)
	}
	return points
}

func intPtr(v int) *int { return &v }
