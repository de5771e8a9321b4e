package analytics

import (
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/arnold/lifesync-api/internal/clock"
	"github.com/arnold/lifesync-api/internal/models"
)

type Dashboard struct {
	Date           string                    `json:"date"`
	TotalProgress  int                       `json:"totalProgress"`
	ActiveGoals    int                       `json:"activeGoals"`
	DailyNormsDone int                       `json:"dailyNormsDone"`
	LatestMood     int                       `json:"latestMood"`
	TodayWellness  *models.WellnessMetrics   `json:"todayWellness,omitempty"`
	CurrentStreak  int                       `json:"currentStreak"`
	StatusCounts   map[models.GoalStatus]int `json:"statusCounts"`
	Critical       []string                  `json:"critical"`
	Frozen         []string                  `json:"frozen"`
}

// Summarize builds the home screen summary.
func Summarize(goals []models.Goal, entries []models.JournalEntry, now time.Time) Dashboard {
	today := clock.DateKey(now)
	d := Dashboard{
		Date:          today,
		StatusCounts:  map[models.GoalStatus]int{},
		CurrentStreak: Streaks(entries, now).Current,
		Critical:      []string{},
		Frozen:        []string{},
	}

	sum := 0.0
	for i := range goals {
		g := &goals[i]
		d.StatusCounts[g.Status]++
		if g.Status != models.StatusActive {
			continue
		}
		d.ActiveGoals++
		sum += math.Min(1, g.ProgressFraction())
		if g.DailyQuotaMet() {
			d.DailyNormsDone++
		}
		switch {
		case g.IsFrozen(today):
			d.Frozen = append(d.Frozen, g.ID)
		case g.RemainingTime(now).Critical:
			d.Critical = append(d.Critical, g.ID)
		}
	}
	if d.ActiveGoals > 0 {
		d.TotalProgress = int(math.Round(sum / float64(d.ActiveGoals) * 100))
	}

	if e := entryOn(entries, today, now.Location()); e != nil && e.Wellness != nil {
		w := *e.Wellness
		d.TodayWellness = &w
		d.LatestMood = w.Mood
	}
	return d
}

type MomentumItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Progress    int    `json:"progress"`
	RawProgress int    `json:"rawProgress"`
	Label       string `json:"label"`
}

// GoalMomentum lists per-goal progress for goals in the given status.
// Only active and completed are meaningful; anything else means active.
func GoalMomentum(goals []models.Goal, status models.GoalStatus) []MomentumItem {
	if status != models.StatusCompleted {
		status = models.StatusActive
	}

	out := []MomentumItem{}
	for i := range goals {
		g := &goals[i]
		if g.Status != status {
			continue
		}
		raw := rawPercent(g)
		label := strconv.Itoa(raw) + "%"
		if g.Type == models.GoalQuantitative {
			label = formatNumber(g.Current) + "/" + formatNumber(g.Target)
		}
		out = append(out, MomentumItem{
			ID:          g.ID,
			Name:        shortName(g.Title),
			Progress:    min(100, raw),
			RawProgress: raw,
			Label:       label,
		})
	}
	return out
}

// rawPercent is progress without the 100% cap.
func rawPercent(g *models.Goal) int {
	if g.Type == models.GoalQuantitative {
		if g.Target <= 0 {
			return 0
		}
		return int(math.Round(g.Current / g.Target * 100))
	}
	return g.ProgressPercent()
}

func shortName(title string) string {
	if utf8.RuneCountInString(title) <= 15 {
		return title
	}
	return string([]rune(title)[:12]) + "..."
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type HistoricalGoal struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Type        models.GoalType   `json:"type"`
	Status      models.GoalStatus `json:"status"`
	EndDate     string            `json:"endDate,omitempty"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
	Deleted     bool              `json:"deleted"`
}

// HistoricalGoals merges live goals with goals only known from journal
// snapshots. Deleted goals are reported completed or failed based on their
// last snapshot.
func HistoricalGoals(goals []models.Goal, entries []models.JournalEntry, status models.GoalStatus) []HistoricalGoal {
	out := []HistoricalGoal{}
	seen := map[string]bool{}

	for i := range goals {
		g := &goals[i]
		seen[g.ID] = true
		h := HistoricalGoal{ID: g.ID, Title: g.Title, Type: g.Type, Status: g.Status, EndDate: g.EndDate, CompletedAt: g.CompletedAt}
		if status == "" || h.Status == status {
			out = append(out, h)
		}
	}

	for i := range entries {
		for _, s := range entries[i].GoalSnapshots {
			if seen[s.GoalID] {
				continue
			}
			seen[s.GoalID] = true
			h := HistoricalGoal{ID: s.GoalID, Title: s.Title, Type: models.GoalQuantitative, Status: models.StatusFailed, Deleted: true}
			if s.IsCompleted {
				h.Status = models.StatusCompleted
				h.CompletedAt = s.CompletedAt
			}
			if status == "" || h.Status == status {
				out = append(out, h)
			}
		}
	}
	return out
}

func historicalIndex(goals []models.Goal, entries []models.JournalEntry) map[string]HistoricalGoal {
	idx := map[string]HistoricalGoal{}
	for _, h := range HistoricalGoals(goals, entries, "") {
		idx[h.ID] = h
	}
	return idx
}
