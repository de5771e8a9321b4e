package models

import (
	"math"
	"time"

	"github.com/arnold/lifesync-api/internal/clock"
)

type GoalType string

const (
	GoalQuantitative GoalType = "QUANTITATIVE"
	GoalChecklist    GoalType = "CHECKLIST"
	GoalScheduled    GoalType = "SCHEDULED"
)

func (t GoalType) IsValid() bool {
	switch t {
	case GoalQuantitative, GoalChecklist, GoalScheduled:
		return true
	}
	return false
}

type GoalStatus string

const (
	StatusScheduled GoalStatus = "scheduled"
	StatusActive    GoalStatus = "active"
	StatusCompleted GoalStatus = "completed"
	StatusFailed    GoalStatus = "failed"
)

func (s GoalStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusActive, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

type Subtask struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type Goal struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Type           GoalType   `json:"type"`
	Status         GoalStatus `json:"status"`
	Target         float64    `json:"target"`
	Current        float64    `json:"current"`
	DailyTarget    float64    `json:"dailyTarget"`
	DailyProgress  float64    `json:"dailyProgress"`
	Subtasks       []Subtask  `json:"subtasks,omitempty"`
	StartDate      string     `json:"startDate"`
	EndDate        string     `json:"endDate"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	ExtensionCount int        `json:"extensionCount,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Clone returns a deep copy so callers can't reach into tracker state.
func (g Goal) Clone() Goal {
	out := g
	if g.Subtasks != nil {
		out.Subtasks = make([]Subtask, len(g.Subtasks))
		for i, st := range g.Subtasks {
			out.Subtasks[i] = st
			if st.CompletedAt != nil {
				at := *st.CompletedAt
				out.Subtasks[i].CompletedAt = &at
			}
		}
	}
	if g.CompletedAt != nil {
		at := *g.CompletedAt
		out.CompletedAt = &at
	}
	return out
}

func (g *Goal) CompletedSubtasks() int {
	n := 0
	for _, st := range g.Subtasks {
		if st.Completed {
			n++
		}
	}
	return n
}

// SubtasksDoneOn counts subtasks completed on the given local day.
func (g *Goal) SubtasksDoneOn(day string, loc *time.Location) int {
	n := 0
	for _, st := range g.Subtasks {
		if st.Completed && st.CompletedAt != nil && clock.DateKey(st.CompletedAt.In(loc)) == day {
			n++
		}
	}
	return n
}

// ProgressFraction is overall completion. It is not capped, so a total above
// target reads above 1.
func (g *Goal) ProgressFraction() float64 {
	switch g.Type {
	case GoalChecklist:
		if len(g.Subtasks) == 0 {
			if g.Status == StatusCompleted {
				return 1
			}
			return 0
		}
		return float64(g.CompletedSubtasks()) / float64(len(g.Subtasks))
	case GoalScheduled:
		if g.Current >= g.Target {
			return 1
		}
		return 0
	default:
		if g.Target <= 0 {
			return 0
		}
		return g.Current / g.Target
	}
}

// ProgressPercent is the display value, capped at 100.
func (g *Goal) ProgressPercent() int {
	return int(math.Round(math.Min(1, g.ProgressFraction()) * 100))
}

// DailyQuotaMet is true when a positive daily target has been reached today.
func (g *Goal) DailyQuotaMet() bool {
	return g.DailyTarget > 0 && g.DailyProgress >= g.DailyTarget
}

// IsFrozen reports an active goal whose end date has passed. It is derived,
// never stored.
func (g *Goal) IsFrozen(today string) bool {
	return g.Status == StatusActive && today > g.EndDate
}

type TimePhase string

const (
	PhaseNotStarted TimePhase = "not_started"
	PhaseInProgress TimePhase = "in_progress"
	PhaseLastDay    TimePhase = "last_day"
	PhaseTimeUp     TimePhase = "time_up"
	PhaseInvalid    TimePhase = "invalid"
)

type TimeInfo struct {
	Percent      int       `json:"percent"`
	DaysLeft     int       `json:"daysLeft"`
	StartsInDays int       `json:"startsInDays,omitempty"`
	Phase        TimePhase `json:"phase"`
	Critical     bool      `json:"critical"`
}

// RemainingTime measures the goal window from start 00:00:00 to end 23:59:59
// in now's location.
func (g *Goal) RemainingTime(now time.Time) TimeInfo {
	loc := now.Location()
	start, err := clock.ParseDayIn(g.StartDate, loc)
	if err != nil {
		return TimeInfo{Percent: 100, Phase: PhaseInvalid, Critical: true}
	}
	endDay, err := clock.ParseDayIn(g.EndDate, loc)
	if err != nil {
		return TimeInfo{Percent: 100, Phase: PhaseInvalid, Critical: true}
	}
	end := endDay.Add(24*time.Hour - time.Second)

	total := end.Sub(start)
	if total <= 0 {
		return TimeInfo{Percent: 100, Phase: PhaseInvalid, Critical: true}
	}

	if now.Before(start) {
		return TimeInfo{
			Percent:      0,
			DaysLeft:     int(math.Floor(end.Sub(start).Hours() / 24)),
			StartsInDays: int(math.Ceil(start.Sub(now).Hours() / 24)),
			Phase:        PhaseNotStarted,
		}
	}

	remaining := end.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	elapsed := now.Sub(start)
	percent := int(math.Round(math.Min(100, math.Max(0, float64(elapsed)/float64(total)*100))))
	daysLeft := int(math.Floor(remaining.Hours() / 24))

	phase := PhaseInProgress
	switch {
	case remaining <= 0:
		phase = PhaseTimeUp
	case daysLeft == 0:
		phase = PhaseLastDay
	}

	return TimeInfo{
		Percent:  percent,
		DaysLeft: daysLeft,
		Phase:    phase,
		Critical: daysLeft <= 1 && remaining > 0 && g.Status != StatusCompleted,
	}
}

type CreateGoalRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Type        GoalType `json:"type" validate:"required,oneof=QUANTITATIVE CHECKLIST SCHEDULED"`
	Target      float64  `json:"target" validate:"gte=0"`
	DailyTarget float64  `json:"dailyTarget" validate:"gte=0"`
	StartDate   string   `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string   `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Subtasks    []string `json:"subtasks" validate:"dive,required,max=200"`
}

type UpdateProgressRequest struct {
	Value float64 `json:"value"`
}

type ExtendGoalRequest struct {
	Days int `json:"days"`
}
