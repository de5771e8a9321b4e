package tracker

import (
	"math"

	"github.com/arnold/lifesync-api/internal/database"
	"github.com/arnold/lifesync-api/internal/models"
)

// tick runs the daily reset, then activation. Snapshots are refreshed by
// saveGoals whenever either step changed something.
func (t *Tracker) tick() {
	now, today := t.today()
	changed := false
	newDay := false

	if t.lastReset != today {
		for i := range t.goals {
			t.goals[i].DailyProgress = 0
		}
		t.lastReset = today
		if err := t.store.Save(database.KeyLastResetDate, today); err != nil {
			t.log.Errorw("Failed to persist reset marker", "error", err)
		}
		changed = len(t.goals) > 0
		newDay = true
		t.log.Debugw("Daily counters reset", "day", today)
	}

	for i := range t.goals {
		g := &t.goals[i]
		if g.Status == models.StatusScheduled && g.StartDate <= today {
			g.Status = models.StatusActive
			changed = true
			t.log.Infow("Goal activated", "goal", g.ID, "day", today)
		}
	}

	if changed {
		t.saveGoals()
	}

	if newDay && t.onDayStart != nil {
		var alerts []Alert
		for i := range t.goals {
			g := &t.goals[i]
			switch {
			case g.IsFrozen(today):
				alerts = append(alerts, Alert{GoalID: g.ID, Title: g.Title, Kind: AlertFrozen})
			case g.Status == models.StatusActive && g.RemainingTime(now).Critical:
				alerts = append(alerts, Alert{GoalID: g.ID, Title: g.Title, Kind: AlertCritical})
			}
		}
		if len(alerts) > 0 {
			t.onDayStart(alerts)
		}
	}
}

// refreshTodaySnapshots overwrites the snapshot list of every entry dated
// today. Entries from earlier days are never touched.
func (t *Tracker) refreshTodaySnapshots() bool {
	now, today := t.today()
	var snapshots []models.GoalSnapshot
	touched := false

	for i := range t.entries {
		if t.entries[i].Day(now.Location()) != today {
			continue
		}
		if snapshots == nil {
			snapshots = t.captureSnapshots()
		}
		t.entries[i].GoalSnapshots = append([]models.GoalSnapshot{}, snapshots...)
		touched = true
	}
	return touched
}

func (t *Tracker) captureSnapshots() []models.GoalSnapshot {
	now, today := t.today()
	out := make([]models.GoalSnapshot, 0, len(t.goals))

	for i := range t.goals {
		g := &t.goals[i]
		s := models.GoalSnapshot{
			GoalID:        g.ID,
			Title:         g.Title,
			Current:       g.Current,
			Target:        g.Target,
			DailyProgress: g.DailyProgress,
			DailyTarget:   g.DailyTarget,
			IsCompleted:   g.Status == models.StatusCompleted,
		}
		if g.CompletedAt != nil {
			at := *g.CompletedAt
			s.CompletedAt = &at
		}
		if g.Type == models.GoalChecklist {
			s.Current = float64(g.CompletedSubtasks())
			s.Target = math.Max(1, float64(len(g.Subtasks)))
			s.DailyProgress = float64(g.SubtasksDoneOn(today, now.Location()))
		}
		s.IsDailyDone = s.DailyTarget > 0 && s.DailyProgress >= s.DailyTarget
		out = append(out, s)
	}
	return out
}
