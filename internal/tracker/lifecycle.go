package tracker

import (
	"math"
	"strings"
	"time"

	"github.com/arnold/lifesync-api/internal/clock"
	"github.com/arnold/lifesync-api/internal/models"
	"github.com/google/uuid"
)

const (
	minExtensionDays = 1
	maxExtensionDays = 365
)

// CreateGoal validates req and prepends the new goal. Nothing changes on a
// validation failure.
func (t *Tracker) CreateGoal(req models.CreateGoalRequest) (models.Goal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick()

	now, today := t.today()

	verr := &ValidationError{}
	if err := validate.Struct(req); err != nil {
		verr = fromValidator(err)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		verr.add("title", "is required")
	}

	start := req.StartDate
	if start == "" {
		start = today
	}
	end := req.EndDate
	if end == "" {
		end = clock.AddDays(today, 1)
	}
	if clock.ValidDay(start) && clock.ValidDay(end) && start > end {
		verr.add("endDate", "must not be before startDate")
	}
	if req.Type == models.GoalQuantitative && !(req.Target > 0) {
		verr.add("target", "must be greater than 0")
	}
	if math.IsNaN(req.Target) || math.IsInf(req.Target, 0) {
		verr.add("target", "must be a finite number")
	}
	if math.IsNaN(req.DailyTarget) || math.IsInf(req.DailyTarget, 0) {
		verr.add("dailyTarget", "must be a finite number")
	}
	if err := verr.orNil(); err != nil {
		return models.Goal{}, err
	}

	g := models.Goal{
		ID:          uuid.NewString(),
		Title:       title,
		Type:        req.Type,
		Status:      models.StatusActive,
		Target:      req.Target,
		DailyTarget: req.DailyTarget,
		StartDate:   start,
		EndDate:     end,
		CreatedAt:   now,
	}
	if start > today {
		g.Status = models.StatusScheduled
	}

	switch req.Type {
	case models.GoalScheduled:
		g.Target = 1
		g.DailyTarget = 0
	case models.GoalChecklist:
		g.Subtasks = make([]models.Subtask, 0, len(req.Subtasks))
		for _, st := range req.Subtasks {
			if st = strings.TrimSpace(st); st == "" {
				continue
			}
			g.Subtasks = append(g.Subtasks, models.Subtask{ID: uuid.NewString(), Title: st})
		}
		g.Target = float64(len(g.Subtasks))
	}

	t.goals = append([]models.Goal{g}, t.goals...)
	t.saveGoals()
	t.log.Infow("Goal created", "goal", g.ID, "type", g.Type, "status", g.Status)

	return g.Clone(), nil
}

// editable resolves a goal that accepts progress changes today.
func (t *Tracker) editable(id string) (*models.Goal, error) {
	_, today := t.today()

	i := t.indexOf(id)
	if i < 0 {
		return nil, ErrGoalNotFound
	}
	g := &t.goals[i]
	switch {
	case g.Status == models.StatusFailed:
		return nil, ErrGoalClosed
	case g.Status == models.StatusScheduled:
		return nil, ErrGoalNotStarted
	case g.IsFrozen(today):
		return nil, ErrGoalFrozen
	}
	return g, nil
}

// UpdateProgress sets a quantitative or scheduled goal's total. The value is
// clamped to [0, target] and the difference flows into today's progress.
// Non-finite input is ignored.
func (t *Tracker) UpdateProgress(id string, value float64) (models.Goal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick()

	g, err := t.editable(id)
	if err != nil {
		return models.Goal{}, err
	}
	if g.Type == models.GoalChecklist {
		return models.Goal{}, ErrWrongGoalType
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return g.Clone(), nil
	}

	now, _ := t.today()
	clamped := math.Max(0, math.Min(value, g.Target))
	diff := clamped - g.Current
	g.DailyProgress = math.Max(0, g.DailyProgress+diff)
	g.Current = clamped
	if clamped >= g.Target && g.Status != models.StatusCompleted {
		complete(g, now)
		t.log.Infow("Goal completed", "goal", g.ID)
	}

	out := g.Clone()
	t.saveGoals()
	return out, nil
}

// ToggleSubtask flips one checklist item. Today's progress is recounted from
// subtasks completed today.
func (t *Tracker) ToggleSubtask(id, subtaskID string) (models.Goal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick()

	g, err := t.editable(id)
	if err != nil {
		return models.Goal{}, err
	}
	if g.Type != models.GoalChecklist {
		return models.Goal{}, ErrWrongGoalType
	}

	now, today := t.today()
	found := false
	for i := range g.Subtasks {
		st := &g.Subtasks[i]
		if st.ID != subtaskID {
			continue
		}
		found = true
		st.Completed = !st.Completed
		if st.Completed {
			at := now
			st.CompletedAt = &at
		} else {
			st.CompletedAt = nil
		}
	}
	if !found {
		return models.Goal{}, ErrSubtaskNotFound
	}

	g.DailyProgress = float64(g.SubtasksDoneOn(today, now.Location()))
	g.Current = float64(g.CompletedSubtasks())
	if len(g.Subtasks) > 0 && g.CompletedSubtasks() == len(g.Subtasks) && g.Status != models.StatusCompleted {
		complete(g, now)
		t.log.Infow("Goal completed", "goal", g.ID)
	}

	out := g.Clone()
	t.saveGoals()
	return out, nil
}

// MarkDone completes a scheduled-type goal.
func (t *Tracker) MarkDone(id string) (models.Goal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick()

	g, err := t.editable(id)
	if err != nil {
		return models.Goal{}, err
	}
	if g.Type != models.GoalScheduled {
		return models.Goal{}, ErrWrongGoalType
	}
	if g.Status != models.StatusCompleted {
		now, _ := t.today()
		g.Current = g.Target
		complete(g, now)
		t.log.Infow("Goal completed", "goal", g.ID)
	}

	out := g.Clone()
	t.saveGoals()
	return out, nil
}

// Extend pushes a frozen goal's end date out by days, clamped to [1, 365].
func (t *Tracker) Extend(id string, days int) (models.Goal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick()

	g, err := t.frozen(id)
	if err != nil {
		return models.Goal{}, err
	}
	days = max(minExtensionDays, min(days, maxExtensionDays))

	g.EndDate = clock.AddDays(g.EndDate, days)
	g.Status = models.StatusActive
	g.ExtensionCount++
	t.log.Infow("Goal extended", "goal", g.ID, "days", days, "endDate", g.EndDate)

	out := g.Clone()
	t.saveGoals()
	return out, nil
}

// Fail closes a frozen goal for good.
func (t *Tracker) Fail(id string) (models.Goal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick()

	g, err := t.frozen(id)
	if err != nil {
		return models.Goal{}, err
	}
	g.Status = models.StatusFailed
	t.log.Infow("Goal failed", "goal", g.ID)

	out := g.Clone()
	t.saveGoals()
	return out, nil
}

func (t *Tracker) frozen(id string) (*models.Goal, error) {
	_, today := t.today()
	i := t.indexOf(id)
	if i < 0 {
		return nil, ErrGoalNotFound
	}
	if !t.goals[i].IsFrozen(today) {
		return nil, ErrGoalNotFrozen
	}
	return &t.goals[i], nil
}

// DeleteGoal removes a goal. Snapshots already written for past days keep
// their copy.
func (t *Tracker) DeleteGoal(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick()

	i := t.indexOf(id)
	if i < 0 {
		return ErrGoalNotFound
	}
	t.goals = append(t.goals[:i], t.goals[i+1:]...)
	t.saveGoals()
	t.log.Infow("Goal deleted", "goal", id)
	return nil
}

// TimeInfo reports the time window of a goal as of now.
func (t *Tracker) TimeInfo(id string) (models.TimeInfo, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick()

	i := t.indexOf(id)
	if i < 0 {
		return models.TimeInfo{}, ErrGoalNotFound
	}
	now, _ := t.today()
	return t.goals[i].RemainingTime(now), nil
}

func complete(g *models.Goal, now time.Time) {
	g.Status = models.StatusCompleted
	if g.CompletedAt == nil {
		at := now
		g.CompletedAt = &at
	}
}
