package tracker

import (
	"math"
	"testing"
	"time"

	"github.com/arnold/lifesync-api/internal/clock"
	"github.com/arnold/lifesync-api/internal/database"
	"github.com/arnold/lifesync-api/internal/logger"
	"github.com/arnold/lifesync-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker(t *testing.T, day string) (*Tracker, *clock.Virtual, *database.MemoryStore) {
	t.Helper()
	store := database.NewMemoryStore()
	v := clock.NewVirtual(clock.Fixed(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)))
	require.NoError(t, v.Set(day))

	tr := New(store, v, logger.Nop())
	tr.Load()
	return tr, v, store
}

func quantGoal(t *testing.T, tr *Tracker, target, daily float64) models.Goal {
	t.Helper()
	g, err := tr.CreateGoal(models.CreateGoalRequest{
		Title:       "Read pages",
		Type:        models.GoalQuantitative,
		Target:      target,
		DailyTarget: daily,
		EndDate:     "2024-12-31",
	})
	require.NoError(t, err)
	return g
}

func TestProgressUpdateMeetsDailyQuota(t *testing.T) {
	tr, _, _ := newTracker(t, "2024-03-01")
	g := quantGoal(t, tr, 10, 5)

	got, err := tr.UpdateProgress(g.ID, 5)
	require.NoError(t, err)

	assert.Equal(t, 5.0, got.Current)
	assert.Equal(t, 5.0, got.DailyProgress)
	assert.True(t, got.DailyQuotaMet())
	assert.Equal(t, models.StatusActive, got.Status)
}

func TestProgressUpdateCompletesOnce(t *testing.T) {
	tr, v, _ := newTracker(t, "2024-03-01")
	g := quantGoal(t, tr, 10, 5)

	got, err := tr.UpdateProgress(g.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	stamped := *got.CompletedAt

	require.NoError(t, v.Set("2024-03-02"))
	got, err = tr.UpdateProgress(g.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.Current)
	assert.Equal(t, models.StatusCompleted, got.Status)

	got, err = tr.UpdateProgress(g.ID, 4)
	require.NoError(t, err)
	got, err = tr.UpdateProgress(g.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, stamped, *got.CompletedAt)
}

func TestProgressIsClamped(t *testing.T) {
	tr, _, _ := newTracker(t, "2024-03-01")
	g := quantGoal(t, tr, 20, 0)

	for _, v := range []float64{-5, 0, 3.5, 19.99, 21, 1e9} {
		// Completed goals keep accepting clamped values.
		got, err := tr.UpdateProgress(g.ID, v)
		require.NoError(t, err)
		assert.Equal(t, math.Max(0, math.Min(v, 20)), got.Current, "value %v", v)
		assert.LessOrEqual(t, got.Current, got.Target)
	}
}

func TestDailyProgressNeverNegative(t *testing.T) {
	tr, v, _ := newTracker(t, "2024-03-01")
	g := quantGoal(t, tr, 100, 10)

	_, err := tr.UpdateProgress(g.ID, 30)
	require.NoError(t, err)

	require.NoError(t, v.Set("2024-03-02"))
	got, err := tr.UpdateProgress(g.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 25.0, got.Current)
	assert.Equal(t, 0.0, got.DailyProgress)

	got, err = tr.UpdateProgress(g.ID, 28)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.DailyProgress)
}

func TestNonFiniteProgressIsIgnored(t *testing.T) {
	tr, _, _ := newTracker(t, "2024-03-01")
	g := quantGoal(t, tr, 10, 0)
	_, err := tr.UpdateProgress(g.ID, 4)
	require.NoError(t, err)

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		got, err := tr.UpdateProgress(g.ID, bad)
		require.NoError(t, err)
		assert.Equal(t, 4.0, got.Current)
	}
}

func TestFrozenGoalExtension(t *testing.T) {
	tr, v, _ := newTracker(t, "2023-12-30")
	g, err := tr.CreateGoal(models.CreateGoalRequest{
		Title:   "Ship it",
		Type:    models.GoalQuantitative,
		Target:  3,
		EndDate: "2024-01-01",
	})
	require.NoError(t, err)

	require.NoError(t, v.Set("2024-01-05"))
	current, err := tr.Goal(g.ID)
	require.NoError(t, err)
	assert.True(t, current.IsFrozen("2024-01-05"))

	_, err = tr.UpdateProgress(g.ID, 1)
	assert.ErrorIs(t, err, ErrGoalFrozen)

	got, err := tr.Extend(g.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-04", got.EndDate)
	assert.Equal(t, models.StatusActive, got.Status)
	assert.Equal(t, 1, got.ExtensionCount)
	assert.False(t, got.IsFrozen("2024-01-04"))

	// The new end date is still behind the clock, so a second extension is allowed.
	got, err = tr.Extend(g.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", got.EndDate)
	assert.Equal(t, 2, got.ExtensionCount)
	assert.False(t, got.IsFrozen("2024-01-05"))

	_, err = tr.Extend(g.ID, 1)
	assert.ErrorIs(t, err, ErrGoalNotFrozen)
}

func TestExtensionDaysAreClamped(t *testing.T) {
	tr, v, _ := newTracker(t, "2024-01-01")
	g, err := tr.CreateGoal(models.CreateGoalRequest{Title: "x", Type: models.GoalScheduled, EndDate: "2024-01-01"})
	require.NoError(t, err)
	require.NoError(t, v.Set("2024-01-03"))

	got, err := tr.Extend(g.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", got.EndDate)

	require.NoError(t, v.Set("2024-01-10"))
	got, err = tr.Extend(g.ID, 10000)
	require.NoError(t, err)
	assert.Equal(t, clock.AddDays("2024-01-02", 365), got.EndDate)
}

func TestFailFrozenGoal(t *testing.T) {
	tr, v, _ := newTracker(t, "2024-01-01")
	g := quantGoal(t, tr, 5, 0)

	_, err := tr.Fail(g.ID)
	assert.ErrorIs(t, err, ErrGoalNotFrozen)

	require.NoError(t, v.Set("2025-01-01"))
	got, err := tr.Fail(g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.False(t, got.IsFrozen("2025-01-01"))

	_, err = tr.UpdateProgress(g.ID, 2)
	assert.ErrorIs(t, err, ErrGoalClosed)
	_, err = tr.Extend(g.ID, 2)
	assert.ErrorIs(t, err, ErrGoalNotFrozen)
}

func TestChecklistToggle(t *testing.T) {
	tr, _, _ := newTracker(t, "2024-03-01")
	g, err := tr.CreateGoal(models.CreateGoalRequest{
		Title:       "Move flat",
		Type:        models.GoalChecklist,
		DailyTarget: 2,
		Subtasks:    []string{"pack", "book van", "clean"},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(len(g.Subtasks)), g.Target)
	require.Len(t, g.Subtasks, 3)

	_, err = tr.ToggleSubtask(g.ID, g.Subtasks[0].ID)
	require.NoError(t, err)
	got, err := tr.ToggleSubtask(g.ID, g.Subtasks[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.DailyProgress)
	assert.True(t, got.DailyQuotaMet())
	assert.Equal(t, models.StatusActive, got.Status)

	got, err = tr.ToggleSubtask(g.ID, g.Subtasks[2].ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, 3.0, got.Target)

	got, err = tr.ToggleSubtask(g.ID, g.Subtasks[0].ID)
	require.NoError(t, err)
	assert.False(t, got.Subtasks[0].Completed)
	assert.Nil(t, got.Subtasks[0].CompletedAt)
	assert.Equal(t, 2.0, got.DailyProgress)

	_, err = tr.ToggleSubtask(g.ID, "missing")
	assert.ErrorIs(t, err, ErrSubtaskNotFound)
}

func TestWrongTypeOperations(t *testing.T) {
	tr, _, _ := newTracker(t, "2024-03-01")
	q := quantGoal(t, tr, 5, 0)
	c, err := tr.CreateGoal(models.CreateGoalRequest{Title: "c", Type: models.GoalChecklist, Subtasks: []string{"a"}})
	require.NoError(t, err)

	_, err = tr.ToggleSubtask(q.ID, "x")
	assert.ErrorIs(t, err, ErrWrongGoalType)
	_, err = tr.UpdateProgress(c.ID, 1)
	assert.ErrorIs(t, err, ErrWrongGoalType)
	_, err = tr.MarkDone(q.ID)
	assert.ErrorIs(t, err, ErrWrongGoalType)
	_, err = tr.UpdateProgress("nope", 1)
	assert.ErrorIs(t, err, ErrGoalNotFound)
}

func TestMarkDoneScheduledGoal(t *testing.T) {
	tr, _, _ := newTracker(t, "2024-03-01")
	g, err := tr.CreateGoal(models.CreateGoalRequest{Title: "Dentist", Type: models.GoalScheduled, Target: 40, DailyTarget: 3})
	require.NoError(t, err)
	assert.Equal(t, 1.0, g.Target)
	assert.Equal(t, 0.0, g.DailyTarget)
	assert.Equal(t, "2024-03-02", g.EndDate)

	got, err := tr.MarkDone(g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, 1.0, got.Current)
	assert.Equal(t, 100, got.ProgressPercent())
}

func TestCreateValidation(t *testing.T) {
	tr, _, _ := newTracker(t, "2024-03-01")

	_, err := tr.CreateGoal(models.CreateGoalRequest{
		Title:     "   ",
		Type:      models.GoalQuantitative,
		Target:    0,
		StartDate: "2024-03-10",
		EndDate:   "2024-03-05",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "target")
	assert.Contains(t, verr.Fields, "endDate")

	_, err = tr.CreateGoal(models.CreateGoalRequest{Title: "x", Type: "Кількісна", Target: 1})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "type")

	_, err = tr.CreateGoal(models.CreateGoalRequest{Title: "x", Type: models.GoalQuantitative, Target: 1, EndDate: "03/05/2024"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "endDate")

	assert.Empty(t, tr.Goals())
}

func TestScheduledGoalActivates(t *testing.T) {
	tr, v, _ := newTracker(t, "2024-03-01")
	g, err := tr.CreateGoal(models.CreateGoalRequest{
		Title:     "Marathon block",
		Type:      models.GoalQuantitative,
		Target:    100,
		StartDate: "2024-03-03",
		EndDate:   "2024-04-01",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, g.Status)

	_, err = tr.UpdateProgress(g.ID, 5)
	assert.ErrorIs(t, err, ErrGoalNotStarted)

	require.NoError(t, v.Set("2024-03-03"))
	got, err := tr.Goal(g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, got.Status)
}

func TestNewGoalsArePrepended(t *testing.T) {
	tr, _, _ := newTracker(t, "2024-03-01")
	first := quantGoal(t, tr, 1, 0)
	second := quantGoal(t, tr, 2, 0)

	goals := tr.Goals()
	require.Len(t, goals, 2)
	assert.Equal(t, second.ID, goals[0].ID)
	assert.Equal(t, first.ID, goals[1].ID)

	require.NoError(t, tr.DeleteGoal(second.ID))
	assert.Len(t, tr.Goals(), 1)
	assert.ErrorIs(t, tr.DeleteGoal(second.ID), ErrGoalNotFound)
}

func TestDailyResetIsIdempotent(t *testing.T) {
	tr, v, store := newTracker(t, "2024-03-01")
	g := quantGoal(t, tr, 50, 10)
	_, err := tr.UpdateProgress(g.ID, 7)
	require.NoError(t, err)

	tr.Tick()
	tr.Tick()
	got, err := tr.Goal(g.ID)
	require.NoError(t, err)
	assert.Equal(t, 7.0, got.DailyProgress)

	require.NoError(t, v.Set("2024-03-02"))
	tr.Tick()
	got, err = tr.Goal(g.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.DailyProgress)
	assert.Equal(t, 7.0, got.Current)

	var marker string
	_, err = store.Load(database.KeyLastResetDate, &marker)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", marker)

	_, err = tr.UpdateProgress(g.ID, 9)
	require.NoError(t, err)
	tr.Tick()
	got, err = tr.Goal(g.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.DailyProgress)
}

func TestResetSurvivesRestartOnSameDay(t *testing.T) {
	tr, v, store := newTracker(t, "2024-03-01")
	g := quantGoal(t, tr, 50, 10)
	_, err := tr.UpdateProgress(g.ID, 4)
	require.NoError(t, err)

	restarted := New(store, v, logger.Nop())
	restarted.Load()
	got, err := restarted.Goal(g.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.DailyProgress)
}

func TestDayStartAlerts(t *testing.T) {
	tr, v, _ := newTracker(t, "2024-01-01")
	g, err := tr.CreateGoal(models.CreateGoalRequest{Title: "Essay", Type: models.GoalQuantitative, Target: 2, EndDate: "2024-01-02"})
	require.NoError(t, err)

	var got []Alert
	tr.OnDayStart(func(alerts []Alert) { got = append(got, alerts...) })

	require.NoError(t, v.Set("2024-01-02"))
	tr.Tick()
	require.Len(t, got, 1)
	assert.Equal(t, AlertCritical, got[0].Kind)
	assert.Equal(t, g.ID, got[0].GoalID)

	tr.Tick()
	assert.Len(t, got, 1)

	require.NoError(t, v.Set("2024-01-03"))
	tr.Tick()
	require.Len(t, got, 2)
	assert.Equal(t, AlertFrozen, got[1].Kind)
}

func TestLoadTreatsCorruptDataAsEmpty(t *testing.T) {
	store := database.NewMemoryStore()
	store.SetRaw(database.KeyGoals, []byte("{broken"))
	store.SetRaw(database.KeyJournal, []byte(`"not a list"`))

	tr := New(store, clock.Fixed(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)), logger.Nop())
	tr.Load()

	assert.Empty(t, tr.Goals())
	assert.Empty(t, tr.Entries(models.EntryFilter{}))
}

func TestMigratesLegacyGoalTypes(t *testing.T) {
	store := database.NewMemoryStore()
	store.SetRaw(database.KeyGoals, []byte(`[
		{"id":"a","title":"A","type":"Кількісна","status":"active","target":5,"current":1,"startDate":"2024-01-01","endDate":"2024-02-01"},
		{"id":"b","title":"B","type":"Чек-ліст","status":"active","target":0,"current":0,"startDate":"2024-01-01","endDate":"2024-02-01"},
		{"id":"c","title":"C","type":"Планована","status":"active","target":1,"current":0,"startDate":"2024-01-01","endDate":"2024-02-01"}
	]`))
	require.NoError(t, store.Save(database.KeyDataVersion, "3"))

	tr := New(store, clock.Fixed(time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)), logger.Nop())
	tr.Load()

	goals := tr.Goals()
	require.Len(t, goals, 3)
	assert.Equal(t, models.GoalQuantitative, goals[0].Type)
	assert.Equal(t, models.GoalChecklist, goals[1].Type)
	assert.Equal(t, models.GoalScheduled, goals[2].Type)

	var version string
	_, err := store.Load(database.KeyDataVersion, &version)
	require.NoError(t, err)
	assert.Equal(t, models.DataVersion, version)
}

func TestLoadDropsGoalsWithUnknownTypeOrStatus(t *testing.T) {
	store := database.NewMemoryStore()
	store.SetRaw(database.KeyGoals, []byte(`[
		{"id":"ok","title":"Ok","type":"QUANTITATIVE","status":"active","target":5,"startDate":"2024-01-01","endDate":"2024-02-01"},
		{"id":"g1","title":"Habit","type":"HABIT","status":"active","target":5,"startDate":"2024-01-01","endDate":"2024-02-01"},
		{"id":"g2","title":"Bogus","type":"QUANTITATIVE","status":"bogus","target":5,"startDate":"2024-01-01","endDate":"2024-02-01"}
	]`))
	require.NoError(t, store.Save(database.KeyDataVersion, models.DataVersion))

	tr := New(store, clock.Fixed(time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)), logger.Nop())
	tr.Load()

	goals := tr.Goals()
	require.Len(t, goals, 1)
	assert.Equal(t, "ok", goals[0].ID)

	_, err := tr.UpdateProgress("g2", 5)
	assert.ErrorIs(t, err, ErrGoalNotFound)

	var stored []models.Goal
	_, err = store.Load(database.KeyGoals, &stored)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}
