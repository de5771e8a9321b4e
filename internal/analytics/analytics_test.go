package analytics

import (
	"testing"
	"time"

	"github.com/arnold/lifesync-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noon(day string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", day, time.UTC)
	if err != nil {
		panic(err)
	}
	return t.Add(12 * time.Hour)
}

func entry(day string) models.JournalEntry {
	return models.JournalEntry{ID: day, Date: noon(day), Content: "x"}
}

// journal builds entries newest first, the order the tracker stores them in.
func journal(days ...string) []models.JournalEntry {
	out := make([]models.JournalEntry, 0, len(days))
	for i := len(days) - 1; i >= 0; i-- {
		out = append(out, entry(days[i]))
	}
	return out
}

func TestStreaks(t *testing.T) {
	now := noon("2024-03-10")

	tests := []struct {
		name    string
		entries []models.JournalEntry
		want    StreakStats
	}{
		{"empty", nil, StreakStats{}},
		{"three days ending today", journal("2024-03-08", "2024-03-09", "2024-03-10"), StreakStats{Current: 3, Longest: 3, LongestEver: 3}},
		{"ending yesterday", journal("2024-03-09"), StreakStats{Current: 1, Longest: 1, LongestEver: 1}},
		{"gap before yesterday", journal("2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04", "2024-03-07", "2024-03-08", "2024-03-09"), StreakStats{Current: 3, Longest: 4, LongestEver: 4}},
		{"dormant journal", journal("2024-02-01", "2024-02-02", "2024-02-03", "2024-03-08"), StreakStats{Current: 0, Longest: 0, LongestEver: 3}},
		{"duplicate days count once", append(journal("2024-03-10"), entry("2024-03-10"), entry("2024-03-09")), StreakStats{Current: 2, Longest: 2, LongestEver: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Streaks(tt.entries, now))
		})
	}
}

func TestStreakUsesLocalCalendarDay(t *testing.T) {
	kyiv := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, kyiv)
	// 23:30 UTC on the 9th is already the 10th in UTC+2.
	late := models.JournalEntry{ID: "a", Date: time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)}

	got := Streaks([]models.JournalEntry{late}, now)
	assert.Equal(t, 1, got.Current)

	cal, err := Calendar([]models.JournalEntry{late}, 2024, time.March, now)
	require.NoError(t, err)
	assert.True(t, cal.Days[9].HasEntry)
	assert.False(t, cal.Days[8].HasEntry)
}

func TestAggregateSeries(t *testing.T) {
	now := noon("2024-03-10")
	doneOn8 := noon("2024-03-08")

	e8 := entry("2024-03-08")
	e8.GoalSnapshots = []models.GoalSnapshot{
		{GoalID: "a", DailyTarget: 4, DailyProgress: 2},
		{GoalID: "b", IsCompleted: true, CompletedAt: &doneOn8},
	}
	e7 := entry("2024-03-07")
	e7.GoalSnapshots = []models.GoalSnapshot{
		{GoalID: "a", DailyTarget: 4, DailyProgress: 8},
		{GoalID: "b", IsCompleted: true, CompletedAt: &doneOn8},
	}
	e9 := entry("2024-03-09")

	goals := []models.Goal{
		{ID: "a", Status: models.StatusActive, DailyTarget: 4, DailyProgress: 1},
		{ID: "c", Status: models.StatusActive},
	}
	entries := []models.JournalEntry{e9, e8, e7}

	points := ProgressSeries(goals, entries, now, SeriesOptions{Days: 5})
	require.Len(t, points, 5)
	assert.Equal(t, "2024-03-06", points[0].Date)
	assert.Equal(t, "2024-03-10", points[4].Date)

	assert.Nil(t, points[0].Value)
	// b completes on the 8th, so on the 7th only a counts (capped at 100%).
	require.NotNil(t, points[1].Value)
	assert.Equal(t, 100, *points[1].Value)
	require.NotNil(t, points[2].Value)
	assert.Equal(t, 75, *points[2].Value)
	// An entry without snapshots on a past day reads as zero.
	require.NotNil(t, points[3].Value)
	assert.Equal(t, 0, *points[3].Value)
	// Today falls back to live goals.
	require.NotNil(t, points[4].Value)
	assert.Equal(t, 25, *points[4].Value)
}

func TestGoalSeries(t *testing.T) {
	now := noon("2024-03-10")
	doneAt := noon("2024-03-09")

	e8 := entry("2024-03-08")
	e8.GoalSnapshots = []models.GoalSnapshot{{GoalID: "g", DailyTarget: 2, DailyProgress: 1}}
	e8.Wellness = &models.WellnessMetrics{Mood: 7, Energy: 5, Stress: 5, Sleep: 5, Concentration: 5}

	goals := []models.Goal{{ID: "g", Status: models.StatusCompleted, CompletedAt: &doneAt, DailyTarget: 2}}
	points := ProgressSeries(goals, []models.JournalEntry{e8}, now, SeriesOptions{Days: 4, GoalID: "g", WithMood: true})
	require.Len(t, points, 4)

	assert.Nil(t, points[0].Value)
	require.NotNil(t, points[1].Value)
	assert.Equal(t, 50, *points[1].Value)
	require.NotNil(t, points[1].Mood)
	assert.Equal(t, 70, *points[1].Mood)
	assert.Equal(t, 100, *points[2].Value)
	assert.Equal(t, 100, *points[3].Value)
}

func TestSeriesForDeletedGoalUsesSnapshots(t *testing.T) {
	now := noon("2024-03-10")
	e9 := entry("2024-03-09")
	e9.GoalSnapshots = []models.GoalSnapshot{{GoalID: "gone", Title: "Old", DailyTarget: 0, IsCompleted: false}}

	points := ProgressSeries(nil, []models.JournalEntry{e9}, now, SeriesOptions{Days: 2, GoalID: "gone"})
	require.NotNil(t, points[0].Value)
	assert.Equal(t, 0, *points[0].Value)
	assert.Nil(t, points[1].Value)

	hist := HistoricalGoals(nil, []models.JournalEntry{e9}, "")
	require.Len(t, hist, 1)
	assert.Equal(t, models.StatusFailed, hist[0].Status)
	assert.True(t, hist[0].Deleted)
}

func TestCalendarLeadingBlanks(t *testing.T) {
	now := noon("2024-09-15")

	// September 2024 starts on a Sunday.
	sep, err := Calendar(journal("2024-09-02", "2024-09-15"), 2024, time.September, now)
	require.NoError(t, err)
	assert.Equal(t, 6, sep.LeadingBlanks)
	assert.Len(t, sep.Days, 30)
	assert.True(t, sep.Days[1].HasEntry)
	assert.True(t, sep.Days[14].HasEntry)
	assert.True(t, sep.Days[14].IsToday)
	assert.False(t, sep.Days[0].HasEntry)

	// July 2024 starts on a Monday.
	jul, err := Calendar(nil, 2024, time.July, now)
	require.NoError(t, err)
	assert.Equal(t, 0, jul.LeadingBlanks)

	feb, err := Calendar(nil, 2024, time.February, now)
	require.NoError(t, err)
	assert.Len(t, feb.Days, 29)
	assert.Equal(t, 3, feb.LeadingBlanks)

	_, err = Calendar(nil, 2024, 13, now)
	assert.Error(t, err)
}

func TestWellnessSeriesAverages(t *testing.T) {
	now := noon("2024-03-10")
	a := entry("2024-03-10")
	a.Wellness = &models.WellnessMetrics{Mood: 8, Energy: 6, Stress: 2, Sleep: 7, Concentration: 9}
	b := entry("2024-03-10")
	b.Wellness = &models.WellnessMetrics{Mood: 5, Energy: 4, Stress: 6, Sleep: 5, Concentration: 6}
	note := entry("2024-03-09")

	points := WellnessSeries([]models.JournalEntry{a, b, note}, now, 0)
	require.Len(t, points, DefaultWellnessDays)
	last := points[len(points)-1]
	require.NotNil(t, last.Mood)
	assert.Equal(t, 6.5, *last.Mood)
	assert.Equal(t, 4.0, *last.Stress)
	assert.Nil(t, points[len(points)-2].Mood)
}

func TestSummarize(t *testing.T) {
	now := noon("2024-03-10")
	today := entry("2024-03-10")
	today.Wellness = &models.WellnessMetrics{Mood: 9, Energy: 5, Stress: 5, Sleep: 5, Concentration: 5}

	goals := []models.Goal{
		{ID: "q", Type: models.GoalQuantitative, Status: models.StatusActive, Target: 10, Current: 5, DailyTarget: 2, DailyProgress: 2, StartDate: "2024-03-01", EndDate: "2024-03-30"},
		{ID: "c", Type: models.GoalChecklist, Status: models.StatusActive, Subtasks: []models.Subtask{{Completed: true}, {}}, StartDate: "2024-03-01", EndDate: "2024-03-11"},
		{ID: "f", Type: models.GoalScheduled, Status: models.StatusActive, Target: 1, StartDate: "2024-03-01", EndDate: "2024-03-05"},
		{ID: "d", Type: models.GoalScheduled, Status: models.StatusCompleted, Target: 1, Current: 1},
	}

	d := Summarize(goals, journal("2024-03-10"), now)
	assert.Equal(t, 33, d.TotalProgress)
	assert.Equal(t, 3, d.ActiveGoals)
	assert.Equal(t, 1, d.DailyNormsDone)
	assert.Equal(t, []string{"c"}, d.Critical)
	assert.Equal(t, []string{"f"}, d.Frozen)
	assert.Equal(t, 3, d.StatusCounts[models.StatusActive])
	assert.Equal(t, 1, d.StatusCounts[models.StatusCompleted])

	d = Summarize(goals, []models.JournalEntry{today, entry("2024-03-09")}, now)
	assert.Equal(t, 9, d.LatestMood)
	assert.Equal(t, 2, d.CurrentStreak)
	require.NotNil(t, d.TodayWellness)
}

func TestGoalMomentum(t *testing.T) {
	goals := []models.Goal{
		{ID: "a", Title: "Run a thousand kilometres", Type: models.GoalQuantitative, Status: models.StatusActive, Target: 8, Current: 10},
		{ID: "b", Title: "Pack", Type: models.GoalChecklist, Status: models.StatusActive, Subtasks: []models.Subtask{{Completed: true}, {}, {}}},
		{ID: "c", Title: "Done", Type: models.GoalScheduled, Status: models.StatusCompleted, Target: 1, Current: 1},
	}

	active := GoalMomentum(goals, models.StatusActive)
	require.Len(t, active, 2)
	assert.Equal(t, "Run a thousa...", active[0].Name)
	assert.Equal(t, 100, active[0].Progress)
	assert.Equal(t, 125, active[0].RawProgress)
	assert.Equal(t, "10/8", active[0].Label)
	assert.Equal(t, 33, active[1].Progress)
	assert.Equal(t, "33%", active[1].Label)

	completed := GoalMomentum(goals, models.StatusCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, 100, completed[0].Progress)
}
