package handlers

import (
	"time"

	"github.com/arnold/lifesync-api/internal/analytics"
	"github.com/arnold/lifesync-api/internal/models"
	"github.com/arnold/lifesync-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

func GetDashboard(c *fiber.Ctx) error {
	view := deps.Tracker.View()
	return c.JSON(analytics.Summarize(view.Goals, view.Entries, view.Now))
}

func GetStreaks(c *fiber.Ctx) error {
	view := deps.Tracker.View()
	return c.JSON(analytics.Streaks(view.Entries, view.Now))
}

// GetProgressSeries returns the daily-quota chart. Query: days, goalId, mood.
func GetProgressSeries(c *fiber.Ctx) error {
	var opts analytics.SeriesOptions
	if err := c.QueryParser(&opts); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid query parameters",
		})
	}

	view := deps.Tracker.View()
	return c.JSON(analytics.ProgressSeries(view.Goals, view.Entries, view.Now, opts))
}

func GetWellnessSeries(c *fiber.Ctx) error {
	view := deps.Tracker.View()
	days := c.QueryInt("days", analytics.DefaultWellnessDays)
	return c.JSON(analytics.WellnessSeries(view.Entries, view.Now, days))
}

// GetCalendar returns the month grid for ?year=&month=, defaulting to the
// current month.
func GetCalendar(c *fiber.Ctx) error {
	view := deps.Tracker.View()
	year := c.QueryInt("year", view.Now.Year())
	month := c.QueryInt("month", int(view.Now.Month()))

	cal, err := analytics.Calendar(view.Entries, year, time.Month(month), view.Now)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(cal)
}

func GetMomentum(c *fiber.Ctx) error {
	goals := deps.Tracker.Goals()
	return c.JSON(analytics.GoalMomentum(goals, models.GoalStatus(c.Query("status"))))
}

func GetGoalHistory(c *fiber.Ctx) error {
	view := deps.Tracker.View()
	return c.JSON(analytics.HistoricalGoals(view.Goals, view.Entries, models.GoalStatus(c.Query("status"))))
}

type insightRequest struct {
	Deep  bool   `json:"deep"`
	Model string `json:"model"`
}

// GenerateInsight runs an AI analysis over current goals and journal. It
// always answers 200; AI failures come back as a fallback insight.
func GenerateInsight(c *fiber.Ctx) error {
	var req insightRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
	}

	prefs := deps.Settings.Preferences()
	model := req.Model
	if model == "" {
		model = prefs.PreferredModel
	}

	view := deps.Tracker.View()
	out := deps.Insights.Insight(c.UserContext(), services.InsightRequest{
		Goals:    view.Goals,
		Entries:  view.Entries,
		Model:    model,
		Deep:     req.Deep,
		Language: prefs.Language,
		APIKey:   prefs.APIKey,
	})
	return c.JSON(out)
}

func GetLastInsight(c *fiber.Ctx) error {
	out, ok := deps.Insights.Last()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No insight generated yet",
		})
	}
	return c.JSON(out)
}
