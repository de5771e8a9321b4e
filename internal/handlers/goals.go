package handlers

import (
	"time"

	"github.com/arnold/lifesync-api/internal/clock"
	"github.com/arnold/lifesync-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

// GoalView is a goal plus the values clients derive from it.
type GoalView struct {
	models.Goal
	ProgressPercent int             `json:"progressPercent"`
	DailyQuotaMet   bool            `json:"dailyQuotaMet"`
	Frozen          bool            `json:"frozen"`
	Time            models.TimeInfo `json:"time"`
}

func newGoalView(g models.Goal, now time.Time) GoalView {
	return GoalView{
		Goal:            g,
		ProgressPercent: g.ProgressPercent(),
		DailyQuotaMet:   g.DailyQuotaMet(),
		Frozen:          g.IsFrozen(clock.DateKey(now)),
		Time:            g.RemainingTime(now),
	}
}

func GetGoals(c *fiber.Ctx) error {
	view := deps.Tracker.View()
	status := models.GoalStatus(c.Query("status"))

	out := make([]GoalView, 0, len(view.Goals))
	for _, g := range view.Goals {
		if status != "" && g.Status != status {
			continue
		}
		out = append(out, newGoalView(g, view.Now))
	}
	return c.JSON(out)
}

func CreateGoal(c *fiber.Ctx) error {
	var req models.CreateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	goal, err := deps.Tracker.CreateGoal(req)
	if err != nil {
		return respondError(c, err)
	}

	WS.Broadcast(WSEvent{Type: EventGoalCreated, Data: goal})
	return c.Status(fiber.StatusCreated).JSON(goalResponse(goal))
}

func DeleteGoal(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := deps.Tracker.DeleteGoal(id); err != nil {
		return respondError(c, err)
	}

	WS.Broadcast(WSEvent{Type: EventGoalDeleted, Data: fiber.Map{"id": id}})
	return c.SendStatus(fiber.StatusNoContent)
}

func UpdateGoalProgress(c *fiber.Ctx) error {
	var req models.UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	goal, err := deps.Tracker.UpdateProgress(c.Params("id"), req.Value)
	return goalChanged(c, goal, err)
}

func ToggleSubtask(c *fiber.Ctx) error {
	goal, err := deps.Tracker.ToggleSubtask(c.Params("id"), c.Params("subtaskId"))
	return goalChanged(c, goal, err)
}

func MarkGoalDone(c *fiber.Ctx) error {
	goal, err := deps.Tracker.MarkDone(c.Params("id"))
	return goalChanged(c, goal, err)
}

func ExtendGoal(c *fiber.Ctx) error {
	var req models.ExtendGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	goal, err := deps.Tracker.Extend(c.Params("id"), req.Days)
	return goalChanged(c, goal, err)
}

func FailGoal(c *fiber.Ctx) error {
	goal, err := deps.Tracker.Fail(c.Params("id"))
	return goalChanged(c, goal, err)
}

func GetGoalTime(c *fiber.Ctx) error {
	info, err := deps.Tracker.TimeInfo(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(info)
}

// goalChanged answers a goal mutation and notifies websocket clients.
func goalChanged(c *fiber.Ctx, goal models.Goal, err error) error {
	if err != nil {
		return respondError(c, err)
	}

	event := EventGoalUpdated
	if goal.Status == models.StatusCompleted {
		event = EventGoalCompleted
	}
	WS.Broadcast(WSEvent{Type: event, Data: goal})
	return c.JSON(goalResponse(goal))
}

func goalResponse(g models.Goal) GoalView {
	return newGoalView(g, deps.Tracker.Now())
}
