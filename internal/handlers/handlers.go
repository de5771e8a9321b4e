package handlers

import (
	"errors"

	"github.com/arnold/lifesync-api/internal/clock"
	"github.com/arnold/lifesync-api/internal/middleware"
	"github.com/arnold/lifesync-api/internal/services"
	"github.com/arnold/lifesync-api/internal/tracker"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Deps are the collaborators the handlers serve requests from.
type Deps struct {
	Tracker  *tracker.Tracker
	Store    tracker.Storage
	Settings *services.Settings
	Coach    *services.Coach
	Insights *services.InsightService
	Drafter  *services.Drafter
	Auth     *middleware.Auth
	Log      *zap.SugaredLogger

	// UploadDir holds journal media files. Defaults to "uploads".
	UploadDir string
}

var deps Deps

// Configure installs the collaborators. Call it before routes.Setup.
func Configure(d Deps) {
	if d.Log == nil {
		d.Log = zap.NewNop().Sugar()
	}
	if d.UploadDir == "" {
		d.UploadDir = "uploads"
	}
	deps = d
	WS = NewHub(d.Log)
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	var verr *tracker.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, tracker.ErrGoalNotFound),
		errors.Is(err, tracker.ErrSubtaskNotFound),
		errors.Is(err, tracker.ErrEntryNotFound),
		errors.Is(err, services.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, tracker.ErrGoalFrozen),
		errors.Is(err, tracker.ErrGoalNotFrozen),
		errors.Is(err, tracker.ErrGoalClosed),
		errors.Is(err, tracker.ErrGoalNotStarted):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, tracker.ErrWrongGoalType),
		errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, clock.ErrInvalidDate):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	deps.Log.Errorw("Request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Invalid request body",
	})
}
