package handlers

import (
	"errors"

	"github.com/arnold/lifesync-api/internal/backup"
	"github.com/arnold/lifesync-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

func GetSettings(c *fiber.Ctx) error {
	return c.JSON(deps.Settings.Preferences().Masked())
}

func UpdateSettings(c *fiber.Ctx) error {
	var req models.UpdatePreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	prefs, err := deps.Settings.Update(req)
	if err != nil {
		return respondError(c, err)
	}

	WS.Broadcast(WSEvent{Type: EventSettingsUpdated})
	return c.JSON(prefs.Masked())
}

// SetVirtualDate moves the app's notion of today. The tracker ticks right
// away so rollovers happen before the response.
func SetVirtualDate(c *fiber.Ctx) error {
	var req models.VirtualDateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := deps.Settings.SetVirtualDate(req.Date); err != nil {
		return respondError(c, err)
	}
	deps.Tracker.Tick()

	WS.Broadcast(WSEvent{Type: EventSettingsUpdated})
	return c.JSON(deps.Settings.Preferences().Masked())
}

func ClearVirtualDate(c *fiber.Ctx) error {
	deps.Settings.ClearVirtualDate()
	deps.Tracker.Tick()

	WS.Broadcast(WSEvent{Type: EventSettingsUpdated})
	return c.JSON(deps.Settings.Preferences().Masked())
}

// RegisterDeviceToken stores the FCM token used for deadline reminders.
func RegisterDeviceToken(c *fiber.Ctx) error {
	var req models.DeviceTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := deps.Settings.SetDeviceToken(req.Token); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func ExportData(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="lifesync-backup.json"`)
	return c.JSON(backup.Export(deps.Store))
}

// ImportData replaces all data with the uploaded backup and reloads every
// in-memory collection from storage.
func ImportData(c *fiber.Ctx) error {
	if err := backup.Import(deps.Store, c.Body()); err != nil {
		if errors.Is(err, backup.ErrNotObject) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return respondError(c, err)
	}

	deps.Settings.Load()
	deps.Tracker.Load()
	deps.Coach.Load()
	deps.Log.Infow("Backup imported")

	WS.Broadcast(WSEvent{Type: EventDataImported})
	return c.JSON(fiber.Map{"message": "Backup imported"})
}
