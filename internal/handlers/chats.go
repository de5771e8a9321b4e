package handlers

import (
	"github.com/arnold/lifesync-api/internal/models"
	"github.com/arnold/lifesync-api/internal/services"
	"github.com/arnold/lifesync-api/internal/tracker"
	"github.com/gofiber/fiber/v2"
)

func GetChats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"sessions": deps.Coach.Sessions(),
		"activeId": deps.Coach.ActiveID(),
	})
}

func CreateChat(c *fiber.Ctx) error {
	session := deps.Coach.Create(deps.Settings.Preferences().Language)
	WS.Broadcast(WSEvent{Type: EventChatUpdated, Data: fiber.Map{"id": session.ID}})
	return c.Status(fiber.StatusCreated).JSON(session)
}

func DeleteChat(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := deps.Coach.Delete(id); err != nil {
		return respondError(c, err)
	}

	WS.Broadcast(WSEvent{Type: EventChatUpdated, Data: fiber.Map{"id": id}})
	return c.SendStatus(fiber.StatusNoContent)
}

// SendChatMessage posts a message to the coach and waits for the reply.
func SendChatMessage(c *fiber.Ctx) error {
	var req models.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := tracker.Validate(req); err != nil {
		return respondError(c, err)
	}

	prefs := deps.Settings.Preferences()
	view := deps.Tracker.View()
	session, err := deps.Coach.Send(c.UserContext(), services.SendRequest{
		SessionID: req.SessionID,
		Text:      req.Text,
		Language:  prefs.Language,
		Model:     prefs.PreferredModel,
		APIKey:    prefs.APIKey,
		Goals:     view.Goals,
		Entries:   view.Entries,
	})
	if err != nil {
		return respondError(c, err)
	}

	WS.Broadcast(WSEvent{Type: EventChatUpdated, Data: fiber.Map{"id": session.ID}})
	return c.JSON(session)
}
