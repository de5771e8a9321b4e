package handlers

import (
	"net/url"

	"github.com/arnold/lifesync-api/internal/models"
	"github.com/arnold/lifesync-api/internal/tracker"
	"github.com/gofiber/fiber/v2"
)

// GetJournal returns entries newest first, optionally filtered by search
// text, tag or kind.
func GetJournal(c *fiber.Ctx) error {
	var f models.EntryFilter
	if err := c.QueryParser(&f); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid query parameters",
		})
	}
	if err := tracker.Validate(f); err != nil {
		return respondError(c, err)
	}
	return c.JSON(deps.Tracker.Entries(f))
}

func GetJournalTags(c *fiber.Ctx) error {
	return c.JSON(deps.Tracker.Tags())
}

func CreateJournalEntry(c *fiber.Ctx) error {
	var req models.CreateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	entry, err := deps.Tracker.AddEntry(req)
	if err != nil {
		return respondError(c, err)
	}

	WS.Broadcast(WSEvent{Type: EventJournalUpdated, Data: entry})
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func UpdateJournalEntry(c *fiber.Ctx) error {
	var req models.UpdateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	entry, err := deps.Tracker.EditEntry(c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}

	WS.Broadcast(WSEvent{Type: EventJournalUpdated, Data: entry})
	return c.JSON(entry)
}

func RemoveJournalTag(c *fiber.Ctx) error {
	tag, err := url.PathUnescape(c.Params("tag"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tag"})
	}

	entry, err := deps.Tracker.RemoveTag(c.Params("id"), tag)
	if err != nil {
		return respondError(c, err)
	}

	WS.Broadcast(WSEvent{Type: EventJournalUpdated, Data: entry})
	return c.JSON(entry)
}

func DeleteJournalEntry(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := deps.Tracker.DeleteEntry(id); err != nil {
		return respondError(c, err)
	}

	WS.Broadcast(WSEvent{Type: EventJournalDeleted, Data: fiber.Map{"id": id}})
	return c.SendStatus(fiber.StatusNoContent)
}

// GenerateJournalEntry drafts entry text with AI. The draft is returned,
// not saved.
func GenerateJournalEntry(c *fiber.Ctx) error {
	var req models.GenerateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := tracker.Validate(req); err != nil {
		return respondError(c, err)
	}

	prefs := deps.Settings.Preferences()
	text := deps.Drafter.Draft(c.UserContext(), req.Prompt, prefs.Language, prefs.APIKey)
	return c.JSON(fiber.Map{"content": text})
}
