package routes

import (
	"github.com/arnold/lifesync-api/internal/handlers"
	"github.com/arnold/lifesync-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func Setup(app *fiber.App, auth *middleware.Auth) {
	api := app.Group("/api")

	api.Post("/auth/unlock", handlers.Unlock)

	protected := api.Group("/", auth.Protected())

	goals := protected.Group("/goals")
	goals.Get("/", handlers.GetGoals)
	goals.Post("/", handlers.CreateGoal)
	goals.Delete("/:id", handlers.DeleteGoal)
	goals.Put("/:id/progress", handlers.UpdateGoalProgress)
	goals.Post("/:id/subtasks/:subtaskId/toggle", handlers.ToggleSubtask)
	goals.Post("/:id/done", handlers.MarkGoalDone)
	goals.Post("/:id/extend", handlers.ExtendGoal)
	goals.Post("/:id/fail", handlers.FailGoal)
	goals.Get("/:id/time", handlers.GetGoalTime)

	journal := protected.Group("/journal")
	journal.Get("/", handlers.GetJournal)
	journal.Post("/", handlers.CreateJournalEntry)
	journal.Get("/tags", handlers.GetJournalTags)
	journal.Post("/generate", handlers.GenerateJournalEntry)
	journal.Post("/media", handlers.UploadMedia)
	journal.Put("/:id", handlers.UpdateJournalEntry)
	journal.Delete("/:id", handlers.DeleteJournalEntry)
	journal.Delete("/:id/tags/:tag", handlers.RemoveJournalTag)

	stats := protected.Group("/analytics")
	stats.Get("/dashboard", handlers.GetDashboard)
	stats.Get("/streaks", handlers.GetStreaks)
	stats.Get("/series", handlers.GetProgressSeries)
	stats.Get("/calendar", handlers.GetCalendar)
	stats.Get("/wellness", handlers.GetWellnessSeries)
	stats.Get("/momentum", handlers.GetMomentum)
	stats.Get("/history", handlers.GetGoalHistory)
	stats.Get("/insight", handlers.GetLastInsight)
	stats.Post("/insight", handlers.GenerateInsight)

	chats := protected.Group("/chats")
	chats.Get("/", handlers.GetChats)
	chats.Post("/", handlers.CreateChat)
	chats.Post("/messages", handlers.SendChatMessage)
	chats.Delete("/:id", handlers.DeleteChat)

	settings := protected.Group("/settings")
	settings.Get("/", handlers.GetSettings)
	settings.Put("/", handlers.UpdateSettings)
	settings.Put("/virtual-date", handlers.SetVirtualDate)
	settings.Delete("/virtual-date", handlers.ClearVirtualDate)

	protected.Get("/export", handlers.ExportData)
	protected.Post("/import", handlers.ImportData)

	// Device token for push notifications
	protected.Post("/device-token", handlers.RegisterDeviceToken)

	// WebSocket for live change events
	app.Use("/ws", handlers.WebSocketUpgrade())
	app.Get("/ws", websocket.New(handlers.HandleWebSocket))
}
