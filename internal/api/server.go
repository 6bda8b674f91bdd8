package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

// NewServer wires the HTTP and WebSocket surface over the handlers.
func NewServer(h *Handlers, validator *TokenValidator) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/v1")
	api.Use(AuthRequired(validator))

	api.Get("/users/:user_id", h.getProfile)
	api.Patch("/me", h.updateProfile)

	api.Post("/chats", h.createOrGetChat)
	api.Get("/chats", h.listChats)

	api.Post("/chats/:chat_id/messages", h.sendMessage)
	api.Get("/chats/:chat_id/messages", h.listMessages)
	api.Delete("/chats/:chat_id/messages/:message_id", h.deleteMessage)
	api.Post("/chats/:chat_id/seen", h.markSeen)
	api.Post("/chats/:chat_id/messages/:message_id/reactions", h.toggleReaction)

	api.Post("/redeem", h.redeemCode)
	api.Post("/gifts/points", h.giftPoints)
	api.Post("/gifts/badge", h.giftBadge)

	api.Post("/presence/touch", h.touchPresence)
	api.Get("/presence/:user_id", h.presenceStatus)

	app.Get("/ws/chats", websocket.New(h.chatListSocket(validator)))
	app.Get("/ws/chats/:chat_id", websocket.New(h.messagesSocket(validator)))

	return app
}
