package handler

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/rayansaffron/storefront/response"
)

const maxChatMessage = 1000

type ChatHandler struct {
	model ChatModel
	log   *slog.Logger
}

// NewChatHandler accepts a nil model when no API key is configured.
func NewChatHandler(model ChatModel, log *slog.Logger) *ChatHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ChatHandler{model: model, log: log}
}

func (h *ChatHandler) Message(c *fiber.Ctx) error {
	type ChatRequest struct {
		Message string `json:"message"`
	}

	var req ChatRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Please provide a message",
			"data":    nil,
		})
	}

	if len(req.Message) > maxChatMessage {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Message too long (max 1000 characters)",
			"data":    nil,
		})
	}

	if h.model == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "error",
			"message": "Chat is not available right now",
			"data":    nil,
		})
	}

	reply, err := h.model.Reply(c.UserContext(), req.Message)
	if err != nil {
		h.log.Error("chat reply failed", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Sorry, I'm having trouble. Please try again.",
			"data":    nil,
		})
	}

	return response.Success(c, fiber.StatusOK, "Reply generated", fiber.Map{"reply": reply})
}
