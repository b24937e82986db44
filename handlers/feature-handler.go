package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rayansaffron/storefront/apperr"
	"github.com/rayansaffron/storefront/response"
)

type FeatureHandler struct {
	notifier Notifier
}

func NewFeatureHandler(notifier Notifier) *FeatureHandler {
	return &FeatureHandler{notifier: notifier}
}

// SendEmail forwards a visitor's contact address to the shop's Telegram chat.
func (h *FeatureHandler) SendEmail(c *fiber.Ctx) error {
	type ContactData struct {
		Email string `json:"email" validate:"required,email"`
	}

	input := new(ContactData)
	if err := parseBody(c, input); err != nil {
		return response.Error(c, err)
	}

	if err := h.notifier.NotifyContact(c.UserContext(), normalizeEmail(input.Email)); err != nil {
		return response.Error(c, apperr.E(apperr.KindInternal, "handler.SendEmail", err))
	}
	return response.Success(c, fiber.StatusOK, "Email sent to Telegram!", nil)
}
