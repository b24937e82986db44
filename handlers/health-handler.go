package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rayansaffron/storefront/response"
)

// Health reports liveness and which asset store uploads go to.
func Health(assetStore string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return response.Success(c, fiber.StatusOK, "ok", fiber.Map{
			"assetStore": assetStore,
			"configured": assetStore != "",
		})
	}
}
