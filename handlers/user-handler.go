package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rayansaffron/storefront/apperr"
	"github.com/rayansaffron/storefront/middleware"
	"github.com/rayansaffron/storefront/response"
)

type UserHandler struct {
	users UserStore
}

func NewUserHandler(users UserStore) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return response.Error(c, err)
	}

	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, newUserResponse(&users[i]))
	}
	return response.Success(c, fiber.StatusOK, "Users found", fiber.Map{
		"count": len(out),
		"users": out,
	})
}

func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	const op = "handler.DeleteUser"

	id := c.Params("id")
	if id == "" {
		return response.Error(c, apperr.Errorf(apperr.KindInvalidRequest, op, "User ID is required"))
	}
	if identity, ok := middleware.CurrentIdentity(c); ok && identity.ID == id {
		return response.Error(c, apperr.Errorf(apperr.KindInvalidRequest, op, "Cannot delete your own account"))
	}

	if err := h.users.Delete(c.UserContext(), id); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusOK, "User deleted successfully", nil)
}
