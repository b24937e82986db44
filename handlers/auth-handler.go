package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/rayansaffron/storefront/apperr"
	"github.com/rayansaffron/storefront/auth"
	"github.com/rayansaffron/storefront/models"
	"github.com/rayansaffron/storefront/response"
)

type userResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

type AuthHandler struct {
	users  UserStore
	tokens TokenIssuer
}

func NewAuthHandler(users UserStore, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	type RegisterData struct {
		Username string `json:"username" validate:"required,min=3,max=50"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	input := new(RegisterData)
	if err := parseBody(c, input); err != nil {
		return response.Error(c, err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return response.Error(c, apperr.E(apperr.KindInternal, "handler.Register", err))
	}

	user := &models.User{
		Username: strings.TrimSpace(input.Username),
		Email:    normalizeEmail(input.Email),
		Password: hash,
	}
	if err := h.users.Register(c.UserContext(), user); err != nil {
		return response.Error(c, err)
	}

	tokenStr, err := h.tokens.Issue(user)
	if err != nil {
		return response.Error(c, err)
	}

	message := "Customer registered successfully"
	if user.IsAdmin() {
		message = "First user registered as Admin"
	}
	return response.Success(c, fiber.StatusCreated, message, fiber.Map{
		"token": tokenStr,
		"user":  newUserResponse(user),
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	type LoginData struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	input := new(LoginData)
	if err := parseBody(c, input); err != nil {
		return response.Error(c, err)
	}

	invalid := apperr.Errorf(apperr.KindUnauthorized, "handler.Login", "Invalid credentials")

	user, err := h.users.FindByEmail(c.UserContext(), normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return response.Error(c, invalid)
		}
		return response.Error(c, err)
	}
	if !auth.CheckPasswordHash(input.Password, user.Password) {
		return response.Error(c, invalid)
	}

	tokenStr, err := h.tokens.Issue(user)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, fiber.StatusOK, "Login successful", fiber.Map{
		"token": tokenStr,
		"user":  newUserResponse(user),
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
