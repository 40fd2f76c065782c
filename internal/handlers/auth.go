package handlers

import (
	"errors"

	"talkastro/internal/middleware"
	"talkastro/internal/services/auth"
	"talkastro/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
		Role     string `json:"role"`

		Bio          string `json:"bio"`
		Specialties  string `json:"specialties"`
		Languages    string `json:"languages"`
		Experience   int    `json:"experience"`
		SessionPrice string `json:"session_price"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.Email == "" || input.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}

	price := decimal.Zero
	if input.SessionPrice != "" {
		var err error
		if price, err = decimal.NewFromString(input.SessionPrice); err != nil {
			return response.BadRequest(c, "Invalid session price")
		}
	}

	user, err := h.authService.Register(c.Context(), auth.RegisterInput{
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		Password:     input.Password,
		Role:         input.Role,
		Bio:          input.Bio,
		Specialties:  input.Specialties,
		Languages:    input.Languages,
		Experience:   input.Experience,
		SessionPrice: price,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, auth.ErrEmailTaken):
			return response.Error(c, fiber.StatusConflict, err.Error())
		default:
			return response.ServerError(c, "Failed to register user")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
		"data":    user,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	user, accessToken, refreshToken, err := h.authService.Login(c.Context(), input.Email, input.Password, c.IP())
	if err != nil {
		return response.Error(c, fiber.StatusUnauthorized, "Invalid email or password")
	}

	return response.Success(c, "Login successful", fiber.Map{
		"user":          user,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&input); err != nil || input.RefreshToken == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	accessToken, refreshToken, err := h.authService.RefreshTokens(c.Context(), input.RefreshToken)
	if err != nil {
		return response.Error(c, fiber.StatusUnauthorized, "Invalid refresh token")
	}

	return response.Success(c, "Token refreshed", fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return response.Unauthorized(c)
	}
	if err := h.authService.Logout(c.Context(), claims.UserID); err != nil {
		return response.ServerError(c, "Failed to log out")
	}
	return response.Success(c, "Logged out", nil)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return response.Unauthorized(c)
	}

	var input struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	if err := h.authService.ChangePassword(c.Context(), claims.UserID, input.OldPassword, input.NewPassword); err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			return response.BadRequest(c, err.Error())
		}
		return response.BadRequest(c, err.Error())
	}
	return response.Success(c, "Password changed", nil)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return response.Unauthorized(c)
	}
	user, err := h.authService.GetUserByID(c.Context(), claims.UserID)
	if err != nil {
		return response.NotFound(c, "User not found")
	}
	return response.Success(c, "OK", user)
}
