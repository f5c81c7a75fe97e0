package handlers

import (
	"errors"
	"log"

	"payvault/internal/middleware"
	"payvault/internal/services/auth"
	"payvault/internal/services/user"
	"payvault/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService auth.Service
	userService user.Service
}

func NewAuthHandler(authService auth.Service, userService user.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// Register creates a user together with an empty account.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input user.RegisterRequest
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	created, err := h.userService.Register(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrMissingFields), errors.Is(err, user.ErrWeakPassword):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, user.ErrAlreadyRegistered):
			return response.Conflict(c, err.Error())
		default:
			log.Printf("registration failed: %v", err)
			return response.ServerError(c, "Registration failed")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": fiber.Map{
			"id":       created.ID,
			"username": created.Username,
			"email":    created.Email,
		},
	})
}

// Login authenticates a user and returns JWT tokens.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.Username == "" || input.Password == "" {
		return response.BadRequest(c, "Username and password are required")
	}

	loggedIn, accessToken, refreshToken, err := h.authService.Login(c.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return response.Error(c, fiber.StatusUnauthorized, "Invalid username or password")
		}
		return response.ServerError(c, "Authentication failed")
	}

	return c.JSON(fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user": fiber.Map{
			"id":       loggedIn.ID,
			"username": loggedIn.Username,
			"role":     loggedIn.Role,
		},
	})
}

// Refresh exchanges a refresh token for a new token pair.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&input); err != nil || input.RefreshToken == "" {
		return response.Error(c, fiber.StatusUnauthorized, "Refresh token not provided")
	}

	accessToken, refreshToken, err := h.authService.RefreshTokens(c.Context(), input.RefreshToken)
	if err != nil {
		log.Printf("token refresh failed: %v", err)
		return response.Error(c, fiber.StatusUnauthorized, "Invalid refresh token")
	}

	return c.JSON(fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// ChangePassword replaces the caller's password. All outstanding
// tokens are invalidated, so the client must log in again.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	claims, err := middleware.ExtractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.authService.ChangePassword(c.Context(), claims.UserID, input.OldPassword, input.NewPassword); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return response.Error(c, fiber.StatusUnauthorized, "Invalid old password")
		case errors.Is(err, auth.ErrWeakPassword):
			return response.BadRequest(c, err.Error())
		default:
			log.Printf("password change failed for user %d: %v", claims.UserID, err)
			return response.ServerError(c, "Password change failed")
		}
	}

	return response.Success(c, "password changed", nil)
}

// Logout invalidates all outstanding tokens for the user.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, err := middleware.ExtractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	if err := h.authService.Logout(c.Context(), claims.UserID); err != nil {
		return response.ServerError(c, "Logout failed")
	}
	return response.Success(c, "logged out", nil)
}
