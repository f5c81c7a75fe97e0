package handlers

import (
	"errors"

	"payvault/internal/middleware"
	"payvault/internal/services/balance"
	"payvault/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type BalanceHandler struct {
	balanceService balance.Service
}

func NewBalanceHandler(balanceService balance.Service) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService}
}

// GetBalance returns the caller's current balance, served through the
// snapshot cache.
func (h *BalanceHandler) GetBalance(c *fiber.Ctx) error {
	claims, err := middleware.ExtractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	amount, err := h.balanceService.GetBalance(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, balance.ErrAccountNotFound) {
			return response.NotFound(c, "Account not found")
		}
		return response.ServerError(c, "Failed to get balance")
	}

	return response.Success(c, "balance", fiber.Map{
		"balance": amount,
	})
}
