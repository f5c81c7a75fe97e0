package handlers

import (
	"errors"
	"log"

	"payvault/internal/middleware"
	"payvault/internal/services/funding"
	"payvault/internal/services/history"
	"payvault/internal/services/ledger"
	"payvault/internal/utils/pagination"
	"payvault/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// TransferHandler exposes the ledger engine and the history query side.
type TransferHandler struct {
	ledgerService  ledger.Service
	historyService history.Service
	fundingSource  funding.Source
}

func NewTransferHandler(ledgerService ledger.Service, historyService history.Service, fundingSource funding.Source) *TransferHandler {
	return &TransferHandler{
		ledgerService:  ledgerService,
		historyService: historyService,
		fundingSource:  fundingSource,
	}
}

// CreateTransfer handles POST /api/transfers.
func (h *TransferHandler) CreateTransfer(c *fiber.Ctx) error {
	claims, err := middleware.ExtractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		ReceiverID       uint            `json:"receiver_id"`
		ReceiverUsername string          `json:"receiver_username"`
		Amount           decimal.Decimal `json:"amount"`
		Description      string          `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	receiver := ledger.ReceiverRef{UserID: input.ReceiverID, Username: input.ReceiverUsername}
	transfer, err := h.ledgerService.Transfer(c.Context(), claims.UserID, receiver, input.Amount, input.Description)
	if err != nil {
		return ledgerError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"transfer": transfer})
}

// Deposit handles POST /api/deposits. When card details are supplied
// the card is tokenized first; a declined card never reaches the
// ledger.
func (h *TransferHandler) Deposit(c *fiber.Ctx) error {
	claims, err := middleware.ExtractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		Amount      decimal.Decimal      `json:"amount"`
		Description string               `json:"description"`
		Card        *funding.CardDetails `json:"card"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Card != nil && h.fundingSource != nil {
		if _, err := h.fundingSource.Tokenize(c.Context(), *input.Card); err != nil {
			log.Printf("deposit funding rejected for user %d: %v", claims.UserID, err)
			return response.UnprocessableEntity(c, "Card could not be processed")
		}
	}

	transfer, err := h.ledgerService.Deposit(c.Context(), claims.UserID, input.Amount, input.Description)
	if err != nil {
		return ledgerError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"transfer": transfer})
}

// GetTransfer handles GET /api/transfers/:id.
func (h *TransferHandler) GetTransfer(c *fiber.Ctx) error {
	claims, err := middleware.ExtractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	transfer, err := h.historyService.GetTransfer(c.Context(), c.Params("id"), claims.UserID)
	if err != nil {
		if errors.Is(err, history.ErrTransferNotFound) {
			return response.NotFound(c, "Transfer not found")
		}
		return response.ServerError(c, "Failed to get transfer")
	}

	return c.JSON(fiber.Map{"transfer": transfer})
}

// ListTransfers handles GET /api/transfers.
func (h *TransferHandler) ListTransfers(c *fiber.Ctx) error {
	claims, err := middleware.ExtractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	p := pagination.ParseFromRequest(c)
	query := history.Query{
		Page:         p.Page,
		Limit:        p.Limit,
		Status:       c.Query("status"),
		Counterparty: c.Query("counterparty"),
		Description:  c.Query("description"),
	}

	page, err := h.historyService.ListTransfers(c.Context(), claims.UserID, query)
	if err != nil {
		return response.ServerError(c, "Failed to list transfers")
	}

	p.Limit = page.Limit
	p.Total = page.Total
	return c.JSON(pagination.Response(p, page.Items))
}

// ledgerError maps the engine's error taxonomy onto stable HTTP
// statuses so clients can tell "retry" from "do not retry".
func ledgerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		return response.UnprocessableEntity(c, "Amount must be greater than zero and the receiver must differ from the sender")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return response.UnprocessableEntity(c, "Insufficient funds")
	case errors.Is(err, ledger.ErrAccountNotFound):
		return response.NotFound(c, "Account not found")
	case errors.Is(err, ledger.ErrConcurrentModification):
		return response.Conflict(c, "Account was modified concurrently, retry the request")
	default:
		log.Printf("ledger operation failed: %v", err)
		return response.ServerError(c, "Transaction failed")
	}
}
