package handlers

import (
	"errors"

	"talkastro/internal/middleware"
	"talkastro/internal/services/ledger"
	"talkastro/internal/services/payment"
	"talkastro/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type WalletHandler struct {
	ledgerService  ledger.Service
	paymentService payment.Service
}

func NewWalletHandler(ledgerService ledger.Service, paymentService payment.Service) *WalletHandler {
	return &WalletHandler{
		ledgerService:  ledgerService,
		paymentService: paymentService,
	}
}

// ledgerError maps ledger failures onto HTTP statuses. Validation failures
// are the caller's fault, insufficient balance means pay up, and storage
// trouble is retryable.
func ledgerError(c *fiber.Ctx, err error) error {
	var storageErr *ledger.StorageError
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return response.PaymentRequired(c, "Insufficient wallet balance")
	case errors.As(err, &storageErr):
		return response.ServiceUnavailable(c, "Wallet temporarily unavailable, please retry")
	default:
		return response.ServerError(c, "Wallet operation failed")
	}
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return response.Unauthorized(c)
	}

	wallet, err := h.ledgerService.GetWallet(c.Context(), claims.UserID)
	if err != nil {
		return ledgerError(c, err)
	}
	return response.Success(c, "OK", fiber.Map{"wallet": wallet})
}

func (h *WalletHandler) GetTransactions(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return response.Unauthorized(c)
	}

	limit, offset := pagination(c)
	transactions, total, err := h.ledgerService.Transactions(c.Context(), claims.UserID, limit, offset)
	if err != nil {
		return ledgerError(c, err)
	}

	return response.Success(c, "OK", fiber.Map{
		"transactions": transactions,
		"total":        total,
		"limit":        limit,
		"offset":       offset,
	})
}

func (h *WalletHandler) Recharge(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return response.Unauthorized(c)
	}

	var input struct {
		Amount    string `json:"amount"`
		CardToken string `json:"card_token"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	amount, err := decimal.NewFromString(input.Amount)
	if err != nil {
		return response.BadRequest(c, "Invalid amount")
	}

	wallet, err := h.paymentService.Recharge(c.Context(), claims.UserID, amount, input.CardToken)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrMissingToken):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, payment.ErrChargeDeclined):
			return response.PaymentRequired(c, err.Error())
		default:
			return ledgerError(c, err)
		}
	}

	return response.Success(c, "Recharge successful", fiber.Map{"wallet": wallet})
}

func pagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
