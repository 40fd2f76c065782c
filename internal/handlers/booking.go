package handlers

import (
	"errors"
	"time"

	"talkastro/internal/middleware"
	"talkastro/internal/repositories"
	"talkastro/internal/services/booking"
	"talkastro/internal/services/ledger"
	"talkastro/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type BookingHandler struct {
	bookingService booking.Service
}

func NewBookingHandler(bookingService booking.Service) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

func (h *BookingHandler) Create(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return response.Unauthorized(c)
	}

	var input struct {
		AstrologerID uint   `json:"astrologer_id"`
		ServiceType  string `json:"service_type"`
		ScheduledAt  string `json:"scheduled_at"` // RFC 3339
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.AstrologerID == 0 {
		return response.BadRequest(c, "Astrologer id is required")
	}

	scheduledAt, err := time.Parse(time.RFC3339, input.ScheduledAt)
	if err != nil {
		return response.BadRequest(c, "scheduled_at must be RFC 3339")
	}

	created, err := h.bookingService.Create(c.Context(), claims.UserID, input.AstrologerID, input.ServiceType, scheduledAt)
	if err != nil {
		if errors.Is(err, booking.ErrAstrologerUnavailable) {
			return response.BadRequest(c, err.Error())
		}
		return response.ServerError(c, "Failed to create booking")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Booking created",
		"data":    created,
	})
}

func (h *BookingHandler) ListMine(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return response.Unauthorized(c)
	}
	limit, offset := pagination(c)

	bookings, err := h.bookingService.ListForUser(c.Context(), claims.UserID, limit, offset)
	if err != nil {
		return response.ServerError(c, "Failed to list bookings")
	}
	return response.Success(c, "OK", fiber.Map{"bookings": bookings})
}

func (h *BookingHandler) ListForAstrologer(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return response.Unauthorized(c)
	}
	limit, offset := pagination(c)

	bookings, err := h.bookingService.ListForAstrologer(c.Context(), claims.UserID, limit, offset)
	if err != nil {
		if errors.Is(err, repositories.ErrAstrologerNotFound) {
			return response.NotFound(c, "No astrologer profile for this account")
		}
		return response.ServerError(c, "Failed to list bookings")
	}
	return response.Success(c, "OK", fiber.Map{"bookings": bookings})
}

func (h *BookingHandler) Confirm(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return response.Unauthorized(c)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid booking id")
	}

	if err := h.bookingService.Confirm(c.Context(), claims.UserID, uint(id)); err != nil {
		return bookingError(c, err)
	}
	return response.Success(c, "Booking confirmed", nil)
}

// Complete marks the session done. The user's wallet is debited for the
// booking amount; an underfunded wallet comes back as 402 and the booking
// stays open.
func (h *BookingHandler) Complete(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return response.Unauthorized(c)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid booking id")
	}

	completed, err := h.bookingService.Complete(c.Context(), claims.UserID, uint(id))
	if err != nil {
		return bookingError(c, err)
	}
	return response.Success(c, "Booking completed", completed)
}

func (h *BookingHandler) Cancel(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return response.Unauthorized(c)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid booking id")
	}

	if err := h.bookingService.Cancel(c.Context(), claims.UserID, uint(id)); err != nil {
		return bookingError(c, err)
	}
	return response.Success(c, "Booking cancelled", nil)
}

func bookingError(c *fiber.Ctx, err error) error {
	var storageErr *ledger.StorageError
	switch {
	case errors.Is(err, repositories.ErrBookingNotFound):
		return response.NotFound(c, "Booking not found")
	case errors.Is(err, booking.ErrWrongAstrologer), errors.Is(err, booking.ErrWrongUser):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, booking.ErrNotCompletable), errors.Is(err, booking.ErrNotCancellable):
		return response.Error(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return response.PaymentRequired(c, "Insufficient wallet balance for this session")
	case errors.As(err, &storageErr):
		return response.ServiceUnavailable(c, "Wallet temporarily unavailable, please retry")
	default:
		return response.ServerError(c, "Booking operation failed")
	}
}
