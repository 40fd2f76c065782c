package handlers

import (
	"errors"

	"talkastro/internal/repositories"
	"talkastro/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// AstrologerHandler serves the public astrologer directory.
type AstrologerHandler struct {
	astrologerRepo repositories.AstrologerRepository
}

func NewAstrologerHandler(astrologerRepo repositories.AstrologerRepository) *AstrologerHandler {
	return &AstrologerHandler{astrologerRepo: astrologerRepo}
}

func (h *AstrologerHandler) List(c *fiber.Ctx) error {
	filter := repositories.AstrologerFilter{
		Specialty: c.Query("specialty"),
		Language:  c.Query("language"),
		MaxPrice:  c.Query("max_price"),
	}
	limit, offset := pagination(c)

	astrologers, total, err := h.astrologerRepo.ListApproved(c.Context(), filter, limit, offset)
	if err != nil {
		return response.ServerError(c, "Failed to list astrologers")
	}

	return response.Success(c, "OK", fiber.Map{
		"astrologers": astrologers,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}

func (h *AstrologerHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid astrologer id")
	}

	astrologer, err := h.astrologerRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrAstrologerNotFound) {
			return response.NotFound(c, "Astrologer not found")
		}
		return response.ServerError(c, "Failed to get astrologer")
	}
	if !astrologer.Approved {
		return response.NotFound(c, "Astrologer not found")
	}

	return response.Success(c, "OK", astrologer)
}
