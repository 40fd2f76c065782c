package handlers

import (
	"errors"

	"talkastro/internal/repositories"
	"talkastro/internal/services/admin"
	"talkastro/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	adminService admin.Service
}

func NewAdminHandler(adminService admin.Service) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.adminService.Stats(c.Context())
	if err != nil {
		return response.ServerError(c, "Failed to compute platform stats")
	}
	return response.Success(c, "OK", stats)
}

func (h *AdminHandler) Revenue(c *fiber.Ctx) error {
	revenue, err := h.adminService.ComputeRevenue(c.Context())
	if err != nil {
		return response.ServerError(c, "Failed to compute revenue")
	}
	return response.Success(c, "OK", fiber.Map{
		"total_revenue": revenue,
		"currency":      "INR",
	})
}

func (h *AdminHandler) RecentActivity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	items, err := h.adminService.RecentActivity(c.Context(), limit)
	if err != nil {
		return response.ServerError(c, "Failed to load recent activity")
	}
	return response.Success(c, "OK", fiber.Map{"activity": items})
}

func (h *AdminHandler) Wallets(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	wallets, total, err := h.adminService.Wallets(c.Context(), limit, offset)
	if err != nil {
		return response.ServerError(c, "Failed to list wallets")
	}
	return response.Success(c, "OK", fiber.Map{
		"wallets": wallets,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *AdminHandler) PendingAstrologers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultPageSize)
	pending, err := h.adminService.PendingAstrologers(c.Context(), limit)
	if err != nil {
		return response.ServerError(c, "Failed to list pending astrologers")
	}
	return response.Success(c, "OK", fiber.Map{"astrologers": pending})
}

func (h *AdminHandler) ApproveAstrologer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid astrologer id")
	}

	if err := h.adminService.ApproveAstrologer(c.Context(), uint(id)); err != nil {
		if errors.Is(err, repositories.ErrAstrologerNotFound) {
			return response.NotFound(c, "Astrologer not found")
		}
		return response.ServerError(c, "Failed to approve astrologer")
	}
	return response.Success(c, "Astrologer approved", nil)
}
