package order

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clorindastore/storefront-backend/internal/apperr"
	"github.com/clorindastore/storefront-backend/internal/auth"
)

// Handler serves the user-facing order history endpoints.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/orders", h.listOrders)
	app.Get("/api/v1/orders/:orderNumber", h.getOrder)
}

func (h *Handler) listOrders(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	orders, err := h.service.ListUserOrders(userID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	ord, err := h.service.GetUserOrder(userID, c.Params("orderNumber"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(ord)
}
