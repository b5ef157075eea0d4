package checkout

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/clorindastore/storefront-backend/internal/apperr"
	"github.com/clorindastore/storefront-backend/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/checkout/summary", h.getSummary)
	app.Post("/api/v1/checkout/orders", h.createOrder)
}

func (h *Handler) getSummary(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	var addressID *int64
	if raw := c.Query("addressId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid addressId"})
		}
		addressID = &id
	}

	summary, err := h.service.Summary(c.UserContext(), userID, addressID, c.Query("courier"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(summary)
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(CreateOrderInput)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	ord, err := h.service.CreateOrder(c.UserContext(), userID, *payload)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(ord)
}
