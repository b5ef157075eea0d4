package cart

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
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart/items", h.setItem)
	app.Delete("/api/v1/cart/items/:productId<[0-9]+>", h.removeItem)
}

type setItemRequest struct {
	ProductID int64  `json:"productId"`
	VariantID *int64 `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	items, err := h.service.Snapshot(userID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) setItem(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(setItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	items, err := h.service.SetItem(userID, payload.ProductID, payload.VariantID, payload.Quantity)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	productID, err := strconv.ParseInt(c.Params("productId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}
	var variantID *int64
	if raw := c.Query("variantId"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid variant id"})
		}
		variantID = &v
	}
	items, err := h.service.RemoveItem(userID, productID, variantID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(items)
}
