package order

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clorindastore/storefront-backend/internal/apperr"
)

// AdminHandler serves the operator endpoints that progress a paid
// order through packing and shipment. Route registration assumes an
// admin-gating middleware is already applied by the caller.
type AdminHandler struct {
	service *Service
}

func NewAdminHandler(s *Service) *AdminHandler {
	return &AdminHandler{service: s}
}

func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/orders", h.listOrders)
	router.Get("/orders/:orderNumber", h.getOrder)
	router.Patch("/orders/:orderNumber/status", h.updateStatus)
	router.Patch("/orders/:orderNumber/tracking", h.updateTracking)
}

func (h *AdminHandler) listOrders(c *fiber.Ctx) error {
	orders, err := h.service.AdminListOrders()
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(orders)
}

func (h *AdminHandler) getOrder(c *fiber.Ctx) error {
	ord, err := h.service.AdminGetOrder(c.Params("orderNumber"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(ord)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *AdminHandler) updateStatus(c *fiber.Ctx) error {
	payload := new(updateStatusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	ord, err := h.service.AdminUpdateStatus(c.Params("orderNumber"), Status(payload.Status))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(ord)
}

type updateTrackingRequest struct {
	TrackingNumber string `json:"trackingNumber"`
}

func (h *AdminHandler) updateTracking(c *fiber.Ctx) error {
	payload := new(updateTrackingRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if len(payload.TrackingNumber) < 3 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "tracking number is too short"})
	}
	ord, err := h.service.AdminUpdateTracking(c.Params("orderNumber"), payload.TrackingNumber)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(ord)
}
