package payment

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/clorindastore/storefront-backend/internal/apperr"
	"github.com/clorindastore/storefront-backend/internal/auth"
)

// API is the surface the HTTP handler needs from the payment service.
type API interface {
	CreateSession(ctx context.Context, userID int, orderNumber string) (*Session, error)
	HandleNotification(ctx context.Context, n Notification) error
}

type Handler struct {
	service API
}

func NewHandler(s API) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/payments/session", h.createSession)
}

// RegisterPublicRoutes mounts the webhook endpoint. It must stay
// outside the auth middleware: the gateway calls it unauthenticated
// and is verified by signature instead.
func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/v1/payments/notifications", h.notification)
}

func (h *Handler) createSession(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(struct {
		OrderNumber string `json:"orderNumber"`
	})
	if err := c.BodyParser(payload); err != nil || payload.OrderNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "orderNumber is required"})
	}

	sess, err := h.service.CreateSession(c.UserContext(), userID, payload.OrderNumber)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(sess)
}

// notification acknowledges every decodable delivery with 200 so the
// gateway stops redelivering notifications we have already rejected.
// Signature failures are reported in the body but still acknowledged.
func (h *Handler) notification(c *fiber.Ctx) error {
	var n Notification
	if err := c.BodyParser(&n); err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "malformed payload"})
	}

	if err := h.service.HandleNotification(c.UserContext(), n); err != nil {
		msg := "notification not applied"
		if apperr.KindOf(err) == apperr.Security {
			msg = "invalid signature"
		}
		return c.JSON(fiber.Map{"success": false, "message": msg})
	}
	return c.JSON(fiber.Map{"success": true})
}
