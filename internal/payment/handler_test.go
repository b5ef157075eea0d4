package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/clorindastore/storefront-backend/internal/apperr"
)

type stubAPI struct {
	session    *Session
	sessionErr error
	notifyErr  error
	notified   []Notification
}

func (s *stubAPI) CreateSession(ctx context.Context, userID int, orderNumber string) (*Session, error) {
	if s.sessionErr != nil {
		return nil, s.sessionErr
	}
	return s.session, nil
}

func (s *stubAPI) HandleNotification(ctx context.Context, n Notification) error {
	s.notified = append(s.notified, n)
	return s.notifyErr
}

func notifyApp(api API) *fiber.App {
	app := fiber.New()
	NewHandler(api).RegisterPublicRoutes(app)
	return app
}

func sessionApp(api API) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": float64(7)})
		c.Locals("user", tok)
		return c.Next()
	})
	NewHandler(api).RegisterProtectedRoutes(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (int, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	var decoded map[string]any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("decode %q: %v", data, err)
		}
	}
	return resp.StatusCode, decoded
}

func TestNotificationEndpointAcknowledgesSuccess(t *testing.T) {
	api := &stubAPI{}
	status, body := postJSON(t, notifyApp(api), "/api/v1/payments/notifications",
		Notification{OrderID: "CLRD-2025-00042", TransactionStatus: "settlement"})

	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["success"] != true {
		t.Fatalf("expected success, got %v", body)
	}
	if len(api.notified) != 1 || api.notified[0].OrderID != "CLRD-2025-00042" {
		t.Fatalf("payload not forwarded: %+v", api.notified)
	}
}

func TestNotificationEndpointAcknowledgesRejections(t *testing.T) {
	api := &stubAPI{notifyErr: apperr.New(apperr.Security, apperr.CodeInvalidSignature, "signature mismatch")}
	status, body := postJSON(t, notifyApp(api), "/api/v1/payments/notifications",
		Notification{OrderID: "CLRD-2025-00042"})

	if status != fiber.StatusOK {
		t.Fatalf("retry storms: rejected notifications still answer 200, got %d", status)
	}
	if body["success"] != false || body["message"] != "invalid signature" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestNotificationEndpointAcknowledgesFailures(t *testing.T) {
	api := &stubAPI{notifyErr: apperr.New(apperr.Conflict, apperr.CodeStockExhaustedAtSettle, "stock exhausted")}
	status, body := postJSON(t, notifyApp(api), "/api/v1/payments/notifications",
		Notification{OrderID: "CLRD-2025-00042"})

	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["success"] != false {
		t.Fatalf("unexpected body %v", body)
	}
	if body["message"] == "stock exhausted" {
		t.Fatal("internal failure details must not leak to the gateway")
	}
}

func TestCreateSessionEndpoint(t *testing.T) {
	api := &stubAPI{session: &Session{Token: "tok-1", RedirectURL: "https://pay.example/redir/1"}}
	status, body := postJSON(t, sessionApp(api), "/api/v1/payments/session",
		fiber.Map{"orderNumber": "CLRD-2025-00042"})

	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["redirectUrl"] != "https://pay.example/redir/1" || body["token"] != "tok-1" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestCreateSessionEndpointRequiresOrderNumber(t *testing.T) {
	api := &stubAPI{session: &Session{}}
	status, _ := postJSON(t, sessionApp(api), "/api/v1/payments/session", fiber.Map{})

	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestCreateSessionEndpointMapsErrors(t *testing.T) {
	api := &stubAPI{sessionErr: apperr.New(apperr.Conflict, apperr.CodeAlreadyPaid, "order is already paid")}
	status, body := postJSON(t, sessionApp(api), "/api/v1/payments/session",
		fiber.Map{"orderNumber": "CLRD-2025-00042"})

	if status != fiber.StatusConflict {
		t.Fatalf("expected 409, got %d", status)
	}
	if body["code"] != apperr.CodeAlreadyPaid {
		t.Fatalf("unexpected body %v", body)
	}
}
