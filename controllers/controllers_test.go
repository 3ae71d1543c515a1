package controllers_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"lotes-backend/controllers"
	"lotes-backend/database"
	"lotes-backend/ledger"
	"lotes-backend/middlewares"
	"lotes-backend/models"
	"lotes-backend/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET_KEY", "test-secret-key")
	os.Exit(m.Run())
}

func setupApp(t *testing.T) *fiber.App {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	database.DB = db
	require.NoError(t, database.AutoMigrate())
	require.NoError(t, database.Seed())

	controllers.Setup(ledger.New(database.DB, nil), nil)

	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	routes.Register(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any, headers map[string]string) (*http.Response, map[string]any) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	resp, body := doJSON(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"email":    email,
		"password": password,
	}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func registerClient(t *testing.T, app *fiber.App, email string) string {
	resp, _ := doJSON(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"first_name":  "Laura",
		"last_name":   "Gómez",
		"email":       email,
		"password":    "clave-segura-1",
		"phone":       "3109876543",
		"document_id": "900100200",
	}, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return login(t, app, email, "clave-segura-1")
}

func createLot(t *testing.T, app *fiber.App, adminToken, code string) uint {
	resp, body := doJSON(t, app, "POST", "/api/lots", adminToken, fiber.Map{
		"code":     code,
		"area":     200,
		"location": "Manzana B",
		"price":    60_000_000,
	}, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id, ok := body["id"].(float64)
	require.True(t, ok, "lot response missing id: %v", body)
	return uint(id)
}

func TestPurchaseAndPaymentFlow(t *testing.T) {
	app := setupApp(t)

	adminToken := login(t, app, "admin@lotesystem.com", "Admin123!")
	clientToken := registerClient(t, app, "laura@example.com")
	lotID := createLot(t, app, adminToken, "B-01")

	// Reserve the lot
	resp, body := doJSON(t, app, "POST", "/api/purchases", clientToken, fiber.Map{
		"lot_id": lotID,
	}, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	purchase := body["purchase"].(map[string]any)
	purchaseID := uint(purchase["id"].(float64))
	assert.Equal(t, 60_000_000.0, purchase["balance"])
	assert.Equal(t, models.PurchaseStatusActive, purchase["status"])

	// The lot is now sold to everyone else
	resp, body = doJSON(t, app, "POST", "/api/purchases", clientToken, fiber.Map{
		"lot_id": lotID,
	}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "el lote no está disponible para compra", body["message"])

	// Record the first installment
	resp, body = doJSON(t, app, "POST", "/api/payments", clientToken, fiber.Map{
		"purchase_id": purchaseID,
		"amount":      5_000_000,
		"method":      models.PaymentMethodTransfer,
		"reference":   "TRX-100",
	}, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1.0, body["installment_number"])
	assert.Equal(t, 55_000_000.0, body["balance"])
	receiptNumber := body["receipt_number"].(string)
	paymentID := uint(body["payment_id"].(float64))
	require.NotEmpty(t, receiptNumber)

	// The stored receipt snapshot is served back as JSON
	resp, body = doJSON(t, app, "GET",
		"/api/payments/"+itoa(paymentID)+"/receipt", clientToken, nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, receiptNumber, body["receipt_number"])
	assert.Equal(t, "B-01", body["lot_code"])

	// The purchase shows its payment history
	resp, body = doJSON(t, app, "GET",
		"/api/purchases/"+itoa(purchaseID), clientToken, nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	payments := body["payments"].([]any)
	assert.Len(t, payments, 1)

	// Statement rolls up the aggregates
	resp, body = doJSON(t, app, "GET", "/api/purchases/statement", clientToken, nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	summary := body["summary"].(map[string]any)
	assert.Equal(t, 60_000_000.0, summary["total_debt"])
	assert.Equal(t, 5_000_000.0, summary["total_paid"])
	assert.Equal(t, 55_000_000.0, summary["total_balance"])
}

func TestPaymentIdempotencyReplay(t *testing.T) {
	app := setupApp(t)

	adminToken := login(t, app, "admin@lotesystem.com", "Admin123!")
	clientToken := registerClient(t, app, "laura@example.com")
	lotID := createLot(t, app, adminToken, "B-02")

	resp, body := doJSON(t, app, "POST", "/api/purchases", clientToken, fiber.Map{
		"lot_id": lotID,
	}, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	purchaseID := uint(body["purchase"].(map[string]any)["id"].(float64))

	payload := fiber.Map{
		"purchase_id": purchaseID,
		"amount":      5_000_000,
		"method":      models.PaymentMethodCash,
	}
	key := map[string]string{"Idempotency-Key": "pay-retry-1"}

	resp, first := doJSON(t, app, "POST", "/api/payments", clientToken, payload, key)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// Retried with the same key: the stored response replays, no second row
	resp, replay := doJSON(t, app, "POST", "/api/payments", clientToken, payload, key)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, first["payment_id"], replay["payment_id"])
	assert.Equal(t, first["receipt_number"], replay["receipt_number"])

	var count int64
	database.DB.Model(&models.Payment{}).Where("purchase_id = ?", purchaseID).Count(&count)
	assert.Equal(t, int64(1), count)

	// Same key, different request: rejected
	payload["amount"] = 9_000_000
	resp, _ = doJSON(t, app, "POST", "/api/payments", clientToken, payload, key)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestRouteAuthorization(t *testing.T) {
	app := setupApp(t)
	clientToken := registerClient(t, app, "laura@example.com")

	t.Run("anonymous cannot reserve", func(t *testing.T) {
		resp, _ := doJSON(t, app, "POST", "/api/purchases", "", fiber.Map{"lot_id": 1}, nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("client cannot reach admin routes", func(t *testing.T) {
		resp, _ := doJSON(t, app, "GET", "/api/users", clientToken, nil, nil)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

		resp, _ = doJSON(t, app, "POST", "/api/lots", clientToken, fiber.Map{
			"code": "X-99", "area": 100, "location": "x", "price": 1000,
		}, nil)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("anonymous can browse lots", func(t *testing.T) {
		resp, _ := doJSON(t, app, "GET", "/api/lots", "", nil, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("invalid payment body fails validation", func(t *testing.T) {
		resp, _ := doJSON(t, app, "POST", "/api/payments", clientToken, fiber.Map{
			"purchase_id": 1,
			"amount":      -5,
			"method":      "Bitcoin",
		}, nil)
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestProfileEndpoints(t *testing.T) {
	app := setupApp(t)
	clientToken := registerClient(t, app, "laura@example.com")

	resp, body := doJSON(t, app, "GET", "/api/auth/profile", clientToken, nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "laura@example.com", body["email"])
	role := body["role"].(map[string]any)
	assert.Equal(t, models.RoleClient, role["name"])

	resp, _ = doJSON(t, app, "PUT", "/api/auth/profile", clientToken, fiber.Map{
		"phone":   "3200000000",
		"address": "Calle 10 #5-55",
	}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, "GET", "/api/auth/profile", clientToken, nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "3200000000", body["phone"])
	assert.Equal(t, "Calle 10 #5-55", body["address"])

	t.Run("empty update is rejected", func(t *testing.T) {
		resp, _ := doJSON(t, app, "PUT", "/api/auth/profile", clientToken, fiber.Map{}, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("requires authentication", func(t *testing.T) {
		resp, _ := doJSON(t, app, "GET", "/api/auth/profile", "", nil, nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestPQRSStats(t *testing.T) {
	app := setupApp(t)
	adminToken := login(t, app, "admin@lotesystem.com", "Admin123!")
	clientToken := registerClient(t, app, "laura@example.com")

	resp, body := doJSON(t, app, "POST", "/api/pqrs", clientToken, fiber.Map{
		"type":        models.PQRSTypeComplaint,
		"subject":     "Vía de acceso",
		"description": "La vía al lote está en mal estado",
	}, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	complaintID := uint(body["id"].(float64))

	resp, _ = doJSON(t, app, "POST", "/api/pqrs", clientToken, fiber.Map{
		"type":        models.PQRSTypePetition,
		"subject":     "Copia del contrato",
		"description": "Solicito copia de mi contrato de compra",
	}, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, app, "PUT", "/api/pqrs/"+itoa(complaintID), adminToken, fiber.Map{
		"status":   models.PQRSStatusResolved,
		"response": "Programado mantenimiento de la vía",
	}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, "GET", "/api/pqrs-stats", adminToken, nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 2.0, body["total"])
	assert.Equal(t, 1.0, body["pending"])
	assert.Equal(t, 1.0, body["resolved"])
	assert.Equal(t, 1.0, body["complaints"])
	assert.Equal(t, 1.0, body["petitions"])
	assert.Equal(t, 0.0, body["suggestions"])

	t.Run("clients cannot read stats", func(t *testing.T) {
		resp, _ := doJSON(t, app, "GET", "/api/pqrs-stats", clientToken, nil, nil)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestLogoutSetsNoCookie(t *testing.T) {
	app := setupApp(t)

	resp, body := doJSON(t, app, "POST", "/api/auth/logout", "", nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["message"])
	assert.Empty(t, resp.Header.Get("Set-Cookie"))
}

func TestIdempotencyPendingConflict(t *testing.T) {
	app := setupApp(t)
	clientToken := registerClient(t, app, "laura@example.com")

	var client models.User
	require.NoError(t, database.DB.Where("email = ?", "laura@example.com").First(&client).Error)

	payload := fiber.Map{
		"purchase_id": 1,
		"amount":      1_000,
		"method":      models.PaymentMethodCash,
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	// A pending record for the same request, as an in-flight first attempt
	// would have left it.
	h := sha256.New()
	h.Write([]byte("POST"))
	h.Write([]byte{'\n'})
	h.Write([]byte("/api/payments"))
	h.Write([]byte{'\n'})
	h.Write(raw)
	h.Write([]byte{'\n'})
	h.Write([]byte(strconv.FormatUint(uint64(client.Id), 10)))
	pending := models.IdempotencyKey{
		Key:         "pay-inflight-1",
		RequestHash: hex.EncodeToString(h.Sum(nil)),
		Method:      "POST",
		Path:        "/api/payments",
		UserID:      client.Id,
	}
	require.NoError(t, database.DB.Create(&pending).Error)

	resp, _ := doJSON(t, app, "POST", "/api/payments", clientToken, payload,
		map[string]string{"Idempotency-Key": "pay-inflight-1"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var count int64
	database.DB.Model(&models.Payment{}).Count(&count)
	assert.Zero(t, count)
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
