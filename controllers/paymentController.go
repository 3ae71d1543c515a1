package controllers

import (
	"time"

	"lotes-backend/database"
	"lotes-backend/middlewares"
	"lotes-backend/models"

	"github.com/gofiber/fiber/v2"
)

type createPaymentDTO struct {
	PurchaseId  uint    `json:"purchase_id" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	PaymentDate string  `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	Method      string  `json:"method" validate:"required,oneof=Efectivo Transferencia Tarjeta Cheque"`
	Reference   string  `json:"reference"`
	Notes       string  `json:"notes"`
}

// CreatePayment records one installment against a purchase. Clients pay their
// own purchases; admins can record payments on behalf of any client. The
// receipt email is best-effort and reported in email_sent.
func CreatePayment(c *fiber.Ctx) error {
	var data createPaymentDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	var paymentDate time.Time
	if data.PaymentDate != "" {
		paymentDate, _ = time.Parse("2006-01-02", data.PaymentDate)
	}

	actingID, isAdmin := middlewares.ActingIdentity(c)

	result, err := ledgerSvc.RecordPayment(
		data.PurchaseId, data.Amount, paymentDate,
		data.Method, data.Reference, data.Notes,
		actingID, isAdmin,
	)
	if err != nil {
		return err // typed ledger errors are mapped by the error handler
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":            "pago registrado exitosamente",
		"payment_id":         result.Payment.Id,
		"receipt_number":     result.Payment.ReceiptNumber,
		"installment_number": result.Payment.InstallmentNumber,
		"total_paid":         result.Purchase.TotalPaid,
		"balance":            result.Purchase.Balance,
		"status":             result.Purchase.Status,
		"email_sent":         result.EmailSent,
	})
}

func GetMyPayments(c *fiber.Ctx) error {
	clientID, _ := middlewares.ActingIdentity(c)

	var payments []models.Payment
	err := database.DB.
		Where("client_id = ?", clientID).
		Order("payment_date DESC, id DESC").
		Find(&payments).Error
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"payments": payments})
}

func GetAllPayments(c *fiber.Ctx) error {
	var payments []models.Payment
	err := database.DB.
		Order("payment_date DESC, id DESC").
		Find(&payments).Error
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"payments": payments})
}

// GetPaymentReceipt returns the receipt snapshot stored when the payment was
// recorded. Rendering (PDF) is a frontend/external concern.
func GetPaymentReceipt(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payment id")
	}

	actingID, isAdmin := middlewares.ActingIdentity(c)

	var payment models.Payment
	q := database.DB.Where("id = ?", id)
	if !isAdmin {
		q = q.Where("client_id = ?", actingID)
	}
	if err := q.First(&payment).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "pago no encontrado"})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payment.Receipt)
}
