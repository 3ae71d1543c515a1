package controllers

import (
	"lotes-backend/database"
	"lotes-backend/middlewares"
	"lotes-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type createPurchaseDTO struct {
	LotId        uint   `json:"lot_id" validate:"required"`
	Installments int    `json:"installments" validate:"omitempty,gt=0"`
	Notes        string `json:"notes"`
}

// CreatePurchase reserves a lot for the calling client through the ledger.
// The availability check and the Vendido flip are atomic in there; losing a
// race simply reports the lot as unavailable.
func CreatePurchase(c *fiber.Ctx) error {
	var data createPurchaseDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	clientID, _ := middlewares.ActingIdentity(c)

	purchase, err := ledgerSvc.ReserveLot(data.LotId, clientID, data.Installments, data.Notes)
	if err != nil {
		return err // typed ledger errors are mapped by the error handler
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "compra registrada exitosamente",
		"purchase": purchase,
	})
}

func GetMyPurchases(c *fiber.Ctx) error {
	clientID, _ := middlewares.ActingIdentity(c)

	var purchases []models.Purchase
	err := database.DB.Preload("Lot").Preload("Lot.Stage").
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&purchases).Error
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"purchases": purchases})
}

func GetAllPurchases(c *fiber.Ctx) error {
	var purchases []models.Purchase
	err := database.DB.Preload("Lot").Preload("Client").
		Order("created_at DESC").
		Find(&purchases).Error
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"purchases": purchases})
}

// GetPurchase returns one purchase with its payment history. Clients only
// see their own.
func GetPurchase(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid purchase id")
	}

	actingID, isAdmin := middlewares.ActingIdentity(c)

	var purchase models.Purchase
	q := database.DB.Preload("Lot").Preload("Client").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("installment_number ASC")
		}).
		Where("id = ?", id)
	if !isAdmin {
		q = q.Where("client_id = ?", actingID)
	}
	if err := q.First(&purchase).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "compra no encontrada"})
	}
	return c.JSON(purchase)
}

// GetAccountStatement rolls up a client's purchases. Admins may target any
// client via the clientId param; clients always get their own.
func GetAccountStatement(c *fiber.Ctx) error {
	actingID, isAdmin := middlewares.ActingIdentity(c)

	clientID := actingID
	if isAdmin {
		if param := c.Params("clientId"); param != "" {
			id, err := c.ParamsInt("clientId")
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid client id")
			}
			clientID = uint(id)
		}
	}

	var purchases []models.Purchase
	err := database.DB.Preload("Lot").
		Where("client_id = ?", clientID).
		Find(&purchases).Error
	if err != nil {
		return err
	}

	var summary struct {
		TotalDebt     float64 `json:"total_debt"`
		TotalPaid     float64 `json:"total_paid"`
		TotalBalance  float64 `json:"total_balance"`
		PurchaseCount int64   `json:"purchase_count"`
	}
	err = database.DB.Model(&models.Purchase{}).
		Where("client_id = ?", clientID).
		Select("COALESCE(SUM(total_value), 0) AS total_debt, COALESCE(SUM(total_paid), 0) AS total_paid, COALESCE(SUM(balance), 0) AS total_balance, COUNT(*) AS purchase_count").
		Scan(&summary).Error
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"purchases": purchases,
		"summary":   summary,
	})
}
