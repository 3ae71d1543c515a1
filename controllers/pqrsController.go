package controllers

import (
	"time"

	"lotes-backend/database"
	"lotes-backend/middlewares"
	"lotes-backend/models"

	"github.com/gofiber/fiber/v2"
)

type createPQRSDTO struct {
	Type        string `json:"type" validate:"required,oneof=Petición Queja Reclamo Sugerencia"`
	Subject     string `json:"subject" validate:"required"`
	Description string `json:"description" validate:"required"`
}

func CreatePQRS(c *fiber.Ctx) error {
	var data createPQRSDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	clientID, _ := middlewares.ActingIdentity(c)

	ticket := models.PQRS{
		ClientId:    clientID,
		Type:        data.Type,
		Subject:     data.Subject,
		Description: data.Description,
		Status:      models.PQRSStatusPending,
	}
	if err := database.DB.Create(&ticket).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "PQRS enviada exitosamente, le responderemos pronto",
		"id":      ticket.Id,
	})
}

func GetMyPQRS(c *fiber.Ctx) error {
	clientID, _ := middlewares.ActingIdentity(c)

	var tickets []models.PQRS
	err := database.DB.
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&tickets).Error
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"pqrs": tickets})
}

func GetAllPQRS(c *fiber.Ctx) error {
	q := database.DB.Preload("Client").Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if pqrsType := c.Query("type"); pqrsType != "" {
		q = q.Where("type = ?", pqrsType)
	}

	var tickets []models.PQRS
	if err := q.Find(&tickets).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"pqrs": tickets})
}

func GetPQRS(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid pqrs id")
	}

	actingID, isAdmin := middlewares.ActingIdentity(c)

	var ticket models.PQRS
	q := database.DB.Preload("Client").Where("id = ?", id)
	if !isAdmin {
		q = q.Where("client_id = ?", actingID)
	}
	if err := q.First(&ticket).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "PQRS no encontrada"})
	}
	return c.JSON(ticket)
}

// GetPQRSStats breaks the tickets down by status and type for the admin panel.
func GetPQRSStats(c *fiber.Ctx) error {
	var stats struct {
		Total       int64 `json:"total"`
		Pending     int64 `json:"pending"`
		InProgress  int64 `json:"in_progress"`
		Resolved    int64 `json:"resolved"`
		Petitions   int64 `json:"petitions"`
		Complaints  int64 `json:"complaints"`
		Claims      int64 `json:"claims"`
		Suggestions int64 `json:"suggestions"`
	}

	err := database.DB.Model(&models.PQRS{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS in_progress,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS resolved,
			COALESCE(SUM(CASE WHEN type = ? THEN 1 ELSE 0 END), 0) AS petitions,
			COALESCE(SUM(CASE WHEN type = ? THEN 1 ELSE 0 END), 0) AS complaints,
			COALESCE(SUM(CASE WHEN type = ? THEN 1 ELSE 0 END), 0) AS claims,
			COALESCE(SUM(CASE WHEN type = ? THEN 1 ELSE 0 END), 0) AS suggestions`,
			models.PQRSStatusPending, models.PQRSStatusInProgress, models.PQRSStatusResolved,
			models.PQRSTypePetition, models.PQRSTypeComplaint, models.PQRSTypeClaim, models.PQRSTypeSuggestion).
		Scan(&stats).Error
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

type updatePQRSDTO struct {
	Status   string `json:"status" validate:"required,oneof=Pendiente 'En proceso' Resuelto"`
	Response string `json:"response"`
}

// UpdatePQRS lets an admin respond and move the ticket through its states.
// The response timestamp is set when the ticket is resolved.
func UpdatePQRS(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid pqrs id")
	}

	var data updatePQRSDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	adminID, _ := middlewares.ActingIdentity(c)

	updates := map[string]any{
		"status":   data.Status,
		"response": data.Response,
		"admin_id": adminID,
	}
	if data.Status == models.PQRSStatusResolved {
		updates["responded_at"] = time.Now()
	}

	res := database.DB.Model(&models.PQRS{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "PQRS no encontrada"})
	}
	return c.JSON(fiber.Map{"message": "PQRS actualizada exitosamente"})
}
