package controllers

import (
	"lotes-backend/database"
	"lotes-backend/middlewares"
	"lotes-backend/models"
	"lotes-backend/utils"

	"github.com/gofiber/fiber/v2"
)

func GetUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := database.DB.Preload("Role").Order("created_at DESC").Find(&users).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"users": users,
	})
}

func GetUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	var user models.User
	if err := database.DB.Preload("Role").First(&user, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "usuario no encontrado"})
	}
	return c.JSON(user)
}

type createUserDTO struct {
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Phone      string `json:"phone"`
	DocumentID string `json:"document_id"`
	Address    string `json:"address"`
	RoleId     uint   `json:"role_id" validate:"omitempty,oneof=1 2"`
}

func CreateUser(c *fiber.Ctx) error {
	var data createUserDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	var existing models.User
	if err := database.DB.Where("email = ?", data.Email).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "el email ya está registrado"})
	}

	roleId := data.RoleId
	if roleId == 0 {
		roleId = 2 // Cliente
	}

	user := models.User{
		RoleId:     roleId,
		FirstName:  data.FirstName,
		LastName:   data.LastName,
		Email:      data.Email,
		Phone:      data.Phone,
		DocumentID: data.DocumentID,
		Address:    data.Address,
		Active:     true,
	}
	user.SetPassword(data.Password)

	if err := database.DB.Create(&user).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "could not create user",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "usuario creado exitosamente",
		"id":      user.Id,
	})
}

type updateUserDTO struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Phone      *string `json:"phone"`
	DocumentID *string `json:"document_id"`
	Address    *string `json:"address"`
	RoleId     *uint   `json:"role_id" validate:"omitempty,oneof=1 2"`
	Active     *bool   `json:"active"`
}

func UpdateUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	var data updateUserDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&data)

	updates := utils.UpdatesFromPtrDTO(&data, nil)
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "no fields to update"})
	}

	res := database.DB.Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "usuario no encontrado"})
	}
	return c.JSON(fiber.Map{"message": "usuario actualizado exitosamente"})
}

// ToggleUserStatus flips the active flag. Admins cannot deactivate their own
// session account.
func ToggleUserStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	actingID, _ := middlewares.ActingIdentity(c)
	if uint(id) == actingID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "no puedes desactivar tu propia cuenta",
		})
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "usuario no encontrado"})
	}

	newStatus := !user.Active
	if err := database.DB.Model(&models.User{}).Where("id = ?", id).Update("active", newStatus).Error; err != nil {
		return err
	}

	msg := "usuario desactivado exitosamente"
	if newStatus {
		msg = "usuario activado exitosamente"
	}
	return c.JSON(fiber.Map{"message": msg})
}

// GetDashboardStats aggregates the numbers the admin landing page shows.
func GetDashboardStats(c *fiber.Ctx) error {
	var clients int64
	if err := database.DB.Model(&models.User{}).Where("role_id = ?", 2).Count(&clients).Error; err != nil {
		return err
	}

	var lots struct {
		Total     int64
		Available int64
		Sold      int64
	}
	database.DB.Model(&models.Lot{}).Count(&lots.Total)
	database.DB.Model(&models.Lot{}).Where("status = ?", models.LotStatusAvailable).Count(&lots.Available)
	database.DB.Model(&models.Lot{}).Where("status = ?", models.LotStatusSold).Count(&lots.Sold)

	var purchases struct {
		Total      int64
		TotalValue float64
	}
	database.DB.Model(&models.Purchase{}).Count(&purchases.Total)
	database.DB.Model(&models.Purchase{}).Select("COALESCE(SUM(total_value), 0)").Scan(&purchases.TotalValue)

	var payments struct {
		Total     int64
		Collected float64
	}
	database.DB.Model(&models.Payment{}).Count(&payments.Total)
	database.DB.Model(&models.Payment{}).Select("COALESCE(SUM(amount), 0)").Scan(&payments.Collected)

	var pqrs struct {
		Total   int64
		Pending int64
	}
	database.DB.Model(&models.PQRS{}).Count(&pqrs.Total)
	database.DB.Model(&models.PQRS{}).Where("status = ?", models.PQRSStatusPending).Count(&pqrs.Pending)

	return c.JSON(fiber.Map{
		"clients": clients,
		"lots": fiber.Map{
			"total":     lots.Total,
			"available": lots.Available,
			"sold":      lots.Sold,
		},
		"purchases": fiber.Map{
			"total":       purchases.Total,
			"total_value": purchases.TotalValue,
		},
		"payments": fiber.Map{
			"total":     payments.Total,
			"collected": payments.Collected,
		},
		"pqrs": fiber.Map{
			"total":   pqrs.Total,
			"pending": pqrs.Pending,
		},
	})
}
