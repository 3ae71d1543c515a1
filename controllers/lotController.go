package controllers

import (
	"strconv"

	"lotes-backend/database"
	"lotes-backend/middlewares"
	"lotes-backend/models"
	"lotes-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// GetLots is public: prospective buyers browse inventory before registering.
// Supports status/stage/area/price range filters.
func GetLots(c *fiber.Ctx) error {
	q := database.DB.Model(&models.Lot{}).Preload("Stage")

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if stageID := c.Query("stage_id"); stageID != "" {
		q = q.Where("stage_id = ?", utils.ParseIntDefault(stageID, 0))
	}
	if v := c.Query("min_area"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			q = q.Where("area >= ?", f)
		}
	}
	if v := c.Query("max_area"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			q = q.Where("area <= ?", f)
		}
	}
	if v := c.Query("min_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			q = q.Where("price >= ?", f)
		}
	}
	if v := c.Query("max_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			q = q.Where("price <= ?", f)
		}
	}

	var lots []models.Lot
	if err := q.Order("status ASC, id ASC").Find(&lots).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"lots":  lots,
		"total": len(lots),
	})
}

func GetLot(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid lot id")
	}

	var lot models.Lot
	if err := database.DB.Preload("Stage").First(&lot, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "lote no encontrado"})
	}
	return c.JSON(lot)
}

type createLotDTO struct {
	Code             string  `json:"code" validate:"required"`
	StageId          *uint   `json:"stage_id"`
	Area             float64 `json:"area" validate:"required,gt=0"`
	Location         string  `json:"location" validate:"required"`
	Coordinates      string  `json:"coordinates"`
	Price            float64 `json:"price" validate:"required,gt=0"`
	InstallmentValue float64 `json:"installment_value" validate:"omitempty,gt=0"`
	Installments     int     `json:"installments" validate:"omitempty,gt=0"`
	Description      string  `json:"description"`
}

func CreateLot(c *fiber.Ctx) error {
	var data createLotDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizeDTO(&data)

	installments := data.Installments
	if installments == 0 {
		installments = 12
	}
	installmentValue := data.InstallmentValue
	if installmentValue == 0 {
		installmentValue = utils.Round2(data.Price / float64(installments))
	}

	lot := models.Lot{
		Code:             data.Code,
		StageId:          data.StageId,
		Area:             data.Area,
		Location:         data.Location,
		Coordinates:      data.Coordinates,
		Price:            data.Price,
		InstallmentValue: installmentValue,
		Installments:     installments,
		Status:           models.LotStatusAvailable,
		Description:      data.Description,
	}
	if err := database.DB.Create(&lot).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "el código del lote ya existe o es inválido",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(lot)
}

type updateLotDTO struct {
	Code             *string  `json:"code"`
	StageId          *uint    `json:"stage_id"`
	Area             *float64 `json:"area"`
	Location         *string  `json:"location"`
	Coordinates      *string  `json:"coordinates"`
	Price            *float64 `json:"price"`
	InstallmentValue *float64 `json:"installment_value"`
	Installments     *int     `json:"installments"`
	Description      *string  `json:"description"`
}

func UpdateLot(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid lot id")
	}

	var data updateLotDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&data)

	updates := utils.UpdatesFromPtrDTO(&data, nil)
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "no fields to update"})
	}

	res := database.DB.Model(&models.Lot{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "lote no encontrado"})
	}
	return c.JSON(fiber.Map{"message": "lote actualizado exitosamente"})
}

type lotStatusDTO struct {
	Status string `json:"status" validate:"required,oneof=Disponible Reservado Vendido"`
}

// ChangeLotStatus is the explicit admin override: any state to any state,
// bypassing the reservation flow.
func ChangeLotStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid lot id")
	}

	var data lotStatusDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	res := database.DB.Model(&models.Lot{}).Where("id = ?", id).Update("status", data.Status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "lote no encontrado"})
	}
	return c.JSON(fiber.Map{"message": "estado cambiado a " + data.Status})
}

// DeleteLot refuses to remove a lot that has an associated purchase.
func DeleteLot(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid lot id")
	}

	var purchases int64
	if err := database.DB.Model(&models.Purchase{}).Where("lot_id = ?", id).Count(&purchases).Error; err != nil {
		return err
	}
	if purchases > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "no se puede eliminar un lote con compras asociadas",
		})
	}

	res := database.DB.Delete(&models.Lot{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "lote no encontrado"})
	}
	return c.JSON(fiber.Map{"message": "lote eliminado exitosamente"})
}

func GetLotStats(c *fiber.Ctx) error {
	var stats struct {
		Total          int64   `json:"total"`
		Available      int64   `json:"available"`
		Reserved       int64   `json:"reserved"`
		Sold           int64   `json:"sold"`
		InventoryValue float64 `json:"inventory_value"`
		AverageArea    float64 `json:"average_area"`
	}

	database.DB.Model(&models.Lot{}).Count(&stats.Total)
	database.DB.Model(&models.Lot{}).Where("status = ?", models.LotStatusAvailable).Count(&stats.Available)
	database.DB.Model(&models.Lot{}).Where("status = ?", models.LotStatusReserved).Count(&stats.Reserved)
	database.DB.Model(&models.Lot{}).Where("status = ?", models.LotStatusSold).Count(&stats.Sold)
	database.DB.Model(&models.Lot{}).Select("COALESCE(SUM(price), 0)").Scan(&stats.InventoryValue)
	database.DB.Model(&models.Lot{}).Select("COALESCE(AVG(area), 0)").Scan(&stats.AverageArea)

	return c.JSON(stats)
}
