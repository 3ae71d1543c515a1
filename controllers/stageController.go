package controllers

import (
	"time"

	"lotes-backend/database"
	"lotes-backend/middlewares"
	"lotes-backend/models"

	"github.com/gofiber/fiber/v2"
)

type stageWithCount struct {
	models.ProjectStage
	LotCount int64 `json:"lot_count"`
}

func GetStages(c *fiber.Ctx) error {
	var stages []models.ProjectStage
	if err := database.DB.Order("position ASC").Find(&stages).Error; err != nil {
		return err
	}

	out := make([]stageWithCount, 0, len(stages))
	for _, stage := range stages {
		var count int64
		database.DB.Model(&models.Lot{}).Where("stage_id = ?", stage.Id).Count(&count)
		out = append(out, stageWithCount{ProjectStage: stage, LotCount: count})
	}
	return c.JSON(fiber.Map{"stages": out})
}

type stageDTO struct {
	Name        string     `json:"name" validate:"required"`
	Description string     `json:"description"`
	Position    int        `json:"position" validate:"required,min=1"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

func CreateStage(c *fiber.Ctx) error {
	var data stageDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	stage := models.ProjectStage{
		Name:        data.Name,
		Description: data.Description,
		Position:    data.Position,
		StartDate:   data.StartDate,
		EndDate:     data.EndDate,
		Active:      true,
	}
	if err := database.DB.Create(&stage).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(stage)
}

type updateStageDTO struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Position    *int       `json:"position"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Active      *bool      `json:"active"`
}

func UpdateStage(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid stage id")
	}

	var data updateStageDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	updates := map[string]any{}
	if data.Name != nil {
		updates["name"] = *data.Name
	}
	if data.Description != nil {
		updates["description"] = *data.Description
	}
	if data.Position != nil {
		updates["position"] = *data.Position
	}
	if data.StartDate != nil {
		updates["start_date"] = *data.StartDate
	}
	if data.EndDate != nil {
		updates["end_date"] = *data.EndDate
	}
	if data.Active != nil {
		updates["active"] = *data.Active
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "no fields to update"})
	}

	res := database.DB.Model(&models.ProjectStage{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "etapa no encontrada"})
	}
	return c.JSON(fiber.Map{"message": "etapa actualizada"})
}
