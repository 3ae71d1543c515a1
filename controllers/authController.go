package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"lotes-backend/database"
	"lotes-backend/middlewares"
	"lotes-backend/models"
	"lotes-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type registerDTO struct {
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Phone      string `json:"phone"`
	DocumentID string `json:"document_id"`
	Address    string `json:"address"`
}

// Register creates a client account. Administrators are only created by
// other administrators through the users endpoints.
func Register(c *fiber.Ctx) error {
	var data registerDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	var existing models.User
	if err := database.DB.Where("email = ?", data.Email).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "el email ya está registrado",
		})
	}

	if data.DocumentID != "" {
		if err := database.DB.Where("document_id = ?", data.DocumentID).First(&existing).Error; err == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "la cédula ya está registrada",
			})
		}
	}

	user := models.User{
		RoleId:     2, // Cliente
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
		"message": "usuario registrado exitosamente",
		"id":      user.Id,
	})
}

type loginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func Login(c *fiber.Ctx) error {
	var data loginDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	var user models.User
	err := database.DB.Preload("Role").
		Where("email = ? AND active = ?", data.Email, true).
		First(&user).Error
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "credenciales inválidas",
		})
	}

	if err := user.ComparePassword(data.Password); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "credenciales inválidas",
		})
	}

	token, err := middlewares.GenerateJWT(user.Id, user.Role.Name)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not sign token")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.Id,
			"name":  user.FullName(),
			"email": user.Email,
			"role":  user.Role.Name,
		},
	})
}

// Logout is a no-op server-side: auth is a Bearer token the client discards.
func Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "success",
	})
}

// GetProfile returns the calling user's own account.
func GetProfile(c *fiber.Ctx) error {
	userID, _ := middlewares.ActingIdentity(c)

	var user models.User
	if err := database.DB.Preload("Role").First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "usuario no encontrado"})
	}
	return c.JSON(user)
}

type updateProfileDTO struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

// UpdateProfile lets a user edit their own contact data. Email, role and the
// active flag only change through the admin endpoints.
func UpdateProfile(c *fiber.Ctx) error {
	userID, _ := middlewares.ActingIdentity(c)

	var data updateProfileDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&data)

	updates := utils.UpdatesFromPtrDTO(&data, nil)
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "no fields to update"})
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "perfil actualizado exitosamente"})
}

type forgotPasswordDTO struct {
	Email string `json:"email" validate:"required,email"`
}

// RequestPasswordReset stores a one-hour reset token and mails it. The
// response is identical whether or not the address exists.
func RequestPasswordReset(c *fiber.Ctx) error {
	var data forgotPasswordDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	genericReply := func() error {
		return c.JSON(fiber.Map{
			"message": "si el email existe, recibirás instrucciones",
		})
	}

	var user models.User
	err := database.DB.Where("email = ? AND active = ?", data.Email, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return genericReply()
		}
		return err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	token := hex.EncodeToString(buf)
	expiry := time.Now().Add(time.Hour)

	err = database.DB.Model(&models.User{}).
		Where("id = ?", user.Id).
		Updates(map[string]any{
			"reset_token":        token,
			"reset_token_expiry": expiry,
		}).Error
	if err != nil {
		return err
	}

	if mailer != nil {
		if err := mailer.SendPasswordReset(user.Email, user.FullName(), token); err != nil {
			log.Printf("password reset mail failed for user %d: %v", user.Id, err)
		}
	}

	return genericReply()
}

type resetPasswordDTO struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

func ResetPassword(c *fiber.Ctx) error {
	var data resetPasswordDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	var user models.User
	err := database.DB.
		Where("reset_token = ? AND reset_token_expiry > ?", data.Token, time.Now()).
		First(&user).Error
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "token inválido o expirado",
		})
	}

	user.SetPassword(data.Password)
	err = database.DB.Model(&models.User{}).
		Where("id = ?", user.Id).
		Updates(map[string]any{
			"password":           user.Password,
			"reset_token":        nil,
			"reset_token_expiry": nil,
		}).Error
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "contraseña actualizada exitosamente",
	})
}
