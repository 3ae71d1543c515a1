package database

import (
	"log"
	"os"

	"lotes-backend/models"

	"gorm.io/gorm"
)

// Seed ensures the two roles and the default administrator account exist.
// It is idempotent and safe to run on every boot.
func Seed() error {
	roles := []models.Role{
		{Id: 1, Name: models.RoleAdmin},
		{Id: 2, Name: models.RoleClient},
	}
	for _, role := range roles {
		if err := DB.Where(models.Role{Name: role.Name}).
			FirstOrCreate(&role).Error; err != nil {
			return err
		}
	}

	adminEmail := env("ADMIN_EMAIL", "admin@lotesystem.com")

	var existing models.User
	err := DB.Where("email = ?", adminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	admin := models.User{
		RoleId:    1,
		FirstName: "Admin",
		LastName:  "Sistema",
		Email:     adminEmail,
		Active:    true,
	}
	admin.SetPassword(env("ADMIN_PASSWORD", "Admin123!"))
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if os.Getenv("ADMIN_PASSWORD") == "" {
		log.Println("default admin account created; change its password in production")
	}
	return nil
}
