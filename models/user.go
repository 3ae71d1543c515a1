package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	Id         uint   `json:"id" gorm:"primaryKey"`
	RoleId     uint   `json:"-" gorm:"not null;default:2"`
	Role       Role   `json:"role" gorm:"foreignKey:RoleId;references:Id"`
	FirstName  string `json:"first_name" gorm:"not null"`
	LastName   string `json:"last_name" gorm:"not null"`
	Email      string `json:"email" gorm:"unique;not null"`
	Phone      string `json:"phone"`
	DocumentID string `json:"document_id" gorm:"index"`
	Address    string `json:"address"`
	Password   []byte `json:"-" gorm:"not null"`
	Active     bool   `json:"active" gorm:"default:true"`

	ResetToken       *string    `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (user *User) SetPassword(password string) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), 10)
	user.Password = hashedPassword
}

func (user *User) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword(user.Password, []byte(password))
}

// IsAdmin reports whether the preloaded role grants administrator access.
func (user *User) IsAdmin() bool {
	return user.Role.Name == RoleAdmin
}

// FullName is used in receipts and PQRS listings.
func (user *User) FullName() string {
	return user.FirstName + " " + user.LastName
}
