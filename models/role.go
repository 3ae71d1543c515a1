package models

// Role names are stored in Spanish to stay compatible with the data the
// frontend and seed scripts expect.
const (
	RoleAdmin  = "Administrador"
	RoleClient = "Cliente"
)

type Role struct {
	Id   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"unique;not null"`
}
