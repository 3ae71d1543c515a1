package models

import "time"

const (
	PQRSTypePetition   = "Petición"
	PQRSTypeComplaint  = "Queja"
	PQRSTypeClaim      = "Reclamo"
	PQRSTypeSuggestion = "Sugerencia"
)

const (
	PQRSStatusPending    = "Pendiente"
	PQRSStatusInProgress = "En proceso"
	PQRSStatusResolved   = "Resuelto"
)

// PQRS is a customer-service ticket (petition/complaint/claim/suggestion).
type PQRS struct {
	Id       uint `json:"id" gorm:"primaryKey"`
	ClientId uint `json:"client_id" gorm:"not null;index"`
	Client   User `json:"client,omitempty" gorm:"foreignKey:ClientId;references:Id"`

	Type        string `json:"type" gorm:"not null"`
	Subject     string `json:"subject" gorm:"not null"`
	Description string `json:"description" gorm:"type:text;not null"`

	Status      string     `json:"status" gorm:"not null;default:Pendiente;index"`
	Response    string     `json:"response" gorm:"type:text"`
	AdminId     *uint      `json:"admin_id"`
	RespondedAt *time.Time `json:"responded_at"`

	CreatedAt time.Time `json:"created_at"`
}

func (PQRS) TableName() string {
	return "pqrs"
}
