package models

import "time"

// Lot status values. Status transitions to Vendido only through the purchase
// flow; admins may override the status explicitly.
const (
	LotStatusAvailable = "Disponible"
	LotStatusReserved  = "Reservado"
	LotStatusSold      = "Vendido"
)

// Lot is the inventory unit: a sellable parcel of land.
type Lot struct {
	Id      uint          `json:"id" gorm:"primaryKey"`
	Code    string        `json:"code" gorm:"unique;not null"`
	StageId *uint         `json:"stage_id" gorm:"index"`
	Stage   *ProjectStage `json:"stage,omitempty" gorm:"foreignKey:StageId;references:Id"`

	Area        float64 `json:"area" gorm:"type:numeric(10,2);not null"`
	Location    string  `json:"location" gorm:"not null"`
	Coordinates string  `json:"coordinates"`

	Price            float64 `json:"price" gorm:"type:numeric(14,2);not null"`
	InstallmentValue float64 `json:"installment_value" gorm:"type:numeric(14,2)"`
	Installments     int     `json:"installments" gorm:"not null;default:12"`

	Status      string `json:"status" gorm:"not null;default:Disponible;index"`
	Description string `json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAvailable reports whether the lot can be reserved.
func (l *Lot) IsAvailable() bool {
	return l.Status == LotStatusAvailable
}
