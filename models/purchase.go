package models

import "time"

const (
	PurchaseStatusActive    = "Activo"
	PurchaseStatusCompleted = "Completado"
	PurchaseStatusCancelled = "Cancelado"
)

// Purchase is one client's installment agreement for one lot. TotalValue is a
// snapshot of the lot price at purchase time; TotalPaid, Balance and
// InstallmentsPaid are derived and only ever written by the payment ledger.
type Purchase struct {
	Id       uint `json:"id" gorm:"primaryKey"`
	ClientId uint `json:"client_id" gorm:"not null;index"`
	Client   User `json:"client,omitempty" gorm:"foreignKey:ClientId;references:Id"`
	LotId    uint `json:"lot_id" gorm:"not null;uniqueIndex"`
	Lot      Lot  `json:"lot,omitempty" gorm:"foreignKey:LotId;references:Id"`

	PurchaseDate time.Time `json:"purchase_date"`

	TotalValue       float64 `json:"total_value" gorm:"type:numeric(14,2);not null"`
	Installments     int     `json:"installments" gorm:"not null"`
	InstallmentValue float64 `json:"installment_value" gorm:"type:numeric(14,2);not null"`

	// Derived ledger fields. Invariant: TotalPaid + Balance == TotalValue.
	TotalPaid        float64 `json:"total_paid" gorm:"type:numeric(14,2);not null;default:0"`
	Balance          float64 `json:"balance" gorm:"type:numeric(14,2);not null"`
	InstallmentsPaid int     `json:"installments_paid" gorm:"not null;default:0"`

	Status string `json:"status" gorm:"not null;default:Activo;index"`
	Notes  string `json:"notes"`

	Payments []Payment `json:"payments,omitempty" gorm:"foreignKey:PurchaseId;constraint:OnDelete:RESTRICT"`

	CreatedAt time.Time `json:"created_at"`
}

// Settled reports whether the purchase accepts no further payments.
func (p *Purchase) Settled() bool {
	return p.Status == PurchaseStatusCompleted
}
