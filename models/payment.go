package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PaymentMethodCash     = "Efectivo"
	PaymentMethodTransfer = "Transferencia"
	PaymentMethodCard     = "Tarjeta"
	PaymentMethodCheck    = "Cheque"
)

// Payment is one installment remittance. Rows are append-only: nothing but
// the EmailSent flag is ever updated, and rows are never deleted. The unique
// (purchase_id, installment_number) index backs the contiguous-sequence
// invariant at the storage level.
type Payment struct {
	Id         uint `json:"id" gorm:"primaryKey"`
	PurchaseId uint `json:"purchase_id" gorm:"not null;index:idx_payments_purchase_installment,unique,priority:1"`
	// Denormalized copy of the purchase's client, for query convenience.
	ClientId uint `json:"client_id" gorm:"not null;index"`

	InstallmentNumber int       `json:"installment_number" gorm:"not null;index:idx_payments_purchase_installment,unique,priority:2"`
	Amount            float64   `json:"amount" gorm:"type:numeric(14,2);not null"`
	PaymentDate       time.Time `json:"payment_date" gorm:"index"`
	Method            string    `json:"method" gorm:"not null"`
	Reference         string    `json:"reference"`
	Notes             string    `json:"notes"`

	ReceiptNumber string `json:"receipt_number" gorm:"unique"`
	// Receipt snapshot as issued, for later download without re-joining
	// live rows that may have moved on.
	Receipt   datatypes.JSON `json:"-" gorm:"type:jsonb"`
	EmailSent bool           `json:"email_sent" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
}

func (payment *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	payment.ReceiptNumber = uuid.NewString()
	return
}
