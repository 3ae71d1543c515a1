package ledger

import (
	"time"

	"lotes-backend/models"
)

// PaymentReceipt is the flat record handed to the notification collaborator
// and stored as the payment's immutable snapshot. It merges client, lot,
// payment and purchase-aggregate fields so downstream rendering needs no
// further queries.
type PaymentReceipt struct {
	ReceiptNumber string `json:"receipt_number"`
	PaymentId     uint   `json:"payment_id"`
	PurchaseId    uint   `json:"purchase_id"`

	ClientName     string `json:"client_name"`
	ClientEmail    string `json:"client_email"`
	ClientPhone    string `json:"client_phone"`
	ClientDocument string `json:"client_document"`

	LotCode     string  `json:"lot_code"`
	LotLocation string  `json:"lot_location"`
	LotArea     float64 `json:"lot_area"`

	InstallmentNumber int       `json:"installment_number"`
	Amount            float64   `json:"amount"`
	PaymentDate       time.Time `json:"payment_date"`
	Method            string    `json:"method"`
	Reference         string    `json:"reference"`

	TotalValue       float64 `json:"total_value"`
	TotalPaid        float64 `json:"total_paid"`
	Balance          float64 `json:"balance"`
	InstallmentsPaid int     `json:"installments_paid"`
	Installments     int     `json:"installments"`
}

func buildReceipt(purchase *models.Purchase, lot *models.Lot, client *models.User, payment *models.Payment) *PaymentReceipt {
	return &PaymentReceipt{
		ReceiptNumber:     payment.ReceiptNumber,
		PaymentId:         payment.Id,
		PurchaseId:        purchase.Id,
		ClientName:        client.FullName(),
		ClientEmail:       client.Email,
		ClientPhone:       client.Phone,
		ClientDocument:    client.DocumentID,
		LotCode:           lot.Code,
		LotLocation:       lot.Location,
		LotArea:           lot.Area,
		InstallmentNumber: payment.InstallmentNumber,
		Amount:            payment.Amount,
		PaymentDate:       payment.PaymentDate,
		Method:            payment.Method,
		Reference:         payment.Reference,
		TotalValue:        purchase.TotalValue,
		TotalPaid:         purchase.TotalPaid,
		Balance:           purchase.Balance,
		InstallmentsPaid:  purchase.InstallmentsPaid,
		Installments:      purchase.Installments,
	}
}
