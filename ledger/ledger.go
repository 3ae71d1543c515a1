package ledger

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"lotes-backend/models"
	"lotes-backend/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReceiptNotifier delivers a payment receipt to the client (email with the
// rendered receipt attached). Implementations must not block longer than an
// ordinary outbound call; failures are logged and reported on the response,
// never propagated into the payment transaction.
type ReceiptNotifier interface {
	SendReceipt(receipt *PaymentReceipt) error
}

// Service owns the two transactional operations of the installment ledger:
// reserving a lot (which creates the purchase) and recording a payment
// against a purchase. All mutation of lot status and purchase aggregates
// goes through here, under an exclusive row lock.
type Service struct {
	db       *gorm.DB
	notifier ReceiptNotifier
}

func New(db *gorm.DB, notifier ReceiptNotifier) *Service {
	return &Service{db: db, notifier: notifier}
}

// forUpdate adds an exclusive row lock on dialects that support it. sqlite
// rejects FOR UPDATE and serializes writers on its own, which keeps the
// transactional contract testable in-memory.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// ReserveLot atomically transitions a lot from Disponible to Vendido and
// creates the purchase with its opening balance. The availability check and
// the status flip happen inside one transaction holding an exclusive lock on
// the lot row, so two concurrent reservations of the same lot cannot both
// succeed: the loser observes the committed Vendido status and gets
// ErrLotUnavailable.
func (s *Service) ReserveLot(lotID, clientID uint, requestedInstallments int, notes string) (*models.Purchase, error) {
	var purchase models.Purchase

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var lot models.Lot
		err := forUpdate(tx).
			Where("id = ? AND status = ?", lotID, models.LotStatusAvailable).
			First(&lot).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLotUnavailable
			}
			return err
		}

		installments := lot.Installments
		if requestedInstallments > 0 {
			installments = requestedInstallments
		}

		purchase = models.Purchase{
			ClientId:         clientID,
			LotId:            lot.Id,
			PurchaseDate:     time.Now(),
			TotalValue:       lot.Price, // price snapshot, not a live reference
			Installments:     installments,
			InstallmentValue: utils.Round2(lot.Price / float64(installments)),
			TotalPaid:        0,
			Balance:          lot.Price,
			InstallmentsPaid: 0,
			Status:           models.PurchaseStatusActive,
			Notes:            notes,
		}
		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}

		return tx.Model(&models.Lot{}).
			Where("id = ?", lot.Id).
			Update("status", models.LotStatusSold).Error
	})
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// RecordPaymentResult reports a committed payment. EmailSent is false when
// the receipt notification failed; the payment itself stands regardless.
type RecordPaymentResult struct {
	Payment   *models.Payment  `json:"payment"`
	Purchase  *models.Purchase `json:"purchase"`
	Receipt   *PaymentReceipt  `json:"receipt"`
	EmailSent bool             `json:"email_sent"`
}

// RecordPayment appends one installment payment to a purchase and recomputes
// its aggregates in the same transaction, holding an exclusive lock on the
// purchase row so concurrent payments serialize and installment numbers stay
// contiguous. Non-admin callers can only pay their own purchases; a purchase
// owned by someone else reports ErrPurchaseNotFound rather than a forbidden
// error, so existence is not leaked.
//
// The amount is accepted as-is: an installment is counted per payment, not
// per installment-value worth of money.
func (s *Service) RecordPayment(purchaseID uint, amount float64, paymentDate time.Time, method, reference, notes string, actingClientID uint, actingIsAdmin bool) (*RecordPaymentResult, error) {
	amount = utils.Round2(amount)

	var (
		purchase models.Purchase
		payment  models.Payment
		receipt  *PaymentReceipt
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		q := forUpdate(tx).Where("id = ?", purchaseID)
		if !actingIsAdmin {
			q = q.Where("client_id = ?", actingClientID)
		}
		if err := q.First(&purchase).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPurchaseNotFound
			}
			return err
		}

		if purchase.Settled() {
			return ErrPurchaseSettled
		}

		var lot models.Lot
		if err := tx.First(&lot, purchase.LotId).Error; err != nil {
			return err
		}
		var client models.User
		if err := tx.First(&client, purchase.ClientId).Error; err != nil {
			return err
		}

		if paymentDate.IsZero() {
			paymentDate = time.Now()
		}

		payment = models.Payment{
			PurchaseId:        purchase.Id,
			ClientId:          purchase.ClientId,
			InstallmentNumber: purchase.InstallmentsPaid + 1,
			Amount:            amount,
			PaymentDate:       paymentDate,
			Method:            method,
			Reference:         reference,
			Notes:             notes,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		purchase.TotalPaid = utils.Round2(purchase.TotalPaid + amount)
		purchase.Balance = utils.Round2(purchase.TotalValue - purchase.TotalPaid)
		purchase.InstallmentsPaid++
		if purchase.Balance <= 0 || purchase.InstallmentsPaid >= purchase.Installments {
			purchase.Status = models.PurchaseStatusCompleted
		}
		err := tx.Model(&models.Purchase{}).
			Where("id = ?", purchase.Id).
			Updates(map[string]any{
				"total_paid":        purchase.TotalPaid,
				"balance":           purchase.Balance,
				"installments_paid": purchase.InstallmentsPaid,
				"status":            purchase.Status,
			}).Error
		if err != nil {
			return err
		}

		receipt = buildReceipt(&purchase, &lot, &client, &payment)
		snapshot, err := json.Marshal(receipt)
		if err != nil {
			return err
		}
		return tx.Model(&models.Payment{}).
			Where("id = ?", payment.Id).
			Update("receipt", datatypes.JSON(snapshot)).Error
	})
	if err != nil {
		return nil, err
	}

	// The payment is committed. Notification failures must not undo it.
	emailSent := false
	if s.notifier != nil {
		if err := s.notifier.SendReceipt(receipt); err != nil {
			log.Printf("receipt notification failed for payment %d: %v", payment.Id, err)
		} else {
			emailSent = true
			if err := s.db.Model(&models.Payment{}).
				Where("id = ?", payment.Id).
				Update("email_sent", true).Error; err != nil {
				log.Printf("could not flag payment %d as emailed: %v", payment.Id, err)
			}
		}
	}
	payment.EmailSent = emailSent

	return &RecordPaymentResult{
		Payment:   &payment,
		Purchase:  &purchase,
		Receipt:   receipt,
		EmailSent: emailSent,
	}, nil
}
