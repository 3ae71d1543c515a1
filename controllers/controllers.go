package controllers

import "lotes-backend/ledger"

// ResetMailer delivers password-reset tokens. Satisfied by notify.Mailer.
type ResetMailer interface {
	SendPasswordReset(to, name, token string) error
}

var (
	ledgerSvc *ledger.Service
	mailer    ResetMailer
)

// Setup wires the shared collaborators. Called once from main, and from
// handler tests with a test database behind the service.
func Setup(l *ledger.Service, m ResetMailer) {
	ledgerSvc = l
	mailer = m
}
