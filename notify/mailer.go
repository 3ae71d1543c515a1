package notify

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"lotes-backend/ledger"
)

// Mailer sends receipt and password-reset mail over SMTP. Configuration comes
// from SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD and SMTP_FROM. An
// unconfigured mailer (no host) reports an error on send so callers can log
// and move on; mail delivery is never load-bearing.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewMailerFromEnv() *Mailer {
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USER")
	}
	return &Mailer{
		host:     os.Getenv("SMTP_HOST"),
		port:     port,
		username: os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     from,
	}
}

func (m *Mailer) send(to, subject, body string) error {
	if m.host == "" {
		return fmt.Errorf("smtp not configured")
	}
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	return smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, []byte(msg))
}

// SendReceipt implements ledger.ReceiptNotifier.
func (m *Mailer) SendReceipt(r *ledger.PaymentReceipt) error {
	if r.ClientEmail == "" {
		return fmt.Errorf("client has no email address")
	}
	subject := fmt.Sprintf("Comprobante de pago - Cuota %d, Lote %s", r.InstallmentNumber, r.LotCode)
	body := fmt.Sprintf(
		"Hola %s,\n\n"+
			"Hemos registrado tu pago.\n\n"+
			"Comprobante: %s\n"+
			"Lote: %s (%s, %.2f m2)\n"+
			"Cuota: %d de %d\n"+
			"Monto: $%.2f\n"+
			"Método: %s\n"+
			"Total pagado: $%.2f\n"+
			"Saldo pendiente: $%.2f\n\n"+
			"Gracias por tu pago.\n",
		r.ClientName, r.ReceiptNumber, r.LotCode, r.LotLocation, r.LotArea,
		r.InstallmentNumber, r.Installments, r.Amount, r.Method,
		r.TotalPaid, r.Balance,
	)
	return m.send(r.ClientEmail, subject, body)
}

// SendPasswordReset mails the reset token to the account address.
func (m *Mailer) SendPasswordReset(to, name, token string) error {
	subject := "Recuperación de contraseña"
	body := fmt.Sprintf(
		"Hola %s,\n\n"+
			"Recibimos una solicitud para restablecer tu contraseña.\n"+
			"Usa este código dentro de la próxima hora: %s\n\n"+
			"Si no fuiste tú, ignora este mensaje.\n",
		name, token,
	)
	return m.send(to, subject, body)
}
