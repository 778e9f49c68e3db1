package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"pos_back_end/internal/config"
	"pos_back_end/internal/receipt"
)

var ErrMailerDisabled = errors.New("SMTP non configuré")

// Mailer envoie les tickets de caisse par email.
type Mailer struct {
	cfg config.SMTPConfig
	log *zap.Logger
}

func NewMailer(cfg config.SMTPConfig, log *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.cfg.Host != ""
}

// ReceiptMessage construit le message : HTML, alternative texte et QR code en pièce jointe.
func (m *Mailer) ReceiptMessage(to string, r receipt.Receipt) (*mail.Msg, error) {
	html, err := r.HTML()
	if err != nil {
		return nil, err
	}
	qr, err := r.QRCode()
	if err != nil {
		return nil, fmt.Errorf("QR code: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, err
	}
	if err := msg.To(to); err != nil {
		return nil, err
	}
	msg.Subject(fmt.Sprintf("%s - Receipt #%s", r.StoreName, r.TransactionID))
	msg.SetBodyString(mail.TypeTextHTML, html)
	msg.AddAlternativeString(mail.TypeTextPlain, r.Text())

	if err := msg.AttachReader(r.TransactionID+".png", bytes.NewReader(qr),
		mail.WithFileContentType(mail.ContentType("image/png"))); err != nil {
		return nil, err
	}
	return msg, nil
}

func (m *Mailer) SendReceipt(ctx context.Context, to string, r receipt.Receipt) error {
	if !m.Enabled() {
		return ErrMailerDisabled
	}

	msg, err := m.ReceiptMessage(to, r)
	if err != nil {
		return err
	}

	opts := []mail.Option{mail.WithPort(m.cfg.Port), mail.WithTLSPolicy(mail.TLSOpportunistic)}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return err
	}

	m.log.Info("📤 Envoi du ticket", zap.String("to", to), zap.String("order_id", r.TransactionID))
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("envoi email: %w", err)
	}
	return nil
}
