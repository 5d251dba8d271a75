package alert

import (
	"github.com/stockerhq/stocker/config"
	"gopkg.in/gomail.v2"
)

// Mailer delivers a notification to a recipient. Delivery is best-effort:
// callers treat a returned error as a logging concern, never a failure.
type Mailer interface {
	Send(subject, body, to string) error
}

// SmtpMailer sends mail through the configured SMTP relay.
type SmtpMailer struct {
	conf config.SmtpConfig
}

func NewSmtpMailer(conf config.SmtpConfig) *SmtpMailer {
	return &SmtpMailer{conf: conf}
}

func (m *SmtpMailer) Send(subject, body, to string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.conf.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.conf.Host, m.conf.Port, m.conf.Username, m.conf.Password)
	return dialer.DialAndSend(msg)
}
