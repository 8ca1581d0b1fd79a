package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendLeadAlert(toEmail, leadKind, name, summary string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

// SendLeadAlert emails the operator inbox about a new lead submission. A
// failed email never blocks the notification pipeline; the caller only logs
// the error.
func (s *emailService) SendLeadAlert(toEmail, leadKind, name, summary string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("New %s lead: %s", leadKind, name))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>New %s submission</h2>
			<p><strong>From:</strong> %s</p>
			<p>%s</p>
			<p>Open the operator console to follow up.</p>
		</div>
	`, leadKind, name, summary)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send lead alert to %s: %w", toEmail, err)
	}

	return nil
}
