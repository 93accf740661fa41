package notifications

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender отправляет email через SendGrid
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewSendGridSender создает отправителя SendGrid
func NewSendGridSender(apiKey, fromEmail, fromName string) *SendGridSender {
	return &SendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// Send отправляет письмо
func (s *SendGridSender) Send(ctx context.Context, msg *Message) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)

	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, "")

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("%w: status %d, body: %s", ErrSendFailed, response.StatusCode, response.Body)
	}

	return nil
}

// LogSender пишет уведомления в лог; используется, когда email отключен
type LogSender struct {
	log Logger
}

// NewLogSender создает отправителя в лог
func NewLogSender(log Logger) *LogSender {
	return &LogSender{log: log}
}

// Send логирует сообщение
func (s *LogSender) Send(_ context.Context, msg *Message) error {
	s.log.Info("Notification to %s: %s", msg.ToEmail, msg.Subject)
	return nil
}
