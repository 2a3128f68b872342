package service

import (
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/hostdesk/internal/config"

	"github.com/jordan-wright/email"
)

// EmailSender 发送纯文本邮件
type EmailSender interface {
	SendText(toEmail, subject, body string) error
}

// EmailService SMTP 邮件发送服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendText 发送纯文本邮件
func (s *EmailService) SendText(toEmail, subject, body string) error {
	msg, addr, auth, err := s.prepare(toEmail, subject, body)
	if err != nil {
		return err
	}
	if s.cfg.UseTLS {
		return normalizeEmailSendError(msg.SendWithStartTLS(addr, auth, &tls.Config{ServerName: s.cfg.Host}))
	}
	return normalizeEmailSendError(msg.Send(addr, auth))
}

func (s *EmailService) prepare(toEmail, subject, body string) (*email.Email, string, smtp.Auth, error) {
	if s == nil || s.cfg == nil || !s.cfg.Enabled {
		return nil, "", nil, ErrEmailServiceDisabled
	}
	if strings.TrimSpace(s.cfg.Host) == "" || s.cfg.Port == 0 || strings.TrimSpace(s.cfg.From) == "" {
		return nil, "", nil, ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(toEmail)); err != nil {
		return nil, "", nil, ErrInvalidEmail
	}

	msg := email.NewEmail()
	msg.From = buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg.To = []string{strings.TrimSpace(toEmail)}
	msg.Subject = strings.TrimSpace(subject)
	msg.Text = []byte(body)

	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	return msg, fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port), auth, nil
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return fmt.Errorf("%w: %v", ErrEmailRecipientInvalid, err)
	}
	return err
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	directKeywords := []string{
		"no such recipient",
		"no such user",
		"recipient not found",
		"recipient address rejected",
		"invalid recipient",
		"user unknown",
		"unknown user",
		"unknown mailbox",
		"mailbox unavailable",
	}
	for _, keyword := range directKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		for _, hint := range []string{"recipient", "user", "mailbox", "address", "rcpt"} {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
