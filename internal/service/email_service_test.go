package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/hostdesk/internal/config"
)

func TestEmailPrepareValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  *config.EmailConfig
		to   string
		want error
	}{
		{name: "nil_config", cfg: nil, to: "a@example.com", want: ErrEmailServiceDisabled},
		{name: "disabled", cfg: &config.EmailConfig{Enabled: false, Host: "smtp.example.com", Port: 587, From: "no-reply@example.com"}, to: "a@example.com", want: ErrEmailServiceDisabled},
		{name: "missing_host", cfg: &config.EmailConfig{Enabled: true, Port: 587, From: "no-reply@example.com"}, to: "a@example.com", want: ErrEmailServiceNotConfigured},
		{name: "bad_recipient", cfg: &config.EmailConfig{Enabled: true, Host: "smtp.example.com", Port: 587, From: "no-reply@example.com"}, to: "not-an-email", want: ErrInvalidEmail},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewEmailService(tt.cfg)
			if err := svc.SendText(tt.to, "subject", "body"); !errors.Is(err, tt.want) {
				t.Fatalf("SendText() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEmailPrepareBuildsMessage(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{
		Enabled:  true,
		Host:     "smtp.example.com",
		Port:     587,
		Username: "mailer",
		Password: "secret",
		From:     "no-reply@example.com",
		FromName: "HostDesk Billing",
	})
	msg, addr, auth, err := svc.prepare(" user@example.com ", "Order completed", "hello")
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if addr != "smtp.example.com:587" {
		t.Fatalf("unexpected addr: %s", addr)
	}
	if auth == nil {
		t.Fatalf("expected plain auth when credentials are set")
	}
	if len(msg.To) != 1 || msg.To[0] != "user@example.com" {
		t.Fatalf("unexpected recipients: %v", msg.To)
	}
	if !strings.Contains(msg.From, "no-reply@example.com") {
		t.Fatalf("unexpected from: %s", msg.From)
	}
	if string(msg.Text) != "hello" {
		t.Fatalf("unexpected body: %s", msg.Text)
	}
}

func TestIsEmailRecipientRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "smtp_550_no_such_recipient",
			err:  errors.New("550 No such recipient here"),
			want: true,
		},
		{
			name: "smtp_user_unknown",
			err:  errors.New("SMTP 5.1.1 user unknown"),
			want: true,
		},
		{
			name: "smtp_550_mailbox_unavailable",
			err:  errors.New("550 mailbox unavailable"),
			want: true,
		},
		{
			name: "network_timeout",
			err:  errors.New("dial tcp timeout"),
			want: false,
		},
		{
			name: "nil_error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmailRecipientRejected(tt.err); got != tt.want {
				t.Fatalf("isEmailRecipientRejected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeEmailSendError(t *testing.T) {
	rejected := errors.New("550 No such recipient here")
	if got := normalizeEmailSendError(rejected); !errors.Is(got, ErrEmailRecipientInvalid) {
		t.Fatalf("normalizeEmailSendError() expected ErrEmailRecipientInvalid, got %v", got)
	}

	networkErr := errors.New("dial tcp timeout")
	if got := normalizeEmailSendError(networkErr); !errors.Is(got, networkErr) {
		t.Fatalf("normalizeEmailSendError() should keep original error, got %v", got)
	}

	if got := normalizeEmailSendError(nil); got != nil {
		t.Fatalf("normalizeEmailSendError(nil) should be nil, got %v", got)
	}
}
