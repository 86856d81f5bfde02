package notify

import (
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/haierkeys/git-light-sync/internal/config"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// MailSender is satisfied by *gomail.Dialer.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailNotifier mails failures, and successes when configured.
// Delivery errors are logged and never affect the sync result.
type MailNotifier struct {
	cfg    config.MailConfig
	sender MailSender
	logger *zap.Logger
}

// NewMailNotifier creates a MailNotifier using an SMTP dialer built from cfg
func NewMailNotifier(cfg config.MailConfig, logger *zap.Logger) *MailNotifier {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	return NewMailNotifierWithSender(cfg, d, logger)
}

func NewMailNotifierWithSender(cfg config.MailConfig, sender MailSender, logger *zap.Logger) *MailNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MailNotifier{cfg: cfg, sender: sender, logger: logger}
}

func (m *MailNotifier) NotifySuccess(n Notice) {
	if m.cfg.OnSuccess {
		m.send(n)
	}
}

func (m *MailNotifier) NotifyFailure(n Notice) {
	m.send(n)
}

// Log is a no-op; diagnostics travel in Notice.Detail.
func (m *MailNotifier) Log(string) {}

func (m *MailNotifier) send(n Notice) {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", m.cfg.To...)
	msg.SetHeader("Subject", n.Message)
	msg.SetBody("text/plain", mailBody(n))

	if err := m.sender.DialAndSend(msg); err != nil {
		m.logger.Error("send notification mail failed", zap.Strings("to", m.cfg.To), zap.Error(err))
	}
}

func mailBody(n Notice) string {
	var b strings.Builder
	b.WriteString(n.Message)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Time: %s\n", n.At.Format("2006-01-02 15:04:05"))
	if n.Detail != "" {
		b.WriteString("\n")
		b.WriteString(n.Detail)
		b.WriteString("\n")
	}
	return b.String()
}
