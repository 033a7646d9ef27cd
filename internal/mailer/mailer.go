package mailer

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/permitdesk/permitdesk/internal/shared"
)

// Message is a single-recipient mail with one binary attachment.
type Message struct {
	To             string
	Subject        string
	Text           string
	HTML           string
	AttachmentName string
	Attachment     []byte
}

// Sender dispatches a message and returns the relay's message id. Relay
// failures are wrapped in ErrDelivery.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// SMTPConfig holds relay settings. Only the host carries a default upstream;
// dispatch is disabled until the rest is provided.
type SMTPConfig struct {
	Host     string
	Port     int
	Secure   bool
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

type smtpSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) Sender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &smtpSender{cfg: cfg}
}

func (s *smtpSender) Send(ctx context.Context, msg Message) (string, error) {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return "", fmt.Errorf("%w: invalid from address: %v", shared.ErrDelivery, err)
	}
	if err := m.To(msg.To); err != nil {
		return "", fmt.Errorf("%w: invalid recipient: %v", shared.ErrDelivery, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	if len(msg.Attachment) > 0 {
		if err := m.AttachReader(msg.AttachmentName, bytes.NewReader(msg.Attachment)); err != nil {
			return "", fmt.Errorf("%w: attach %s: %v", shared.ErrDelivery, msg.AttachmentName, err)
		}
	}
	m.SetMessageID()

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTimeout(s.cfg.Timeout),
	}
	if s.cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if s.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.User),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: relay client: %v", shared.ErrDelivery, err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return "", fmt.Errorf("%w: relay send: %v", shared.ErrDelivery, err)
	}

	ids := m.GetGenHeader(mail.HeaderMessageID)
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}
