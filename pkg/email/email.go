package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Message is a rendered email ready for a transport.
type Message struct {
	ID      string
	From    string
	To      string
	Subject string
	HTML    string
}

type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

// Result never carries a Go error to the caller; failures are reported in
// Error so the caller can still persist its own record.
type Result struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

type Client struct {
	transport Transport
	from      string
}

func NewClient(transport Transport, from string) *Client {
	return &Client{transport: transport, from: from}
}

func (c *Client) Send(ctx context.Context, to, subject, html string) Result {
	if strings.TrimSpace(to) == "" {
		return Result{Error: "recipient address is empty"}
	}

	domain := "localhost"
	if at := strings.LastIndex(c.from, "@"); at >= 0 {
		domain = c.from[at+1:]
	}
	msg := Message{
		ID:      fmt.Sprintf("<%s@%s>", uuid.NewString(), domain),
		From:    c.from,
		To:      to,
		Subject: subject,
		HTML:    html,
	}

	if err := c.transport.Deliver(ctx, msg); err != nil {
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).WithError(err).Warn("email delivery failed")
		return Result{Error: err.Error()}
	}
	logrus.WithFields(logrus.Fields{"to": to, "message_id": msg.ID}).Info("email sent")
	return Result{Success: true, MessageID: msg.ID}
}

// SMTPConfig selects how the connection is secured. ImplicitTLS dials TLS
// straight away (port 465). UseTLS requires STARTTLS; without it STARTTLS is
// still used whenever the server offers it.
type SMTPConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	UseTLS      bool
	ImplicitTLS bool
	Timeout     time.Duration
	// TLSConfig overrides the default client TLS settings, e.g. custom roots.
	TLSConfig *tls.Config
}

type smtpTransport struct {
	cfg SMTPConfig
}

func NewSMTPTransport(cfg SMTPConfig) Transport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &smtpTransport{cfg: cfg}
}

func (s *smtpTransport) tlsConfig() *tls.Config {
	if s.cfg.TLSConfig != nil {
		conf := s.cfg.TLSConfig.Clone()
		if conf.ServerName == "" {
			conf.ServerName = s.cfg.Host
		}
		return conf
	}
	return &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
}

func (s *smtpTransport) dial(ctx context.Context) (net.Conn, error) {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	if s.cfg.ImplicitTLS {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: s.tlsConfig()}
		return tlsDialer.DialContext(ctx, "tcp", addr)
	}
	return dialer.DialContext(ctx, "tcp", addr)
}

func (s *smtpTransport) Deliver(ctx context.Context, msg Message) error {
	conn, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	deadline := time.Now().Add(s.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if !s.cfg.ImplicitTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(s.tlsConfig()); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		} else if s.cfg.UseTLS {
			return errors.New("smtp server does not support STARTTLS")
		}
	}
	if s.cfg.User != "" {
		auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(msg.From); err != nil {
		return err
	}
	if err := client.Rcpt(msg.To); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(buildMessage(msg)); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// headerValue keeps a value on one header line.
func headerValue(v string) string {
	return strings.Join(strings.FieldsFunc(v, func(r rune) bool { return r == '\r' || r == '\n' }), " ")
}

func buildMessage(msg Message) []byte {
	headers := []string{
		fmt.Sprintf("From: %s", headerValue(msg.From)),
		fmt.Sprintf("To: %s", headerValue(msg.To)),
		fmt.Sprintf("Subject: %s", mime.QEncoding.Encode("utf-8", headerValue(msg.Subject))),
		fmt.Sprintf("Message-ID: %s", headerValue(msg.ID)),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
	}
	return []byte(strings.Join(headers, "\r\n") + "\r\n" + msg.HTML)
}

type logTransport struct{}

// NewLogTransport writes outgoing mail to the log instead of a server. It is
// used when no SMTP host is configured.
func NewLogTransport() Transport {
	return logTransport{}
}

func (logTransport) Deliver(_ context.Context, msg Message) error {
	logrus.WithFields(logrus.Fields{
		"to":         msg.To,
		"subject":    msg.Subject,
		"message_id": msg.ID,
	}).Info("email transport disabled, message logged")
	return nil
}
