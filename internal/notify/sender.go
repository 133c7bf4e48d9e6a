package notify

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// LogSender writes the event to the log. Used when SMTP is not configured.
type LogSender struct {
	Log *zap.Logger
}

func (s LogSender) Send(_ context.Context, ev Event) error {
	s.Log.Info("notification",
		zap.String("event", ev.Type),
		zap.String("reference", ev.Reference),
		zap.String("client", ev.ClientName),
		zap.String("email", ev.ClientEmail),
		zap.Time("start", ev.Start),
	)
	return nil
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPSender mails the client. Events without a client email are skipped.
type SMTPSender struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, send: smtp.SendMail}
}

func (s *SMTPSender) Send(ctx context.Context, ev Event) error {
	if ev.ClientEmail == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	msg := Compose(s.cfg.From, ev)

	if err := s.send(addr, auth, s.cfg.From, []string{ev.ClientEmail}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func subject(ev Event) string {
	switch ev.Type {
	case EventBookingCancelled:
		return "Booking cancelled - " + ev.ShopName
	default:
		return "Booking confirmed - " + ev.ShopName
	}
}

// Compose renders the RFC 5322 message for ev.
func Compose(from string, ev Event) []byte {
	var body strings.Builder
	fmt.Fprintf(&body, "Hello %s,\r\n\r\n", ev.ClientName)

	switch ev.Type {
	case EventBookingCancelled:
		fmt.Fprintf(&body, "Your booking for %s on %s at %s was cancelled.\r\n",
			ev.ServiceName, ev.Start.Format("02/01/2006"), ev.Start.Format("15:04"))
	default:
		fmt.Fprintf(&body, "Your booking for %s with %s is set for %s, %s-%s.\r\n",
			ev.ServiceName, ev.WorkerName,
			ev.Start.Format("02/01/2006"), ev.Start.Format("15:04"), ev.End.Format("15:04"))
		if ev.CheckoutURL != "" {
			fmt.Fprintf(&body, "\r\nPay online: %s\r\n", ev.CheckoutURL)
		}
	}
	fmt.Fprintf(&body, "\r\nReference: %s\r\n", ev.Reference)

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", ev.ClientEmail)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject(ev))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(body.String())
	return msg.Bytes()
}
