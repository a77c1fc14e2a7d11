package mailer

import (
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"eventsphere/internal/dto"
)

var (
	ErrNoRecipient      = errors.New("notification has no recipient")
	ErrInvalidRecipient = errors.New("notification recipient is not a valid address")
)

// Header values never carry line breaks; attendee and organizer input
// reaches the subject.
var headerBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

type Config struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Mailer struct {
	cfg  Config
	log  *zerolog.Logger
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New returns a mailer. A disabled mailer only logs what it would send.
func New(cfg Config, log *zerolog.Logger) *Mailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Username == "" {
		cfg.Username = cfg.From
	}
	return &Mailer{cfg: cfg, log: log, send: smtp.SendMail}
}

// Send delivers the e-mail for one notification addressed to a participant.
func (m *Mailer) Send(msg dto.NotificationMessage) error {
	if msg.Email == "" {
		return ErrNoRecipient
	}
	if strings.ContainsAny(msg.Email, "\r\n") {
		return ErrInvalidRecipient
	}
	if _, err := mail.ParseAddress(msg.Email); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}
	subject, body := Render(msg)

	if !m.cfg.Enabled {
		m.log.Debug().
			Str("email", msg.Email).
			Str("kind", string(msg.Kind)).
			Str("subject", subject).
			Msg("mailer disabled, skipping email")
		return nil
	}

	raw := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		headerValue(m.cfg.From), msg.Email, mime.QEncoding.Encode("utf-8", headerValue(subject)), body,
	)
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	var auth smtp.Auth
	if m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := m.send(addr, auth, m.cfg.From, []string{msg.Email}, []byte(raw)); err != nil {
		m.log.Warn().Err(err).Str("email", msg.Email).Msg("failed to send email")
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info().
		Str("email", msg.Email).
		Str("kind", string(msg.Kind)).
		Str("ticket_code", msg.TicketCode).
		Msg("email sent")
	return nil
}

// Render builds the subject and plain-text body for a notification.
func Render(msg dto.NotificationMessage) (string, string) {
	when := msg.StartsAt.Format("Mon, 02 Jan 2006 15:04 MST")
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", greetingName(msg.Name))

	var subject string
	switch msg.Kind {
	case dto.NotifyRegistered:
		subject = fmt.Sprintf("Registration received: %s", msg.EventName)
		fmt.Fprintf(&b, "You are registered for %s at %s on %s.\nYour ticket code is %s. Show it at the entrance.\n",
			msg.EventName, msg.Venue, when, msg.TicketCode)
		if msg.PaymentURL != "" {
			fmt.Fprintf(&b, "\nComplete your payment here: %s\n", msg.PaymentURL)
		}
	case dto.NotifyApproved:
		subject = fmt.Sprintf("Registration approved: %s", msg.EventName)
		fmt.Fprintf(&b, "Your registration for %s has been approved.\nTicket code: %s\n",
			msg.EventName, msg.TicketCode)
	case dto.NotifyRejected:
		subject = fmt.Sprintf("Registration declined: %s", msg.EventName)
		fmt.Fprintf(&b, "Unfortunately your registration for %s (ticket %s) was not approved.\n",
			msg.EventName, msg.TicketCode)
	case dto.NotifyCheckedIn:
		subject = fmt.Sprintf("Welcome to %s", msg.EventName)
		fmt.Fprintf(&b, "You have been checked in to %s with ticket %s. Enjoy the event!\n",
			msg.EventName, msg.TicketCode)
	case dto.NotifyReminder:
		subject = fmt.Sprintf("Reminder: %s starts soon", msg.EventName)
		fmt.Fprintf(&b, "%s starts on %s at %s.\nBring your ticket code %s.\n",
			msg.EventName, when, msg.Venue, msg.TicketCode)
	default:
		subject = msg.EventName
		fmt.Fprintf(&b, "There is an update about %s.\n", msg.EventName)
	}
	b.WriteString("\nEventSphere")
	return subject, b.String()
}

func headerValue(v string) string {
	return strings.TrimSpace(headerBreaks.Replace(v))
}

func greetingName(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return "there"
	}
	return name
}
