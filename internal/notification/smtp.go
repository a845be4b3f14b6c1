package notification

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/iliyamo/spark-meetup/internal/config"
)

// SMTPConfig holds mail server settings.
type SMTPConfig struct {
	Host        string
	Port        int
	User        string
	Pass        string
	From        string
	ServiceName string
}

// SMTPConfigFrom maps the SMTP_* environment settings.
func SMTPConfigFrom(cfg config.NotifyConfig) SMTPConfig {
	return SMTPConfig{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		User:        cfg.SMTPUser,
		Pass:        cfg.SMTPPass,
		From:        cfg.SMTPFrom,
		ServiceName: cfg.ServiceName,
	}
}

// SMTPDispatcher renders messages and sends them as plain-text mail.
type SMTPDispatcher struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPDispatcher returns a dispatcher bound to cfg.
func NewSMTPDispatcher(cfg SMTPConfig) *SMTPDispatcher {
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "SPARK"
	}
	return &SMTPDispatcher{cfg: cfg, send: smtp.SendMail}
}

// Dispatch implements Dispatcher.
func (d *SMTPDispatcher) Dispatch(ctx context.Context, msg Message) error {
	if d.cfg.Host == "" {
		return errors.New("smtp not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(msg.To, "\r\n") {
		return fmt.Errorf("invalid recipient %q", msg.To)
	}
	subject, body, err := Render(msg, d.cfg.ServiceName)
	if err != nil {
		return err
	}
	raw := "From: " + d.cfg.From + "\r\n" +
		"To: " + msg.To + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n" +
		strings.ReplaceAll(body, "\n", "\r\n") + "\r\n"

	var auth smtp.Auth
	if d.cfg.User != "" {
		auth = smtp.PlainAuth("", d.cfg.User, d.cfg.Pass, d.cfg.Host)
	}
	addr := d.cfg.Host + ":" + strconv.Itoa(d.cfg.Port)
	if err := d.send(addr, auth, d.cfg.From, []string{msg.To}, []byte(raw)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
