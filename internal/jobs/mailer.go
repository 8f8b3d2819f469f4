package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Message is a rendered mail.
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// MailerConfig configures the EmailJS-style REST delivery endpoint.
type MailerConfig struct {
	APIURL     string
	ServiceID  string
	TemplateID string
	PublicKey  string
	From       string
}

// NewMailer returns an HTTP mailer, or a logging mailer when the delivery
// endpoint is not configured.
func NewMailer(cfg MailerConfig) Mailer {
	if cfg.ServiceID == "" || cfg.TemplateID == "" || cfg.PublicKey == "" {
		log.Printf("WARNING: mail delivery not configured, mails will be logged only")
		return &logMailer{}
	}
	return &httpMailer{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

type httpMailer struct {
	cfg  MailerConfig
	http *http.Client
}

type mailRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

func (m *httpMailer) Send(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(mailRequest{
		ServiceID:  m.cfg.ServiceID,
		TemplateID: m.cfg.TemplateID,
		UserID:     m.cfg.PublicKey,
		TemplateParams: map[string]string{
			"to_email":  msg.To,
			"to_name":   msg.ToName,
			"from_name": m.cfg.From,
			"subject":   msg.Subject,
			"message":   msg.Body,
		},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return fmt.Errorf("mail API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mail API returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

type logMailer struct{}

func (l *logMailer) Send(ctx context.Context, msg *Message) error {
	log.Printf("MAIL to=%s subject=%q\n%s", msg.To, msg.Subject, msg.Body)
	return nil
}
