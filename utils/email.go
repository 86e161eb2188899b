package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrEmailNotConfigured is returned when the ZeptoMail settings are missing.
var ErrEmailNotConfigured = errors.New("missing ZEPTO_API_URL, ZEPTO_API_KEY, or EMAIL_FROM")

// email request payload for ZeptoMail API
type emailRequest struct {
	From     emailWithName   `json:"from"`
	To       []toRecipient   `json:"to"`
	ReplyTo  []emailWithName `json:"reply_to,omitempty"`
	Subject  string          `json:"subject"`
	HtmlBody string          `json:"htmlbody"`
}

type toRecipient struct {
	Email emailWithName `json:"email_address"`
}

type emailWithName struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

// Message is one outgoing HTML email.
type Message struct {
	To      string
	ToName  string
	ReplyTo string
	Subject string
	HTML    string
}

type ZeptoConfig struct {
	APIURL   string // e.g. https://api.zeptomail.com/v1.1/email
	APIKey   string // e.g. Zoho-enczapikey xxxxx
	From     string
	FromName string
}

// ZeptoMail sends HTML email through the ZeptoMail HTTP API.
type ZeptoMail struct {
	cfg    ZeptoConfig
	client *http.Client
}

func NewZeptoMail(cfg ZeptoConfig, client *http.Client) *ZeptoMail {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &ZeptoMail{cfg: cfg, client: client}
}

// SendEmail delivers msg. Any non-2xx answer from ZeptoMail is an error.
func (z *ZeptoMail) SendEmail(ctx context.Context, msg Message) error {
	if z.cfg.APIURL == "" || z.cfg.APIKey == "" || z.cfg.From == "" {
		return ErrEmailNotConfigured
	}

	payload := emailRequest{
		From: emailWithName{Address: z.cfg.From, Name: z.cfg.FromName},
		To: []toRecipient{
			{
				Email: emailWithName{
					Address: msg.To,
					Name:    msg.ToName,
				},
			},
		},
		Subject:  msg.Subject,
		HtmlBody: msg.HTML,
	}
	if msg.ReplyTo != "" {
		payload.ReplyTo = []emailWithName{{Address: msg.ReplyTo}}
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, z.cfg.APIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", z.cfg.APIKey)

	resp, err := z.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("zeptomail API error: %s", resp.Status)
	}
	return nil
}
