// Package mailer renders the registrant and organization emails in English
// or French and hands them to a Sender.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/phillip/event-registration-go/models"
	"github.com/phillip/event-registration-go/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

// Sender delivers a rendered message. utils.ZeptoMail satisfies it.
type Sender interface {
	SendEmail(ctx context.Context, msg utils.Message) error
}

type Config struct {
	EventName         string
	OrganizationEmail string
	FrontendURL       string
}

// ContactMessage is a public contact form submission.
type ContactMessage struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

type Mailer struct {
	sender Sender
	cfg    Config
	logger *slog.Logger
	pages  map[string]*template.Template
}

func New(sender Sender, cfg Config, logger *slog.Logger) (*Mailer, error) {
	funcs := template.FuncMap{
		"money":   FormatAmount,
		"date":    formatDate,
		"percent": func(p float64) string { return strconv.FormatFloat(p, 'f', 0, 64) },
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	pages := make(map[string]*template.Template)
	for _, name := range []string{"confirmation", "installment", "organization", "contact"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return &Mailer{sender: sender, cfg: cfg, logger: logger, pages: pages}, nil
}

type view struct {
	Lang            string
	T               map[string]string
	Event           string
	Subject         string
	Reg             *models.Registration
	Installment     *models.Installment
	Number          int
	Total           int
	Remaining       int64
	Percentage      float64
	InstallmentsURL string
	Contact         *ContactMessage
}

func (m *Mailer) newView(lang, subject string) *view {
	lang = normalizeLanguage(lang)
	return &view{Lang: lang, T: labels[lang], Event: m.cfg.EventName, Subject: subject}
}

// SendConfirmation tells a fully paid registrant their registration is confirmed.
func (m *Mailer) SendConfirmation(ctx context.Context, reg *models.Registration) error {
	subject := m.subject(reg.Language, "subject_confirmation", "")
	v := m.newView(reg.Language, subject)
	v.Reg = reg
	return m.send(ctx, "confirmation", v, utils.Message{
		To:      reg.Email,
		ToName:  reg.FirstName + " " + reg.LastName,
		Subject: subject,
	})
}

// SendOrganizationNotice alerts the organizers about a newly paid registration.
func (m *Mailer) SendOrganizationNotice(ctx context.Context, reg *models.Registration) error {
	if m.cfg.OrganizationEmail == "" {
		return fmt.Errorf("organization email is not configured")
	}
	subject := m.subject(reg.Language, "subject_organization", reg.ConfirmationCode)
	v := m.newView(reg.Language, subject)
	v.Reg = reg
	return m.send(ctx, "organization", v, utils.Message{
		To:      m.cfg.OrganizationEmail,
		ReplyTo: reg.Email,
		Subject: subject,
	})
}

// SendInstallmentProgress confirms one installment of a plan that is not yet
// fully paid.
func (m *Mailer) SendInstallmentProgress(ctx context.Context, reg *models.Registration, inst models.Installment, total int) error {
	subject := m.subject(reg.Language, "subject_installment", strconv.Itoa(inst.Number()))
	v := m.newView(reg.Language, subject)
	v.Reg = reg
	v.Installment = &inst
	v.Number = inst.Number()
	v.Total = total
	v.Remaining = max(reg.Amount-reg.TotalPaid, 0)
	v.Percentage = reg.PercentagePaid()
	if m.cfg.FrontendURL != "" {
		v.InstallmentsURL = strings.TrimRight(m.cfg.FrontendURL, "/") + "/installments/" + reg.ID.Hex()
	}
	return m.send(ctx, "installment", v, utils.Message{
		To:      reg.Email,
		ToName:  reg.FirstName + " " + reg.LastName,
		Subject: subject,
	})
}

// SendContact relays a contact form message to the organization mailbox.
func (m *Mailer) SendContact(ctx context.Context, msg ContactMessage) error {
	if m.cfg.OrganizationEmail == "" {
		return fmt.Errorf("organization email is not configured")
	}
	v := m.newView(models.LanguageFrench, msg.Subject)
	v.Contact = &msg
	return m.send(ctx, "contact", v, utils.Message{
		To:      m.cfg.OrganizationEmail,
		ReplyTo: msg.Email,
		Subject: msg.Subject,
	})
}

func (m *Mailer) send(ctx context.Context, page string, v *view, msg utils.Message) error {
	var buf bytes.Buffer
	if err := m.pages[page].ExecuteTemplate(&buf, "layout", v); err != nil {
		return fmt.Errorf("render %s email: %w", page, err)
	}
	msg.HTML = buf.String()

	if err := m.sender.SendEmail(ctx, msg); err != nil {
		return fmt.Errorf("send %s email to %s: %w", page, msg.To, err)
	}
	m.logger.InfoContext(ctx, "email sent", "kind", page, "to", msg.To)
	return nil
}

func (m *Mailer) subject(lang, key, arg string) string {
	s := labels[normalizeLanguage(lang)][key]
	s = strings.ReplaceAll(s, "{event}", m.cfg.EventName)
	return strings.ReplaceAll(s, "{arg}", arg)
}

func normalizeLanguage(lang string) string {
	if lang == models.LanguageEnglish {
		return models.LanguageEnglish
	}
	return models.LanguageFrench
}

// FormatAmount renders 2500000 FCFA as "2 500 000 FCFA".
func FormatAmount(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign, amount = "-", -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}
	return strings.TrimSpace(sign + b.String() + " " + currency)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("02/01/2006 15:04 UTC")
}
